package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/usecase"
	"github.com/kataribe-dev/kataribe/pkg/utils/errutil"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
	"github.com/kataribe-dev/kataribe/pkg/utils/safe"
)

type chatRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode,omitempty"`
}

type quotaResponse struct {
	Allowed        bool  `json:"allowed"`
	Remaining      int   `json:"remaining"`
	ResetInSeconds int64 `json:"reset_in_seconds"`
}

// chatHandler answers a visitor question as a chunked plain-text
// stream. Fragments are flushed as they arrive; once streaming has
// begun the response status can no longer change, so provider failures
// surface as a final in-band message rather than an error status.
func chatHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenantID := tenantFromContext(ctx)
		identity := visitorIdentity(r)
		defer safe.Close(ctx, r.Body)

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode chat request"), http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, "question is required", http.StatusBadRequest)
			return
		}

		stream, err := uc.Chat.Ask(ctx, tenantID, identity, req.Question, req.Mode)
		if err != nil {
			if errors.Is(err, usecase.ErrQuotaExceeded) {
				writeQuotaExceeded(w, uc, r)
				return
			}
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		flusher, _ := w.(http.Flusher)
		for {
			fragment, err := stream.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				// The stream contract converts provider failures in-band;
				// reaching here means the client went away or the request
				// context was canceled.
				logging.From(ctx).Debug("chat stream aborted", "error", err.Error())
				return
			}

			if _, err := w.Write([]byte(fragment)); err != nil {
				logging.From(ctx).Debug("client disconnected during chat stream", "error", err.Error())
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeQuotaExceeded(w http.ResponseWriter, uc *usecase.UseCases, r *http.Request) {
	status := uc.Chat.Quota(r.Context(), visitorIdentity(r))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(quotaResponse{ //nolint:errcheck // header already committed
		Allowed:        false,
		Remaining:      status.Remaining,
		ResetInSeconds: int64(status.ResetIn.Seconds()),
	})
}

// quotaHandler reports the caller's current quota without consuming a
// use.
func quotaHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := uc.Chat.Quota(r.Context(), visitorIdentity(r))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(quotaResponse{ //nolint:errcheck // header already committed
			Allowed:        status.Allowed,
			Remaining:      status.Remaining,
			ResetInSeconds: int64(status.ResetIn.Seconds()),
		})
	}
}

// healthHandler reports liveness and the quota backend state
func healthHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Status       string `json:"status"`
		QuotaBackend string `json:"quota_backend"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response{ //nolint:errcheck // header already committed
			Status:       "ok",
			QuotaBackend: uc.Limiter().State().String(),
		})
	}
}
