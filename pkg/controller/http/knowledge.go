package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/usecase"
	"github.com/kataribe-dev/kataribe/pkg/utils/errutil"
	"github.com/kataribe-dev/kataribe/pkg/utils/safe"
)

type entryResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toEntryResponse(entry *model.KnowledgeEntry) entryResponse {
	return entryResponse{
		ID:        entry.ID.String(),
		Kind:      entry.Kind.String(),
		Slug:      entry.Slug,
		Title:     entry.Title,
		Summary:   entry.Summary,
		Priority:  entry.Priority,
		Active:    entry.Active,
		UpdatedAt: entry.UpdatedAt,
	}
}

func listEntriesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entries, err := uc.Knowledge.List(ctx, tenantFromContext(ctx))
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		resp := make([]entryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, toEntryResponse(entry))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck // header already committed
	}
}

type createEntryRequest struct {
	Kind     string `json:"kind"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Priority int    `json:"priority"`
}

func createEntryHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer safe.Close(ctx, r.Body)

		var req createEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode entry request"), http.StatusBadRequest)
			return
		}

		tenantID := tenantFromContext(ctx)
		created, err := uc.Knowledge.Create(ctx, tenantID, &model.KnowledgeEntry{
			TenantID: tenantID,
			Kind:     types.EntryKind(req.Kind),
			Slug:     req.Slug,
			Title:    req.Title,
			Body:     req.Body,
			Priority: req.Priority,
			Active:   true,
		})
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toEntryResponse(created)) //nolint:errcheck // header already committed
	}
}

// summaryHandler synchronously regenerates the summary and keyword tags
// of one entry.
func summaryHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		ID       string   `json:"id"`
		Summary  string   `json:"summary"`
		Keywords []string `json:"keywords"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenantID := tenantFromContext(ctx)
		entryID := types.EntryID(chi.URLParam(r, "entryID"))

		entry, err := uc.Knowledge.Enrich(ctx, tenantID, entryID)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrEnrichmentUnavailable):
				errutil.HandleHTTP(ctx, w, err, http.StatusServiceUnavailable)
			case errors.Is(err, interfaces.ErrNotFound):
				errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			default:
				errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			}
			return
		}

		tags, err := uc.Knowledge.Tags(ctx, tenantID, entryID)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		keywords := make([]string, 0, len(tags))
		for _, tag := range tags {
			keywords = append(keywords, tag.Token)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response{ //nolint:errcheck // header already committed
			ID:       entry.ID.String(),
			Summary:  entry.Summary,
			Keywords: keywords,
		})
	}
}
