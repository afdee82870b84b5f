package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

type ctxKey string

const tenantCtxKey ctxKey = "tenantID"

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// tenantMiddleware validates the tenant path parameter and stores it in
// the request context.
func tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := types.TenantID(chi.URLParam(r, "tenantID"))
		if err := tenantID.Validate(); err != nil {
			http.Error(w, "invalid tenant ID", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), tenantCtxKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tenantFromContext(ctx context.Context) types.TenantID {
	tenantID, _ := ctx.Value(tenantCtxKey).(types.TenantID)
	return tenantID
}

// visitorIdentity derives the quota identity of a request. A stable
// client-provided ID wins over the remote address, so quotas follow the
// browser session rather than a shared NAT address when possible.
func visitorIdentity(r *http.Request) string {
	if id := r.Header.Get("X-Visitor-ID"); id != "" {
		return id
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
