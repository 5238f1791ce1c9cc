// Package correlation gives every request a correlation identifier and a
// request-scoped logger carrying it. The inbound X-Correlation-ID header is
// trusted when present; otherwise a fresh UUID is generated. All logging
// context lives on the request context, so it cannot leak across requests
// and is released on every exit path, including panics and client aborts.
package correlation

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Header is the HTTP header used for inbound and outbound correlation ids.
const Header = "X-Correlation-ID"

// userHeader optionally names the acting user for the request log context.
const userHeader = "X-User-ID"

// ctxKey is unexported so other packages cannot collide with or overwrite
// the stored id.
type ctxKey struct{}

// Middleware resolves the request's correlation id, attaches a derived logger
// to the request context, echoes the id on the response, and emits one access
// log line when the request completes.
func Middleware(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := strings.TrimSpace(r.Header.Get(Header))
			if cid == "" {
				cid = uuid.NewString()
			}

			lctx := base.With().
				Str("correlation_id", cid).
				Str("method", r.Method).
				Str("uri", r.URL.RequestURI())
			if uid := strings.TrimSpace(r.Header.Get(userHeader)); uid != "" {
				lctx = lctx.Str("user_id", uid)
			}
			logger := lctx.Logger()

			ctx := context.WithValue(r.Context(), ctxKey{}, cid)
			ctx = logger.WithContext(ctx)

			w.Header().Set(Header, cid)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			defer func() {
				logger.Info().
					Int("status", ww.Status()).
					Dur("duration", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// FromContext returns the request's correlation id, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
