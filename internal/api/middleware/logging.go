package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger returns a request logging middleware using zerolog. Websocket
// upgrades hijack the connection, so the wrapper never sees a status
// for them; those requests are logged when the connection closes, with
// the latency covering its whole lifetime.
func Logger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				evt := logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Dur("latency", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("remote_addr", r.RemoteAddr)
				if ww.Status() == 0 {
					evt.Bool("hijacked", true).Msg("connection closed")
					return
				}
				evt.Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Msg("request completed")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
