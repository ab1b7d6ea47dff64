package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// StructuredLogger logs one line per request. GraphQL calls log at info, health and scrape traffic at debug.
// Request and trace identifiers are added by the logger's handler.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			}

			level := slog.LevelDebug
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				level = slog.LevelError
			case r.URL.Path == "/graphql":
				level = slog.LevelInfo
			}
			logger.LogAttrs(r.Context(), level, "Request completed", attrs...)
		})
	}
}

// panicResponse follows the GraphQL error shape so clients parse it like any other failure.
var panicResponse = map[string]any{
	"errors": []map[string]any{{
		"message":    "internal error",
		"extensions": map[string]string{"code": "INTERNAL"},
	}},
}

// Recoverer turns a handler panic into a 500 with a GraphQL error body.
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.ErrorContext(r.Context(), "Panic recovered",
					"panic", rvr, "path", r.URL.Path)
				RespondJSON(w, logger, http.StatusInternalServerError, panicResponse)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
