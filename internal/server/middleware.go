package server

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/google/uuid"

	"github.com/dmitrymomot/courier/pkg/logger"
)

const stackSize = 4096

// requestIDHeaders are checked in order for an upstream request ID.
var requestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

type requestIDKey struct{}

// requestID keeps an upstream request ID or generates one, and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		for _, h := range requestIDHeaders {
			if v := r.Header.Get(h); v != "" {
				id = v
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the request ID set by the server, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDExtractor adds "request_id" to log records of ops requests.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := RequestIDFrom(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}

// recoverer turns a handler panic into a logged 500.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := make([]byte, stackSize)
				stack = stack[:runtime.Stack(stack, false)]
				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(stack)),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
