package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler reports that the process is up. It runs no checks.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request and answers 503 when any fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := runChecks(r.Context(), checks, cfg)

		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, resp)
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	w.Header().Set("Cache-Control", "no-store")
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte(http.StatusText(status)))
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
