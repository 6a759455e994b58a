package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	m "github.com/go-chi/chi/v5/middleware"
)

const (
	allowedMethods = "GET, POST, OPTIONS"
	allowedHeaders = "Content-Type, Authorization"
)

// recoverJSON turns a handler panic into a generic JSON service error.
func recoverJSON(logger *slog.Logger) func(http.Handler) http.Handler {
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

				logger.Error("panic serving request",
					"path", r.URL.Path,
					"request_id", m.GetReqID(r.Context()),
					"panic", rvr,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "Internal service error", fmt.Sprintf("Error: %v", rvr))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// throttleJSON limits in-flight requests with chi's Throttle and reports
// rejections in the JSON error envelope instead of plain text.
func throttleJSON(limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		throttled := m.Throttle(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := w.(*rejectWriter)
			rw.admitted = true
			next.ServeHTTP(rw.ResponseWriter, r)
		}))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &rejectWriter{ResponseWriter: w}
			throttled.ServeHTTP(rw, r)
			if rw.admitted {
				return
			}

			status := rw.status
			if status == 0 {
				status = http.StatusTooManyRequests
			}
			writeError(w, status, "Too many requests", rw.body.String())
		})
	}
}

// rejectWriter captures what Throttle writes for a rejected request.
// Admitted requests are served on the embedded writer directly.
type rejectWriter struct {
	http.ResponseWriter
	admitted bool
	status   int
	body     strings.Builder
}

func (w *rejectWriter) WriteHeader(status int) {
	w.status = status
}

func (w *rejectWriter) Write(b []byte) (int, error) {
	w.body.Write(bytes.TrimSpace(b))
	return len(b), nil
}

// allowOrigins sets CORS headers for the configured origins and answers
// preflight requests. A "*" entry allows any origin.
func allowOrigins(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(origins, origin)) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", allowedMethods)
				h.Set("Access-Control-Allow-Headers", allowedHeaders)
				h.Add("Vary", "Origin")

				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isJSON reports whether the request declares a JSON body, or none at all.
func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(strings.ToLower(ct), "application/json")
}
