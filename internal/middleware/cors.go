package middleware

import (
	"log/slog"
	"net/http"
	"slices"
)

// ErrOriginNotAllowed is the plain-text body sent to refused origins.
const ErrOriginNotAllowed = "origin not allowed"

const preflightMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"

// OriginRecorder receives one call per refused request. *metrics.Collector
// satisfies it.
type OriginRecorder interface {
	OriginRejected()
}

// OriginGuard admits requests without an Origin header (same-origin or
// non-browser callers) and requests whose Origin is in allowed. Anything else
// is refused with 403 before reaching next.
func OriginGuard(allowed []string, logger *slog.Logger, rec OriginRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if !IsAllowed(origin, allowed) {
				if rec != nil {
					rec.OriginRejected()
				}
				logger.Warn("origin rejected",
					"origin", origin,
					"method", r.Method,
					"path", r.URL.Path,
					"req_id", GetRequestID(r.Context()),
				)
				http.Error(w, ErrOriginNotAllowed, http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", preflightMethods)
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					w.Header().Add("Vary", "Access-Control-Request-Headers")
					w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
				}
				w.Header().Set("Content-Length", "0")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IsAllowed reports whether a request carrying origin would be admitted.
func IsAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(allowed, origin)
}
