package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, stripe-signature"
	corsMaxAge       = 86400
)

// CORS applies the allow-list origin policy. Requests from an origin outside
// allowedOrigins are answered with the first allowed origin; requests without
// an Origin header get "*". Preflight requests are answered here and never
// reach next.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	fallback := ""
	if len(allowedOrigins) > 0 {
		fallback = allowedOrigins[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowOrigin := origin
			if origin == "" {
				allowOrigin = "*"
			} else if _, ok := allowed[origin]; !ok {
				allowOrigin = fallback
			}
			if allowOrigin == "" {
				allowOrigin = "*"
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
			h.Add("Vary", "Origin")

			if strings.EqualFold(r.Method, http.MethodOptions) {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
