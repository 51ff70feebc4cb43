package middleware

import (
	"net/http"
	"strings"
)

// CORS lets the drawer call the API from another origin. Only origins listed
// by name get credentialed access to the session cookie; "*" allows any origin
// without credentials.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	listed := make([]string, 0, len(allowOrigins))
	for _, o := range allowOrigins {
		o = strings.TrimSpace(o)
		switch o {
		case "":
		case "*":
			allowAny = true
		default:
			listed = append(listed, o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeCORSHeaders(w, r.Header.Get("Origin"), listed, allowAny)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeCORSHeaders(w http.ResponseWriter, origin string, listed []string, allowAny bool) {
	w.Header().Add("Vary", "Origin")
	if origin == "" {
		return
	}

	switch {
	case originListed(origin, listed):
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	case allowAny:
		w.Header().Set("Access-Control-Allow-Origin", "*")
	default:
		return
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Correlation-Id, X-Session-Id")
	w.Header().Set("Access-Control-Expose-Headers", "Location, X-Correlation-Id")
}

func originListed(origin string, listed []string) bool {
	for _, a := range listed {
		if strings.EqualFold(a, strings.TrimSpace(origin)) {
			return true
		}
	}
	return false
}
