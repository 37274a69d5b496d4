package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// tokenMiddleware rejects requests without the configured bearer token
func tokenMiddleware(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				logging.From(r.Context()).Warn("Rejected API request",
					"path", r.URL.Path, "remote", r.RemoteAddr)
				writeJSON(r.Context(), w, http.StatusUnauthorized,
					errorBody(goerr.New("authentication required")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
