package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/production-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/token"
	"github.com/go-chi/jwtauth/v5"
)

// TokenRequired rejects requests that do not carry a verified dashboard token.
// It must run after jwtauth.Verifier.
func TokenRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			tok, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if tok == nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != token.TypeViewer {
				response.Unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
