package guard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/andymarkow/zapbank/internal/errmsg"
)

// Authenticator admits requests that carry a valid bearer token for
// the trust domain verified by the preceding jwtauth.Verifier. A
// missing token and an invalid or expired one report as distinct
// failures so clients can tell them apart.
func Authenticator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if errors.Is(err, jwtauth.ErrNoTokenFound) {
				writeError(w, errmsg.ErrCredentialMissing)

				return
			}

			if err != nil || token == nil {
				writeError(w, errmsg.ErrCredentialInvalid)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuthenticator additionally requires the admin claim. A validly
// signed token without it is rejected as forbidden, not as invalid.
func AdminAuthenticator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if errors.Is(err, jwtauth.ErrNoTokenFound) {
				writeError(w, errmsg.ErrCredentialMissing)

				return
			}

			if err != nil || token == nil {
				writeError(w, errmsg.ErrCredentialInvalid)

				return
			}

			if admin, ok := claims["admin"].(bool); !ok || !admin {
				writeError(w, errmsg.ErrAdminRequired)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, httpErr errmsg.HTTPError) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(httpErr.Code)

	resp := struct {
		Error string `json:"error"`
	}{
		Error: httpErr.Error(),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
