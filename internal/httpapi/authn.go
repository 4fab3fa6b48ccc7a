package httpapi

import (
	"errors"
	"net/http"

	"skillbridge.org/internal/auth"
)

const authHeader = "Authorization"

// withAuth verifies a bearer token when one is presented and attaches the
// actor to the context. Requests without a token pass through anonymously;
// the service layer rejects them where an actor is required. A token that is
// present but bad is always a 401, with the verification failure kind as the
// error code.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := auth.ExtractBearer(r.Header.Get(authHeader))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := a.tokens.Verify(token)
		if err != nil {
			var authErr *auth.AuthError
			if errors.As(err, &authErr) {
				writeError(w, http.StatusUnauthorized, string(authErr.Kind), "invalid token")
				return
			}
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		ctx := auth.ContextWithActor(r.Context(), actor)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
