package httpapi

import (
	"errors"
	"net/http"

	"adarshgram.org/internal/auth"
	"adarshgram.org/internal/obs"
)

const authHeader = "Authorization"

// RequireAuth is the authentication gate: it extracts the bearer credential,
// verifies it, re-confirms the account against the store, and attaches the
// identity (with the jurisdiction read fresh from the store, never from the
// token) to the request context. Any failure is terminal for the request.
func (a *API) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get(authHeader))
		if !ok {
			obs.AuthDecision("authenticate", "denied")
			unauthorized(w, r, codeMissingToken, "access token required")
			return
		}

		claims, err := a.tokens.VerifyAccess(token)
		if err != nil {
			obs.AuthDecision("authenticate", "denied")
			unauthorized(w, r, codeAuthenticationFailed, verifyFailureMessage(err))
			return
		}

		user, err := a.users.FindActiveByID(r.Context(), claims.UserID)
		if err != nil {
			obs.AuthDecision("authenticate", "denied")
			if errors.Is(err, auth.ErrNotFound) {
				// Same status as a bad token so account state is not
				// distinguishable from credential validity.
				unauthorized(w, r, codeInvalidUser, "user not found or inactive")
				return
			}
			unauthorized(w, r, codeAuthenticationFailed, "authentication failed")
			return
		}

		obs.AuthDecision("authenticate", "allowed")
		identity := auth.Identity{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Role:     claims.Role,
			Location: user.Location,
		}
		ctx := auth.ContextWithIdentity(r.Context(), identity)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verifyFailureMessage names the failure kind so clients can tell "refresh"
// apart from "re-login".
func verifyFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "access token expired"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "invalid access token"
	default:
		return "token verification failed"
	}
}
