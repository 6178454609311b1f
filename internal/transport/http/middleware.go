package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"quiz-rest-service/internal/app"
	"quiz-rest-service/internal/domain"
)

type authedHandlerFunc func(w http.ResponseWriter, r *http.Request, user domain.User, store app.Store)

// authenticated validates the bearer token against the auth provider and
// passes the caller identity plus a caller-scoped store handle downstream.
// Missing token answers 401; a token the provider rejects answers 403.
func (h *Handler) authenticated(next authedHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, domain.ErrMissingToken.Error())
			return
		}

		user, err := h.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				writeError(w, http.StatusForbidden, domain.ErrInvalidToken.Error())
				return
			}
			// Never echo verifier errors: they may describe provider internals.
			log.Printf("token verification failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next(w, r, user, h.stores.ForUser(user))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
