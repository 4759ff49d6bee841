package middleware

import (
	"net/http"
	"strings"

	"jewelry-store/internal/auth"
	"jewelry-store/internal/model"

	"github.com/rs/zerolog"
)

// TokenParser turns a bearer token into an actor.
type TokenParser interface {
	Parse(token string) (model.Actor, error)
}

// Authenticate requires a valid bearer token and stores the actor in the
// request context.
func Authenticate(tokens TokenParser, errs ErrorWriter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.Debug().Str("path", r.URL.Path).Msg("missing bearer token")
				errs.Write(w, r, auth.ErrNoActor)
				return
			}

			actor, err := tokens.Parse(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				errs.Write(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// OptionalAuthenticate stores the actor when a valid token is present and
// lets anonymous requests through. An invalid token is still rejected.
func OptionalAuthenticate(tokens TokenParser, errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := tokens.Parse(token)
			if err != nil {
				errs.Write(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// Authenticate.
func RequireAdmin(errs ErrorWriter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := auth.ActorFrom(r.Context())
			if err != nil {
				errs.Write(w, r, err)
				return
			}
			if !actor.IsAdmin {
				logger.Warn().
					Str("user_id", actor.UserID.String()).
					Str("path", r.URL.Path).
					Msg("admin route denied")
				errs.Write(w, r, model.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
