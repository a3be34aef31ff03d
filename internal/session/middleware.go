package session

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TuancoderLo/perfumestore/pkg/errors"
	"github.com/TuancoderLo/perfumestore/pkg/httputil"
)

// Claims is the JWT payload issued by the upstream auth endpoints.
type Claims struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Extract parses an optional Bearer token and stores the resulting session
// in the request context. Requests without a token, or with one that fails
// verification, proceed as anonymous; endpoints that require identity use
// RequireAuth on top of this.
func Extract(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !parsed.Valid {
				logger.DebugContext(r.Context(), "bearer token rejected",
					slog.String("error", errString(err)),
				)
				next.ServeHTTP(w, r)
				return
			}

			s := Session{
				UserID:        claims.Subject,
				Name:          claims.Name,
				IsAdmin:       claims.IsAdmin,
				Authenticated: true,
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).Authenticated {
			httputil.WriteError(w, r, errors.Unauthorized("authentication required"), slog.Default())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects non-admin requests with 403 (401 when anonymous).
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		if !s.Authenticated {
			httputil.WriteError(w, r, errors.Unauthorized("authentication required"), slog.Default())
			return
		}
		if !s.IsAdmin {
			httputil.WriteError(w, r, errors.Forbidden("admin access required"), slog.Default())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func errString(err error) string {
	if err == nil {
		return "token invalid"
	}
	return err.Error()
}
