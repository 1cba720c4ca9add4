package devapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/users"
)

const issuer = "acservice-devapi"

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *users.User
const ContextKeyUser ContextKey = "user"

type accessClaims struct {
	Email      string         `json:"email"`
	Role       users.RoleType `json:"role"`
	Generation int64          `json:"gen"`
	jwtlib.RegisteredClaims
}

// issuePair mints an access token and a fresh refresh token for the user
func (s *Server) issuePair(u *users.User) (token.Pair, error) {
	access, err := s.createAccessToken(u)
	if err != nil {
		return token.Pair{}, err
	}
	refreshToken, err := s.refreshes.Create(u.ID)
	if err != nil {
		return token.Pair{}, err
	}
	return token.Pair{AccessToken: access, RefreshToken: refreshToken}, nil
}

func (s *Server) createAccessToken(u *users.User) (string, error) {
	now := NowTimeFunc()
	claims := accessClaims{
		Email:      u.Email,
		Role:       u.Role,
		Generation: s.generation.Load(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// verifyAccessToken returns the user the token was issued to
func (s *Server) verifyAccessToken(raw string) (*users.User, error) {
	claims := accessClaims{}
	_, err := jwtlib.ParseWithClaims(raw, &claims, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, err
	}
	if claims.Generation < s.generation.Load() {
		return nil, fmt.Errorf("token has been revoked")
	}
	u, err := s.users.GetByID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("unknown subject")
	}
	return u, nil
}

// RequireAuth validates the bearer access token and, when roles are given,
// that the caller holds one of them
func (s *Server) RequireAuth(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			u, err := s.verifyAccessToken(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "token expired or invalid")
				return
			}
			if len(roles) > 0 && !u.HasRole(roles...) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, u)))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func userFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(ContextKeyUser).(*users.User)
	return u
}
