package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const bearerType = "Bearer"

// Pair is the access/refresh token pair issued by the backend on login and refresh.
// Both values are opaque to the dashboard.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Complete reports whether both halves of the pair are present
func (p Pair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Bearer returns the access token as an oauth2 bearer credential
func (p Pair) Bearer() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    bearerType,
	}
}

// ExpiryHint reads the exp claim of a JWT-shaped access token without verifying it.
// Informational only; opaque tokens report ok=false.
func ExpiryHint(accessToken string) (time.Time, bool) {
	if accessToken == "" {
		return time.Time{}, false
	}
	claims := jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
