package functions

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("token does not match userUid")
)

// TokenVerifier checks Supabase access tokens (HS256, signed with the
// project's JWT secret) and returns the user id in the subject claim
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier returns nil for an empty secret, which disables checks
func NewTokenVerifier(secret string) *TokenVerifier {
	if secret == "" {
		return nil
	}
	return &TokenVerifier{secret: []byte(secret)}
}

// Subject validates the bearer token of r and returns its subject
func (v *TokenVerifier) Subject(r *http.Request) (string, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		return "", fmt.Errorf("%w: missing bearer token", errUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: invalid token claims", errUnauthorized)
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
