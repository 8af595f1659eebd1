package functions

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewTokenVerifierDisabled(t *testing.T) {
	if v := NewTokenVerifier(""); v != nil {
		t.Errorf("NewTokenVerifier(\"\") = %v, want nil", v)
	}
}

func TestTokenVerifierSubject(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	sign := func(method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	valid := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer " + sign(jwt.SigningMethodHS256, []byte(testSecret), valid), "u1", false},
		{"lowercase scheme", "bearer " + sign(jwt.SigningMethodHS256, []byte(testSecret), valid), "u1", false},
		{"missing", "", "", true},
		{"basic auth", "Basic dXNlcjpwYXNz", "", true},
		{"wrong secret", "Bearer " + sign(jwt.SigningMethodHS256, []byte("other"), valid), "", true},
		{"wrong alg", "Bearer " + sign(jwt.SigningMethodHS512, []byte(testSecret), valid), "", true},
		{"unsigned", "Bearer " + sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), "", true},
		{"expired", "Bearer " + sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}), "", true},
		{"no subject", "Bearer " + sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/database", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := v.Subject(r)
			if tt.wantErr {
				if !errors.Is(err, errUnauthorized) {
					t.Errorf("Subject() error = %v, want errUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Subject() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}
