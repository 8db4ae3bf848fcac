package util

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, expires, err := GenerateToken("secret", "finflow", 42, "sess-1", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expires %v is not in the future", expires)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.UserID != 42 || claims.Subject != "42" {
		t.Errorf("claims user = %d / %q, want 42", claims.UserID, claims.Subject)
	}
	if claims.ID != "sess-1" {
		t.Errorf("claims jti = %q, want sess-1", claims.ID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, _ := GenerateToken("secret", "finflow", 1, "s", time.Minute)
	if _, err := ParseToken("other", token); err == nil {
		t.Error("ParseToken with wrong secret error = nil, want error")
	}
}

func TestParseToken_Expired(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))

	_, err := ParseToken("secret", token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("ParseToken(expired) error = %v, want ErrTokenExpired", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("secret", "not.a.token"); err == nil {
		t.Error("ParseToken(garbage) error = nil, want error")
	}
}
