package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AchilleasB/pet-care/console-service/internal/adapters/auth"
	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

var now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestTokenVerifier_WithKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	identity := domain.Identity{ID: "u1", Email: "a@x.com", Name: "A", Role: domain.RoleAdmin}
	v := auth.NewTokenVerifier(&key.PublicKey).WithClock(func() time.Time { return now })

	valid := jwt.MapClaims{"sub": "u1", "role": "ADMIN", "exp": now.Add(time.Hour).Unix()}

	tests := []struct {
		name    string
		token   string
		wantErr bool
		is      error
	}{
		{"valid", sign(t, key, valid), false, nil},
		{"expired", sign(t, key, jwt.MapClaims{"sub": "u1", "exp": now.Add(-time.Minute).Unix()}), true, jwt.ErrTokenExpired},
		{"wrong_subject", sign(t, key, jwt.MapClaims{"sub": "u2", "exp": now.Add(time.Hour).Unix()}), true, auth.ErrCredentialMismatch},
		{"wrong_role", sign(t, key, jwt.MapClaims{"sub": "u1", "role": "pet_owner"}), true, auth.ErrCredentialMismatch},
		{"foreign_key", sign(t, other, valid), true, jwt.ErrTokenSignatureInvalid},
		{"garbage", "not-a-token", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.token, identity)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestTokenVerifier_WithoutKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	identity := domain.Identity{ID: "u1", Email: "a@x.com", Name: "A", Role: domain.RolePetOwner}
	v := auth.NewTokenVerifier(nil).WithClock(func() time.Time { return now })

	if err := v.Verify("opaque-session-token", identity); err != nil {
		t.Errorf("opaque credential rejected: %v", err)
	}
	if err := v.Verify(sign(t, key, jwt.MapClaims{"sub": "u1", "exp": now.Add(time.Hour).Unix()}), identity); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	expired := sign(t, key, jwt.MapClaims{"sub": "u1", "exp": now.Add(-time.Hour).Unix()})
	if err := v.Verify(expired, identity); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected expiry error, got %v", err)
	}
	if err := v.Verify(sign(t, key, jwt.MapClaims{"sub": "someone-else"}), identity); !errors.Is(err, auth.ErrCredentialMismatch) {
		t.Errorf("expected mismatch, got %v", err)
	}
}
