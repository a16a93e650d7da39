package auth

import (
	"errors"
	"testing"
	"time"
)

type fakeResolver map[string]string

func (f fakeResolver) LookupUser(id string) (string, error) {
	name, ok := f[id]
	if !ok {
		return "", errors.New("not found")
	}
	return name, nil
}

func newTestAuthenticator(duration time.Duration) *Authenticator {
	return NewAuthenticator(Config{
		SecretKey:     "test-secret-key",
		Issuer:        "test-issuer",
		TokenDuration: duration,
	}, fakeResolver{"user-123": "Alice"})
}

func TestAuthenticator_MintAndVerify(t *testing.T) {
	a := newTestAuthenticator(15 * time.Minute)

	token, err := a.Mint("user-123", "Alice")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if token == "" {
		t.Fatal("Mint() returned empty token")
	}

	identity, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.UserID != "user-123" {
		t.Errorf("identity.UserID = %v, want user-123", identity.UserID)
	}
	if identity.Name != "Alice" {
		t.Errorf("identity.Name = %v, want Alice", identity.Name)
	}
}

func TestAuthenticator_DisplayNameComesFromResolver(t *testing.T) {
	a := newTestAuthenticator(15 * time.Minute)

	// The name claim in the token is stale; the resolved record wins.
	token, err := a.Mint("user-123", "Old Name")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	identity, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.Name != "Alice" {
		t.Errorf("identity.Name = %v, want resolver name Alice", identity.Name)
	}
}

func TestAuthenticator_VerifyFailures(t *testing.T) {
	a := newTestAuthenticator(15 * time.Minute)

	expired := newTestAuthenticator(-time.Minute)
	expiredToken, err := expired.Mint("user-123", "Alice")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	other := NewAuthenticator(Config{
		SecretKey: "a-different-secret",
		Issuer:    "test-issuer",
	}, fakeResolver{"user-123": "Alice"})
	foreignToken, err := other.Mint("user-123", "Alice")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	unknownToken, err := a.Mint("user-999", "Ghost")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing token", "", ErrNoToken},
		{"garbage token", "not-a-jwt", ErrInvalidToken},
		{"expired token", expiredToken, ErrExpiredToken},
		{"wrong signature", foreignToken, ErrInvalidToken},
		{"unknown subject", unknownToken, ErrUnknownUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Verify(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
