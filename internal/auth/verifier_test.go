package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Sign(Identity{UID: "uid-1", Email: "a@example.com"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UID != "uid-1" || identity.Email != "a@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTVerifier("secret-a").Sign(Identity{UID: "uid-1"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewJWTVerifier("secret-b").Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Sign(Identity{UID: "uid-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected invalid token, got %v", token, err)
		}
	}
}

func TestVerifyRequiresSubject(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Sign(Identity{Email: "no-subject@example.com"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for empty subject, got %v", err)
	}
}
