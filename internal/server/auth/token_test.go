package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openreach/cms-server/internal/common"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("super-secret"), time.Hour)

	tok, err := s.IssueAccessToken("user-123", "jane@example.org", "Jane Doe")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("UserID mismatch: got %q", claims.UserID)
	}
	if claims.Email != "jane@example.org" {
		t.Fatalf("Email mismatch: got %q", claims.Email)
	}
	if claims.Name != "Jane Doe" {
		t.Fatalf("Name mismatch: got %q", claims.Name)
	}
	if claims.Type != TokenTypeAccess {
		t.Fatalf("Type mismatch: got %q want %q", claims.Type, TokenTypeAccess)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"), -1*time.Second)
	tok, err := s.IssueAccessToken("u1", "u1@example.org", "U One")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	_, err = s.VerifyAccessToken(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService([]byte("right-secret"), time.Hour)
	verifier := NewTokenService([]byte("wrong-secret"), time.Hour)

	tok, err := issuer.IssueAccessToken("u2", "u2@example.org", "U Two")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyAccessToken_MalformedString(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("k"), time.Hour)
	if _, err := s.VerifyAccessToken("not.a.jwt"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestVerifyAccessToken_RejectsWrongType(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	now := time.Now()
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID: "u3",
		Email:  "u3@example.org",
		Type:   TokenTypeRefresh,
	})
	tok, err := refresh.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	s := NewTokenService(secret, time.Hour)
	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for non-access type, got %v", err)
	}
}

func TestVerifyAccessToken_RejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	now := time.Now()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID: "u4",
		Type:   TokenTypeAccess,
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	s := NewTokenService([]byte("secret"), time.Hour)
	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none token, got %v", err)
	}
}
