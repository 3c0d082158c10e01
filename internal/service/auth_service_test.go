package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// newTokenAuthService builds an AuthService with just enough config for
// the password and token paths. Repository-backed paths are covered by
// the e2e suite.
func newTokenAuthService(expiry time.Duration) *AuthService {
	return &AuthService{
		cfg: &config.Config{
			JWTSecret:  "unit-test-secret",
			JWTExpiry:  expiry,
			BcryptCost: 4,
		},
		log: zerolog.Nop(),
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := newTokenAuthService(time.Hour)

	hash, err := svc.HashPassword("secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("password stored in plaintext")
	}

	if err := svc.CheckPassword(hash, "secret123"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTokenAuthService(time.Hour)

	token, err := svc.generateToken(&model.User{ID: 42, Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("token did not validate: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("want user 42, got %d", claims.UserID)
	}
	if claims.TokenType != TokenTypeStudent || claims.Role != model.RoleStudent {
		t.Errorf("claims misclassified: type %q, role %q", claims.TokenType, claims.Role)
	}
}

func TestTokenAdminType(t *testing.T) {
	svc := newTokenAuthService(time.Hour)

	token, err := svc.generateToken(&model.User{ID: 1, Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("token did not validate: %v", err)
	}
	if claims.TokenType != TokenTypeAdmin {
		t.Errorf("admin user must get an admin token, got %q", claims.TokenType)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTokenAuthService(-time.Minute)

	token, err := svc.generateToken(&model.User{ID: 42, Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestForeignSecretRejected(t *testing.T) {
	svc := newTokenAuthService(time.Hour)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenType: TokenTypeAdmin,
		UserID:    1,
		Role:      model.RoleAdmin,
	})
	signed, err := foreign.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ValidateToken(signed); err == nil {
		t.Fatal("token signed with a foreign secret validated")
	}
}

func TestUnsignedTokenRejected(t *testing.T) {
	svc := newTokenAuthService(time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		TokenType: TokenTypeAdmin,
		UserID:    1,
		Role:      model.RoleAdmin,
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ValidateToken(signed); err == nil {
		t.Fatal("alg=none token validated")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTokenAuthService(time.Hour)

	token, err := svc.generateToken(&model.User{ID: 42, Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tampered := token[:len(token)-4] + "XXXX"
	if _, err := svc.ValidateToken(tampered); err == nil {
		t.Fatal("tampered token validated")
	}
}
