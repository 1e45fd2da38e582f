package jwt

import (
	"testing"
	"time"

	"github.com/orbitel/oms/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-123",
		Username: "jane@example.com",
		Role:     domain.RoleClient,
	}
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	if err == nil {
		t.Error("Expected error for empty secret, got nil")
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service, err := NewJWTService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	token, expiresAt, err := service.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("Expected expiry in the future")
	}

	claims, err := service.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("Expected user id user-123, got %s", claims.UserID)
	}
	if claims.Username != "jane@example.com" {
		t.Errorf("Expected username jane@example.com, got %s", claims.Username)
	}
	if claims.Role != domain.RoleClient {
		t.Errorf("Expected role %s, got %s", domain.RoleClient, claims.Role)
	}
}

func TestJWTService_ValidateGarbage(t *testing.T) {
	service, _ := NewJWTService("test-secret", time.Hour)

	_, err := service.ValidateAccessToken("not-a-token")
	if err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_ValidateWrongSecret(t *testing.T) {
	issuer, _ := NewJWTService("secret-a", time.Hour)
	verifier, _ := NewJWTService("secret-b", time.Hour)

	token, _, err := issuer.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := verifier.ValidateAccessToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_ValidateExpired(t *testing.T) {
	service, _ := NewJWTService("test-secret", -time.Minute)

	token, _, err := service.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := service.ValidateAccessToken(token); err != ErrTokenExpired {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}
