package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordService_HashAndVerify(t *testing.T) {
	service := NewBcryptPasswordService(bcrypt.MinCost)

	hash, err := service.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == "s3cret-pw" {
		t.Error("Expected hash to differ from the password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Expected a bcrypt hash, got %s", hash)
	}

	ok, err := service.VerifyPassword("s3cret-pw", hash)
	if err != nil {
		t.Fatalf("Failed to verify password: %v", err)
	}
	if !ok {
		t.Error("Expected matching password to verify")
	}

	ok, err = service.VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("Expected no error for wrong password, got %v", err)
	}
	if ok {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestBcryptPasswordService_EmptyInputs(t *testing.T) {
	service := NewBcryptPasswordService(bcrypt.MinCost)

	if _, err := service.HashPassword(""); err == nil {
		t.Error("Expected error for empty password")
	}

	if _, err := service.VerifyPassword("", "hash"); err == nil {
		t.Error("Expected error for empty password")
	}

	if _, err := service.VerifyPassword("password", ""); err == nil {
		t.Error("Expected error for empty hash")
	}
}

func TestBcryptPasswordService_DefaultCost(t *testing.T) {
	service := NewBcryptPasswordService(0)

	hash, err := service.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Failed to read cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("Expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}
