package ports

import (
	"context"
	"time"

	"github.com/orbitel/oms/internal/domain"
)

// PasswordService hashes and verifies login credentials.
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) (bool, error)
}

// TokenClaims is the identity carried inside an access token.
type TokenClaims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// TokenService issues and validates access tokens.
type TokenService interface {
	GenerateAccessToken(user *domain.User) (string, time.Time, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// RateLimitService throttles repeated attempts on a key within a window.
type RateLimitService interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
	Reset(ctx context.Context, key string) error
}
