package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

const (
	defaultLoginAttemptLimit  = 5
	defaultLoginAttemptWindow = 15 * time.Minute
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// AuthUseCase handles login and logout. Both successful and failed login
// attempts are audited; repeated failures are throttled per username and IP.
type AuthUseCase struct {
	userRepo     ports.UserRepository
	passwords    ports.PasswordService
	tokens       ports.TokenService
	rateLimit    ports.RateLimitService
	audit        *AuditUseCase
	logger       *logrus.Logger
	attemptLimit int
	window       time.Duration
}

// NewAuthUseCase creates a new auth use case. rateLimit may be nil, in which
// case attempts are not throttled. Non-positive attemptLimit or window fall
// back to the defaults.
func NewAuthUseCase(userRepo ports.UserRepository, passwords ports.PasswordService, tokens ports.TokenService, rateLimit ports.RateLimitService, audit *AuditUseCase, attemptLimit int, window time.Duration, logger *logrus.Logger) *AuthUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	if attemptLimit <= 0 {
		attemptLimit = defaultLoginAttemptLimit
	}
	if window <= 0 {
		window = defaultLoginAttemptWindow
	}
	return &AuthUseCase{
		userRepo:     userRepo,
		passwords:    passwords,
		tokens:       tokens,
		rateLimit:    rateLimit,
		audit:        audit,
		logger:       logger,
		attemptLimit: attemptLimit,
		window:       window,
	}
}

// Login verifies credentials and issues an access token.
func (uc *AuthUseCase) Login(ctx context.Context, username, password, ip string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.NewValidationError("username and password are required")
	}

	if err := uc.checkThrottle(ctx, username, ip); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if domain.IsNotFound(err) {
			uc.recordFailedLogin(ctx, username, ip, "unknown username")
			return nil, domain.NewAuthorizationError("invalid username or password")
		}
		return nil, err
	}

	ok, err := uc.passwords.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		uc.recordFailedLogin(ctx, username, ip, "wrong password")
		return nil, domain.NewAuthorizationError("invalid username or password")
	}

	token, expiresAt, err := uc.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	uc.resetThrottle(ctx, username, ip)

	actor := domain.Actor{UserID: user.ID, Username: user.Username}
	uc.audit.Record(ctx, actor, domain.AuditActionUserLogin, domain.AuditEntityUser, user.ID,
		"User logged in.", nil, nil)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout records the logout. Access tokens stay valid until expiry; the entry
// exists for the audit trail.
func (uc *AuthUseCase) Logout(ctx context.Context, actor domain.Actor) {
	uc.audit.Record(ctx, actor, domain.AuditActionUserLogout, domain.AuditEntityUser, actor.UserID,
		"User logged out.", nil, nil)
}

func (uc *AuthUseCase) checkThrottle(ctx context.Context, username, ip string) error {
	if uc.rateLimit == nil {
		return nil
	}
	for _, key := range throttleKeys(username, ip) {
		under, err := uc.rateLimit.CheckLimit(ctx, key, uc.attemptLimit, uc.window)
		if err != nil {
			uc.logger.WithError(err).Warn("Login throttle check failed, allowing attempt")
			return nil
		}
		if !under {
			return domain.NewAuthorizationError("too many failed login attempts, try again later")
		}
	}
	return nil
}

func (uc *AuthUseCase) recordFailedLogin(ctx context.Context, username, ip, reason string) {
	if uc.rateLimit != nil {
		for _, key := range throttleKeys(username, ip) {
			if err := uc.rateLimit.Increment(ctx, key, uc.window); err != nil {
				uc.logger.WithError(err).Warn("Failed to increment login throttle")
			}
		}
	}

	// Failed attempts are audited too, attributed to the attempted identity.
	actor := domain.Actor{Username: username}
	uc.audit.Record(ctx, actor, domain.AuditActionUserLoginFailed, domain.AuditEntityUser, "",
		"Failed login attempt: "+reason+".", nil, map[string]string{"ip": ip})
}

func (uc *AuthUseCase) resetThrottle(ctx context.Context, username, ip string) {
	if uc.rateLimit == nil {
		return
	}
	for _, key := range throttleKeys(username, ip) {
		if err := uc.rateLimit.Reset(ctx, key); err != nil {
			uc.logger.WithError(err).Warn("Failed to reset login throttle")
		}
	}
}

func throttleKeys(username, ip string) []string {
	keys := []string{"login:user:" + username}
	if ip != "" {
		keys = append(keys, "login:ip:"+ip)
	}
	return keys
}
