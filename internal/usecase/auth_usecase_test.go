package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitel/oms/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthUseCase, *memUserRepo, *memAuditRepo, *fakeRateLimiter) {
	t.Helper()
	userRepo := newMemUserRepo()
	auditRepo := newMemAuditRepo()
	limiter := newFakeRateLimiter()
	audit := NewAuditUseCase(auditRepo, nil)
	uc := NewAuthUseCase(userRepo, &fakePasswordService{}, &fakeTokenService{}, limiter, audit, 0, 0, nil)

	user := domain.NewUser("jane@example.com", "hashed:s3cret-pw", domain.RoleClient)
	require.NoError(t, userRepo.Create(context.Background(), user))

	return uc, userRepo, auditRepo, limiter
}

func TestAuthUseCase_LoginSuccess(t *testing.T) {
	uc, userRepo, auditRepo, limiter := newAuthFixture(t)
	ctx := context.Background()

	result, err := uc.Login(ctx, "jane@example.com", "s3cret-pw", "203.0.113.7")
	require.NoError(t, err)

	user, err := userRepo.FindByUsername(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	logins := auditRepo.byAction(domain.AuditActionUserLogin)
	require.Len(t, logins, 1)
	assert.Equal(t, user.ID, logins[0].UserID)

	assert.Zero(t, limiter.counts["login:user:jane@example.com"], "successful login must reset the throttle")
}

func TestAuthUseCase_LoginWrongPassword(t *testing.T) {
	uc, _, auditRepo, limiter := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, "jane@example.com", "wrong", "203.0.113.7")
	assert.True(t, domain.IsAuthorization(err))

	failed := auditRepo.byAction(domain.AuditActionUserLoginFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "jane@example.com", failed[0].Username)
	assert.Equal(t, map[string]string{"ip": "203.0.113.7"}, failed[0].NewValue)

	assert.Equal(t, 1, limiter.counts["login:user:jane@example.com"])
	assert.Equal(t, 1, limiter.counts["login:ip:203.0.113.7"])
}

func TestAuthUseCase_LoginUnknownUser(t *testing.T) {
	uc, _, auditRepo, _ := newAuthFixture(t)

	_, err := uc.Login(context.Background(), "nobody@example.com", "whatever", "203.0.113.7")
	assert.True(t, domain.IsAuthorization(err), "unknown users must get the same opaque error as bad passwords")

	failed := auditRepo.byAction(domain.AuditActionUserLoginFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "nobody@example.com", failed[0].Username)
}

func TestAuthUseCase_LoginThrottledAfterRepeatedFailures(t *testing.T) {
	uc, _, _, limiter := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < defaultLoginAttemptLimit; i++ {
		_, err := uc.Login(ctx, "jane@example.com", "wrong", "203.0.113.7")
		assert.True(t, domain.IsAuthorization(err))
	}

	// attempt six is rejected before the password is even checked
	_, err := uc.Login(ctx, "jane@example.com", "s3cret-pw", "203.0.113.7")
	assert.True(t, domain.IsAuthorization(err))
	assert.Equal(t, defaultLoginAttemptLimit, limiter.counts["login:user:jane@example.com"])
}

func TestAuthUseCase_ConfiguredAttemptLimit(t *testing.T) {
	userRepo := newMemUserRepo()
	limiter := newFakeRateLimiter()
	audit := NewAuditUseCase(newMemAuditRepo(), nil)
	uc := NewAuthUseCase(userRepo, &fakePasswordService{}, &fakeTokenService{}, limiter, audit, 2, time.Minute, nil)
	ctx := context.Background()

	user := domain.NewUser("jane@example.com", "hashed:s3cret-pw", domain.RoleClient)
	require.NoError(t, userRepo.Create(ctx, user))

	for i := 0; i < 2; i++ {
		_, err := uc.Login(ctx, "jane@example.com", "wrong", "203.0.113.7")
		assert.True(t, domain.IsAuthorization(err))
	}

	// the configured limit of two applies, not the default of five
	_, err := uc.Login(ctx, "jane@example.com", "s3cret-pw", "203.0.113.7")
	assert.True(t, domain.IsAuthorization(err))
	assert.Equal(t, 2, limiter.counts["login:user:jane@example.com"])
}

func TestAuthUseCase_LoginValidation(t *testing.T) {
	uc, _, auditRepo, _ := newAuthFixture(t)

	_, err := uc.Login(context.Background(), "", "", "203.0.113.7")
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, auditRepo.entries, "empty credentials are not worth an audit entry")
}

func TestAuthUseCase_Logout(t *testing.T) {
	uc, _, auditRepo, _ := newAuthFixture(t)

	actor := domain.Actor{UserID: "user-1", Username: "jane@example.com"}
	uc.Logout(context.Background(), actor)

	logouts := auditRepo.byAction(domain.AuditActionUserLogout)
	require.Len(t, logouts, 1)
	assert.Equal(t, "user-1", logouts[0].UserID)
	assert.Equal(t, "user-1", logouts[0].EntityID)
}
