package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// CreateUserInput carries the fields for a new account. Client usernames are
// email addresses; profile fields only apply to client accounts.
type CreateUserInput struct {
	Username      string      `json:"username"`
	Password      string      `json:"password"`
	Role          domain.Role `json:"role"`
	Name          string      `json:"name,omitempty"`
	ContactNumber string      `json:"contact_number,omitempty"`
	Address       string      `json:"address,omitempty"`
	IDNumber      string      `json:"id_number,omitempty"`
}

// UserUseCase manages accounts and client profiles. Profile edits on client
// accounts publish a ClientProfileUpdated event so open orders stay in sync.
type UserUseCase struct {
	userRepo  ports.UserRepository
	passwords ports.PasswordService
	audit     *AuditUseCase
	events    ports.EventPublisher
	logger    *logrus.Logger
}

// NewUserUseCase creates a new user use case.
func NewUserUseCase(userRepo ports.UserRepository, passwords ports.PasswordService, audit *AuditUseCase, events ports.EventPublisher, logger *logrus.Logger) *UserUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserUseCase{
		userRepo:  userRepo,
		passwords: passwords,
		audit:     audit,
		events:    events,
		logger:    logger,
	}
}

// Create registers an account. Anyone may self-register a client account;
// creating staff or admin accounts requires the role-change capability.
func (uc *UserUseCase) Create(ctx context.Context, input CreateUserInput, actor domain.Actor, actorRole domain.Role) (*domain.User, error) {
	if input.Username == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if len(input.Password) < 8 {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}
	if input.Role == "" {
		input.Role = domain.RoleClient
	}
	if !input.Role.Valid() {
		return nil, domain.NewValidationError("invalid role: %s", input.Role)
	}
	if input.Role != domain.RoleClient && !actorRole.Can(domain.CapChangeUserRole) {
		return nil, domain.NewAuthorizationError("only an admin may create staff accounts")
	}
	if input.Role == domain.RoleClient && !strings.Contains(input.Username, "@") {
		return nil, domain.NewValidationError("client username must be an email address")
	}

	if existing, err := uc.userRepo.FindByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, domain.NewConflictError("username %s is already taken", input.Username)
	} else if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}

	hash, err := uc.passwords.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(input.Username, hash, input.Role)
	user.Name = input.Name
	user.ContactNumber = input.ContactNumber
	user.Address = input.Address
	user.IDNumber = input.IDNumber

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Self-registration is attributed to the new account itself.
	if actor.UserID == "" {
		actor = domain.Actor{UserID: user.ID, Username: user.Username}
	}
	uc.audit.Record(ctx, actor, domain.AuditActionUserCreate, domain.AuditEntityUser, user.ID,
		fmt.Sprintf("User %s created with role %s.", user.Username, user.Role), nil, user)

	return user, nil
}

// UpdateProfile applies a partial profile update. Clients may only edit their
// own profile; staff may edit any. Client profile changes are propagated to
// the client's open orders through the event bus.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate, actor domain.Actor, actorRole domain.Role) (*domain.User, error) {
	if actor.UserID != userID && !actorRole.Can(domain.CapManageUsers) {
		return nil, domain.NewAuthorizationError("access denied")
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.Profile()
	if !user.ApplyProfile(update) {
		return user, nil
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionUserUpdate, domain.AuditEntityUser, user.ID,
		fmt.Sprintf("Profile updated for %s.", user.Username), previous, user.Profile())

	if user.Role == domain.RoleClient && uc.events != nil {
		profile := user.Profile()
		profile.PreviousEmail = previous.Email
		if err := uc.events.Publish(ctx, ports.NewEvent(ports.EventClientProfileUpdated, profile)); err != nil {
			uc.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to publish client profile updated event")
		}
	}

	return user, nil
}

// ChangeRole moves a user to a different role tier. Admin-only.
func (uc *UserUseCase) ChangeRole(ctx context.Context, userID string, role domain.Role, actor domain.Actor, actorRole domain.Role) (*domain.User, error) {
	if !actorRole.Can(domain.CapChangeUserRole) {
		return nil, domain.NewAuthorizationError("only an admin may change user roles")
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("invalid role: %s", role)
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := user.Role
	if previous == role {
		return user, nil
	}
	user.Role = role
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionUserRoleChange, domain.AuditEntityUser, user.ID,
		fmt.Sprintf("Role changed for %s from %s to %s.", user.Username, previous, role), previous, role)

	return user, nil
}

// Delete removes an account permanently. Admin-only; the deleted account is
// snapshotted into the audit entry.
func (uc *UserUseCase) Delete(ctx context.Context, userID string, actor domain.Actor, actorRole domain.Role) error {
	if !actorRole.Can(domain.CapDeleteUser) {
		return domain.NewAuthorizationError("only an admin may delete users")
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionUserDelete, domain.AuditEntityUser, userID,
		fmt.Sprintf("User %s deleted.", user.Username), user, nil)

	return nil
}

// Get returns one account: staff see any, others only themselves.
func (uc *UserUseCase) Get(ctx context.Context, userID string, actor domain.Actor, actorRole domain.Role) (*domain.User, error) {
	if actor.UserID != userID && !actorRole.Can(domain.CapManageUsers) {
		return nil, domain.NewAuthorizationError("access denied")
	}
	return uc.userRepo.FindByID(ctx, userID)
}

// List returns a page of accounts plus the total count. Staff only.
func (uc *UserUseCase) List(ctx context.Context, page, pageSize int, actorRole domain.Role) ([]*domain.User, int, error) {
	if !actorRole.Can(domain.CapManageUsers) {
		return nil, 0, domain.NewAuthorizationError("access denied")
	}
	limit, offset := paginate(page, pageSize)
	users, err := uc.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
