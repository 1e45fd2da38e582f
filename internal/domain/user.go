package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account: staff/admin console users and portal clients.
// Client usernames are their email addresses. Profile fields are only set for
// client accounts.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	Name          string    `json:"name,omitempty"`
	ContactNumber string    `json:"contact_number,omitempty"`
	Address       string    `json:"address,omitempty"`
	IDNumber      string    `json:"id_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser creates a user account.
func NewUser(username, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ClientProfile is the profile payload of a client account. It is the payload
// of the ClientProfileUpdated event that drives the order snapshot cascade.
type ClientProfile struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	IDNumber      string `json:"id_number,omitempty"`
	// PreviousEmail keys the cascade lookup when the email itself changed.
	PreviousEmail string `json:"previous_email"`
}

// Profile returns the client profile view of the user.
func (u *User) Profile() ClientProfile {
	return ClientProfile{
		UserID:        u.ID,
		Name:          u.Name,
		Email:         u.Username,
		ContactNumber: u.ContactNumber,
		Address:       u.Address,
		IDNumber:      u.IDNumber,
		PreviousEmail: u.Username,
	}
}

// ProfileUpdate is a partial update of a client profile.
type ProfileUpdate struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty"`
	ContactNumber *string `json:"contact_number,omitempty"`
	Address       *string `json:"address,omitempty"`
	IDNumber      *string `json:"id_number,omitempty"`
}

// ApplyProfile applies the changed fields of the payload and reports whether
// anything changed.
func (u *User) ApplyProfile(p ProfileUpdate) bool {
	changed := false
	if p.Name != nil && *p.Name != u.Name {
		u.Name = *p.Name
		changed = true
	}
	if p.Email != nil && *p.Email != u.Username {
		u.Username = *p.Email
		changed = true
	}
	if p.ContactNumber != nil && *p.ContactNumber != u.ContactNumber {
		u.ContactNumber = *p.ContactNumber
		changed = true
	}
	if p.Address != nil && *p.Address != u.Address {
		u.Address = *p.Address
		changed = true
	}
	if p.IDNumber != nil && *p.IDNumber != u.IDNumber {
		u.IDNumber = *p.IDNumber
		changed = true
	}
	if changed {
		u.UpdatedAt = time.Now().UTC()
	}
	return changed
}
