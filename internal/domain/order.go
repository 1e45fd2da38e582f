package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle status of a service order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusUnderReview     OrderStatus = "UNDER_REVIEW"
	OrderStatusSubmittedToVISP OrderStatus = "SUBMITTED_TO_VISP"
	OrderStatusCompleted       OrderStatus = "COMPLETED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// Valid reports whether the status is a member of the order status enum.
// No transition graph is enforced: any elevated actor may move an order to
// any status, matching the platform's permissive lifecycle.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusUnderReview, OrderStatusSubmittedToVISP,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the order has reached an end state. Used by the
// profile cascade, which only touches open orders.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Client is the snapshot of the ordering client embedded in each order at
// creation time. Later edits to these fields never flow back to the user
// profile; the reverse cascade (profile edit propagating to open orders) is
// handled by the ClientProfileUpdated event.
type Client struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	IDNumber      string `json:"id_number,omitempty"`
}

// ActivityLogEntry is one line of an order's append-only activity log.
// Entries are never mutated or removed after append.
type ActivityLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Actor     string    `json:"actor,omitempty"`
}

// Order represents a client's request for an ICT service tracked through the
// status lifecycle. Version backs the optimistic write check on updates.
type Order struct {
	ID              string             `json:"id"`
	Client          Client             `json:"client"`
	ServiceType     string             `json:"service_type"`
	PackageName     string             `json:"package_name"`
	Notes           string             `json:"notes,omitempty"`
	Status          OrderStatus        `json:"status"`
	VISPReferenceID string             `json:"visp_reference_id,omitempty"`
	Version         int                `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	ActivityLog     []ActivityLogEntry `json:"activity_log"`
}

// NewOrder creates an order in status NEW with a single creation entry in its
// activity log.
func NewOrder(client Client, serviceType, packageName, notes, actorLabel string) *Order {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order := &Order{
		ID:          uuid.NewString(),
		Client:      client,
		ServiceType: serviceType,
		PackageName: packageName,
		Notes:       notes,
		Status:      OrderStatusNew,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	order.AppendActivity(fmt.Sprintf("Order created by %s.", client.Name), actorLabel)
	return order
}

// AppendActivity appends one entry to the order's activity log.
func (o *Order) AppendActivity(text, actor string) {
	o.ActivityLog = append(o.ActivityLog, ActivityLogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Text:      text,
		Actor:     actor,
	})
}

// OrderUpdate is a partial update payload. Nil fields are left untouched.
type OrderUpdate struct {
	Status              *OrderStatus `json:"status,omitempty"`
	Notes               *string      `json:"notes,omitempty"`
	VISPReferenceID     *string      `json:"visp_reference_id,omitempty"`
	ClientName          *string      `json:"client_name,omitempty"`
	ClientEmail         *string      `json:"client_email,omitempty"`
	ClientContactNumber *string      `json:"client_contact_number,omitempty"`
	ClientAddress       *string      `json:"client_address,omitempty"`
}

// HasStatus reports whether the payload requests a status change.
func (u OrderUpdate) HasStatus() bool {
	return u.Status != nil
}

// Apply applies the changed fields of the payload to the order, appending one
// human-readable activity entry per field that actually changed. Returns the
// number of entries appended. UpdatedAt is refreshed only when at least one
// field changed; a no-op payload leaves the order untouched.
func (o *Order) Apply(u OrderUpdate, actorLabel string) int {
	changed := 0

	if u.ClientName != nil && *u.ClientName != o.Client.Name {
		o.AppendActivity(fmt.Sprintf("Client name updated from %q to %q.", o.Client.Name, *u.ClientName), actorLabel)
		o.Client.Name = *u.ClientName
		changed++
	}
	if u.ClientEmail != nil && *u.ClientEmail != o.Client.Email {
		o.AppendActivity(fmt.Sprintf("Client email updated from %q to %q.", o.Client.Email, *u.ClientEmail), actorLabel)
		o.Client.Email = *u.ClientEmail
		changed++
	}
	if u.ClientContactNumber != nil && *u.ClientContactNumber != o.Client.ContactNumber {
		o.AppendActivity("Client contact number updated.", actorLabel)
		o.Client.ContactNumber = *u.ClientContactNumber
		changed++
	}
	if u.ClientAddress != nil && *u.ClientAddress != o.Client.Address {
		o.AppendActivity("Client address updated.", actorLabel)
		o.Client.Address = *u.ClientAddress
		changed++
	}
	if u.Status != nil && *u.Status != o.Status {
		o.AppendActivity(fmt.Sprintf("Status changed from %s to %s.", o.Status, *u.Status), actorLabel)
		o.Status = *u.Status
		changed++
	}
	if u.Notes != nil && *u.Notes != o.Notes {
		o.AppendActivity("Notes updated.", actorLabel)
		o.Notes = *u.Notes
		changed++
	}
	if u.VISPReferenceID != nil && *u.VISPReferenceID != o.VISPReferenceID {
		o.AppendActivity(fmt.Sprintf("VISP Reference ID updated to %s.", *u.VISPReferenceID), actorLabel)
		o.VISPReferenceID = *u.VISPReferenceID
		changed++
	}

	if changed > 0 {
		o.UpdatedAt = time.Now().UTC()
	}
	return changed
}

// OrderFilter represents filters for listing orders.
type OrderFilter struct {
	Status      *OrderStatus `json:"status,omitempty"`
	ClientEmail *string      `json:"client_email,omitempty"`
	ServiceType *string      `json:"service_type,omitempty"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
}
