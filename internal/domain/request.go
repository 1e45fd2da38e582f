package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestCategory classifies a client support request.
type RequestCategory string

const (
	RequestCategorySupport        RequestCategory = "Support"
	RequestCategoryBillingInquiry RequestCategory = "Billing Inquiry"
	RequestCategoryServiceUpgrade RequestCategory = "Service Upgrade"
	RequestCategoryGeneral        RequestCategory = "General Question"
)

func (c RequestCategory) Valid() bool {
	switch c {
	case RequestCategorySupport, RequestCategoryBillingInquiry,
		RequestCategoryServiceUpgrade, RequestCategoryGeneral:
		return true
	}
	return false
}

// RequestStatus is the lifecycle status of a client request.
type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "Open"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusResolved   RequestStatus = "Resolved"
	RequestStatusClosed     RequestStatus = "Closed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusInProgress, RequestStatusResolved, RequestStatusClosed:
		return true
	}
	return false
}

// ClientRequest is a support request submitted through the client portal.
// ClientID is the client's email address.
type ClientRequest struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id"`
	Subject       string          `json:"subject"`
	Description   string          `json:"description"`
	Category      RequestCategory `json:"category"`
	Status        RequestStatus   `json:"status"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	LastUpdatedAt time.Time       `json:"last_updated_at"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
}

// NewClientRequest creates a request in status Open.
func NewClientRequest(clientID, subject, description string, category RequestCategory) *ClientRequest {
	now := time.Now().UTC()
	return &ClientRequest{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		Subject:       subject,
		Description:   description,
		Category:      category,
		Status:        RequestStatusOpen,
		SubmittedAt:   now,
		LastUpdatedAt: now,
	}
}

// SetStatus moves the request to the given status, stamping ResolvedAt when
// it first becomes Resolved.
func (r *ClientRequest) SetStatus(status RequestStatus) {
	now := time.Now().UTC()
	if status == RequestStatusResolved && r.Status != RequestStatusResolved {
		r.ResolvedAt = &now
	}
	r.Status = status
	r.LastUpdatedAt = now
}

// RequestFilter represents filters for listing client requests.
type RequestFilter struct {
	ClientID *string          `json:"client_id,omitempty"`
	Status   *RequestStatus   `json:"status,omitempty"`
	Category *RequestCategory `json:"category,omitempty"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}
