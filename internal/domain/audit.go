package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditActionType classifies a privileged action recorded in the audit log.
type AuditActionType string

const (
	AuditActionOrderCreate               AuditActionType = "ORDER_CREATE"
	AuditActionOrderUpdate               AuditActionType = "ORDER_UPDATE"
	AuditActionOrderDelete               AuditActionType = "ORDER_DELETE"
	AuditActionUserCreate                AuditActionType = "USER_CREATE"
	AuditActionUserUpdate                AuditActionType = "USER_UPDATE"
	AuditActionUserDelete                AuditActionType = "USER_DELETE"
	AuditActionUserRoleChange            AuditActionType = "USER_ROLE_CHANGE"
	AuditActionUserLogin                 AuditActionType = "USER_LOGIN"
	AuditActionUserLoginFailed           AuditActionType = "USER_LOGIN_FAILED"
	AuditActionUserLogout                AuditActionType = "USER_LOGOUT"
	AuditActionInvoiceCreate             AuditActionType = "INVOICE_CREATE"
	AuditActionInvoiceStatusUpdate       AuditActionType = "INVOICE_STATUS_UPDATE"
	AuditActionBillingSettingsUpdate     AuditActionType = "BILLING_SETTINGS_UPDATE"
	AuditActionClientRequestCreate       AuditActionType = "CLIENT_REQUEST_CREATE"
	AuditActionClientRequestStatusUpdate AuditActionType = "CLIENT_REQUEST_STATUS_UPDATE"
	AuditActionSubscriptionStatusUpdate  AuditActionType = "SUBSCRIPTION_STATUS_UPDATE"
	AuditActionSystemError               AuditActionType = "SYSTEM_ERROR"
	AuditActionUnknown                   AuditActionType = "UNKNOWN"
)

// AuditEntityType identifies which kind of entity an audit entry refers to.
type AuditEntityType string

const (
	AuditEntityOrder           AuditEntityType = "Order"
	AuditEntityUser            AuditEntityType = "User"
	AuditEntityInvoice         AuditEntityType = "Invoice"
	AuditEntityBillingSettings AuditEntityType = "BillingSettings"
	AuditEntityClientRequest   AuditEntityType = "ClientRequest"
	AuditEntitySubscription    AuditEntityType = "Subscription"
	AuditEntitySystem          AuditEntityType = "System"
	AuditEntityNone            AuditEntityType = "None"
)

// AuditLogEntry is one immutable record in the system-wide audit ledger.
// PreviousValue and NewValue may be scalars or structured values; they are
// persisted as JSON.
type AuditLogEntry struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	Username      string          `json:"username"`
	ActionType    AuditActionType `json:"action_type"`
	EntityType    AuditEntityType `json:"entity_type"`
	EntityID      string          `json:"entity_id,omitempty"`
	Details       string          `json:"details"`
	PreviousValue interface{}     `json:"previous_value,omitempty"`
	NewValue      interface{}     `json:"new_value,omitempty"`
}

// NewAuditLogEntry constructs an entry with a fresh id and current timestamp.
func NewAuditLogEntry(actor Actor, action AuditActionType, entityType AuditEntityType, entityID, details string, previous, next interface{}) *AuditLogEntry {
	return &AuditLogEntry{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		UserID:        actor.UserID,
		Username:      actor.Username,
		ActionType:    action,
		EntityType:    entityType,
		EntityID:      entityID,
		Details:       details,
		PreviousValue: previous,
		NewValue:      next,
	}
}

// AuditFilter represents conjunctive filters for querying the audit log.
// Date bounds are inclusive on both ends.
type AuditFilter struct {
	UserID     *string          `json:"user_id,omitempty"`
	ActionType *AuditActionType `json:"action_type,omitempty"`
	EntityType *AuditEntityType `json:"entity_type,omitempty"`
	EntityID   *string          `json:"entity_id,omitempty"`
	DateFrom   *time.Time       `json:"date_from,omitempty"`
	DateTo     *time.Time       `json:"date_to,omitempty"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}
