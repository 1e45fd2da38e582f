package ports

import (
	"context"

	"github.com/orbitel/oms/internal/domain"
)

// OrderRepository defines the interface for order persistence. The activity
// log travels with its order as one aggregate.
type OrderRepository interface {
	// Create saves a new order
	Create(ctx context.Context, order *domain.Order) error

	// FindByID retrieves an order by its ID
	FindByID(ctx context.Context, id string) (*domain.Order, error)

	// Update persists the order if its stored version still matches
	// order.Version, then bumps the version. A stale version yields a
	// ConflictError, a missing row a NotFoundError.
	Update(ctx context.Context, order *domain.Order) error

	// Delete removes an order permanently
	Delete(ctx context.Context, id string) error

	// List retrieves orders matching the filter, newest-created first
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter domain.OrderFilter) (int, error)
}

// AuditRepository defines the interface for the append-only audit ledger.
// There is deliberately no update or delete.
type AuditRepository interface {
	// Create appends a new audit entry
	Create(ctx context.Context, entry *domain.AuditLogEntry) error

	// List retrieves audit entries matching the filter, newest first
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error)

	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter domain.AuditFilter) (int, error)
}

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
	Count(ctx context.Context) (int, error)
}

// RequestRepository defines the interface for client request persistence.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ClientRequest) error
	FindByID(ctx context.Context, id string) (*domain.ClientRequest, error)
	Update(ctx context.Context, request *domain.ClientRequest) error
	List(ctx context.Context, filter domain.RequestFilter) ([]*domain.ClientRequest, error)
	Count(ctx context.Context, filter domain.RequestFilter) (int, error)
}

// SubscriptionRepository defines the interface for subscription persistence.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *domain.Subscription) error
	FindByID(ctx context.Context, id string) (*domain.Subscription, error)
	Update(ctx context.Context, subscription *domain.Subscription) error
	List(ctx context.Context, filter domain.SubscriptionFilter) ([]*domain.Subscription, error)
	Count(ctx context.Context, filter domain.SubscriptionFilter) (int, error)
}

// InvoiceRepository defines the interface for invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error)
	Count(ctx context.Context, filter domain.InvoiceFilter) (int, error)
}

// BillingSettingsRepository persists the single billing settings row.
type BillingSettingsRepository interface {
	// Get returns the stored settings, or the defaults when none are saved
	Get(ctx context.Context) (domain.BillingSettings, error)

	// Save replaces the stored settings
	Save(ctx context.Context, settings domain.BillingSettings) error
}
