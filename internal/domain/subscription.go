package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the lifecycle status of a recurring subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive              SubscriptionStatus = "Active"
	SubscriptionStatusCancelled           SubscriptionStatus = "Cancelled"
	SubscriptionStatusPendingCancellation SubscriptionStatus = "Pending Cancellation"
	SubscriptionStatusExpired             SubscriptionStatus = "Expired"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusCancelled,
		SubscriptionStatusPendingCancellation, SubscriptionStatusExpired:
		return true
	}
	return false
}

// BillingCycle is the renewal cadence of a subscription.
type BillingCycle string

const (
	BillingCycleMonthly  BillingCycle = "Monthly"
	BillingCycleAnnually BillingCycle = "Annually"
)

// Subscription is a recurring service derived from a completed order.
// ClientID is the client's email address.
type Subscription struct {
	ID            string             `json:"id"`
	ClientID      string             `json:"client_id"`
	OrderID       string             `json:"order_id"`
	ServiceType   string             `json:"service_type"`
	PackageName   string             `json:"package_name"`
	StartDate     time.Time          `json:"start_date"`
	RenewalDate   *time.Time         `json:"renewal_date,omitempty"`
	Status        SubscriptionStatus `json:"status"`
	PricePerCycle float64            `json:"price_per_cycle,omitempty"`
	Cycle         BillingCycle       `json:"cycle,omitempty"`
}

// recurringServiceTypes lists the service types that carry a subscription.
var recurringServiceTypes = map[string]bool{
	"Fibre":          true,
	"LTE":            true,
	"ADSL":           true,
	"Web Hosting":    true,
	"Domain Hosting": true,
}

// IsRecurringService reports whether the service type is subscription-based.
func IsRecurringService(serviceType string) bool {
	return recurringServiceTypes[serviceType]
}

// NewSubscriptionFromOrder derives an active subscription from an order.
// Hosting services bill annually, connectivity services monthly.
func NewSubscriptionFromOrder(order *Order, pricePerCycle float64) *Subscription {
	cycle := BillingCycleMonthly
	if order.ServiceType == "Web Hosting" || order.ServiceType == "Domain Hosting" {
		cycle = BillingCycleAnnually
	}

	start := order.CreatedAt
	renewal := nextRenewal(start, cycle)
	return &Subscription{
		ID:            uuid.NewString(),
		ClientID:      order.Client.Email,
		OrderID:       order.ID,
		ServiceType:   order.ServiceType,
		PackageName:   order.PackageName,
		StartDate:     start,
		RenewalDate:   &renewal,
		Status:        SubscriptionStatusActive,
		PricePerCycle: pricePerCycle,
		Cycle:         cycle,
	}
}

// SetStatus moves the subscription to the given status. Terminal statuses
// clear the renewal date.
func (s *Subscription) SetStatus(status SubscriptionStatus) {
	s.Status = status
	if status == SubscriptionStatusCancelled || status == SubscriptionStatusExpired {
		s.RenewalDate = nil
	}
}

func nextRenewal(start time.Time, cycle BillingCycle) time.Time {
	now := time.Now().UTC()
	renewal := start
	for !renewal.After(now) {
		if cycle == BillingCycleAnnually {
			renewal = renewal.AddDate(1, 0, 0)
		} else {
			renewal = renewal.AddDate(0, 1, 0)
		}
	}
	return renewal
}

// SubscriptionFilter represents filters for listing subscriptions.
type SubscriptionFilter struct {
	ClientID *string             `json:"client_id,omitempty"`
	Status   *SubscriptionStatus `json:"status,omitempty"`
	OrderID  *string             `json:"order_id,omitempty"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}
