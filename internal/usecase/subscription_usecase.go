package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// cyclePrices is the per-cycle price applied when a subscription is derived
// from a completed order. Hosting prices are annual.
var cyclePrices = map[string]float64{
	"Fibre":          599,
	"LTE":            199,
	"ADSL":           449,
	"Web Hosting":    129,
	"Domain Hosting": 99,
}

// SubscriptionUseCase manages recurring subscriptions. New subscriptions are
// derived automatically when an order for a recurring service completes.
type SubscriptionUseCase struct {
	subscriptionRepo ports.SubscriptionRepository
	audit            *AuditUseCase
	logger           *logrus.Logger
}

// NewSubscriptionUseCase creates the subscription use case and subscribes it
// to order completion events.
func NewSubscriptionUseCase(subscriptionRepo ports.SubscriptionRepository, audit *AuditUseCase, events ports.EventPublisher, logger *logrus.Logger) *SubscriptionUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	uc := &SubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		audit:            audit,
		logger:           logger,
	}
	if events != nil {
		events.Subscribe(ports.EventOrderCompleted, uc.handleOrderCompleted)
	}
	return uc
}

// handleOrderCompleted derives a subscription from a completed order for
// recurring service types, once per order.
func (uc *SubscriptionUseCase) handleOrderCompleted(ctx context.Context, event ports.Event) error {
	order, ok := event.Payload.(*domain.Order)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s event", event.Type)
	}
	if !domain.IsRecurringService(order.ServiceType) {
		return nil
	}

	orderID := order.ID
	existing, err := uc.subscriptionRepo.List(ctx, domain.SubscriptionFilter{OrderID: &orderID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	subscription := domain.NewSubscriptionFromOrder(order, cyclePrices[order.ServiceType])
	if err := uc.subscriptionRepo.Create(ctx, subscription); err != nil {
		return err
	}
	uc.logger.WithFields(logrus.Fields{
		"subscription_id": subscription.ID,
		"order_id":        order.ID,
		"service_type":    order.ServiceType,
	}).Info("Subscription derived from completed order")
	return nil
}

// UpdateStatus moves a subscription to a new status. Staff only.
func (uc *SubscriptionUseCase) UpdateStatus(ctx context.Context, subscriptionID string, status domain.SubscriptionStatus, actor domain.Actor, role domain.Role) (*domain.Subscription, error) {
	if !role.Can(domain.CapManageSubscriptions) {
		return nil, domain.NewAuthorizationError("only staff may update subscription status")
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("invalid subscription status: %s", status)
	}

	subscription, err := uc.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	previous := subscription.Status
	if previous == status {
		return subscription, nil
	}
	subscription.SetStatus(status)
	if err := uc.subscriptionRepo.Update(ctx, subscription); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionSubscriptionStatusUpdate, domain.AuditEntitySubscription, subscription.ID,
		fmt.Sprintf("Subscription for %s moved from %s to %s.", subscription.PackageName, previous, status), previous, status)

	return subscription, nil
}

// RequestCancellation lets the owning client flag a subscription for
// cancellation at the end of the current cycle.
func (uc *SubscriptionUseCase) RequestCancellation(ctx context.Context, subscriptionID string, actor domain.Actor, role domain.Role) (*domain.Subscription, error) {
	subscription, err := uc.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !role.Elevated() && !actor.Owns(subscription.ClientID) {
		return nil, domain.NewAuthorizationError("access denied")
	}
	if subscription.Status != domain.SubscriptionStatusActive {
		return nil, domain.NewValidationError("only active subscriptions can be cancelled")
	}

	previous := subscription.Status
	subscription.SetStatus(domain.SubscriptionStatusPendingCancellation)
	if err := uc.subscriptionRepo.Update(ctx, subscription); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionSubscriptionStatusUpdate, domain.AuditEntitySubscription, subscription.ID,
		fmt.Sprintf("Cancellation requested for subscription %s.", subscription.ID), previous, subscription.Status)

	return subscription, nil
}

// Get returns one subscription, scoped to the owning client for non-staff.
func (uc *SubscriptionUseCase) Get(ctx context.Context, subscriptionID string, actor domain.Actor, role domain.Role) (*domain.Subscription, error) {
	subscription, err := uc.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !role.Elevated() && !actor.Owns(subscription.ClientID) {
		return nil, domain.NewAuthorizationError("access denied")
	}
	return subscription, nil
}

// List returns a page of subscriptions plus the total count. Client actors
// are forcibly scoped to their own subscriptions.
func (uc *SubscriptionUseCase) List(ctx context.Context, filter domain.SubscriptionFilter, page, pageSize int, actor domain.Actor, role domain.Role) ([]*domain.Subscription, int, error) {
	if !role.Elevated() {
		clientID := actor.Username
		filter.ClientID = &clientID
	}
	filter.Limit, filter.Offset = paginate(page, pageSize)

	subscriptions, err := uc.subscriptionRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.subscriptionRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return subscriptions, total, nil
}
