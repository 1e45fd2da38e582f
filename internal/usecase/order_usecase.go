package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// CreateOrderInput carries the fields needed to place a new order. The client
// fields become the order's embedded client snapshot.
type CreateOrderInput struct {
	ClientName          string `json:"client_name"`
	ClientEmail         string `json:"client_email"`
	ClientContactNumber string `json:"client_contact_number"`
	ClientAddress       string `json:"client_address"`
	ClientIDNumber      string `json:"client_id_number,omitempty"`
	ServiceType         string `json:"service_type"`
	PackageName         string `json:"package_name"`
	Notes               string `json:"notes,omitempty"`
}

// OrderUseCase owns every state-changing operation on orders. Each mutation
// appends to the order's own activity log and emits exactly one audit entry.
type OrderUseCase struct {
	orderRepo ports.OrderRepository
	audit     *AuditUseCase
	events    ports.EventPublisher
	logger    *logrus.Logger
}

// NewOrderUseCase creates the order use case and subscribes it to client
// profile updates so that open orders track profile edits.
func NewOrderUseCase(orderRepo ports.OrderRepository, audit *AuditUseCase, events ports.EventPublisher, logger *logrus.Logger) *OrderUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	uc := &OrderUseCase{
		orderRepo: orderRepo,
		audit:     audit,
		events:    events,
		logger:    logger,
	}
	if events != nil {
		events.Subscribe(ports.EventClientProfileUpdated, uc.handleClientProfileUpdated)
	}
	return uc
}

// Create places a new order in status NEW with a single creation entry in its
// activity log and records an ORDER_CREATE audit entry.
func (uc *OrderUseCase) Create(ctx context.Context, input CreateOrderInput, actor domain.Actor) (*domain.Order, error) {
	if err := validateCreateOrder(input); err != nil {
		return nil, err
	}

	client := domain.Client{
		Name:          input.ClientName,
		Email:         input.ClientEmail,
		ContactNumber: input.ClientContactNumber,
		Address:       input.ClientAddress,
		IDNumber:      input.ClientIDNumber,
	}
	order := domain.NewOrder(client, input.ServiceType, input.PackageName, input.Notes, actor.Username)

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionOrderCreate, domain.AuditEntityOrder, order.ID,
		fmt.Sprintf("Order created for %s (%s - %s).", client.Name, order.ServiceType, order.PackageName),
		nil, order)

	return order, nil
}

// Update applies a partial update to an order. Clients may only touch their
// own orders and never the status; every changed field gets its own activity
// entry. The call emits exactly one ORDER_UPDATE audit entry carrying the full
// requested diff, even when nothing effectively changed.
func (uc *OrderUseCase) Update(ctx context.Context, orderID string, update domain.OrderUpdate, actor domain.Actor, role domain.Role) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !role.Can(domain.CapChangeOrderStatus) {
		if !actor.Owns(order.Client.Email) {
			return nil, domain.NewAuthorizationError("access denied")
		}
		if update.HasStatus() {
			return nil, domain.NewAuthorizationError("only staff may change order status")
		}
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, domain.NewValidationError("invalid order status: %s", *update.Status)
	}

	previous := snapshotRequestedFields(order, update)
	statusBefore := order.Status

	changed := order.Apply(update, actor.Username)
	if changed > 0 {
		if err := uc.orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
	}

	uc.audit.Record(ctx, actor, domain.AuditActionOrderUpdate, domain.AuditEntityOrder, order.ID,
		fmt.Sprintf("Order %s updated (%d field(s) changed).", order.ID, changed),
		previous, update)

	if statusBefore != domain.OrderStatusCompleted && order.Status == domain.OrderStatusCompleted && uc.events != nil {
		if err := uc.events.Publish(ctx, ports.NewEvent(ports.EventOrderCompleted, order)); err != nil {
			uc.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to publish order completed event")
		}
	}

	return order, nil
}

// Delete permanently removes an order. A snapshot of the deleted order is
// kept in the audit entry since the row itself is gone.
func (uc *OrderUseCase) Delete(ctx context.Context, orderID string, actor domain.Actor, role domain.Role) error {
	if !role.Can(domain.CapDeleteOrder) {
		return domain.NewAuthorizationError("only staff may delete orders")
	}

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := uc.orderRepo.Delete(ctx, orderID); err != nil {
		return err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionOrderDelete, domain.AuditEntityOrder, orderID,
		fmt.Sprintf("Order %s for %s deleted.", orderID, order.Client.Name),
		order, nil)

	return nil
}

// Get returns a single order. Clients may only read orders whose embedded
// client email matches their own identity. Reads are not audited.
func (uc *OrderUseCase) Get(ctx context.Context, orderID string, actor domain.Actor, role domain.Role) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !role.Elevated() && !actor.Owns(order.Client.Email) {
		return nil, domain.NewAuthorizationError("access denied")
	}
	return order, nil
}

// List returns a page of orders plus the total filtered count, newest-created
// first. Client actors are forcibly scoped to their own orders regardless of
// the requested filter.
func (uc *OrderUseCase) List(ctx context.Context, filter domain.OrderFilter, page, pageSize int, actor domain.Actor, role domain.Role) ([]*domain.Order, int, error) {
	if !role.Elevated() {
		email := actor.Username
		filter.ClientEmail = &email
	}
	filter.Limit, filter.Offset = paginate(page, pageSize)

	orders, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// handleClientProfileUpdated propagates a client profile edit to the embedded
// client snapshot of the client's open orders, with activity entries and an
// audit record per touched order.
func (uc *OrderUseCase) handleClientProfileUpdated(ctx context.Context, event ports.Event) error {
	profile, ok := event.Payload.(domain.ClientProfile)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s event", event.Type)
	}

	email := profile.PreviousEmail
	orders, err := uc.orderRepo.List(ctx, domain.OrderFilter{ClientEmail: &email})
	if err != nil {
		return err
	}

	actor := domain.Actor{UserID: profile.UserID, Username: profile.Email}
	update := domain.OrderUpdate{
		ClientName:          &profile.Name,
		ClientEmail:         &profile.Email,
		ClientContactNumber: &profile.ContactNumber,
		ClientAddress:       &profile.Address,
	}

	for _, order := range orders {
		if order.Status.Terminal() {
			continue
		}
		previous := snapshotRequestedFields(order, update)
		if order.Apply(update, actor.Username) == 0 {
			continue
		}
		if err := uc.orderRepo.Update(ctx, order); err != nil {
			uc.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to sync client profile to order")
			continue
		}
		uc.audit.Record(ctx, actor, domain.AuditActionOrderUpdate, domain.AuditEntityOrder, order.ID,
			fmt.Sprintf("Order %s client details synced from profile update.", order.ID),
			previous, update)
	}
	return nil
}

func validateCreateOrder(input CreateOrderInput) error {
	switch {
	case input.ClientName == "":
		return domain.NewValidationError("client name is required")
	case input.ClientEmail == "":
		return domain.NewValidationError("client email is required")
	case input.ServiceType == "":
		return domain.NewValidationError("service type is required")
	case input.PackageName == "":
		return domain.NewValidationError("package name is required")
	}
	return nil
}

// snapshotRequestedFields captures the current values of every field named in
// the update payload, changed or not, for the audit record's previous-value
// context.
func snapshotRequestedFields(order *domain.Order, update domain.OrderUpdate) map[string]interface{} {
	previous := make(map[string]interface{})
	if update.Status != nil {
		previous["status"] = order.Status
	}
	if update.Notes != nil {
		previous["notes"] = order.Notes
	}
	if update.VISPReferenceID != nil {
		previous["visp_reference_id"] = order.VISPReferenceID
	}
	if update.ClientName != nil {
		previous["client_name"] = order.Client.Name
	}
	if update.ClientEmail != nil {
		previous["client_email"] = order.Client.Email
	}
	if update.ClientContactNumber != nil {
		previous["client_contact_number"] = order.Client.ContactNumber
	}
	if update.ClientAddress != nil {
		previous["client_address"] = order.Client.Address
	}
	return previous
}
