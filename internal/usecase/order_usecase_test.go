package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitel/oms/internal/adapter/events"
	"github.com/orbitel/oms/internal/domain"
)

var (
	adminActor = domain.Actor{UserID: "admin-1", Username: "admin@orbitel.co.za"}
	staffActor = domain.Actor{UserID: "staff-1", Username: "staff@orbitel.co.za"}
)

func newOrderFixture(t *testing.T) (*OrderUseCase, *memOrderRepo, *memAuditRepo) {
	t.Helper()
	orderRepo := newMemOrderRepo()
	auditRepo := newMemAuditRepo()
	audit := NewAuditUseCase(auditRepo, nil)
	uc := NewOrderUseCase(orderRepo, audit, events.NewDispatcher(nil), nil)
	return uc, orderRepo, auditRepo
}

func fibreOrderInput() CreateOrderInput {
	return CreateOrderInput{
		ClientName:          "Jane Smith",
		ClientEmail:         "jane@example.com",
		ClientContactNumber: "0821234567",
		ClientAddress:       "12 Main Road, Cape Town",
		ServiceType:         "Fibre",
		PackageName:         "Fibre 100/100",
	}
}

func TestOrderUseCase_Create(t *testing.T) {
	uc, _, auditRepo := newOrderFixture(t)

	order, err := uc.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusNew, order.Status)
	require.Len(t, order.ActivityLog, 1)
	assert.Equal(t, "Order created by Jane Smith.", order.ActivityLog[0].Text)

	created := auditRepo.byAction(domain.AuditActionOrderCreate)
	require.Len(t, created, 1)
	assert.Equal(t, string(domain.AuditEntityOrder), string(created[0].EntityType))
	assert.Equal(t, order.ID, created[0].EntityID)
	assert.Equal(t, adminActor.UserID, created[0].UserID)
}

func TestOrderUseCase_CreateValidation(t *testing.T) {
	uc, _, auditRepo := newOrderFixture(t)

	input := fibreOrderInput()
	input.ClientEmail = ""
	_, err := uc.Create(context.Background(), input, adminActor)

	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, auditRepo.entries, "failed creates must not be audited")
}

func TestOrderUseCase_UpdatePerFieldActivity(t *testing.T) {
	uc, _, auditRepo := newOrderFixture(t)
	order, err := uc.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	status := domain.OrderStatusUnderReview
	notes := "awaiting site survey"
	ref := "VISP-4471"
	updated, err := uc.Update(context.Background(), order.ID, domain.OrderUpdate{
		Status:          &status,
		Notes:           &notes,
		VISPReferenceID: &ref,
	}, staffActor, domain.RoleStaff)
	require.NoError(t, err)

	// creation entry plus one entry per changed field
	require.Len(t, updated.ActivityLog, 4)
	assert.Equal(t, "Status changed from NEW to UNDER_REVIEW.", updated.ActivityLog[1].Text)
	assert.Equal(t, "Notes updated.", updated.ActivityLog[2].Text)
	assert.Equal(t, "VISP Reference ID updated to VISP-4471.", updated.ActivityLog[3].Text)

	updates := auditRepo.byAction(domain.AuditActionOrderUpdate)
	require.Len(t, updates, 1, "a multi-field update must emit exactly one audit entry")
	assert.NotNil(t, updates[0].PreviousValue)
}

func TestOrderUseCase_NoOpUpdate(t *testing.T) {
	uc, orderRepo, auditRepo := newOrderFixture(t)
	order, err := uc.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	sameNotes := order.Notes
	sameStatus := order.Status
	updated, err := uc.Update(context.Background(), order.ID, domain.OrderUpdate{
		Notes:  &sameNotes,
		Status: &sameStatus,
	}, staffActor, domain.RoleStaff)
	require.NoError(t, err)

	assert.Len(t, updated.ActivityLog, 1, "no-op update must not append activity entries")
	assert.True(t, updated.UpdatedAt.Equal(order.UpdatedAt), "no-op update must not bump UpdatedAt")
	assert.Zero(t, orderRepo.updateCalls, "no-op update must not hit the store")

	updates := auditRepo.byAction(domain.AuditActionOrderUpdate)
	assert.Len(t, updates, 1, "even a no-op update is audited")
}

func TestOrderUseCase_StaleWriteConflict(t *testing.T) {
	uc, orderRepo, _ := newOrderFixture(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, fibreOrderInput(), adminActor)
	require.NoError(t, err)

	// a second writer loads the order before the first write lands
	stale, err := orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	first := "installation booked"
	_, err = uc.Update(ctx, order.ID, domain.OrderUpdate{Notes: &first}, staffActor, domain.RoleStaff)
	require.NoError(t, err)

	stale.Notes = "stale write"
	err = orderRepo.Update(ctx, stale)
	assert.True(t, domain.IsConflict(err), "a write against a superseded version must conflict")

	current, err := orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "installation booked", current.Notes, "the losing write must not be persisted")
}

func TestOrderUseCase_InvalidStatusRejected(t *testing.T) {
	uc, _, _ := newOrderFixture(t)
	order, err := uc.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	bad := domain.OrderStatus("PENDING")
	_, err = uc.Update(context.Background(), order.ID, domain.OrderUpdate{Status: &bad}, staffActor, domain.RoleStaff)
	assert.True(t, domain.IsValidation(err))
}

func TestOrderUseCase_ClientAccess(t *testing.T) {
	uc, _, _ := newOrderFixture(t)
	order, err := uc.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	owner := domain.Actor{UserID: "client-1", Username: "jane@example.com"}
	stranger := domain.Actor{UserID: "client-2", Username: "bob@example.com"}

	t.Run("owner may edit own notes", func(t *testing.T) {
		notes := "please install after 14:00"
		updated, err := uc.Update(context.Background(), order.ID, domain.OrderUpdate{Notes: &notes}, owner, domain.RoleClient)
		require.NoError(t, err)
		assert.Equal(t, notes, updated.Notes)
	})

	t.Run("owner may not change status", func(t *testing.T) {
		status := domain.OrderStatusCompleted
		_, err := uc.Update(context.Background(), order.ID, domain.OrderUpdate{Status: &status}, owner, domain.RoleClient)
		assert.True(t, domain.IsAuthorization(err))
	})

	t.Run("stranger may not touch the order", func(t *testing.T) {
		notes := "hijack"
		_, err := uc.Update(context.Background(), order.ID, domain.OrderUpdate{Notes: &notes}, stranger, domain.RoleClient)
		assert.True(t, domain.IsAuthorization(err))
	})

	t.Run("stranger may not read the order", func(t *testing.T) {
		_, err := uc.Get(context.Background(), order.ID, stranger, domain.RoleClient)
		assert.True(t, domain.IsAuthorization(err))
	})
}

func TestOrderUseCase_ClientListScopedToOwnOrders(t *testing.T) {
	uc, _, _ := newOrderFixture(t)

	_, err := uc.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	other := fibreOrderInput()
	other.ClientEmail = "bob@example.com"
	other.ClientName = "Bob Jones"
	_, err = uc.Create(context.Background(), other, adminActor)
	require.NoError(t, err)

	client := domain.Actor{UserID: "client-1", Username: "jane@example.com"}

	// a client asking for someone else's orders still only sees their own
	foreign := "bob@example.com"
	orders, total, err := uc.List(context.Background(), domain.OrderFilter{ClientEmail: &foreign}, 1, 20, client, domain.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "jane@example.com", orders[0].Client.Email)

	// staff see everything
	all, total, err := uc.List(context.Background(), domain.OrderFilter{}, 1, 20, staffActor, domain.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}

func TestOrderUseCase_Delete(t *testing.T) {
	uc, _, auditRepo := newOrderFixture(t)
	order, err := uc.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	client := domain.Actor{UserID: "client-1", Username: "jane@example.com"}
	err = uc.Delete(context.Background(), order.ID, client, domain.RoleClient)
	assert.True(t, domain.IsAuthorization(err))

	require.NoError(t, uc.Delete(context.Background(), order.ID, adminActor, domain.RoleAdmin))

	_, err = uc.Get(context.Background(), order.ID, adminActor, domain.RoleAdmin)
	assert.True(t, domain.IsNotFound(err))

	deleted := auditRepo.byAction(domain.AuditActionOrderDelete)
	require.Len(t, deleted, 1)
	assert.NotNil(t, deleted[0].PreviousValue, "the deleted order must be snapshotted in the audit entry")
}

func TestOrderUseCase_CompletionDerivesSubscription(t *testing.T) {
	orderRepo := newMemOrderRepo()
	auditRepo := newMemAuditRepo()
	subscriptionRepo := newMemSubscriptionRepo()
	dispatcher := events.NewDispatcher(nil)
	audit := NewAuditUseCase(auditRepo, nil)
	orders := NewOrderUseCase(orderRepo, audit, dispatcher, nil)
	NewSubscriptionUseCase(subscriptionRepo, audit, dispatcher, nil)

	order, err := orders.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	status := domain.OrderStatusCompleted
	_, err = orders.Update(context.Background(), order.ID, domain.OrderUpdate{Status: &status}, staffActor, domain.RoleStaff)
	require.NoError(t, err)

	subs, err := subscriptionRepo.List(context.Background(), domain.SubscriptionFilter{OrderID: &order.ID})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "jane@example.com", subs[0].ClientID)
	assert.Equal(t, domain.SubscriptionStatusActive, subs[0].Status)
	assert.Equal(t, domain.BillingCycleMonthly, subs[0].Cycle)

	// completing again must not derive a second subscription
	review := domain.OrderStatusUnderReview
	_, err = orders.Update(context.Background(), order.ID, domain.OrderUpdate{Status: &review}, staffActor, domain.RoleStaff)
	require.NoError(t, err)
	_, err = orders.Update(context.Background(), order.ID, domain.OrderUpdate{Status: &status}, staffActor, domain.RoleStaff)
	require.NoError(t, err)

	subs, err = subscriptionRepo.List(context.Background(), domain.SubscriptionFilter{OrderID: &order.ID})
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestOrderUseCase_ProfileCascade(t *testing.T) {
	orderRepo := newMemOrderRepo()
	auditRepo := newMemAuditRepo()
	userRepo := newMemUserRepo()
	dispatcher := events.NewDispatcher(nil)
	audit := NewAuditUseCase(auditRepo, nil)
	orders := NewOrderUseCase(orderRepo, audit, dispatcher, nil)
	users := NewUserUseCase(userRepo, &fakePasswordService{}, audit, dispatcher, nil)

	clientUser := domain.NewUser("jane@example.com", "hashed:pw", domain.RoleClient)
	clientUser.Name = "Jane Smith"
	require.NoError(t, userRepo.Create(context.Background(), clientUser))

	open, err := orders.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)

	done, err := orders.Create(context.Background(), fibreOrderInput(), adminActor)
	require.NoError(t, err)
	status := domain.OrderStatusCompleted
	_, err = orders.Update(context.Background(), done.ID, domain.OrderUpdate{Status: &status}, staffActor, domain.RoleStaff)
	require.NoError(t, err)

	name := "Jane Doe"
	contact := "0837654321"
	actor := domain.Actor{UserID: clientUser.ID, Username: clientUser.Username}
	_, err = users.UpdateProfile(context.Background(), clientUser.ID, domain.ProfileUpdate{
		Name:          &name,
		ContactNumber: &contact,
	}, actor, domain.RoleClient)
	require.NoError(t, err)

	refreshed, err := orderRepo.FindByID(context.Background(), open.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", refreshed.Client.Name)
	assert.Equal(t, "0837654321", refreshed.Client.ContactNumber)

	terminal, err := orderRepo.FindByID(context.Background(), done.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", terminal.Client.Name, "terminal orders are left out of the cascade")
}
