package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// InvoiceUseCase issues invoices for orders and tracks their payment status.
type InvoiceUseCase struct {
	invoiceRepo ports.InvoiceRepository
	orderRepo   ports.OrderRepository
	billingRepo ports.BillingSettingsRepository
	audit       *AuditUseCase
	logger      *logrus.Logger
}

// NewInvoiceUseCase creates a new invoice use case.
func NewInvoiceUseCase(invoiceRepo ports.InvoiceRepository, orderRepo ports.OrderRepository, billingRepo ports.BillingSettingsRepository, audit *AuditUseCase, logger *logrus.Logger) *InvoiceUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	return &InvoiceUseCase{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		billingRepo: billingRepo,
		audit:       audit,
		logger:      logger,
	}
}

// CreateForOrder issues an unpaid invoice for an order, applying the VAT rate
// from the billing settings. Staff only.
func (uc *InvoiceUseCase) CreateForOrder(ctx context.Context, orderID string, subTotal float64, actor domain.Actor, role domain.Role) (*domain.Invoice, error) {
	if !role.Can(domain.CapManageInvoices) {
		return nil, domain.NewAuthorizationError("only staff may issue invoices")
	}
	if subTotal <= 0 {
		return nil, domain.NewValidationError("invoice subtotal must be positive")
	}

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	settings, err := uc.billingRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	sequence, err := uc.invoiceRepo.Count(ctx, domain.InvoiceFilter{})
	if err != nil {
		return nil, err
	}

	invoice := domain.NewInvoice(order, subTotal, settings.VATRate, sequence+1)
	if err := uc.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionInvoiceCreate, domain.AuditEntityInvoice, invoice.ID,
		fmt.Sprintf("Invoice %s issued for order %s.", invoice.InvoiceNumber, order.ID), nil, invoice)

	return invoice, nil
}

// UpdateStatus moves an invoice between Paid/Unpaid/Overdue. Staff only.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, actor domain.Actor, role domain.Role) (*domain.Invoice, error) {
	if !role.Can(domain.CapManageInvoices) {
		return nil, domain.NewAuthorizationError("only staff may update invoice status")
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("invalid invoice status: %s", status)
	}

	invoice, err := uc.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	previous := invoice.Status
	if previous == status {
		return invoice, nil
	}
	invoice.Status = status
	if err := uc.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionInvoiceStatusUpdate, domain.AuditEntityInvoice, invoice.ID,
		fmt.Sprintf("Invoice %s marked %s.", invoice.InvoiceNumber, status), previous, status)

	return invoice, nil
}

// Get returns one invoice, scoped to the owning client for non-staff.
func (uc *InvoiceUseCase) Get(ctx context.Context, invoiceID string, actor domain.Actor, role domain.Role) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !role.Elevated() && !actor.Owns(invoice.ClientID) {
		return nil, domain.NewAuthorizationError("access denied")
	}
	return invoice, nil
}

// List returns a page of invoices plus the total count. Client actors are
// forcibly scoped to their own invoices.
func (uc *InvoiceUseCase) List(ctx context.Context, filter domain.InvoiceFilter, page, pageSize int, actor domain.Actor, role domain.Role) ([]*domain.Invoice, int, error) {
	if !role.Elevated() {
		clientID := actor.Username
		filter.ClientID = &clientID
	}
	filter.Limit, filter.Offset = paginate(page, pageSize)

	invoices, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}
