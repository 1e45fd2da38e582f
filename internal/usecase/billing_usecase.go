package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// BillingUseCase manages the single-row billing configuration.
type BillingUseCase struct {
	billingRepo ports.BillingSettingsRepository
	audit       *AuditUseCase
	logger      *logrus.Logger
}

// NewBillingUseCase creates a new billing settings use case.
func NewBillingUseCase(billingRepo ports.BillingSettingsRepository, audit *AuditUseCase, logger *logrus.Logger) *BillingUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	return &BillingUseCase{
		billingRepo: billingRepo,
		audit:       audit,
		logger:      logger,
	}
}

// Get returns the current billing settings. Staff only; gateway credentials
// never reach client roles.
func (uc *BillingUseCase) Get(ctx context.Context, role domain.Role) (domain.BillingSettings, error) {
	if !role.Elevated() {
		return domain.BillingSettings{}, domain.NewAuthorizationError("access denied")
	}
	return uc.billingRepo.Get(ctx)
}

// Update replaces the billing settings. Admin-only; the full previous and new
// snapshots go into the audit entry.
func (uc *BillingUseCase) Update(ctx context.Context, settings domain.BillingSettings, actor domain.Actor, role domain.Role) (domain.BillingSettings, error) {
	if !role.Can(domain.CapManageBillingConfig) {
		return domain.BillingSettings{}, domain.NewAuthorizationError("only an admin may change billing settings")
	}
	if settings.VATRate < 0 || settings.VATRate > 100 {
		return domain.BillingSettings{}, domain.NewValidationError("VAT rate must be between 0 and 100")
	}

	previous, err := uc.billingRepo.Get(ctx)
	if err != nil {
		return domain.BillingSettings{}, err
	}
	if err := uc.billingRepo.Save(ctx, settings); err != nil {
		return domain.BillingSettings{}, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionBillingSettingsUpdate, domain.AuditEntityBillingSettings, "",
		"Billing settings updated.", previous, settings)

	return settings, nil
}
