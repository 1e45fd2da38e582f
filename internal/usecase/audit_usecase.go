package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// AuditUseCase records privileged actions in the system-wide audit ledger and
// serves filtered queries over it.
type AuditUseCase struct {
	auditRepo ports.AuditRepository
	logger    *logrus.Logger
}

// NewAuditUseCase creates a new audit use case.
func NewAuditUseCase(auditRepo ports.AuditRepository, logger *logrus.Logger) *AuditUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	return &AuditUseCase{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends one audit entry. Recording is best-effort: a failed write is
// logged and swallowed so that it never blocks the business operation that
// triggered it.
func (uc *AuditUseCase) Record(ctx context.Context, actor domain.Actor, action domain.AuditActionType, entityType domain.AuditEntityType, entityID, details string, previous, next interface{}) {
	entry := domain.NewAuditLogEntry(actor, action, entityType, entityID, details, previous, next)

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		uc.logger.WithError(err).WithFields(logrus.Fields{
			"action_type": action,
			"entity_type": entityType,
			"entity_id":   entityID,
			"actor_id":    actor.UserID,
		}).Warn("Failed to write audit entry")
	}
}

// Query returns a newest-first page of audit entries matching the filter plus
// the total match count. Only elevated roles holding the audit capability may
// query. Filters are conjunctive; both date bounds are inclusive, and a
// date-only DateTo is widened to the end of that day.
func (uc *AuditUseCase) Query(ctx context.Context, role domain.Role, filter domain.AuditFilter, page, pageSize int) ([]*domain.AuditLogEntry, int, error) {
	if !role.Can(domain.CapViewAuditLog) {
		return nil, 0, domain.NewAuthorizationError("audit log access requires an elevated role")
	}

	if filter.DateTo != nil {
		to := endOfDayIfDateOnly(*filter.DateTo)
		filter.DateTo = &to
	}

	filter.Limit, filter.Offset = paginate(page, pageSize)

	entries, err := uc.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.auditRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// endOfDayIfDateOnly widens a midnight timestamp to the last instant of that
// day, so a caller supplying only a date gets an inclusive upper bound.
func endOfDayIfDateOnly(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
