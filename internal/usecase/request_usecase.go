package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// CreateRequestInput carries the fields of a new client support request.
type CreateRequestInput struct {
	Subject     string                 `json:"subject"`
	Description string                 `json:"description"`
	Category    domain.RequestCategory `json:"category"`
}

// RequestUseCase manages client support requests.
type RequestUseCase struct {
	requestRepo ports.RequestRepository
	audit       *AuditUseCase
	logger      *logrus.Logger
}

// NewRequestUseCase creates a new request use case.
func NewRequestUseCase(requestRepo ports.RequestRepository, audit *AuditUseCase, logger *logrus.Logger) *RequestUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	return &RequestUseCase{
		requestRepo: requestRepo,
		audit:       audit,
		logger:      logger,
	}
}

// Create submits a request on behalf of the acting client.
func (uc *RequestUseCase) Create(ctx context.Context, input CreateRequestInput, actor domain.Actor) (*domain.ClientRequest, error) {
	switch {
	case input.Subject == "":
		return nil, domain.NewValidationError("subject is required")
	case input.Description == "":
		return nil, domain.NewValidationError("description is required")
	case !input.Category.Valid():
		return nil, domain.NewValidationError("invalid request category: %s", input.Category)
	}

	request := domain.NewClientRequest(actor.Username, input.Subject, input.Description, input.Category)
	if err := uc.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionClientRequestCreate, domain.AuditEntityClientRequest, request.ID,
		fmt.Sprintf("Request %q submitted (%s).", request.Subject, request.Category), nil, request)

	return request, nil
}

// UpdateStatus moves a request through its lifecycle. Staff only.
func (uc *RequestUseCase) UpdateStatus(ctx context.Context, requestID string, status domain.RequestStatus, actor domain.Actor, role domain.Role) (*domain.ClientRequest, error) {
	if !role.Can(domain.CapUpdateRequestStatus) {
		return nil, domain.NewAuthorizationError("only staff may update request status")
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("invalid request status: %s", status)
	}

	request, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	previous := request.Status
	if previous == status {
		return request, nil
	}
	request.SetStatus(status)
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor, domain.AuditActionClientRequestStatusUpdate, domain.AuditEntityClientRequest, request.ID,
		fmt.Sprintf("Request %q moved from %s to %s.", request.Subject, previous, status), previous, status)

	return request, nil
}

// Get returns one request, scoped to the owning client for non-staff.
func (uc *RequestUseCase) Get(ctx context.Context, requestID string, actor domain.Actor, role domain.Role) (*domain.ClientRequest, error) {
	request, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !role.Elevated() && !actor.Owns(request.ClientID) {
		return nil, domain.NewAuthorizationError("access denied")
	}
	return request, nil
}

// List returns a page of requests plus the total count. Client actors are
// forcibly scoped to their own requests.
func (uc *RequestUseCase) List(ctx context.Context, filter domain.RequestFilter, page, pageSize int, actor domain.Actor, role domain.Role) ([]*domain.ClientRequest, int, error) {
	if !role.Elevated() {
		clientID := actor.Username
		filter.ClientID = &clientID
	}
	filter.Limit, filter.Offset = paginate(page, pageSize)

	requests, err := uc.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.requestRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
