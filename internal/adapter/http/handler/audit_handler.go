package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type AuditHandler struct {
	audit *usecase.AuditUseCase
}

func NewAuditHandler(audit *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{
		audit: audit,
	}
}

func (h *AuditHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/audit-logs", h.Query).Methods(http.MethodGet)
}

func (h *AuditHandler) Query(w http.ResponseWriter, r *http.Request) {
	_, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var filter domain.AuditFilter
	query := r.URL.Query()
	if v := query.Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := query.Get("action_type"); v != "" {
		action := domain.AuditActionType(v)
		filter.ActionType = &action
	}
	if v := query.Get("entity_type"); v != "" {
		entity := domain.AuditEntityType(v)
		filter.EntityType = &entity
	}
	if v := query.Get("entity_id"); v != "" {
		filter.EntityID = &v
	}
	if v := query.Get("date_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			response.BadRequest(w, "Invalid date_from")
			return
		}
		filter.DateFrom = &t
	}
	if v := query.Get("date_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			response.BadRequest(w, "Invalid date_to")
			return
		}
		filter.DateTo = &t
	}

	page, pageSize := parsePagination(r)
	entries, total, err := h.audit.Query(r.Context(), role, filter, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", response.Paginated{
		Items:    entries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
