package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type BillingHandler struct {
	billing *usecase.BillingUseCase
}

func NewBillingHandler(billing *usecase.BillingUseCase) *BillingHandler {
	return &BillingHandler{
		billing: billing,
	}
}

func (h *BillingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/billing/settings", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/billing/settings", h.Update).Methods(http.MethodPut)
}

func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	settings, err := h.billing.Get(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", settings)
}

func (h *BillingHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var settings domain.BillingSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	updated, err := h.billing.Update(r.Context(), settings, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", updated)
}
