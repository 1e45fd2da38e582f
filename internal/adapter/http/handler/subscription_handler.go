package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type SubscriptionHandler struct {
	subscriptions *usecase.SubscriptionUseCase
}

func NewSubscriptionHandler(subscriptions *usecase.SubscriptionUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/subscriptions", h.List).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/{id}/status", h.UpdateStatus).Methods(http.MethodPut)
	r.HandleFunc("/subscriptions/{id}/cancel", h.RequestCancellation).Methods(http.MethodPost)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	subscription, err := h.subscriptions.Get(r.Context(), mux.Vars(r)["id"], actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", subscription)
}

type UpdateSubscriptionStatusRequest struct {
	Status domain.SubscriptionStatus `json:"status"`
}

func (h *SubscriptionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req UpdateSubscriptionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	subscription, err := h.subscriptions.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", subscription)
}

func (h *SubscriptionHandler) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	subscription, err := h.subscriptions.RequestCancellation(r.Context(), mux.Vars(r)["id"], actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", subscription)
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var filter domain.SubscriptionFilter
	query := r.URL.Query()
	if v := query.Get("status"); v != "" {
		status := domain.SubscriptionStatus(v)
		filter.Status = &status
	}
	if v := query.Get("client_id"); v != "" {
		filter.ClientID = &v
	}
	if v := query.Get("order_id"); v != "" {
		filter.OrderID = &v
	}

	page, pageSize := parsePagination(r)
	subscriptions, total, err := h.subscriptions.List(r.Context(), filter, page, pageSize, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", response.Paginated{
		Items:    subscriptions,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
