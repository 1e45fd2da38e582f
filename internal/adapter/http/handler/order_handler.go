package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type OrderHandler struct {
	orders *usecase.OrderUseCase
}

func NewOrderHandler(orders *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orders: orders,
	}
}

func (h *OrderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/orders", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.List).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.Update).Methods(http.MethodPatch)
	r.HandleFunc("/orders/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	var input usecase.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	order, err := h.orders.Create(r.Context(), input, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "success", order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), mux.Vars(r)["id"], actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", order)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var update domain.OrderUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	order, err := h.orders.Update(r.Context(), mux.Vars(r)["id"], update, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.orders.Delete(r.Context(), mux.Vars(r)["id"], actor, role); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", nil)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var filter domain.OrderFilter
	query := r.URL.Query()
	if v := query.Get("status"); v != "" {
		status := domain.OrderStatus(v)
		filter.Status = &status
	}
	if v := query.Get("client_email"); v != "" {
		filter.ClientEmail = &v
	}
	if v := query.Get("service_type"); v != "" {
		filter.ServiceType = &v
	}

	page, pageSize := parsePagination(r)
	orders, total, err := h.orders.List(r.Context(), filter, page, pageSize, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", response.Paginated{
		Items:    orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
