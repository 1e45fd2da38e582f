package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type InvoiceHandler struct {
	invoices *usecase.InvoiceUseCase
}

func NewInvoiceHandler(invoices *usecase.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
	}
}

func (h *InvoiceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/invoices", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/invoices", h.List).Methods(http.MethodGet)
	r.HandleFunc("/invoices/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/invoices/{id}/status", h.UpdateStatus).Methods(http.MethodPut)
}

type CreateInvoiceRequest struct {
	OrderID  string  `json:"order_id"`
	SubTotal float64 `json:"sub_total"`
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	invoice, err := h.invoices.CreateForOrder(r.Context(), req.OrderID, req.SubTotal, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "success", invoice)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoices.Get(r.Context(), mux.Vars(r)["id"], actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", invoice)
}

type UpdateInvoiceStatusRequest struct {
	Status domain.InvoiceStatus `json:"status"`
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req UpdateInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	invoice, err := h.invoices.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", invoice)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var filter domain.InvoiceFilter
	query := r.URL.Query()
	if v := query.Get("status"); v != "" {
		status := domain.InvoiceStatus(v)
		filter.Status = &status
	}
	if v := query.Get("client_id"); v != "" {
		filter.ClientID = &v
	}
	if v := query.Get("order_id"); v != "" {
		filter.OrderID = &v
	}

	page, pageSize := parsePagination(r)
	invoices, total, err := h.invoices.List(r.Context(), filter, page, pageSize, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", response.Paginated{
		Items:    invoices,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
