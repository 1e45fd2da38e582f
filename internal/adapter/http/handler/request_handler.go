package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type RequestHandler struct {
	requests *usecase.RequestUseCase
}

func NewRequestHandler(requests *usecase.RequestUseCase) *RequestHandler {
	return &RequestHandler{
		requests: requests,
	}
}

func (h *RequestHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/requests", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/requests", h.List).Methods(http.MethodGet)
	r.HandleFunc("/requests/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/requests/{id}/status", h.UpdateStatus).Methods(http.MethodPut)
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	var input usecase.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	request, err := h.requests.Create(r.Context(), input, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "success", request)
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	request, err := h.requests.Get(r.Context(), mux.Vars(r)["id"], actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", request)
}

type UpdateRequestStatusRequest struct {
	Status domain.RequestStatus `json:"status"`
}

func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req UpdateRequestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	request, err := h.requests.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", request)
}

func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var filter domain.RequestFilter
	query := r.URL.Query()
	if v := query.Get("status"); v != "" {
		status := domain.RequestStatus(v)
		filter.Status = &status
	}
	if v := query.Get("category"); v != "" {
		category := domain.RequestCategory(v)
		filter.Category = &category
	}
	if v := query.Get("client_id"); v != "" {
		filter.ClientID = &v
	}

	page, pageSize := parsePagination(r)
	requests, total, err := h.requests.List(r.Context(), filter, page, pageSize, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", response.Paginated{
		Items:    requests,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
