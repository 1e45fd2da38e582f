package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type UserHandler struct {
	users *usecase.UserUseCase
}

func NewUserHandler(users *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		users: users,
	}
}

func (h *UserHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/users", h.List).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/users/{id}/profile", h.UpdateProfile).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id}/role", h.ChangeRole).Methods(http.MethodPut)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var input usecase.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.Create(r.Context(), input, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "success", user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), mux.Vars(r)["id"], actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	_, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	page, pageSize := parsePagination(r)
	users, total, err := h.users.List(r.Context(), page, pageSize, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", response.Paginated{
		Items:    users,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var update domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), mux.Vars(r)["id"], update, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", user)
}

type ChangeRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.ChangeRole(r.Context(), mux.Vars(r)["id"], req.Role, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), mux.Vars(r)["id"], actor, role); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", nil)
}
