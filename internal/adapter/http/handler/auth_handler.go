package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/usecase"
)

type AuthHandler struct {
	auth  *usecase.AuthUseCase
	users *usecase.UserUseCase
}

func NewAuthHandler(auth *usecase.AuthUseCase, users *usecase.UserUseCase) *AuthHandler {
	return &AuthHandler{
		auth:  auth,
		users: users,
	}
}

// RegisterPublicRoutes registers the routes reachable without a token.
func (h *AuthHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
}

// RegisterRoutes registers the authenticated routes.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "Username and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password, getClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", result)
}

// Register self-registers a client account. Staff accounts go through the
// authenticated user management endpoints instead.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.Create(r.Context(), input, domain.Actor{}, domain.RoleClient)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "success", user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	h.auth.Logout(r.Context(), actor)
	response.Success(w, http.StatusOK, "success", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, role, ok := requireActor(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), actor.UserID, actor, role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", user)
}
