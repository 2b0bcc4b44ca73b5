package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/transport"
)

type ServiceAPI interface {
	Search(ctx context.Context, caller auth.Identity, req SearchUsersRequest) (*UsersResponse, error)
	GetByID(ctx context.Context, caller auth.Identity, id int64) (*UserResponse, error)
	Create(ctx context.Context, caller auth.Identity, req CreateUserRequest) (*UserResponse, error)
	Update(ctx context.Context, caller auth.Identity, req UpdateUserRequest) (*UserResponse, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// SearchUsers handles POST /users/search
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req SearchUsersRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Search(r.Context(), caller, req)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.GetByID(r.Context(), caller, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req CreateUserRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Create(r.Context(), caller, req)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

// UpdateUser handles PUT /users
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req UpdateUserRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Update(r.Context(), caller, req)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), caller, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
