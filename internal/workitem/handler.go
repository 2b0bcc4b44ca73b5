package workitem

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/transport"
)

type ServiceAPI interface {
	Search(ctx context.Context, caller auth.Identity, req SearchWorkItemsRequest) (*WorkItemsResponse, error)
	GetByID(ctx context.Context, caller auth.Identity, id int64) (*WorkItemResponse, error)
	Create(ctx context.Context, caller auth.Identity, req CreateWorkItemRequest) (*WorkItemResponse, error)
	Update(ctx context.Context, caller auth.Identity, req UpdateWorkItemRequest) (*WorkItemResponse, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, id int64, status Status) (*WorkItemResponse, error)
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

// SearchWorkItems handles POST /workitems/search
func (h *Handler) SearchWorkItems(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req SearchWorkItemsRequest
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

// GetWorkItem handles GET /workitems/{id}
func (h *Handler) GetWorkItem(w http.ResponseWriter, r *http.Request) {
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

// CreateWorkItem handles POST /workitems
func (h *Handler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req CreateWorkItemRequest
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

// UpdateWorkItem handles PUT /workitems
func (h *Handler) UpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Caller(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req UpdateWorkItemRequest
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

// UpdateWorkItemStatus handles PATCH /workitems/{id}/status?status=
func (h *Handler) UpdateWorkItemStatus(w http.ResponseWriter, r *http.Request) {
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
	status, err := ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.HandleServiceError(w, r, internal.ErrInvalidStatus.WithCause(err))
		return
	}

	resp, err := h.Service.UpdateStatus(r.Context(), caller, id, status)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// DeleteWorkItem handles DELETE /workitems/{id}
func (h *Handler) DeleteWorkItem(w http.ResponseWriter, r *http.Request) {
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
