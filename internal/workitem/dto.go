package workitem

import (
	"time"

	"github.com/frahmantamala/task-management/internal/core/common/pagination"
	"github.com/frahmantamala/task-management/internal/user"
)

type CreateWorkItemRequest struct {
	Title          string  `json:"title" validate:"notblank,min=2,max=250"`
	Description    *string `json:"description" validate:"omitempty,max=1500"`
	AssignedUserID *int64  `json:"assignedUserId" validate:"omitempty,min=1"`
}

type UpdateWorkItemRequest struct {
	ID     int64  `json:"id"`
	Status Status `json:"status" validate:"defined"`
	CreateWorkItemRequest
}

// WorkItemFilter terms are optional; empty ones match everything.
type WorkItemFilter struct {
	Title          string  `json:"title"`
	ReferenceCode  string  `json:"referenceCode"`
	AssignedUserID *int64  `json:"assignedUserId" validate:"omitempty,min=1"`
	Status         *Status `json:"status" validate:"omitempty,defined"`
}

type SearchWorkItemsRequest = pagination.SearchPage[WorkItemFilter]

type WorkItemResponse struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Description    *string            `json:"description"`
	Status         Status             `json:"status"`
	ReferenceCode  string             `json:"referenceCode"`
	AssignedUserID *int64             `json:"assignedUserId"`
	AssignedUser   *user.UserResponse `json:"assignedUser,omitempty"`
	CreatedDate    time.Time          `json:"createdDate"`
}

type WorkItemsResponse = pagination.PagedData[WorkItemResponse]
