package user

import (
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/core/common/pagination"
)

type CreateUserRequest struct {
	Name  string    `json:"name" validate:"notblank,min=2,max=150"`
	Email string    `json:"email" validate:"notblank,email,max=250"`
	Role  auth.Role `json:"role" validate:"defined"`
}

type UpdateUserRequest struct {
	ID int64 `json:"id"`
	CreateUserRequest
}

// UserFilter terms are optional; empty ones match everything.
type UserFilter struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  *auth.Role `json:"role" validate:"omitempty,defined"`
}

type SearchUsersRequest = pagination.SearchPage[UserFilter]

type UserResponse struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

type UsersResponse = pagination.PagedData[UserResponse]
