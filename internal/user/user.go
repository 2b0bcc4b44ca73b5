package user

import (
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
	"github.com/frahmantamala/task-management/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
)

const (
	NameMaxLength  = 150
	EmailMaxLength = 250
)

type User struct {
	ID    int64
	Name  string
	Email string
	Role  auth.Role
	datamodel.Audit
}

type fields struct {
	Name  string    `json:"name" validate:"notblank,max=150"`
	Email string    `json:"email" validate:"notblank,max=250"`
	Role  auth.Role `json:"role" validate:"defined"`
}

func validateFields(name, email string, role auth.Role) error {
	if err := validation.Struct(fields{Name: name, Email: email, Role: role}); err != nil {
		return err
	}
	return nil
}

// NewUser builds a valid user. createdBy is nil for seeded rows.
func NewUser(name, email string, role auth.Role, createdBy *int64) (*User, error) {
	if err := validateFields(name, email, role); err != nil {
		return nil, err
	}
	return &User{
		Name:  name,
		Email: email,
		Role:  role,
		Audit: datamodel.NewAudit(createdBy, time.Now().UTC()),
	}, nil
}

func (u *User) Update(name, email string, role auth.Role, updatedBy int64) error {
	if u.IsDeleted {
		return internal.ErrUserNotFound
	}
	if err := validateFields(name, email, role); err != nil {
		return err
	}
	u.Name = name
	u.Email = email
	u.Role = role
	u.Touch(updatedBy, time.Now().UTC())
	return nil
}

func (u *User) Delete(deletedBy int64) {
	u.MarkDeleted(deletedBy, time.Now().UTC())
}

func (u *User) ResourceKind() auth.ResourceKind {
	return auth.ResourceUser
}

func (u *User) ResourceID() int64 {
	return u.ID
}

// OwnedBy is true only for the user's own profile.
func (u *User) OwnedBy(callerID int64) bool {
	return u.ID == callerID
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  int(u.Role),
		Audit: u.Audit,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  auth.Role(u.Role),
		Audit: u.Audit,
	}
}
