package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/frahmantamala/task-management/internal/store"
	"github.com/frahmantamala/task-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	store *store.Store[userDatamodel.User]
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{store: store.New[userDatamodel.User](db)}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return r.store.GetByID(ctx, id)
}

func (r *UserRepository) Search(ctx context.Context, filter user.UserFilter, pageIndex, pageSize int) ([]*userDatamodel.User, int64, error) {
	var role *int
	if filter.Role != nil {
		v := int(*filter.Role)
		role = &v
	}

	page, err := r.store.Page(ctx, store.All(
		store.ContainsFold("name", filter.Name),
		store.ContainsFold("email", filter.Email),
		store.Equal("role", role),
	), pageIndex, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.TotalCount, nil
}

// EmailTaken compares emails case-insensitively. excludeID lets a user keep
// its own address on update; zero excludes nothing.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exclude store.Predicate
	if excludeID > 0 {
		exclude = store.NotEqual("id", excludeID)
	}
	return r.store.Exists(ctx, store.All(store.EqualFold("email", email), exclude))
}

func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.Exists(ctx, store.Is("id", id))
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.store.Add(ctx, u)
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	return r.store.Save(ctx, u)
}
