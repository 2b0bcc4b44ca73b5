package postgres

import (
	"context"

	workitemDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/workitem"
	"github.com/frahmantamala/task-management/internal/store"
	"github.com/frahmantamala/task-management/internal/workitem"
	"gorm.io/gorm"
)

const assignedUser = "AssignedUser"

type WorkItemRepository struct {
	store *store.Store[workitemDatamodel.WorkItem]
}

func NewWorkItemRepository(db *gorm.DB) workitem.RepositoryAPI {
	return &WorkItemRepository{store: store.New[workitemDatamodel.WorkItem](db)}
}

func (r *WorkItemRepository) GetByID(ctx context.Context, id int64) (*workitemDatamodel.WorkItem, error) {
	return r.store.GetByID(ctx, id, store.Preload(assignedUser))
}

func (r *WorkItemRepository) Search(ctx context.Context, filter workitem.WorkItemFilter, assigneeScope *int64, pageIndex, pageSize int) ([]*workitemDatamodel.WorkItem, int64, error) {
	var status *int
	if filter.Status != nil {
		v := int(*filter.Status)
		status = &v
	}

	page, err := r.store.Page(ctx, store.All(
		store.ContainsFold("title", filter.Title),
		store.ContainsFold("reference_code", filter.ReferenceCode),
		store.Equal("assigned_user_id", filter.AssignedUserID),
		store.Equal("status", status),
		store.Equal("assigned_user_id", assigneeScope),
	), pageIndex, pageSize, store.Preload(assignedUser))
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.TotalCount, nil
}

func (r *WorkItemRepository) Create(ctx context.Context, w *workitemDatamodel.WorkItem) error {
	return r.store.Add(ctx, w)
}

func (r *WorkItemRepository) Update(ctx context.Context, w *workitemDatamodel.WorkItem) error {
	return r.store.Save(ctx, w)
}
