package workitem

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/core/common/pagination"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
	workitemDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/workitem"
	"github.com/frahmantamala/task-management/internal/core/events"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*workitemDatamodel.WorkItem, error)
	// Search ANDs the filter with the ownership scope. A nil assigneeScope
	// leaves the result unrestricted.
	Search(ctx context.Context, filter WorkItemFilter, assigneeScope *int64, pageIndex, pageSize int) ([]*workitemDatamodel.WorkItem, int64, error)
	Create(ctx context.Context, w *workitemDatamodel.WorkItem) error
	Update(ctx context.Context, w *workitemDatamodel.WorkItem) error
}

// UserDirectory answers whether an assignee exists.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	users      UserDirectory
	authorizer auth.ResourceAuthorizer
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, users UserDirectory, authorizer auth.ResourceAuthorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		authorizer: authorizer,
		publisher:  publisher,
		logger:     logger,
	}
}

// Search lists work items. Callers with the User role only ever see items
// assigned to them, and the total reflects that.
func (s *Service) Search(ctx context.Context, caller auth.Identity, req SearchWorkItemsRequest) (*WorkItemsResponse, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := validation.Struct(req.Criteria); err != nil {
		return nil, err
	}

	var scope *int64
	if !caller.IsAdmin() {
		callerID := caller.CallerID
		scope = &callerID
	}

	rows, total, err := s.repo.Search(ctx, req.Criteria, scope, req.PageIndex, req.PageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to search work items", "caller_id", caller.CallerID, "error", err)
		return nil, err
	}

	resp := pagination.Project(rows, total, func(row *workitemDatamodel.WorkItem) WorkItemResponse {
		return FromDataModel(row).ToResponse()
	})
	s.logger.InfoContext(ctx, "work items searched",
		"caller_id", caller.CallerID,
		"scoped", scope != nil,
		"returned", len(resp.Items),
		"total", total)
	return &resp, nil
}

func (s *Service) GetByID(ctx context.Context, caller auth.Identity, id int64) (*WorkItemResponse, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CheckAccess(ctx, caller, w, auth.OpView); err != nil {
		return nil, err
	}

	resp := w.ToResponse()
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, req CreateWorkItemRequest) (*WorkItemResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, req.AssignedUserID); err != nil {
		return nil, err
	}

	createdBy := caller.CallerID
	w, err := NewWorkItem(req.Title, req.Description, req.AssignedUserID, &createdBy)
	if err != nil {
		return nil, err
	}

	row := ToDataModel(w)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "work item created",
		"work_item_id", row.ID,
		"reference_code", row.ReferenceCode,
		"caller_id", caller.CallerID)
	s.publish(ctx, events.NewEntityEvent(events.EventTypeWorkItemCreated, caller.CallerID, row.ID, map[string]interface{}{
		"reference_code":   row.ReferenceCode,
		"assigned_user_id": row.AssignedUserID,
	}))

	return s.reload(ctx, row.ID)
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, req UpdateWorkItemRequest) (*WorkItemResponse, error) {
	if req.ID <= 0 {
		return nil, internal.ErrInvalidID
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, req.AssignedUserID); err != nil {
		return nil, err
	}

	w, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CheckAccess(ctx, caller, w, auth.OpUpdate); err != nil {
		return nil, err
	}
	if err := w.Update(req.Title, req.Description, req.Status, req.AssignedUserID, caller.CallerID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, ToDataModel(w)); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "work item updated", "work_item_id", w.ID, "caller_id", caller.CallerID)
	s.publish(ctx, events.NewEntityEvent(events.EventTypeWorkItemUpdated, caller.CallerID, w.ID, map[string]interface{}{
		"status":           w.Status.String(),
		"assigned_user_id": w.AssignedUserID,
	}))

	return s.reload(ctx, w.ID)
}

func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id int64, status Status) (*WorkItemResponse, error) {
	if id <= 0 {
		return nil, internal.ErrInvalidID
	}
	if !status.IsValid() {
		return nil, internal.ErrInvalidStatus
	}

	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CheckAccess(ctx, caller, w, auth.OpUpdateStatus); err != nil {
		return nil, err
	}

	previous := w.Status
	if err := w.UpdateStatus(status, caller.CallerID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, ToDataModel(w)); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "work item status changed",
		"work_item_id", w.ID,
		"from", previous.String(),
		"to", status.String(),
		"caller_id", caller.CallerID)
	s.publish(ctx, events.NewEntityEvent(events.EventTypeWorkItemStatusChanged, caller.CallerID, w.ID, map[string]interface{}{
		"from": previous.String(),
		"to":   status.String(),
	}))

	resp := w.ToResponse()
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	w, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.CheckAccess(ctx, caller, w, auth.OpDelete); err != nil {
		return err
	}

	w.Delete(caller.CallerID)
	if err := s.repo.Update(ctx, ToDataModel(w)); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "work item deleted", "work_item_id", w.ID, "caller_id", caller.CallerID)
	s.publish(ctx, events.NewEntityEvent(events.EventTypeWorkItemDeleted, caller.CallerID, w.ID, nil))
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*WorkItem, error) {
	if id <= 0 {
		return nil, internal.ErrInvalidID
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrRecordNotFound) {
			return nil, internal.ErrWorkItemMissing
		}
		s.logger.ErrorContext(ctx, "failed to load work item", "work_item_id", id, "error", err)
		return nil, err
	}
	return FromDataModel(row), nil
}

// reload returns the stored projection so the assignee is populated.
func (s *Service) reload(ctx context.Context, id int64) (*WorkItemResponse, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := w.ToResponse()
	return &resp, nil
}

func (s *Service) checkAssignee(ctx context.Context, assignedUserID *int64) error {
	if assignedUserID == nil {
		return nil
	}
	found, err := s.users.Exists(ctx, *assignedUserID)
	if err != nil {
		return err
	}
	if !found {
		s.logger.WarnContext(ctx, "assigned user not found", "assigned_user_id", *assignedUserID)
		return internal.ErrAssigneeMissing
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
