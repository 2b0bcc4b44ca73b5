package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/core/common/pagination"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/frahmantamala/task-management/internal/core/events"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	Search(ctx context.Context, filter UserFilter, pageIndex, pageSize int) ([]*userDatamodel.User, int64, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
}

type Service struct {
	repo       RepositoryAPI
	authorizer auth.ResourceAuthorizer
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, authorizer auth.ResourceAuthorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *Service) Search(ctx context.Context, caller auth.Identity, req SearchUsersRequest) (*UsersResponse, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := validation.Struct(req.Criteria); err != nil {
		return nil, err
	}

	rows, total, err := s.repo.Search(ctx, req.Criteria, req.PageIndex, req.PageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to search users", "caller_id", caller.CallerID, "error", err)
		return nil, err
	}

	resp := pagination.Project(rows, total, func(row *userDatamodel.User) UserResponse {
		return FromDataModel(row).ToResponse()
	})
	s.logger.InfoContext(ctx, "users searched",
		"caller_id", caller.CallerID,
		"returned", len(resp.Items),
		"total", total)
	return &resp, nil
}

func (s *Service) GetByID(ctx context.Context, caller auth.Identity, id int64) (*UserResponse, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CheckAccess(ctx, caller, u, auth.OpView); err != nil {
		return nil, err
	}

	resp := u.ToResponse()
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, req CreateUserRequest) (*UserResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		s.logger.WarnContext(ctx, "duplicate email on create", "email", req.Email)
		return nil, internal.ErrEmailExists
	}

	createdBy := caller.CallerID
	u, err := NewUser(req.Name, req.Email, req.Role, &createdBy)
	if err != nil {
		return nil, err
	}

	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.conflictAsEmail(err)
	}
	u.ID = row.ID

	s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "caller_id", caller.CallerID)
	s.publish(ctx, events.NewEntityEvent(events.EventTypeUserCreated, caller.CallerID, u.ID, map[string]interface{}{
		"role": u.Role.String(),
	}))

	resp := u.ToResponse()
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, req UpdateUserRequest) (*UserResponse, error) {
	if req.ID <= 0 {
		return nil, internal.ErrInvalidID
	}
	if err := validation.Struct(req.CreateUserRequest); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, req.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		s.logger.WarnContext(ctx, "duplicate email on update", "user_id", req.ID, "email", req.Email)
		return nil, internal.ErrEmailExists
	}

	u, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CheckAccess(ctx, caller, u, auth.OpUpdate); err != nil {
		return nil, err
	}
	if err := u.Update(req.Name, req.Email, req.Role, caller.CallerID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, ToDataModel(u)); err != nil {
		return nil, s.conflictAsEmail(err)
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", u.ID, "caller_id", caller.CallerID)
	s.publish(ctx, events.NewEntityEvent(events.EventTypeUserUpdated, caller.CallerID, u.ID, nil))

	resp := u.ToResponse()
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.CheckAccess(ctx, caller, u, auth.OpDelete); err != nil {
		return err
	}

	u.Delete(caller.CallerID)
	if err := s.repo.Update(ctx, ToDataModel(u)); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", u.ID, "caller_id", caller.CallerID)
	s.publish(ctx, events.NewEntityEvent(events.EventTypeUserDeleted, caller.CallerID, u.ID, nil))
	return nil
}

// Exists reports whether a live user has id. Work items use it to check
// assignees.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

func (s *Service) load(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, internal.ErrInvalidID
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load user", "user_id", id, "error", err)
		return nil, err
	}
	return FromDataModel(row), nil
}

// conflictAsEmail covers the race where another request took the email
// between the uniqueness check and the write.
func (s *Service) conflictAsEmail(err error) error {
	if errors.Is(err, internal.ErrDuplicateKey) {
		return internal.ErrEmailExists.WithCause(err)
	}
	return err
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
