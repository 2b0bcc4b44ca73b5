package workitem

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
	"github.com/frahmantamala/task-management/internal/core/datamodel"
	workitemDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/workitem"
	"github.com/frahmantamala/task-management/internal/user"
	"github.com/google/uuid"
)

const (
	TitleMaxLength         = 250
	DescriptionMaxLength   = 1500
	ReferenceCodeMaxLength = 150
)

type WorkItem struct {
	ID             int64
	Title          string
	Description    *string
	Status         Status
	ReferenceCode  string
	AssignedUserID *int64
	AssignedUser   *user.User
	datamodel.Audit
}

type fields struct {
	Title          string  `json:"title" validate:"notblank,max=250"`
	Description    *string `json:"description" validate:"omitempty,max=1500"`
	Status         Status  `json:"status" validate:"defined"`
	AssignedUserID *int64  `json:"assignedUserId" validate:"omitempty,min=1"`
}

func validateFields(f fields) error {
	if err := validation.Struct(f); err != nil {
		return err
	}
	return nil
}

// NewWorkItem starts every item as New with a fresh reference code.
func NewWorkItem(title string, description *string, assignedUserID *int64, createdBy *int64) (*WorkItem, error) {
	if err := validateFields(fields{Title: title, Description: description, Status: StatusNew, AssignedUserID: assignedUserID}); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &WorkItem{
		Title:          title,
		Description:    description,
		Status:         StatusNew,
		ReferenceCode:  GenerateReferenceCode(now),
		AssignedUserID: assignedUserID,
		Audit:          datamodel.NewAudit(createdBy, now),
	}, nil
}

// GenerateReferenceCode formats WI-<yyyyMMddHHmmssfff>-<7 hex chars>.
func GenerateReferenceCode(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:7]
	return fmt.Sprintf("WI-%s%03d-%s", now.Format("20060102150405"), now.Nanosecond()/int(time.Millisecond), random)
}

// Update replaces the editable fields. The reference code never changes.
func (w *WorkItem) Update(title string, description *string, status Status, assignedUserID *int64, updatedBy int64) error {
	if w.IsDeleted {
		return internal.ErrWorkItemMissing
	}
	if err := validateFields(fields{Title: title, Description: description, Status: status, AssignedUserID: assignedUserID}); err != nil {
		return err
	}
	if !sameID(w.AssignedUserID, assignedUserID) {
		w.AssignedUser = nil
	}
	w.Title = title
	w.Description = description
	w.Status = status
	w.AssignedUserID = assignedUserID
	w.Touch(updatedBy, time.Now().UTC())
	return nil
}

func (w *WorkItem) UpdateStatus(status Status, updatedBy int64) error {
	if w.IsDeleted {
		return internal.ErrWorkItemMissing
	}
	if !status.IsValid() {
		return internal.ErrInvalidStatus
	}
	w.Status = status
	w.Touch(updatedBy, time.Now().UTC())
	return nil
}

func (w *WorkItem) Delete(deletedBy int64) {
	w.MarkDeleted(deletedBy, time.Now().UTC())
}

func (w *WorkItem) ResourceKind() auth.ResourceKind {
	return auth.ResourceWorkItem
}

func (w *WorkItem) ResourceID() int64 {
	return w.ID
}

// OwnedBy is true for the assignee only. Unassigned items have no owner.
func (w *WorkItem) OwnedBy(callerID int64) bool {
	return w.AssignedUserID != nil && *w.AssignedUserID == callerID
}

func (w *WorkItem) ToResponse() WorkItemResponse {
	resp := WorkItemResponse{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		Status:         w.Status,
		ReferenceCode:  w.ReferenceCode,
		AssignedUserID: w.AssignedUserID,
		CreatedDate:    w.CreatedDate,
	}
	if w.AssignedUser != nil {
		assignee := w.AssignedUser.ToResponse()
		resp.AssignedUser = &assignee
	}
	return resp
}

func ToDataModel(w *WorkItem) *workitemDatamodel.WorkItem {
	return &workitemDatamodel.WorkItem{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		Status:         int(w.Status),
		ReferenceCode:  w.ReferenceCode,
		AssignedUserID: w.AssignedUserID,
		Audit:          w.Audit,
	}
}

func FromDataModel(w *workitemDatamodel.WorkItem) *WorkItem {
	item := &WorkItem{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		Status:         Status(w.Status),
		ReferenceCode:  w.ReferenceCode,
		AssignedUserID: w.AssignedUserID,
		Audit:          w.Audit,
	}
	if w.AssignedUser != nil {
		item.AssignedUser = user.FromDataModel(w.AssignedUser)
	}
	return item
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
