package workitem

import (
	"github.com/frahmantamala/task-management/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
)

type WorkItem struct {
	ID             int64               `gorm:"primaryKey"`
	Title          string              `gorm:"column:title;size:250;not null"`
	Description    *string             `gorm:"column:description;size:1500"`
	Status         int                 `gorm:"column:status;not null"`
	ReferenceCode  string              `gorm:"column:reference_code;size:150;not null;uniqueIndex"`
	AssignedUserID *int64              `gorm:"column:assigned_user_id;index"`
	AssignedUser   *userDatamodel.User `gorm:"foreignKey:AssignedUserID"`
	datamodel.Audit
}

func (WorkItem) TableName() string {
	return "work_items"
}
