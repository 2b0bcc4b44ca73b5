package datamodel

import "time"

// ColumnIsDeleted is the soft-delete flag every persisted entity carries.
const ColumnIsDeleted = "is_deleted"

// Audit holds the bookkeeping columns shared by users and work items.
// CreatedBy is nil for rows written by the seeder.
type Audit struct {
	CreatedBy   *int64     `gorm:"column:created_by"`
	CreatedDate time.Time  `gorm:"column:created_date;not null"`
	UpdatedBy   *int64     `gorm:"column:updated_by"`
	UpdatedDate *time.Time `gorm:"column:updated_date"`
	IsDeleted   bool       `gorm:"column:is_deleted;not null;index"`
}

func NewAudit(createdBy *int64, now time.Time) Audit {
	return Audit{CreatedBy: createdBy, CreatedDate: now}
}

// Touch stamps a mutation. Creation fields are left alone.
func (a *Audit) Touch(by int64, now time.Time) {
	a.UpdatedBy = &by
	a.UpdatedDate = &now
}

func (a *Audit) MarkDeleted(by int64, now time.Time) {
	a.IsDeleted = true
	a.Touch(by, now)
}
