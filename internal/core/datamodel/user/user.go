package user

import "github.com/frahmantamala/task-management/internal/core/datamodel"

type User struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"column:name;size:150;not null"`
	Email string `gorm:"column:email;size:250;not null;index"`
	Role  int    `gorm:"column:role;not null"`
	datamodel.Audit
}

func (User) TableName() string {
	return "users"
}
