package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	EmployeeID uuid.UUID  `gorm:"column:employee_id;type:uuid;primaryKey" json:"employee_id"`
	CompanyID  uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid" json:"user_id"`
	Fullname   string     `gorm:"column:fullname;not null" json:"fullname"`
	Email      string     `gorm:"column:email;not null" json:"email"`
	Status     string     `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.EmployeeID == uuid.Nil {
		e.EmployeeID = uuid.New()
	}
	return nil
}
