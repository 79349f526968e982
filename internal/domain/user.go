package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Email        string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Fullname     string     `gorm:"column:fullname;not null" json:"fullname"`
	Role         string     `gorm:"column:role;type:varchar(30);not null;default:employee" json:"role"`
	CompanyID    *uuid.UUID `gorm:"column:company_id;type:uuid" json:"company_id"`
	EmployeeID   *uuid.UUID `gorm:"column:employee_id;type:uuid" json:"employee_id"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
