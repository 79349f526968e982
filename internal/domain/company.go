package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is an issuer of equity grants. Creating a company seeds its
// reserved-share and cash portfolios.
type Company struct {
	CompanyID        uuid.UUID `gorm:"column:company_id;type:uuid;primaryKey" json:"company_id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	Code             string    `gorm:"column:code;uniqueIndex;not null" json:"code"`
	CountryCode      string    `gorm:"column:country_code;type:varchar(2)" json:"country_code"`
	Currency         string    `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	AuthorizedShares int64     `gorm:"column:authorized_shares;not null;default:0" json:"authorized_shares"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.CompanyID == uuid.Nil {
		c.CompanyID = uuid.New()
	}
	return nil
}
