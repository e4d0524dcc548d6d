package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerAddress is the saved default shipping address for an account.
type CustomerAddress struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Phone       string    `gorm:"column:phone;not null"`
	Division    string    `gorm:"column:division;not null"`
	City        string    `gorm:"column:city;not null"`
	Area        string    `gorm:"column:area;not null;default:''"`
	AddressLine string    `gorm:"column:address_line;not null"`
	IsDefault   bool      `gorm:"column:is_default;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *CustomerAddress) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
