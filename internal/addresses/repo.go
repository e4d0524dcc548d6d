package addresses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
)

// UpsertInput is the saved-address payload captured at checkout.
type UpsertInput struct {
	Name        string
	Phone       string
	Division    string
	City        string
	Area        string
	AddressLine string
}

// Repository stores the customer's default shipping address.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, customerID uuid.UUID, input UpsertInput) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an address repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, customerID uuid.UUID, input UpsertInput) error {
	var existing models.CustomerAddress
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := models.CustomerAddress{
			CustomerID:  customerID,
			Name:        input.Name,
			Phone:       input.Phone,
			Division:    input.Division,
			City:        input.City,
			Area:        input.Area,
			AddressLine: input.AddressLine,
			IsDefault:   true,
		}
		return r.db.WithContext(ctx).Create(&record).Error
	}

	existing.Name = input.Name
	existing.Phone = input.Phone
	existing.Division = input.Division
	existing.City = input.City
	existing.Area = input.Area
	existing.AddressLine = input.AddressLine
	existing.IsDefault = true
	return r.db.WithContext(ctx).Save(&existing).Error
}
