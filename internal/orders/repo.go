package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
	"github.com/chronovashop/chronova-backend/pkg/enums"
	pkgerrors "github.com/chronovashop/chronova-backend/pkg/errors"
)

// Repository persists the order graph written at checkout and reads it back
// for the confirmation view.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	CreateStatusEvent(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, note string) error
	CreateShipmentPlaceholder(ctx context.Context, orderID uuid.UUID) error
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateStatusEvent(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, note string) error {
	event := models.OrderStatusEvent{
		OrderID: orderID,
		Status:  status,
		Note:    note,
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

func (r *repository) CreateShipmentPlaceholder(ctx context.Context, orderID uuid.UUID) error {
	shipment := models.Shipment{
		OrderID: orderID,
		Status:  enums.ShipmentStatusPending,
	}
	return r.db.WithContext(ctx).Create(&shipment).Error
}

func (r *repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}
