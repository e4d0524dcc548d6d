package enums

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentMethod enumerates supported payment options. Only cash on
// delivery is wired today.
type PaymentMethod string

const (
	PaymentMethodCOD PaymentMethod = "cod"
)

// ShipmentStatus tracks courier handoff for an order.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusBooked    ShipmentStatus = "booked"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)
