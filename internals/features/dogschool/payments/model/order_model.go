package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusReadyToPay      OrderStatus = "READY_TO_PAY"
	OrderStatusPaymentPending  OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusRefunded        OrderStatus = "REFUNDED"
	OrderStatusPartialRefunded OrderStatus = "PARTIAL_REFUNDED"
)

// OrderMaster aggregates the charges of one or more applications into a
// single gateway order. The merchant uid is what the gateway sees.
type OrderMaster struct {
	OrderID int64 `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id"`

	OrderMerchantUID string    `gorm:"column:order_merchant_uid;type:varchar(64);not null;uniqueIndex" json:"order_merchant_uid"`
	OrderBuyerID     uuid.UUID `gorm:"column:order_buyer_id;type:uuid;not null;index" json:"order_buyer_id"`

	OrderTotalAmount int         `gorm:"column:order_total_amount;not null;check:order_total_amount >= 0" json:"order_total_amount"`
	OrderStatus      OrderStatus `gorm:"column:order_status;type:varchar(24);not null;default:'READY_TO_PAY'" json:"order_status"`

	OrderIsCompleted bool `gorm:"column:order_is_completed;not null;default:false" json:"order_is_completed"`

	CreatedAt time.Time      `gorm:"column:order_created_at;autoCreateTime" json:"order_created_at"`
	UpdatedAt time.Time      `gorm:"column:order_updated_at;autoUpdateTime" json:"order_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:order_deleted_at;index" json:"order_deleted_at,omitempty"`
}

func (OrderMaster) TableName() string { return "order_masters" }

// OrderItem links one application's charge into an order.
type OrderItem struct {
	OrderItemID int64 `gorm:"column:order_item_id;primaryKey;autoIncrement" json:"order_item_id"`

	OrderItemOrderID       int64 `gorm:"column:order_item_order_id;not null;index" json:"order_item_order_id"`
	OrderItemApplicationID int64 `gorm:"column:order_item_application_id;not null;index" json:"order_item_application_id"`

	OrderItemAmount int `gorm:"column:order_item_amount;not null;check:order_item_amount >= 0" json:"order_item_amount"`

	CreatedAt time.Time      `gorm:"column:order_item_created_at;autoCreateTime" json:"order_item_created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:order_item_deleted_at;index" json:"order_item_deleted_at,omitempty"`
}

func (OrderItem) TableName() string { return "order_items" }
