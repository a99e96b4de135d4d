package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusReady    PaymentStatus = "READY"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

// Payment records the gateway result for one order.
type Payment struct {
	PaymentID int64 `gorm:"column:payment_id;primaryKey;autoIncrement" json:"payment_id"`

	PaymentOrderID int64 `gorm:"column:payment_order_id;not null;index" json:"payment_order_id"`

	PaymentKey         *string `gorm:"column:payment_key;type:varchar(200)" json:"payment_key,omitempty"`
	PaymentMerchantUID string  `gorm:"column:payment_merchant_uid;type:varchar(64);not null;index" json:"payment_merchant_uid"`

	PaymentMethod *string       `gorm:"column:payment_method;type:varchar(32)" json:"payment_method,omitempty"`
	PaymentStatus PaymentStatus `gorm:"column:payment_status;type:varchar(16);not null;default:'READY'" json:"payment_status"`

	PaymentApprovedAt *time.Time `gorm:"column:payment_approved_at" json:"payment_approved_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	UpdatedAt time.Time      `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:payment_deleted_at;index" json:"payment_deleted_at,omitempty"`
}

func (Payment) TableName() string { return "payments" }

// PaymentLog is the append-only audit trail: one row per status transition,
// never updated.
type PaymentLog struct {
	PaymentLogID int64 `gorm:"column:payment_log_id;primaryKey;autoIncrement" json:"payment_log_id"`

	PaymentLogOrderID   int64  `gorm:"column:payment_log_order_id;not null;index" json:"payment_log_order_id"`
	PaymentLogPaymentID *int64 `gorm:"column:payment_log_payment_id;index" json:"payment_log_payment_id,omitempty"`

	PaymentLogFromStatus string `gorm:"column:payment_log_from_status;type:varchar(24);not null" json:"payment_log_from_status"`
	PaymentLogToStatus   string `gorm:"column:payment_log_to_status;type:varchar(24);not null" json:"payment_log_to_status"`

	PaymentLogPayload datatypes.JSON `gorm:"column:payment_log_payload;type:jsonb" json:"payment_log_payload,omitempty"`

	CreatedAt time.Time `gorm:"column:payment_log_created_at;autoCreateTime" json:"payment_log_created_at"`
}

func (PaymentLog) TableName() string { return "payment_logs" }
