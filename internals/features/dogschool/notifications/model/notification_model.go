package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeApplied      = "APPLICATION_APPLIED"
	NotificationTypeApproved     = "APPLICATION_APPROVED"
	NotificationTypeWaitlisted   = "APPLICATION_WAITLISTED"
	NotificationTypeRejected     = "APPLICATION_REJECTED"
	NotificationTypePromoted     = "WAITING_PROMOTED"
	NotificationTypeExpired      = "APPLICATION_EXPIRED"
	NotificationTypePaymentDone  = "PAYMENT_COMPLETED"
	NotificationTypeRefundIssued = "PAYMENT_REFUNDED"
)

type Notification struct {
	NotificationID int64 `gorm:"column:notification_id;primaryKey;autoIncrement" json:"notification_id"`

	NotificationTargetUserID uuid.UUID `gorm:"column:notification_target_user_id;type:uuid;not null;index" json:"notification_target_user_id"`

	NotificationType    string `gorm:"column:notification_type;type:varchar(40);not null" json:"notification_type"`
	NotificationTitle   string `gorm:"column:notification_title;type:varchar(200);not null" json:"notification_title"`
	NotificationMessage string `gorm:"column:notification_message;type:text" json:"notification_message"`

	NotificationReferenceID   *int64     `gorm:"column:notification_reference_id" json:"notification_reference_id,omitempty"`
	NotificationReferenceType *string    `gorm:"column:notification_reference_type;type:varchar(40)" json:"notification_reference_type,omitempty"`
	NotificationActionURL     *string    `gorm:"column:notification_action_url" json:"notification_action_url,omitempty"`
	NotificationActorID       *uuid.UUID `gorm:"column:notification_actor_id;type:uuid" json:"notification_actor_id,omitempty"`

	NotificationIsRead bool `gorm:"column:notification_is_read;not null;default:false" json:"notification_is_read"`

	CreatedAt time.Time      `gorm:"column:notification_created_at;autoCreateTime" json:"notification_created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:notification_deleted_at;index" json:"notification_deleted_at,omitempty"`
}

func (Notification) TableName() string { return "notifications" }
