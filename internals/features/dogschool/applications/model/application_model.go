package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusApplied            ApplicationStatus = "APPLIED"
	ApplicationStatusCounselingRequired ApplicationStatus = "COUNSELING_REQUIRED"
	ApplicationStatusAccept             ApplicationStatus = "ACCEPT"
	ApplicationStatusPaid               ApplicationStatus = "PAID"
	ApplicationStatusWaiting            ApplicationStatus = "WAITING"
	ApplicationStatusRejected           ApplicationStatus = "REJECTED"
	ApplicationStatusCancelled          ApplicationStatus = "CANCELLED"
	ApplicationStatusExpired            ApplicationStatus = "EXPIRED"
)

// IsTerminal reports whether no further lifecycle transition is legal.
// PAID is terminal for everything except the refund path.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusRejected, ApplicationStatusCancelled, ApplicationStatusExpired, ApplicationStatusPaid:
		return true
	}
	return false
}

// NonTerminalStatuses are the states blocking a duplicate application for
// the same dog and session.
var NonTerminalStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusCounselingRequired,
	ApplicationStatusAccept,
	ApplicationStatusWaiting,
	ApplicationStatusPaid,
}

// TrainingCourseApplication is one dog's request to attend one session.
// Rows are never physically deleted; terminal states are status-flagged.
// The BIGSERIAL id doubles as the FIFO key for waitlist ordering.
type TrainingCourseApplication struct {
	ApplicationID int64 `gorm:"column:application_id;primaryKey;autoIncrement" json:"application_id"`

	ApplicationDogID     uuid.UUID `gorm:"column:application_dog_id;type:uuid;not null;index" json:"application_dog_id"`
	ApplicationSessionID int64     `gorm:"column:application_session_id;not null;index" json:"application_session_id"`
	ApplicationCreatedBy uuid.UUID `gorm:"column:application_created_by;type:uuid;not null;index" json:"application_created_by"`

	ApplicationStatus       ApplicationStatus `gorm:"column:application_status;type:varchar(24);not null;default:'APPLIED'" json:"application_status"`
	ApplicationRejectReason *string           `gorm:"column:application_reject_reason" json:"application_reject_reason,omitempty"`

	ApplicationAppliedAt time.Time `gorm:"column:application_applied_at;not null" json:"application_applied_at"`

	// Set only while status is ACCEPT; reset on waitlist promotion.
	ApplicationPaymentDeadline *time.Time `gorm:"column:application_payment_deadline" json:"application_payment_deadline,omitempty"`

	CreatedAt time.Time      `gorm:"column:application_created_at;autoCreateTime" json:"application_created_at"`
	UpdatedAt time.Time      `gorm:"column:application_updated_at;autoUpdateTime" json:"application_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:application_deleted_at;index" json:"application_deleted_at,omitempty"`
}

func (TrainingCourseApplication) TableName() string { return "training_course_applications" }
