package model

import (
	"time"

	"gorm.io/gorm"
)

type WaitingStatus string

const (
	WaitingStatusWaiting   WaitingStatus = "WAITING"
	WaitingStatusReady     WaitingStatus = "READY"
	WaitingStatusEntered   WaitingStatus = "ENTERED"
	WaitingStatusCancelled WaitingStatus = "CANCELLED"
	WaitingStatusExpired   WaitingStatus = "EXPIRED"
)

// Waiting is the 1:1 companion row of an over-capacity application. It
// exists only while the application is logically waitlisted; promotion
// flips it to ENTERED, expiry to EXPIRED. Queue order is the row id.
type Waiting struct {
	WaitingID int64 `gorm:"column:waiting_id;primaryKey;autoIncrement" json:"waiting_id"`

	WaitingApplicationID int64 `gorm:"column:waiting_application_id;not null;uniqueIndex" json:"waiting_application_id"`

	// Session snapshot so the promotion scan does not need a join.
	WaitingSessionID int64 `gorm:"column:waiting_session_id;not null;index" json:"waiting_session_id"`

	WaitingStatus WaitingStatus `gorm:"column:waiting_status;type:varchar(16);not null;default:'WAITING'" json:"waiting_status"`

	// Trainer pre-approval; gates auto-promotion eligibility, not ordering.
	WaitingIsApproved bool `gorm:"column:waiting_is_approved;not null;default:false" json:"waiting_is_approved"`

	CreatedAt time.Time      `gorm:"column:waiting_created_at;autoCreateTime" json:"waiting_created_at"`
	UpdatedAt time.Time      `gorm:"column:waiting_updated_at;autoUpdateTime" json:"waiting_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:waiting_deleted_at;index" json:"waiting_deleted_at,omitempty"`
}

func (Waiting) TableName() string { return "waitings" }
