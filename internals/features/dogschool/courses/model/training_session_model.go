package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainingSessionStatus string

const (
	SessionStatusScheduled TrainingSessionStatus = "SCHEDULED"
	SessionStatusCanceled  TrainingSessionStatus = "CANCELED"
	SessionStatusDone      TrainingSessionStatus = "DONE"
)

// TrainingSession is one dated meeting of a course. Capacity lives here:
// the count of applications in {ACCEPT, PAID} must stay within
// training_session_max_students (see the applications capacity engine).
type TrainingSession struct {
	TrainingSessionID int64 `gorm:"column:training_session_id;primaryKey;autoIncrement" json:"training_session_id"`

	TrainingSessionCourseID uuid.UUID `gorm:"column:training_session_course_id;type:uuid;not null;index" json:"training_session_course_id"`

	TrainingSessionNo int `gorm:"column:training_session_no;not null" json:"training_session_no"`

	TrainingSessionStartAt time.Time `gorm:"column:training_session_start_at;not null;index" json:"training_session_start_at"`
	TrainingSessionEndAt   time.Time `gorm:"column:training_session_end_at;not null" json:"training_session_end_at"`

	TrainingSessionStatus TrainingSessionStatus `gorm:"column:training_session_status;type:varchar(16);not null;default:'SCHEDULED'" json:"training_session_status"`

	TrainingSessionMaxStudents int `gorm:"column:training_session_max_students;not null;check:training_session_max_students > 0" json:"training_session_max_students"`
	TrainingSessionPrice       int `gorm:"column:training_session_price;not null;check:training_session_price >= 0" json:"training_session_price"`

	CreatedAt time.Time      `gorm:"column:training_session_created_at;autoCreateTime" json:"training_session_created_at"`
	UpdatedAt time.Time      `gorm:"column:training_session_updated_at;autoUpdateTime" json:"training_session_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:training_session_deleted_at;index" json:"training_session_deleted_at,omitempty"`
}

func (TrainingSession) TableName() string { return "training_sessions" }
