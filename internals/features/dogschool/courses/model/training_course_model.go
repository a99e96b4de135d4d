package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

type TrainingCourseType string
type TrainingCourseLessonForm string
type TrainingCourseStatus string

const (
	CourseTypeOnce  TrainingCourseType = "ONCE"
	CourseTypeMulti TrainingCourseType = "MULTI"
)

const (
	LessonFormWalk    TrainingCourseLessonForm = "WALK"
	LessonFormGroup   TrainingCourseLessonForm = "GROUP"
	LessonFormPrivate TrainingCourseLessonForm = "PRIVATE"
)

const (
	CourseStatusScheduled  TrainingCourseStatus = "SCHEDULED"
	CourseStatusInProgress TrainingCourseStatus = "IN_PROGRESS"
	CourseStatusDone       TrainingCourseStatus = "DONE"
	CourseStatusCancelled  TrainingCourseStatus = "CANCELLED"
)

/* ===================== Model ===================== */

type TrainingCourse struct {
	TrainingCourseID uuid.UUID `gorm:"column:training_course_id;type:uuid;default:gen_random_uuid();primaryKey" json:"training_course_id"`

	TrainingCourseTrainerID uuid.UUID `gorm:"column:training_course_trainer_id;type:uuid;not null;index" json:"training_course_trainer_id"`

	// Unique slug used in public URLs.
	TrainingCourseTag string `gorm:"column:training_course_tag;type:varchar(160);not null;uniqueIndex" json:"training_course_tag"`

	TrainingCourseTitle       string `gorm:"column:training_course_title;type:varchar(200);not null" json:"training_course_title"`
	TrainingCourseDescription string `gorm:"column:training_course_description;type:text" json:"training_course_description"`

	TrainingCourseType       TrainingCourseType       `gorm:"column:training_course_type;type:varchar(16);not null" json:"training_course_type"`
	TrainingCourseLessonForm TrainingCourseLessonForm `gorm:"column:training_course_lesson_form;type:varchar(16);not null" json:"training_course_lesson_form"`
	TrainingCourseStatus     TrainingCourseStatus     `gorm:"column:training_course_status;type:varchar(16);not null;default:'SCHEDULED'" json:"training_course_status"`

	TrainingCourseIsFree bool `gorm:"column:training_course_is_free;not null;default:false" json:"training_course_is_free"`

	// Free-form schedule metadata (weekday pattern, meeting point, etc).
	TrainingCourseSchedule datatypes.JSON `gorm:"column:training_course_schedule;type:jsonb" json:"training_course_schedule,omitempty"`

	// Object key in blob storage; presigned into a URL at response time.
	TrainingCourseImageKey *string `gorm:"column:training_course_image_key" json:"training_course_image_key,omitempty"`

	CreatedAt time.Time      `gorm:"column:training_course_created_at;autoCreateTime" json:"training_course_created_at"`
	UpdatedAt time.Time      `gorm:"column:training_course_updated_at;autoUpdateTime" json:"training_course_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:training_course_deleted_at;index" json:"training_course_deleted_at,omitempty"`
}

func (TrainingCourse) TableName() string { return "training_courses" }

func (c *TrainingCourse) IsOwnedBy(trainerID uuid.UUID) bool {
	return c.TrainingCourseTrainerID == trainerID
}
