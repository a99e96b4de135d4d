package dto

import (
	"time"

	"gorm.io/datatypes"

	model "dogschool_backend/internals/features/dogschool/courses/model"
)

type SessionRequest struct {
	SessionNo   int       `json:"session_no" validate:"required,min=1"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required"`
	MaxStudents int       `json:"max_students" validate:"required,min=1"`
	Price       int       `json:"price" validate:"min=0"`
}

type CreateCourseRequest struct {
	Title       string           `json:"title" validate:"required,max=120"`
	Description string           `json:"description"`
	Type        string           `json:"type" validate:"required,oneof=ONCE MULTI"`
	LessonForm  string           `json:"lesson_form" validate:"required,oneof=WALK GROUP PRIVATE"`
	Schedule    datatypes.JSON   `json:"schedule"`
	ImageKey    *string          `json:"image_key"`
	Sessions    []SessionRequest `json:"sessions" validate:"required,min=1,dive"`
}

type UpdateCourseRequest struct {
	Title       *string         `json:"title" validate:"omitempty,max=120"`
	Description *string         `json:"description"`
	Schedule    *datatypes.JSON `json:"schedule"`
	ImageKey    *string         `json:"image_key"`
}

// Patch maps the present fields onto column updates.
func (r UpdateCourseRequest) Patch() map[string]interface{} {
	patch := map[string]interface{}{}
	if r.Title != nil {
		patch["training_course_title"] = *r.Title
	}
	if r.Description != nil {
		patch["training_course_description"] = *r.Description
	}
	if r.Schedule != nil {
		patch["training_course_schedule"] = *r.Schedule
	}
	if r.ImageKey != nil {
		patch["training_course_image_key"] = *r.ImageKey
	}
	return patch
}

type SessionResponse struct {
	SessionID   int64     `json:"session_id"`
	SessionNo   int       `json:"session_no"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Status      string    `json:"status"`
	MaxStudents int       `json:"max_students"`
	Price       int       `json:"price"`
}

type CourseResponse struct {
	CourseID    string            `json:"course_id"`
	TrainerID   string            `json:"trainer_id"`
	Tag         string            `json:"tag"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	LessonForm  string            `json:"lesson_form"`
	Status      string            `json:"status"`
	IsFree      bool              `json:"is_free"`
	Schedule    datatypes.JSON    `json:"schedule,omitempty"`
	ImageURL    *string           `json:"image_url,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Sessions    []SessionResponse `json:"sessions,omitempty"`
}

// FromCourse flattens the model; the image URL is filled in by the
// controller when presigning is configured.
func FromCourse(c *model.TrainingCourse, sessions []model.TrainingSession) CourseResponse {
	resp := CourseResponse{
		CourseID:    c.TrainingCourseID.String(),
		TrainerID:   c.TrainingCourseTrainerID.String(),
		Tag:         c.TrainingCourseTag,
		Title:       c.TrainingCourseTitle,
		Description: c.TrainingCourseDescription,
		Type:        string(c.TrainingCourseType),
		LessonForm:  string(c.TrainingCourseLessonForm),
		Status:      string(c.TrainingCourseStatus),
		IsFree:      c.TrainingCourseIsFree,
		Schedule:    c.TrainingCourseSchedule,
		CreatedAt:   c.CreatedAt,
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, SessionResponse{
			SessionID:   s.TrainingSessionID,
			SessionNo:   s.TrainingSessionNo,
			StartAt:     s.TrainingSessionStartAt,
			EndAt:       s.TrainingSessionEndAt,
			Status:      string(s.TrainingSessionStatus),
			MaxStudents: s.TrainingSessionMaxStudents,
			Price:       s.TrainingSessionPrice,
		})
	}
	return resp
}
