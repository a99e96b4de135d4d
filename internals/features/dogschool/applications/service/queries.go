package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	model "dogschool_backend/internals/features/dogschool/applications/model"
	helper "dogschool_backend/internals/helpers"
)

// ApplicationRow is the flattened application + session + course view used
// by the listing endpoints.
type ApplicationRow struct {
	ApplicationID   int64                   `gorm:"column:application_id" json:"application_id"`
	DogID           uuid.UUID               `gorm:"column:application_dog_id" json:"dog_id"`
	SessionID       int64                   `gorm:"column:application_session_id" json:"session_id"`
	Status          model.ApplicationStatus `gorm:"column:application_status" json:"status"`
	RejectReason    *string                 `gorm:"column:application_reject_reason" json:"reject_reason,omitempty"`
	AppliedAt       time.Time               `gorm:"column:application_applied_at" json:"applied_at"`
	PaymentDeadline *time.Time              `gorm:"column:application_payment_deadline" json:"payment_deadline,omitempty"`
	SessionNo       int                     `gorm:"column:training_session_no" json:"session_no"`
	SessionStartAt  time.Time               `gorm:"column:training_session_start_at" json:"session_start_at"`
	SessionPrice    int                     `gorm:"column:training_session_price" json:"session_price"`
	CourseID        uuid.UUID               `gorm:"column:training_course_id" json:"course_id"`
	CourseTitle     string                  `gorm:"column:training_course_title" json:"course_title"`
	CourseTag       string                  `gorm:"column:training_course_tag" json:"course_tag"`
}

const applicationRowSelect = `
	a.application_id, a.application_dog_id, a.application_session_id,
	a.application_status, a.application_reject_reason,
	a.application_applied_at, a.application_payment_deadline,
	s.training_session_no, s.training_session_start_at, s.training_session_price,
	c.training_course_id, c.training_course_title, c.training_course_tag`

// ListMine returns the caller's own applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, userID uuid.UUID, status string, offset, limit int) ([]ApplicationRow, int64, error) {
	base := s.db.WithContext(ctx).
		Table("training_course_applications a").
		Joins("JOIN training_sessions s ON s.training_session_id = a.application_session_id").
		Joins("JOIN training_courses c ON c.training_course_id = s.training_session_course_id").
		Where("a.application_created_by = ? AND a.application_deleted_at IS NULL", userID)
	if status != "" {
		base = base.Where("a.application_status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ApplicationRow
	err := base.Select(applicationRowSelect).
		Order("a.application_id DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// ListForCourse returns a course's applications for its trainer, oldest
// first so the review order matches the application order.
func (s *ApplicationService) ListForCourse(ctx context.Context, trainerID, courseID uuid.UUID, status string, offset, limit int) ([]ApplicationRow, int64, error) {
	var ownerID uuid.UUID
	err := s.db.WithContext(ctx).Raw(`
		SELECT training_course_trainer_id
		  FROM training_courses
		 WHERE training_course_id = ?
		   AND training_course_deleted_at IS NULL`, courseID).
		Scan(&ownerID).Error
	if err != nil {
		return nil, 0, err
	}
	if ownerID == uuid.Nil {
		return nil, 0, helper.ErrNotFound("course not found")
	}
	if ownerID != trainerID {
		return nil, 0, helper.ErrUnauthorized("not the trainer of this course")
	}

	base := s.db.WithContext(ctx).
		Table("training_course_applications a").
		Joins("JOIN training_sessions s ON s.training_session_id = a.application_session_id").
		Joins("JOIN training_courses c ON c.training_course_id = s.training_session_course_id").
		Where("c.training_course_id = ? AND a.application_deleted_at IS NULL", courseID)
	if status != "" {
		base = base.Where("a.application_status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ApplicationRow
	err = base.Select(applicationRowSelect).
		Order("a.application_id ASC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}
