package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "dogschool_backend/internals/features/dogschool/courses/model"
	helper "dogschool_backend/internals/helpers"
)

// CourseService owns trainer-side course and session management.
type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// SessionInput is one session of a course at creation time.
type SessionInput struct {
	SessionNo   int
	StartAt     time.Time
	EndAt       time.Time
	MaxStudents int
	Price       int
}

// Create persists a course plus its sessions; the public tag is derived
// from the title and made unique with bounded retries.
func (s *CourseService) Create(ctx context.Context, trainerID uuid.UUID, course *model.TrainingCourse, sessions []SessionInput) error {
	if len(sessions) == 0 {
		return helper.ErrBadRequest("a course needs at least one session")
	}
	if course.TrainingCourseType == model.CourseTypeOnce && len(sessions) > 1 {
		return helper.ErrBadRequest("a ONCE course has exactly one session")
	}
	for _, in := range sessions {
		if !in.EndAt.After(in.StartAt) {
			return helper.ErrBadRequest("session end must be after start")
		}
		if in.MaxStudents <= 0 {
			return helper.ErrBadRequest("max students must be positive")
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := helper.EnsureUniqueSlug(tx,
			helper.GenerateSlug(course.TrainingCourseTitle),
			"training_courses", "training_course_tag")
		if err != nil {
			return err
		}
		course.TrainingCourseTag = tag
		course.TrainingCourseTrainerID = trainerID
		course.TrainingCourseStatus = model.CourseStatusScheduled

		isFree := true
		for _, in := range sessions {
			if in.Price > 0 {
				isFree = false
				break
			}
		}
		course.TrainingCourseIsFree = isFree

		if err := tx.Create(course).Error; err != nil {
			return err
		}

		for _, in := range sessions {
			sess := model.TrainingSession{
				TrainingSessionCourseID:    course.TrainingCourseID,
				TrainingSessionNo:          in.SessionNo,
				TrainingSessionStartAt:     in.StartAt,
				TrainingSessionEndAt:       in.EndAt,
				TrainingSessionMaxStudents: in.MaxStudents,
				TrainingSessionPrice:       in.Price,
				TrainingSessionStatus:      model.SessionStatusScheduled,
			}
			if err := tx.Create(&sess).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOwned loads a course after checking trainer ownership.
func (s *CourseService) GetOwned(ctx context.Context, trainerID, courseID uuid.UUID) (*model.TrainingCourse, error) {
	var course model.TrainingCourse
	if err := s.db.WithContext(ctx).
		First(&course, "training_course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.ErrNotFound("course not found")
		}
		return nil, err
	}
	if !course.IsOwnedBy(trainerID) {
		return nil, helper.ErrUnauthorized("not the trainer of this course")
	}
	return &course, nil
}

// Update patches the mutable fields of an owned course.
func (s *CourseService) Update(ctx context.Context, trainerID, courseID uuid.UUID, patch map[string]interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.TrainingCourse
		if err := tx.First(&course, "training_course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("course not found")
			}
			return err
		}
		if !course.IsOwnedBy(trainerID) {
			return helper.ErrUnauthorized("not the trainer of this course")
		}
		if course.TrainingCourseStatus == model.CourseStatusDone ||
			course.TrainingCourseStatus == model.CourseStatusCancelled {
			return helper.ErrInvalidState("a finished course can not be edited")
		}
		if len(patch) == 0 {
			return nil
		}
		return tx.Model(&course).Updates(patch).Error
	})
}

// SoftDelete removes a course and cascades to its children with explicit
// per-table soft deletes; no FK cascade is relied upon.
func (s *CourseService) SoftDelete(ctx context.Context, trainerID, courseID uuid.UUID) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.TrainingCourse
		if err := tx.First(&course, "training_course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("course not found")
			}
			return err
		}
		if !course.IsOwnedBy(trainerID) {
			return helper.ErrUnauthorized("not the trainer of this course")
		}

		if err := tx.Exec(`
			UPDATE training_courses
			   SET training_course_status = 'CANCELLED',
			       training_course_deleted_at = ?
			 WHERE training_course_id = ?
			   AND training_course_deleted_at IS NULL`, now, courseID).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE waitings
			   SET waiting_status = 'CANCELLED',
			       waiting_deleted_at = ?
			 WHERE waiting_deleted_at IS NULL
			   AND waiting_session_id IN (
			       SELECT training_session_id FROM training_sessions
			        WHERE training_session_course_id = ?
			   )`, now, courseID).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE training_course_applications
			   SET application_status = 'CANCELLED',
			       application_deleted_at = ?
			 WHERE application_deleted_at IS NULL
			   AND application_status IN ('APPLIED', 'COUNSELING_REQUIRED', 'ACCEPT', 'WAITING')
			   AND application_session_id IN (
			       SELECT training_session_id FROM training_sessions
			        WHERE training_session_course_id = ?
			   )`, now, courseID).Error; err != nil {
			return err
		}

		return tx.Exec(`
			UPDATE training_sessions
			   SET training_session_status = 'CANCELED',
			       training_session_deleted_at = ?
			 WHERE training_session_course_id = ?
			   AND training_session_deleted_at IS NULL`, now, courseID).Error
	})
}

// ListFilter narrows the public course listing.
type ListFilter struct {
	Type       string
	LessonForm string
	Status     string
	TrainerID  *uuid.UUID
	Search     string
}

// List returns courses for the public browse endpoint.
func (s *CourseService) List(ctx context.Context, f ListFilter, offset, limit int) ([]model.TrainingCourse, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.TrainingCourse{})
	if f.Type != "" {
		q = q.Where("training_course_type = ?", f.Type)
	}
	if f.LessonForm != "" {
		q = q.Where("training_course_lesson_form = ?", f.LessonForm)
	}
	if f.Status != "" {
		q = q.Where("training_course_status = ?", f.Status)
	}
	if f.TrainerID != nil {
		q = q.Where("training_course_trainer_id = ?", *f.TrainerID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("training_course_title LIKE ? OR training_course_description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []model.TrainingCourse
	err := q.Order("training_course_created_at DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}

// GetByTag loads one course with its sessions for the public detail page.
func (s *CourseService) GetByTag(ctx context.Context, tag string) (*model.TrainingCourse, []model.TrainingSession, error) {
	var course model.TrainingCourse
	if err := s.db.WithContext(ctx).
		First(&course, "training_course_tag = ?", tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, helper.ErrNotFound("course not found")
		}
		return nil, nil, err
	}

	var sessions []model.TrainingSession
	if err := s.db.WithContext(ctx).
		Where("training_session_course_id = ?", course.TrainingCourseID).
		Order("training_session_no ASC").
		Find(&sessions).Error; err != nil {
		return nil, nil, err
	}
	return &course, sessions, nil
}
