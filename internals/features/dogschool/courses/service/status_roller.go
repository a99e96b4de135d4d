package service

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

// StatusRoller derives session and course status from the wall clock. All
// three updates are set-based and idempotent: a second run on an unchanged
// clock matches zero rows. Each update is its own unit of work so one
// failing does not block the others.
type StatusRoller struct {
	db *gorm.DB
}

func NewStatusRoller(db *gorm.DB) *StatusRoller {
	return &StatusRoller{db: db}
}

// RollSessions marks sessions DONE once their end time has passed.
func (r *StatusRoller) RollSessions(ctx context.Context) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Exec(`
		UPDATE training_sessions
		   SET training_session_status = 'DONE',
		       training_session_updated_at = ?
		 WHERE training_session_end_at <= ?
		   AND training_session_status NOT IN ('DONE', 'CANCELED')
		   AND training_session_deleted_at IS NULL`, now, now)
	return res.RowsAffected, res.Error
}

// RollCoursesInProgress moves SCHEDULED courses to IN_PROGRESS once their
// earliest session has started.
func (r *StatusRoller) RollCoursesInProgress(ctx context.Context) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Exec(`
		UPDATE training_courses
		   SET training_course_status = 'IN_PROGRESS',
		       training_course_updated_at = ?
		 WHERE training_course_status = 'SCHEDULED'
		   AND training_course_deleted_at IS NULL
		   AND EXISTS (
		       SELECT 1 FROM training_sessions s
		        WHERE s.training_session_course_id = training_courses.training_course_id
		          AND s.training_session_deleted_at IS NULL
		          AND s.training_session_start_at <= ?
		   )`, now, now)
	return res.RowsAffected, res.Error
}

// RollCoursesDone moves IN_PROGRESS courses to DONE once no non-cancelled
// session remains unfinished.
func (r *StatusRoller) RollCoursesDone(ctx context.Context) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Exec(`
		UPDATE training_courses
		   SET training_course_status = 'DONE',
		       training_course_updated_at = ?
		 WHERE training_course_status = 'IN_PROGRESS'
		   AND training_course_deleted_at IS NULL
		   AND NOT EXISTS (
		       SELECT 1 FROM training_sessions s
		        WHERE s.training_session_course_id = training_courses.training_course_id
		          AND s.training_session_deleted_at IS NULL
		          AND s.training_session_status NOT IN ('DONE', 'CANCELED')
		   )`, now)
	return res.RowsAffected, res.Error
}

// RollAll runs the three updates in sequence, logging instead of aborting
// so a failure in one can not starve the others.
func (r *StatusRoller) RollAll(ctx context.Context) {
	if n, err := r.RollSessions(ctx); err != nil {
		log.Printf("[STATUS-ROLL] sessions: %v", err)
	} else if n > 0 {
		log.Printf("[STATUS-ROLL] %d sessions done", n)
	}
	if n, err := r.RollCoursesInProgress(ctx); err != nil {
		log.Printf("[STATUS-ROLL] courses in-progress: %v", err)
	} else if n > 0 {
		log.Printf("[STATUS-ROLL] %d courses in progress", n)
	}
	if n, err := r.RollCoursesDone(ctx); err != nil {
		log.Printf("[STATUS-ROLL] courses done: %v", err)
	} else if n > 0 {
		log.Printf("[STATUS-ROLL] %d courses done", n)
	}
}
