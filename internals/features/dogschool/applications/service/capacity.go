package service

import (
	"time"

	"gorm.io/gorm"

	model "dogschool_backend/internals/features/dogschool/applications/model"
)

// CapacityResult is the outcome of a capacity probe.
type CapacityResult string

const (
	CapacityAccepted CapacityResult = "ACCEPTED"
	CapacityWaiting  CapacityResult = "WAITING"
)

// SessionHeadcount counts the applications occupying a slot right now.
// Only ACCEPT and PAID hold capacity.
func SessionHeadcount(tx *gorm.DB, sessionID int64) (int64, error) {
	var n int64
	err := tx.Model(&model.TrainingCourseApplication{}).
		Where("application_session_id = ? AND application_status IN ?",
			sessionID, []model.ApplicationStatus{model.ApplicationStatusAccept, model.ApplicationStatusPaid}).
		Count(&n).Error
	return n, err
}

// TryAccept moves an application from fromStatus to ACCEPT with a single
// conditional UPDATE. The WHERE clause recomputes the {ACCEPT, PAID}
// headcount against the session capacity, so two concurrent approvals can
// not both land: the loser affects zero rows and falls into the WAITING
// branch. Returns CapacityWaiting when the guard rejected the update.
func TryAccept(tx *gorm.DB, applicationID, sessionID int64, fromStatus model.ApplicationStatus, deadline time.Time) (CapacityResult, error) {
	res := tx.Exec(`
		UPDATE training_course_applications
		   SET application_status = 'ACCEPT',
		       application_payment_deadline = ?,
		       application_updated_at = ?
		 WHERE application_id = ?
		   AND application_status = ?
		   AND application_deleted_at IS NULL
		   AND (
		       SELECT COUNT(*)
		         FROM training_course_applications a
		        WHERE a.application_session_id = ?
		          AND a.application_status IN ('ACCEPT', 'PAID')
		          AND a.application_deleted_at IS NULL
		   ) < (
		       SELECT s.training_session_max_students
		         FROM training_sessions s
		        WHERE s.training_session_id = ?
		          AND s.training_session_deleted_at IS NULL
		   )`,
		deadline, time.Now(), applicationID, string(fromStatus), sessionID, sessionID)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return CapacityWaiting, nil
	}
	return CapacityAccepted, nil
}

// PromoteNext promotes the head of a session's waitlist after a slot has
// freed. Order is strictly FIFO by waiting id; the pre-approval flag gates
// eligibility only, so an unapproved head blocks the queue until the
// trainer acts on it. At most one promotion per call; TryAccept re-checks
// capacity, so calling once per freed slot is safe. Returns the promoted
// application id, or nil when nothing was promoted.
func PromoteNext(tx *gorm.DB, sessionID int64, paymentWindow time.Duration) (*int64, error) {
	var head model.Waiting
	err := tx.
		Where("waiting_session_id = ? AND waiting_status = ?", sessionID, model.WaitingStatusWaiting).
		Order("waiting_id ASC").
		First(&head).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	if !head.WaitingIsApproved {
		return nil, nil
	}

	deadline := time.Now().Add(paymentWindow)
	result, err := TryAccept(tx, head.WaitingApplicationID, sessionID, model.ApplicationStatusWaiting, deadline)
	if err != nil {
		return nil, err
	}
	if result != CapacityAccepted {
		// Slot got taken between the free-up and this call.
		return nil, nil
	}

	if err := tx.Model(&model.Waiting{}).
		Where("waiting_id = ?", head.WaitingID).
		Update("waiting_status", model.WaitingStatusEntered).Error; err != nil {
		return nil, err
	}

	return &head.WaitingApplicationID, nil
}
