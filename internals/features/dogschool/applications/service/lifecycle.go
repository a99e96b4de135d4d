package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "dogschool_backend/internals/features/dogschool/applications/model"
	notifmodel "dogschool_backend/internals/features/dogschool/notifications/model"
	notifsvc "dogschool_backend/internals/features/dogschool/notifications/service"
	helper "dogschool_backend/internals/helpers"
)

// PaymentCanceler is what the payment orchestrator exposes to the
// lifecycle: cancelling a PAID application must refund the money leg first.
type PaymentCanceler interface {
	CancelPaidApplication(ctx context.Context, userID uuid.UUID, applicationID int64) error
}

// ApplicationService drives the application/waiting state machine. Every
// transition runs inside one transaction; notification commands are
// collected during the transaction and dispatched only after commit.
type ApplicationService struct {
	db            *gorm.DB
	dispatcher    *notifsvc.Dispatcher
	payments      PaymentCanceler
	paymentWindow time.Duration
}

func NewApplicationService(db *gorm.DB, dispatcher *notifsvc.Dispatcher, paymentWindowHours int) *ApplicationService {
	if paymentWindowHours <= 0 {
		paymentWindowHours = 24
	}
	return &ApplicationService{
		db:            db,
		dispatcher:    dispatcher,
		paymentWindow: time.Duration(paymentWindowHours) * time.Hour,
	}
}

// SetPaymentCanceler breaks the wiring cycle with the payment orchestrator.
func (s *ApplicationService) SetPaymentCanceler(pc PaymentCanceler) { s.payments = pc }

func (s *ApplicationService) PaymentWindow() time.Duration { return s.paymentWindow }

/* ===================== lookups ===================== */

type sessionInfo struct {
	SessionID   int64     `gorm:"column:training_session_id"`
	CourseID    uuid.UUID `gorm:"column:training_session_course_id"`
	StartAt     time.Time `gorm:"column:training_session_start_at"`
	Status      string    `gorm:"column:training_session_status"`
	MaxStudents int       `gorm:"column:training_session_max_students"`
	Price       int       `gorm:"column:training_session_price"`
	TrainerID   uuid.UUID `gorm:"column:training_course_trainer_id"`
	LessonForm  string    `gorm:"column:training_course_lesson_form"`
}

func loadSessionInfo(tx *gorm.DB, sessionID int64) (*sessionInfo, error) {
	var row sessionInfo
	err := tx.Raw(`
		SELECT s.training_session_id, s.training_session_course_id,
		       s.training_session_start_at, s.training_session_status,
		       s.training_session_max_students, s.training_session_price,
		       c.training_course_trainer_id, c.training_course_lesson_form
		  FROM training_sessions s
		  JOIN training_courses c
		    ON c.training_course_id = s.training_session_course_id
		   AND c.training_course_deleted_at IS NULL
		 WHERE s.training_session_id = ?
		   AND s.training_session_deleted_at IS NULL`, sessionID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.SessionID == 0 {
		return nil, helper.ErrNotFound("training session not found")
	}
	return &row, nil
}

func loadApplication(tx *gorm.DB, applicationID int64) (*model.TrainingCourseApplication, error) {
	var app model.TrainingCourseApplication
	if err := tx.First(&app, "application_id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.ErrNotFound("application not found")
		}
		return nil, err
	}
	return &app, nil
}

// guardTrainer verifies the caller owns the course the session belongs to.
func guardTrainer(info *sessionInfo, trainerID uuid.UUID) error {
	if info.TrainerID != trainerID {
		return helper.ErrUnauthorized("not the trainer of this course")
	}
	return nil
}

/* ===================== user operations ===================== */

// Apply creates an application for one dog and one session. Over-capacity
// sessions route straight to the waitlist; PRIVATE-form courses start in
// COUNSELING_REQUIRED instead of APPLIED.
func (s *ApplicationService) Apply(ctx context.Context, userID, dogID uuid.UUID, sessionID int64) (*model.TrainingCourseApplication, error) {
	var app model.TrainingCourseApplication
	var cmds []notifsvc.Command

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := loadSessionInfo(tx, sessionID)
		if err != nil {
			return err
		}
		if info.Status != "SCHEDULED" {
			return helper.ErrInvalidState("session is not open for applications")
		}
		if !info.StartAt.After(time.Now()) {
			return helper.ErrInvalidState("session has already started")
		}

		// One live application per (dog, session).
		var dup int64
		if err := tx.Model(&model.TrainingCourseApplication{}).
			Where("application_dog_id = ? AND application_session_id = ? AND application_status IN ?",
				dogID, sessionID, model.NonTerminalStatuses).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return helper.ErrInvalidState("an application for this dog and session already exists")
		}

		headcount, err := SessionHeadcount(tx, sessionID)
		if err != nil {
			return err
		}

		status := model.ApplicationStatusApplied
		if info.LessonForm == "PRIVATE" {
			status = model.ApplicationStatusCounselingRequired
		}
		waitlisted := headcount >= int64(info.MaxStudents)
		if waitlisted {
			status = model.ApplicationStatusWaiting
		}

		app = model.TrainingCourseApplication{
			ApplicationDogID:     dogID,
			ApplicationSessionID: sessionID,
			ApplicationCreatedBy: userID,
			ApplicationStatus:    status,
			ApplicationAppliedAt: time.Now(),
		}
		if err := tx.Create(&app).Error; err != nil {
			return err
		}

		if waitlisted {
			w := model.Waiting{
				WaitingApplicationID: app.ApplicationID,
				WaitingSessionID:     sessionID,
				WaitingStatus:        model.WaitingStatusWaiting,
			}
			if err := tx.Create(&w).Error; err != nil {
				return err
			}
		}

		cmds = append(cmds, notifsvc.Command{
			TargetUserID:  info.TrainerID,
			Type:          notifmodel.NotificationTypeApplied,
			Title:         "New application",
			Message:       fmt.Sprintf("A new application arrived for session %d", sessionID),
			ReferenceID:   &app.ApplicationID,
			ReferenceType: refType("application"),
			ActorID:       &userID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchAll(ctx, cmds)
	return &app, nil
}

// Cancel ends the caller's own application. ACCEPT and PAID free a slot, so
// both trigger one promotion check; PAID additionally refunds through the
// payment orchestrator before the transition.
func (s *ApplicationService) Cancel(ctx context.Context, userID uuid.UUID, applicationID int64) error {
	// The refund talks to the gateway; do it before opening the local
	// transaction so a gateway failure leaves the application untouched.
	pre, err := s.getOwnedApplication(ctx, userID, applicationID)
	if err != nil {
		return err
	}
	if pre.ApplicationStatus == model.ApplicationStatusPaid {
		if s.payments == nil {
			return helper.ErrConfiguration("payment canceler not wired")
		}
		if err := s.payments.CancelPaidApplication(ctx, userID, applicationID); err != nil {
			return err
		}
	}

	var cmds []notifsvc.Command
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := loadApplication(tx, applicationID)
		if err != nil {
			return err
		}
		if app.ApplicationCreatedBy != userID {
			return helper.ErrUnauthorized("not the owner of this application")
		}

		freedSlot := false
		switch app.ApplicationStatus {
		case model.ApplicationStatusAccept, model.ApplicationStatusPaid:
			freedSlot = true
		case model.ApplicationStatusApplied, model.ApplicationStatusCounselingRequired:
			// nothing extra
		case model.ApplicationStatusWaiting:
			if err := tx.Model(&model.Waiting{}).
				Where("waiting_application_id = ?", app.ApplicationID).
				Update("waiting_status", model.WaitingStatusCancelled).Error; err != nil {
				return err
			}
		default:
			return helper.ErrInvalidState("application can no longer be cancelled")
		}

		if err := tx.Model(&model.TrainingCourseApplication{}).
			Where("application_id = ? AND application_status = ?", app.ApplicationID, app.ApplicationStatus).
			Updates(map[string]interface{}{
				"application_status":           model.ApplicationStatusCancelled,
				"application_payment_deadline": nil,
			}).Error; err != nil {
			return err
		}

		if freedSlot {
			promoted, err := PromoteNext(tx, app.ApplicationSessionID, s.paymentWindow)
			if err != nil {
				return err
			}
			if promoted != nil {
				cmds = append(cmds, s.promotionCommand(tx, *promoted))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatchAll(ctx, cmds)
	return nil
}

func (s *ApplicationService) getOwnedApplication(ctx context.Context, userID uuid.UUID, applicationID int64) (*model.TrainingCourseApplication, error) {
	app, err := loadApplication(s.db.WithContext(ctx), applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicationCreatedBy != userID {
		return nil, helper.ErrUnauthorized("not the owner of this application")
	}
	return app, nil
}

/* ===================== trainer operations ===================== */

// CompleteCounseling moves a PRIVATE-form application into the normal
// approval track.
func (s *ApplicationService) CompleteCounseling(ctx context.Context, trainerID uuid.UUID, applicationID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := loadApplication(tx, applicationID)
		if err != nil {
			return err
		}
		info, err := loadSessionInfo(tx, app.ApplicationSessionID)
		if err != nil {
			return err
		}
		if err := guardTrainer(info, trainerID); err != nil {
			return err
		}
		if app.ApplicationStatus != model.ApplicationStatusCounselingRequired {
			return helper.ErrInvalidState("application is not awaiting counseling")
		}
		return tx.Model(&model.TrainingCourseApplication{}).
			Where("application_id = ?", app.ApplicationID).
			Update("application_status", model.ApplicationStatusApplied).Error
	})
}

// Approve accepts an APPLIED application when capacity allows, otherwise
// parks it on the waitlist pre-approved. Approving a WAITING application
// marks its waiting entry eligible and promotes it right away when it heads
// the queue and a slot is free.
func (s *ApplicationService) Approve(ctx context.Context, trainerID uuid.UUID, applicationID int64) (model.ApplicationStatus, error) {
	var outcome model.ApplicationStatus
	var cmds []notifsvc.Command

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status, batch, err := s.approveOne(tx, trainerID, applicationID)
		if err != nil {
			return err
		}
		outcome = status
		cmds = append(cmds, batch...)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.dispatchAll(ctx, cmds)
	return outcome, nil
}

// approveOne applies the approve guards and transition for one application
// inside the caller's transaction.
func (s *ApplicationService) approveOne(tx *gorm.DB, trainerID uuid.UUID, applicationID int64) (model.ApplicationStatus, []notifsvc.Command, error) {
	app, err := loadApplication(tx, applicationID)
	if err != nil {
		return "", nil, err
	}
	info, err := loadSessionInfo(tx, app.ApplicationSessionID)
	if err != nil {
		return "", nil, err
	}
	if err := guardTrainer(info, trainerID); err != nil {
		return "", nil, err
	}

	if app.ApplicationStatus == model.ApplicationStatusWaiting {
		return s.approveWaiting(tx, trainerID, app)
	}
	if app.ApplicationStatus != model.ApplicationStatusApplied {
		return "", nil, helper.ErrInvalidState("application can not be approved from its current state")
	}

	deadline := time.Now().Add(s.paymentWindow)
	result, err := TryAccept(tx, app.ApplicationID, app.ApplicationSessionID, model.ApplicationStatusApplied, deadline)
	if err != nil {
		return "", nil, err
	}

	if result == CapacityAccepted {
		cmd := notifsvc.Command{
			TargetUserID:  app.ApplicationCreatedBy,
			Type:          notifmodel.NotificationTypeApproved,
			Title:         "Application approved",
			Message:       "Your application was approved. Complete the payment before the deadline.",
			ReferenceID:   &app.ApplicationID,
			ReferenceType: refType("application"),
			ActorID:       &trainerID,
		}
		return model.ApplicationStatusAccept, []notifsvc.Command{cmd}, nil
	}

	// Capacity full: waitlist with the trainer's approval carried along.
	if err := tx.Model(&model.TrainingCourseApplication{}).
		Where("application_id = ? AND application_status = ?", app.ApplicationID, model.ApplicationStatusApplied).
		Update("application_status", model.ApplicationStatusWaiting).Error; err != nil {
		return "", nil, err
	}
	w := model.Waiting{
		WaitingApplicationID: app.ApplicationID,
		WaitingSessionID:     app.ApplicationSessionID,
		WaitingStatus:        model.WaitingStatusWaiting,
		WaitingIsApproved:    true,
	}
	if err := tx.Create(&w).Error; err != nil {
		return "", nil, err
	}

	cmd := notifsvc.Command{
		TargetUserID:  app.ApplicationCreatedBy,
		Type:          notifmodel.NotificationTypeWaitlisted,
		Title:         "Session is full",
		Message:       "The session is full; you were placed on the waitlist and will be promoted automatically when a slot frees.",
		ReferenceID:   &app.ApplicationID,
		ReferenceType: refType("application"),
		ActorID:       &trainerID,
	}
	return model.ApplicationStatusWaiting, []notifsvc.Command{cmd}, nil
}

// approveWaiting marks a waitlisted application eligible for promotion and
// promotes immediately when possible. Without this path an application that
// entered the waitlist at apply time would have no way forward after the
// occupant cancels: the unapproved head would park the whole queue.
func (s *ApplicationService) approveWaiting(tx *gorm.DB, trainerID uuid.UUID, app *model.TrainingCourseApplication) (model.ApplicationStatus, []notifsvc.Command, error) {
	res := tx.Model(&model.Waiting{}).
		Where("waiting_application_id = ? AND waiting_status = ?", app.ApplicationID, model.WaitingStatusWaiting).
		Update("waiting_is_approved", true)
	if res.Error != nil {
		return "", nil, res.Error
	}
	if res.RowsAffected == 0 {
		return "", nil, helper.ErrInvalidState("application has no live waitlist entry")
	}

	promoted, err := PromoteNext(tx, app.ApplicationSessionID, s.paymentWindow)
	if err != nil {
		return "", nil, err
	}
	if promoted != nil && *promoted == app.ApplicationID {
		cmd := notifsvc.Command{
			TargetUserID:  app.ApplicationCreatedBy,
			Type:          notifmodel.NotificationTypeApproved,
			Title:         "Application approved",
			Message:       "Your application was approved. Complete the payment before the deadline.",
			ReferenceID:   &app.ApplicationID,
			ReferenceType: refType("application"),
			ActorID:       &trainerID,
		}
		return model.ApplicationStatusAccept, []notifsvc.Command{cmd}, nil
	}

	cmds := []notifsvc.Command{{
		TargetUserID:  app.ApplicationCreatedBy,
		Type:          notifmodel.NotificationTypeWaitlisted,
		Title:         "Waitlist entry approved",
		Message:       "Your waitlist entry was approved; you will be promoted automatically when a slot frees.",
		ReferenceID:   &app.ApplicationID,
		ReferenceType: refType("application"),
		ActorID:       &trainerID,
	}}
	// An earlier approved head may have been promoted instead.
	if promoted != nil {
		cmds = append(cmds, s.promotionCommand(tx, *promoted))
	}
	return model.ApplicationStatusWaiting, cmds, nil
}

// Reject refuses an application with a reason. Allowed from APPLIED and
// COUNSELING_REQUIRED.
func (s *ApplicationService) Reject(ctx context.Context, trainerID uuid.UUID, applicationID int64, reason string) error {
	var cmds []notifsvc.Command
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := loadApplication(tx, applicationID)
		if err != nil {
			return err
		}
		info, err := loadSessionInfo(tx, app.ApplicationSessionID)
		if err != nil {
			return err
		}
		if err := guardTrainer(info, trainerID); err != nil {
			return err
		}
		if app.ApplicationStatus != model.ApplicationStatusApplied &&
			app.ApplicationStatus != model.ApplicationStatusCounselingRequired {
			return helper.ErrInvalidState("application can not be rejected from its current state")
		}

		if err := tx.Model(&model.TrainingCourseApplication{}).
			Where("application_id = ?", app.ApplicationID).
			Updates(map[string]interface{}{
				"application_status":        model.ApplicationStatusRejected,
				"application_reject_reason": reason,
			}).Error; err != nil {
			return err
		}

		cmds = append(cmds, notifsvc.Command{
			TargetUserID:  app.ApplicationCreatedBy,
			Type:          notifmodel.NotificationTypeRejected,
			Title:         "Application rejected",
			Message:       reason,
			ReferenceID:   &app.ApplicationID,
			ReferenceType: refType("application"),
			ActorID:       &trainerID,
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatchAll(ctx, cmds)
	return nil
}

// BulkApprove approves a set of applications of one course in a single
/// transaction. All-or-nothing: an unknown id or a failed guard rolls the
// whole batch back. Applications that hit a full session are waitlisted
// pre-approved, which counts as success.
func (s *ApplicationService) BulkApprove(ctx context.Context, trainerID uuid.UUID, courseID uuid.UUID, applicationIDs []int64) error {
	if len(applicationIDs) == 0 {
		return helper.ErrBadRequest("no application ids given")
	}

	var cmds []notifsvc.Command
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.guardBatch(tx, trainerID, courseID, applicationIDs); err != nil {
			return err
		}
		for _, id := range applicationIDs {
			_, batch, err := s.approveOne(tx, trainerID, id)
			if err != nil {
				return err
			}
			cmds = append(cmds, batch...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatchAll(ctx, cmds)
	return nil
}

// BulkReject rejects a set of applications of one course with one reason in
// a single batch update. All-or-nothing: any unknown or
// out-of-state id fails the whole call.
func (s *ApplicationService) BulkReject(ctx context.Context, trainerID uuid.UUID, courseID uuid.UUID, applicationIDs []int64, reason string) error {
	if len(applicationIDs) == 0 {
		return helper.ErrBadRequest("no application ids given")
	}

	var targets []model.TrainingCourseApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.guardBatch(tx, trainerID, courseID, applicationIDs); err != nil {
			return err
		}

		if err := tx.
			Where("application_id IN ?", applicationIDs).
			Find(&targets).Error; err != nil {
			return err
		}
		for _, app := range targets {
			if app.ApplicationStatus != model.ApplicationStatusApplied &&
				app.ApplicationStatus != model.ApplicationStatusCounselingRequired {
				return helper.ErrInvalidState(fmt.Sprintf("application %d can not be rejected from its current state", app.ApplicationID))
			}
		}

		res := tx.Model(&model.TrainingCourseApplication{}).
			Where("application_id IN ?", applicationIDs).
			Updates(map[string]interface{}{
				"application_status":        model.ApplicationStatusRejected,
				"application_reject_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(applicationIDs)) {
			return helper.ErrInvalidState("bulk reject touched an unexpected number of rows")
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, app := range targets {
		id := app.ApplicationID
		actor := trainerID
		s.dispatch(ctx, notifsvc.Command{
			TargetUserID:  app.ApplicationCreatedBy,
			Type:          notifmodel.NotificationTypeRejected,
			Title:         "Application rejected",
			Message:       reason,
			ReferenceID:   &id,
			ReferenceType: refType("application"),
			ActorID:       &actor,
		})
	}
	return nil
}

// guardBatch verifies ownership of the course and that every given id is a
// live application of that course.
func (s *ApplicationService) guardBatch(tx *gorm.DB, trainerID, courseID uuid.UUID, applicationIDs []int64) error {
	var ownerID uuid.UUID
	err := tx.Raw(`
		SELECT training_course_trainer_id
		  FROM training_courses
		 WHERE training_course_id = ?
		   AND training_course_deleted_at IS NULL`, courseID).
		Scan(&ownerID).Error
	if err != nil {
		return err
	}
	if ownerID == uuid.Nil {
		return helper.ErrNotFound("course not found")
	}
	if ownerID != trainerID {
		return helper.ErrUnauthorized("not the trainer of this course")
	}

	var matched int64
	err = tx.Model(&model.TrainingCourseApplication{}).
		Joins("JOIN training_sessions s ON s.training_session_id = training_course_applications.application_session_id").
		Where("s.training_session_course_id = ? AND training_course_applications.application_id IN ?", courseID, applicationIDs).
		Count(&matched).Error
	if err != nil {
		return err
	}
	if matched != int64(len(applicationIDs)) {
		return helper.ErrNotFound("one or more applications do not exist on this course")
	}
	return nil
}

/* ===================== scheduler entry points ===================== */

// ExpireSessionDeadline expires every pre-payment application whose session
// starts within the lead window. ACCEPT is deliberately excluded; the
// payment-deadline sweep owns that state. The row set is fixed at sweep
// start.
func (s *ApplicationService) ExpireSessionDeadline(ctx context.Context, lead time.Duration) (int, error) {
	cutoff := time.Now().Add(lead)

	var expired []model.TrainingCourseApplication
	var cmds []notifsvc.Command

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Joins("JOIN training_sessions s ON s.training_session_id = training_course_applications.application_session_id").
			Where("s.training_session_start_at <= ?", cutoff).
			Where("training_course_applications.application_status IN ?", []model.ApplicationStatus{
				model.ApplicationStatusApplied,
				model.ApplicationStatusWaiting,
				model.ApplicationStatusCounselingRequired,
			}).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(expired))
		for _, app := range expired {
			ids = append(ids, app.ApplicationID)
		}

		if err := tx.Model(&model.TrainingCourseApplication{}).
			Where("application_id IN ? AND application_status IN ?", ids, []model.ApplicationStatus{
				model.ApplicationStatusApplied,
				model.ApplicationStatusWaiting,
				model.ApplicationStatusCounselingRequired,
			}).
			Update("application_status", model.ApplicationStatusExpired).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Waiting{}).
			Where("waiting_application_id IN ? AND waiting_status = ?", ids, model.WaitingStatusWaiting).
			Update("waiting_status", model.WaitingStatusExpired).Error; err != nil {
			return err
		}

		for _, app := range expired {
			id := app.ApplicationID
			cmds = append(cmds, notifsvc.Command{
				TargetUserID:  app.ApplicationCreatedBy,
				Type:          notifmodel.NotificationTypeExpired,
				Title:         "Application expired",
				Message:       "The session start deadline passed before the application completed.",
				ReferenceID:   &id,
				ReferenceType: refType("application"),
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.dispatchAll(ctx, cmds)
	return len(expired), nil
}

// ExpirePaymentDeadline expires unpaid ACCEPT applications past their
// payment deadline and promotes the waitlist head of each freed session.
// One promotion per freed slot; TryAccept re-checks capacity every time.
func (s *ApplicationService) ExpirePaymentDeadline(ctx context.Context) (expiredCount, promotedCount int, err error) {
	now := time.Now()

	var expired []model.TrainingCourseApplication
	var cmds []notifsvc.Command

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("application_status = ? AND application_payment_deadline IS NOT NULL AND application_payment_deadline < ?",
				model.ApplicationStatusAccept, now).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(expired))
		for _, app := range expired {
			ids = append(ids, app.ApplicationID)
		}

		if err := tx.Model(&model.TrainingCourseApplication{}).
			Where("application_id IN ? AND application_status = ?", ids, model.ApplicationStatusAccept).
			Updates(map[string]interface{}{
				"application_status":           model.ApplicationStatusExpired,
				"application_payment_deadline": nil,
			}).Error; err != nil {
			return err
		}

		for _, app := range expired {
			id := app.ApplicationID
			cmds = append(cmds, notifsvc.Command{
				TargetUserID:  app.ApplicationCreatedBy,
				Type:          notifmodel.NotificationTypeExpired,
				Title:         "Payment deadline passed",
				Message:       "The payment deadline passed; the slot was released.",
				ReferenceID:   &id,
				ReferenceType: refType("application"),
			})

			promoted, err := PromoteNext(tx, app.ApplicationSessionID, s.paymentWindow)
			if err != nil {
				return err
			}
			if promoted != nil {
				promotedCount++
				cmds = append(cmds, s.promotionCommand(tx, *promoted))
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	s.dispatchAll(ctx, cmds)
	return len(expired), promotedCount, nil
}

/* ===================== notification plumbing ===================== */

func (s *ApplicationService) promotionCommand(tx *gorm.DB, applicationID int64) notifsvc.Command {
	var ownerID uuid.UUID
	if err := tx.Raw(`
		SELECT application_created_by
		  FROM training_course_applications
		 WHERE application_id = ?`, applicationID).Scan(&ownerID).Error; err != nil {
		log.Printf("[NOTIFY] owner lookup for promoted application %d failed: %v", applicationID, err)
	}

	id := applicationID
	return notifsvc.Command{
		TargetUserID:  ownerID,
		Type:          notifmodel.NotificationTypePromoted,
		Title:         "Promoted from the waitlist",
		Message:       "A slot freed up and your application was accepted. Complete the payment before the new deadline.",
		ReferenceID:   &id,
		ReferenceType: refType("application"),
	}
}

func (s *ApplicationService) dispatch(ctx context.Context, cmd notifsvc.Command) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, cmd)
	}
}

func (s *ApplicationService) dispatchAll(ctx context.Context, cmds []notifsvc.Command) {
	for _, cmd := range cmds {
		s.dispatch(ctx, cmd)
	}
}

func refType(s string) *string { return &s }
