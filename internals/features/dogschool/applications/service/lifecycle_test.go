package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	model "dogschool_backend/internals/features/dogschool/applications/model"
	notifsvc "dogschool_backend/internals/features/dogschool/notifications/service"
	helper "dogschool_backend/internals/helpers"
)

var testSchema = []string{
	`CREATE TABLE training_courses (
		training_course_id TEXT PRIMARY KEY,
		training_course_trainer_id TEXT NOT NULL,
		training_course_tag TEXT NOT NULL UNIQUE,
		training_course_title TEXT NOT NULL,
		training_course_description TEXT,
		training_course_type TEXT NOT NULL,
		training_course_lesson_form TEXT NOT NULL,
		training_course_status TEXT NOT NULL DEFAULT 'SCHEDULED',
		training_course_is_free INTEGER NOT NULL DEFAULT 0,
		training_course_schedule TEXT,
		training_course_image_key TEXT,
		training_course_created_at DATETIME,
		training_course_updated_at DATETIME,
		training_course_deleted_at DATETIME
	)`,
	`CREATE TABLE training_sessions (
		training_session_id INTEGER PRIMARY KEY AUTOINCREMENT,
		training_session_course_id TEXT NOT NULL,
		training_session_no INTEGER NOT NULL,
		training_session_start_at DATETIME NOT NULL,
		training_session_end_at DATETIME NOT NULL,
		training_session_status TEXT NOT NULL DEFAULT 'SCHEDULED',
		training_session_max_students INTEGER NOT NULL,
		training_session_price INTEGER NOT NULL,
		training_session_created_at DATETIME,
		training_session_updated_at DATETIME,
		training_session_deleted_at DATETIME
	)`,
	`CREATE TABLE training_course_applications (
		application_id INTEGER PRIMARY KEY AUTOINCREMENT,
		application_dog_id TEXT NOT NULL,
		application_session_id INTEGER NOT NULL,
		application_created_by TEXT NOT NULL,
		application_status TEXT NOT NULL DEFAULT 'APPLIED',
		application_reject_reason TEXT,
		application_applied_at DATETIME NOT NULL,
		application_payment_deadline DATETIME,
		application_created_at DATETIME,
		application_updated_at DATETIME,
		application_deleted_at DATETIME
	)`,
	`CREATE TABLE waitings (
		waiting_id INTEGER PRIMARY KEY AUTOINCREMENT,
		waiting_application_id INTEGER NOT NULL UNIQUE,
		waiting_session_id INTEGER NOT NULL,
		waiting_status TEXT NOT NULL DEFAULT 'WAITING',
		waiting_is_approved INTEGER NOT NULL DEFAULT 0,
		waiting_created_at DATETIME,
		waiting_updated_at DATETIME,
		waiting_deleted_at DATETIME
	)`,
	`CREATE TABLE notifications (
		notification_id INTEGER PRIMARY KEY AUTOINCREMENT,
		notification_target_user_id TEXT NOT NULL,
		notification_type TEXT NOT NULL,
		notification_title TEXT NOT NULL,
		notification_message TEXT,
		notification_reference_id INTEGER,
		notification_reference_type TEXT,
		notification_action_url TEXT,
		notification_actor_id TEXT,
		notification_is_read INTEGER NOT NULL DEFAULT 0,
		notification_created_at DATETIME,
		notification_deleted_at DATETIME
	)`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *ApplicationService {
	t.Helper()
	dispatcher := notifsvc.NewDispatcher(db, notifsvc.NewRegistry())
	return NewApplicationService(db, dispatcher, 24)
}

func seedCourse(t *testing.T, db *gorm.DB, trainerID uuid.UUID, lessonForm string) uuid.UUID {
	t.Helper()
	courseID := uuid.New()
	err := db.Exec(`
		INSERT INTO training_courses
			(training_course_id, training_course_trainer_id, training_course_tag,
			 training_course_title, training_course_type, training_course_lesson_form,
			 training_course_status)
		VALUES (?, ?, ?, ?, 'MULTI', ?, 'SCHEDULED')`,
		courseID, trainerID, "course-"+courseID.String()[:8], "Obedience basics", lessonForm).Error
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return courseID
}

func seedSession(t *testing.T, db *gorm.DB, courseID uuid.UUID, maxStudents, price int, startAt time.Time) int64 {
	t.Helper()
	res := db.Exec(`
		INSERT INTO training_sessions
			(training_session_course_id, training_session_no,
			 training_session_start_at, training_session_end_at,
			 training_session_status, training_session_max_students, training_session_price)
		VALUES (?, 1, ?, ?, 'SCHEDULED', ?, ?)`,
		courseID, startAt, startAt.Add(2*time.Hour), maxStudents, price)
	if res.Error != nil {
		t.Fatalf("seed session: %v", res.Error)
	}
	var id int64
	if err := db.Raw(`SELECT training_session_id FROM training_sessions ORDER BY training_session_id DESC LIMIT 1`).Scan(&id).Error; err != nil {
		t.Fatalf("session id: %v", err)
	}
	return id
}

func appStatus(t *testing.T, db *gorm.DB, appID int64) model.ApplicationStatus {
	t.Helper()
	var s model.ApplicationStatus
	if err := db.Raw(`SELECT application_status FROM training_course_applications WHERE application_id = ?`, appID).Scan(&s).Error; err != nil {
		t.Fatalf("load status: %v", err)
	}
	return s
}

func TestApplyAndApprove(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 2, 10000, time.Now().Add(48*time.Hour))

	user := uuid.New()
	app, err := svc.Apply(ctx, user, uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.ApplicationStatus != model.ApplicationStatusApplied {
		t.Fatalf("status = %s, want APPLIED", app.ApplicationStatus)
	}

	outcome, err := svc.Approve(ctx, trainer, app.ApplicationID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if outcome != model.ApplicationStatusAccept {
		t.Fatalf("outcome = %s, want ACCEPT", outcome)
	}

	var deadline *time.Time
	if err := db.Raw(`SELECT application_payment_deadline FROM training_course_applications WHERE application_id = ?`, app.ApplicationID).Scan(&deadline).Error; err != nil {
		t.Fatalf("deadline: %v", err)
	}
	if deadline == nil || !deadline.After(time.Now()) {
		t.Fatal("accepted application should carry a future payment deadline")
	}
}

func TestApplyDuplicateRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	courseID := seedCourse(t, db, uuid.New(), "GROUP")
	sessionID := seedSession(t, db, courseID, 5, 0, time.Now().Add(48*time.Hour))

	user, dog := uuid.New(), uuid.New()
	if _, err := svc.Apply(ctx, user, dog, sessionID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	_, err := svc.Apply(ctx, user, dog, sessionID)
	if !helper.IsCode(err, helper.CodeInvalidState) {
		t.Fatalf("duplicate apply error = %v, want INVALID_STATE", err)
	}
}

func TestApplyPrivateFormStartsCounseling(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "PRIVATE")
	sessionID := seedSession(t, db, courseID, 5, 5000, time.Now().Add(48*time.Hour))

	app, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.ApplicationStatus != model.ApplicationStatusCounselingRequired {
		t.Fatalf("status = %s, want COUNSELING_REQUIRED", app.ApplicationStatus)
	}

	// Approval is illegal until counseling completes.
	if _, err := svc.Approve(ctx, trainer, app.ApplicationID); !helper.IsCode(err, helper.CodeInvalidState) {
		t.Fatalf("approve before counseling = %v, want INVALID_STATE", err)
	}

	if err := svc.CompleteCounseling(ctx, trainer, app.ApplicationID); err != nil {
		t.Fatalf("complete counseling: %v", err)
	}
	if got := appStatus(t, db, app.ApplicationID); got != model.ApplicationStatusApplied {
		t.Fatalf("status = %s, want APPLIED", got)
	}
	if _, err := svc.Approve(ctx, trainer, app.ApplicationID); err != nil {
		t.Fatalf("approve after counseling: %v", err)
	}
}

func TestApproveBeyondCapacityWaitlists(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 1, 10000, time.Now().Add(48*time.Hour))

	first, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply first: %v", err)
	}
	second, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply second: %v", err)
	}

	if outcome, err := svc.Approve(ctx, trainer, first.ApplicationID); err != nil || outcome != model.ApplicationStatusAccept {
		t.Fatalf("approve first = %s, %v", outcome, err)
	}
	outcome, err := svc.Approve(ctx, trainer, second.ApplicationID)
	if err != nil {
		t.Fatalf("approve second: %v", err)
	}
	if outcome != model.ApplicationStatusWaiting {
		t.Fatalf("outcome = %s, want WAITING", outcome)
	}

	// Capacity never exceeded.
	n, err := SessionHeadcount(db, sessionID)
	if err != nil {
		t.Fatalf("headcount: %v", err)
	}
	if n != 1 {
		t.Fatalf("headcount = %d, want 1", n)
	}

	var approved bool
	if err := db.Raw(`SELECT waiting_is_approved FROM waitings WHERE waiting_application_id = ?`, second.ApplicationID).Scan(&approved).Error; err != nil {
		t.Fatalf("waiting row: %v", err)
	}
	if !approved {
		t.Fatal("trainer-approved waitlist entry should carry is_approved")
	}
}

func TestCancelFreesSlotAndPromotes(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 1, 10000, time.Now().Add(48*time.Hour))

	ownerA := uuid.New()
	a, err := svc.Apply(ctx, ownerA, uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply A: %v", err)
	}
	b, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply B: %v", err)
	}
	if _, err := svc.Approve(ctx, trainer, a.ApplicationID); err != nil {
		t.Fatalf("approve A: %v", err)
	}
	if _, err := svc.Approve(ctx, trainer, b.ApplicationID); err != nil {
		t.Fatalf("approve B: %v", err)
	}

	if err := svc.Cancel(ctx, ownerA, a.ApplicationID); err != nil {
		t.Fatalf("cancel A: %v", err)
	}

	if got := appStatus(t, db, a.ApplicationID); got != model.ApplicationStatusCancelled {
		t.Fatalf("A status = %s, want CANCELLED", got)
	}
	if got := appStatus(t, db, b.ApplicationID); got != model.ApplicationStatusAccept {
		t.Fatalf("B status = %s, want ACCEPT after promotion", got)
	}

	var ws model.WaitingStatus
	if err := db.Raw(`SELECT waiting_status FROM waitings WHERE waiting_application_id = ?`, b.ApplicationID).Scan(&ws).Error; err != nil {
		t.Fatalf("waiting row: %v", err)
	}
	if ws != model.WaitingStatusEntered {
		t.Fatalf("waiting status = %s, want ENTERED", ws)
	}
}

func TestApproveWaitlistedAfterSlotFrees(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 1, 10000, time.Now().Add(48*time.Hour))

	ownerA := uuid.New()
	a, err := svc.Apply(ctx, ownerA, uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply A: %v", err)
	}
	if _, err := svc.Approve(ctx, trainer, a.ApplicationID); err != nil {
		t.Fatalf("approve A: %v", err)
	}

	// Session is full, so B lands on the waitlist unapproved.
	b, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply B: %v", err)
	}
	if b.ApplicationStatus != model.ApplicationStatusWaiting {
		t.Fatalf("B status = %s, want WAITING", b.ApplicationStatus)
	}

	// A cancels; B stays parked because the head is not approved yet.
	if err := svc.Cancel(ctx, ownerA, a.ApplicationID); err != nil {
		t.Fatalf("cancel A: %v", err)
	}
	if got := appStatus(t, db, b.ApplicationID); got != model.ApplicationStatusWaiting {
		t.Fatalf("B status = %s, want WAITING before approval", got)
	}

	// Trainer approval marks the entry eligible and fills the free slot.
	outcome, err := svc.Approve(ctx, trainer, b.ApplicationID)
	if err != nil {
		t.Fatalf("approve B: %v", err)
	}
	if outcome != model.ApplicationStatusAccept {
		t.Fatalf("outcome = %s, want ACCEPT", outcome)
	}

	var deadline *time.Time
	if err := db.Raw(`SELECT application_payment_deadline FROM training_course_applications WHERE application_id = ?`, b.ApplicationID).Scan(&deadline).Error; err != nil {
		t.Fatalf("deadline: %v", err)
	}
	if deadline == nil || !deadline.After(time.Now()) {
		t.Fatal("promoted application should carry a future payment deadline")
	}

	var ws model.WaitingStatus
	if err := db.Raw(`SELECT waiting_status FROM waitings WHERE waiting_application_id = ?`, b.ApplicationID).Scan(&ws).Error; err != nil {
		t.Fatalf("waiting row: %v", err)
	}
	if ws != model.WaitingStatusEntered {
		t.Fatalf("waiting status = %s, want ENTERED", ws)
	}
}

func TestApproveWaitlistedWhileFullStaysQueued(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 1, 10000, time.Now().Add(48*time.Hour))

	ownerA := uuid.New()
	a, err := svc.Apply(ctx, ownerA, uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply A: %v", err)
	}
	if _, err := svc.Approve(ctx, trainer, a.ApplicationID); err != nil {
		t.Fatalf("approve A: %v", err)
	}
	b, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply B: %v", err)
	}

	// Slot still taken: approval only marks the entry eligible.
	outcome, err := svc.Approve(ctx, trainer, b.ApplicationID)
	if err != nil {
		t.Fatalf("approve B: %v", err)
	}
	if outcome != model.ApplicationStatusWaiting {
		t.Fatalf("outcome = %s, want WAITING", outcome)
	}
	var approved bool
	if err := db.Raw(`SELECT waiting_is_approved FROM waitings WHERE waiting_application_id = ?`, b.ApplicationID).Scan(&approved).Error; err != nil {
		t.Fatalf("waiting row: %v", err)
	}
	if !approved {
		t.Fatal("approved waitlist entry should carry is_approved")
	}

	// Once the slot frees, the pre-approved head promotes automatically.
	if err := svc.Cancel(ctx, ownerA, a.ApplicationID); err != nil {
		t.Fatalf("cancel A: %v", err)
	}
	if got := appStatus(t, db, b.ApplicationID); got != model.ApplicationStatusAccept {
		t.Fatalf("B status = %s, want ACCEPT after promotion", got)
	}
}

func TestUnapprovedHeadBlocksQueue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	courseID := seedCourse(t, db, uuid.New(), "GROUP")
	sessionID := seedSession(t, db, courseID, 1, 10000, time.Now().Add(48*time.Hour))

	// Two waitlisted applications; only the second is pre-approved. Strict
	// FIFO means the unapproved head parks the whole queue.
	mkWaiting := func(approved bool) int64 {
		app := model.TrainingCourseApplication{
			ApplicationDogID:     uuid.New(),
			ApplicationSessionID: sessionID,
			ApplicationCreatedBy: uuid.New(),
			ApplicationStatus:    model.ApplicationStatusWaiting,
			ApplicationAppliedAt: time.Now(),
		}
		if err := db.Create(&app).Error; err != nil {
			t.Fatalf("seed application: %v", err)
		}
		w := model.Waiting{
			WaitingApplicationID: app.ApplicationID,
			WaitingSessionID:     sessionID,
			WaitingStatus:        model.WaitingStatusWaiting,
			WaitingIsApproved:    approved,
		}
		if err := db.Create(&w).Error; err != nil {
			t.Fatalf("seed waiting: %v", err)
		}
		return app.ApplicationID
	}
	head := mkWaiting(false)
	tail := mkWaiting(true)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		promoted, err := PromoteNext(tx, sessionID, 24*time.Hour)
		if err != nil {
			return err
		}
		if promoted != nil {
			t.Fatalf("promoted %d, want none (head not approved)", *promoted)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}

	if got := appStatus(t, db, head); got != model.ApplicationStatusWaiting {
		t.Fatalf("head status = %s, want WAITING", got)
	}
	if got := appStatus(t, db, tail); got != model.ApplicationStatusWaiting {
		t.Fatalf("tail status = %s, want WAITING", got)
	}
}

func TestPaymentDeadlineExpiryPromotesNext(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 1, 10000, time.Now().Add(72*time.Hour))

	a, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply A: %v", err)
	}
	b, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply B: %v", err)
	}
	if _, err := svc.Approve(ctx, trainer, a.ApplicationID); err != nil {
		t.Fatalf("approve A: %v", err)
	}
	if _, err := svc.Approve(ctx, trainer, b.ApplicationID); err != nil {
		t.Fatalf("approve B: %v", err)
	}

	// A misses the payment deadline.
	if err := db.Exec(`
		UPDATE training_course_applications
		   SET application_payment_deadline = ?
		 WHERE application_id = ?`,
		time.Now().Add(-time.Hour), a.ApplicationID).Error; err != nil {
		t.Fatalf("backdate deadline: %v", err)
	}

	expired, promoted, err := svc.ExpirePaymentDeadline(ctx)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if expired != 1 || promoted != 1 {
		t.Fatalf("expired=%d promoted=%d, want 1/1", expired, promoted)
	}

	if got := appStatus(t, db, a.ApplicationID); got != model.ApplicationStatusExpired {
		t.Fatalf("A status = %s, want EXPIRED", got)
	}
	if got := appStatus(t, db, b.ApplicationID); got != model.ApplicationStatusAccept {
		t.Fatalf("B status = %s, want ACCEPT", got)
	}

	var deadline *time.Time
	if err := db.Raw(`SELECT application_payment_deadline FROM training_course_applications WHERE application_id = ?`, b.ApplicationID).Scan(&deadline).Error; err != nil {
		t.Fatalf("deadline: %v", err)
	}
	if deadline == nil || !deadline.After(time.Now()) {
		t.Fatal("promoted application should get a fresh payment deadline")
	}

	// Second sweep on an unchanged clock is a no-op.
	expired, promoted, err = svc.ExpirePaymentDeadline(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if expired != 0 || promoted != 0 {
		t.Fatalf("second sweep expired=%d promoted=%d, want 0/0", expired, promoted)
	}
}

func TestSessionDeadlineSweepLeavesAcceptAlone(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	// Session starts in one hour, well inside the 24h lead window.
	sessionID := seedSession(t, db, courseID, 5, 10000, time.Now().Add(time.Hour))

	accepted, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply accepted: %v", err)
	}
	if _, err := svc.Approve(ctx, trainer, accepted.ApplicationID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pending, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply pending: %v", err)
	}

	n, err := svc.ExpireSessionDeadline(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}

	// ACCEPT belongs to the payment-deadline sweep, not this one.
	if got := appStatus(t, db, accepted.ApplicationID); got != model.ApplicationStatusAccept {
		t.Fatalf("accepted status = %s, want ACCEPT", got)
	}
	if got := appStatus(t, db, pending.ApplicationID); got != model.ApplicationStatusExpired {
		t.Fatalf("pending status = %s, want EXPIRED", got)
	}
}

func TestBulkRejectAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 5, 10000, time.Now().Add(48*time.Hour))

	a, _ := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	b, _ := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	c, _ := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if _, err := svc.Approve(ctx, trainer, c.ApplicationID); err != nil {
		t.Fatalf("approve c: %v", err)
	}

	// c is ACCEPT, so the whole batch must fail.
	err := svc.BulkReject(ctx, trainer, courseID,
		[]int64{a.ApplicationID, b.ApplicationID, c.ApplicationID}, "course restructured")
	if !helper.IsCode(err, helper.CodeInvalidState) {
		t.Fatalf("bulk reject error = %v, want INVALID_STATE", err)
	}
	if got := appStatus(t, db, a.ApplicationID); got != model.ApplicationStatusApplied {
		t.Fatalf("a status = %s, want APPLIED (rolled back)", got)
	}
	if got := appStatus(t, db, b.ApplicationID); got != model.ApplicationStatusApplied {
		t.Fatalf("b status = %s, want APPLIED (rolled back)", got)
	}

	// A clean batch lands entirely.
	if err := svc.BulkReject(ctx, trainer, courseID,
		[]int64{a.ApplicationID, b.ApplicationID}, "course restructured"); err != nil {
		t.Fatalf("bulk reject: %v", err)
	}
	if got := appStatus(t, db, a.ApplicationID); got != model.ApplicationStatusRejected {
		t.Fatalf("a status = %s, want REJECTED", got)
	}
	if got := appStatus(t, db, b.ApplicationID); got != model.ApplicationStatusRejected {
		t.Fatalf("b status = %s, want REJECTED", got)
	}
}

func TestTrainerGuards(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trainer := uuid.New()
	courseID := seedCourse(t, db, trainer, "GROUP")
	sessionID := seedSession(t, db, courseID, 5, 10000, time.Now().Add(48*time.Hour))

	app, err := svc.Apply(ctx, uuid.New(), uuid.New(), sessionID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	stranger := uuid.New()
	if _, err := svc.Approve(ctx, stranger, app.ApplicationID); !helper.IsCode(err, helper.CodeUnauthorized) {
		t.Fatalf("approve by stranger = %v, want UNAUTHORIZED", err)
	}
	if err := svc.Reject(ctx, stranger, app.ApplicationID, "nope"); !helper.IsCode(err, helper.CodeUnauthorized) {
		t.Fatalf("reject by stranger = %v, want UNAUTHORIZED", err)
	}
	if err := svc.Cancel(ctx, stranger, app.ApplicationID); !helper.IsCode(err, helper.CodeUnauthorized) {
		t.Fatalf("cancel by stranger = %v, want UNAUTHORIZED", err)
	}
}
