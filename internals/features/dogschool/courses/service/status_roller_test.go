package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var courseSchema = []string{
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
}

func openCourseTestDB(t *testing.T) *gorm.DB {
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
	for _, stmt := range courseSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}

func insertCourse(t *testing.T, db *gorm.DB, status string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(`
		INSERT INTO training_courses
			(training_course_id, training_course_trainer_id, training_course_tag,
			 training_course_title, training_course_type, training_course_lesson_form,
			 training_course_status)
		VALUES (?, ?, ?, 'Recall training', 'MULTI', 'WALK', ?)`,
		id, uuid.New(), "course-"+id.String()[:8], status).Error
	if err != nil {
		t.Fatalf("insert course: %v", err)
	}
	return id
}

func insertSession(t *testing.T, db *gorm.DB, courseID uuid.UUID, startAt, endAt time.Time, status string) {
	t.Helper()
	err := db.Exec(`
		INSERT INTO training_sessions
			(training_session_course_id, training_session_no,
			 training_session_start_at, training_session_end_at,
			 training_session_status, training_session_max_students, training_session_price)
		VALUES (?, 1, ?, ?, ?, 5, 0)`,
		courseID, startAt, endAt, status).Error
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
}

func courseStatus(t *testing.T, db *gorm.DB, id uuid.UUID) string {
	t.Helper()
	var s string
	if err := db.Raw(`SELECT training_course_status FROM training_courses WHERE training_course_id = ?`, id).Scan(&s).Error; err != nil {
		t.Fatalf("course status: %v", err)
	}
	return s
}

func TestRollerLifecycle(t *testing.T) {
	db := openCourseTestDB(t)
	roller := NewStatusRoller(db)
	ctx := context.Background()
	now := time.Now()

	// Course with a started-but-unfinished session.
	running := insertCourse(t, db, "SCHEDULED")
	insertSession(t, db, running, now.Add(-time.Hour), now.Add(time.Hour), "SCHEDULED")

	// Course whose only session is already over.
	over := insertCourse(t, db, "IN_PROGRESS")
	insertSession(t, db, over, now.Add(-3*time.Hour), now.Add(-time.Hour), "SCHEDULED")

	// Future course: nothing should move.
	future := insertCourse(t, db, "SCHEDULED")
	insertSession(t, db, future, now.Add(24*time.Hour), now.Add(26*time.Hour), "SCHEDULED")

	if n, err := roller.RollSessions(ctx); err != nil || n != 1 {
		t.Fatalf("RollSessions = %d, %v; want 1", n, err)
	}
	if n, err := roller.RollCoursesInProgress(ctx); err != nil || n != 1 {
		t.Fatalf("RollCoursesInProgress = %d, %v; want 1", n, err)
	}
	if n, err := roller.RollCoursesDone(ctx); err != nil || n != 1 {
		t.Fatalf("RollCoursesDone = %d, %v; want 1", n, err)
	}

	if got := courseStatus(t, db, running); got != "IN_PROGRESS" {
		t.Fatalf("running course = %s, want IN_PROGRESS", got)
	}
	if got := courseStatus(t, db, over); got != "DONE" {
		t.Fatalf("over course = %s, want DONE", got)
	}
	if got := courseStatus(t, db, future); got != "SCHEDULED" {
		t.Fatalf("future course = %s, want SCHEDULED", got)
	}
}

func TestRollerIdempotent(t *testing.T) {
	db := openCourseTestDB(t)
	roller := NewStatusRoller(db)
	ctx := context.Background()
	now := time.Now()

	course := insertCourse(t, db, "SCHEDULED")
	insertSession(t, db, course, now.Add(-3*time.Hour), now.Add(-time.Hour), "SCHEDULED")

	roller.RollAll(ctx)
	if got := courseStatus(t, db, course); got != "DONE" {
		t.Fatalf("course = %s, want DONE after first pass", got)
	}

	// A second pass on an unchanged clock matches zero rows.
	if n, err := roller.RollSessions(ctx); err != nil || n != 0 {
		t.Fatalf("second RollSessions = %d, %v; want 0", n, err)
	}
	if n, err := roller.RollCoursesInProgress(ctx); err != nil || n != 0 {
		t.Fatalf("second RollCoursesInProgress = %d, %v; want 0", n, err)
	}
	if n, err := roller.RollCoursesDone(ctx); err != nil || n != 0 {
		t.Fatalf("second RollCoursesDone = %d, %v; want 0", n, err)
	}
}
