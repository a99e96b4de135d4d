package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"dogschool_backend/internals/configs"
	appsvc "dogschool_backend/internals/features/dogschool/applications/service"
	coursesvc "dogschool_backend/internals/features/dogschool/courses/service"
)

// Scheduler runs the three periodic jobs: session-deadline expiry,
// payment-deadline expiry with waitlist promotion, and status rolling.
// Every job is idempotent, so overlapping deployments or a catch-up run
// after downtime converge to the same state.
type Scheduler struct {
	cron         *cron.Cron
	applications *appsvc.ApplicationService
	roller       *coursesvc.StatusRoller
	cfg          configs.SchedulerConfig
}

func New(applications *appsvc.ApplicationService, roller *coursesvc.StatusRoller, cfg configs.SchedulerConfig) *Scheduler {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	return &Scheduler{
		cron:         c,
		applications: applications,
		roller:       roller,
		cfg:          cfg,
	}
}

// Start registers the enabled jobs and launches the cron loop. A job that
// fails to register is logged and skipped; the others still run.
func (s *Scheduler) Start() {
	if s.cfg.SessionDeadlineOn {
		s.add("session-deadline", s.cfg.SessionDeadlineCron, s.runSessionDeadline)
	} else {
		log.Println("[SCHEDULER] session-deadline job disabled")
	}
	if s.cfg.PaymentDeadlineOn {
		s.add("payment-deadline", s.cfg.PaymentDeadlineCron, s.runPaymentDeadline)
	} else {
		log.Println("[SCHEDULER] payment-deadline job disabled")
	}
	if s.cfg.StatusRollOn {
		s.add("status-roll", s.cfg.StatusRollCron, s.runStatusRoll)
	} else {
		log.Println("[SCHEDULER] status-roll job disabled")
	}
	s.cron.Start()
	log.Println("[SCHEDULER] started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[SCHEDULER] stopped")
}

func (s *Scheduler) add(name, spec string, job func()) {
	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[SCHEDULER] %s panicked: %v", name, r)
			}
		}()
		job()
	}
	if _, err := s.cron.AddFunc(spec, wrapped); err != nil {
		log.Printf("[SCHEDULER] can not register %s (%q): %v", name, spec, err)
		return
	}
	log.Printf("[SCHEDULER] %s registered (%s)", name, spec)
}

func (s *Scheduler) runSessionDeadline() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lead := time.Duration(s.cfg.SessionDeadlineHours) * time.Hour
	n, err := s.applications.ExpireSessionDeadline(ctx, lead)
	if err != nil {
		log.Printf("[SCHEDULER] session-deadline: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[SCHEDULER] session-deadline: %d applications expired", n)
	}
}

func (s *Scheduler) runPaymentDeadline() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	expired, promoted, err := s.applications.ExpirePaymentDeadline(ctx)
	if err != nil {
		log.Printf("[SCHEDULER] payment-deadline: %v", err)
		return
	}
	if expired > 0 || promoted > 0 {
		log.Printf("[SCHEDULER] payment-deadline: %d expired, %d promoted", expired, promoted)
	}
}

func (s *Scheduler) runStatusRoll() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.roller.RollAll(ctx)
}
