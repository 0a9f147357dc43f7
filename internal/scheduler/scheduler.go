// Package scheduler drives the decision engine on bar close: a cron-timed
// wait rather than busy-polling, one full cycle per tick.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/haruquant/swingrisk/internal/engine"
	"github.com/haruquant/swingrisk/internal/monitoring"
	"github.com/haruquant/swingrisk/internal/notifications"
	"github.com/haruquant/swingrisk/internal/recorder"
	"github.com/haruquant/swingrisk/pkg/reporting"
	"github.com/haruquant/swingrisk/pkg/types"
)

// Scheduler runs the engine cycle on a cron schedule and fans the results
// out to the recorder, the notifier, the console and the metrics. It also
// keeps the session's decisions and cycle records for the end-of-session
// report.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *engine.Engine
	Notifier notifications.Notifier
	Recorder recorder.Recorder
	Health   *monitoring.HealthChecker
	Console  *reporting.ConsoleReporter
	Ctx      context.Context

	// runMu serializes decision cycles across triggers (cron, websocket bar
	// close, run-on-start). The engine's position book is single-writer; a
	// cycle in flight is never overlapped.
	runMu sync.Mutex

	mu        sync.Mutex
	decisions []types.Decision
	cycles    []recorder.CycleRecord
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng *engine.Engine, notifier notifications.Notifier, rec recorder.Recorder, health *monitoring.HealthChecker) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		Notifier: notifier,
		Recorder: rec,
		Health:   health,
		Console:  reporting.NewConsoleReporter(),
		Ctx:      ctx,
	}
}

// Register wires the cycle task to the bar-close cron expression, e.g.
// "5 0 * * * *" to run five seconds into every hour.
func (s *Scheduler) Register(cycleCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunCycleNow executes one cycle immediately (manual trigger / run-on-start /
// websocket bar close).
func (s *Scheduler) RunCycleNow() {
	s.cycleTask()
}

// Session returns everything this session produced so far, for the
// end-of-session report.
func (s *Scheduler) Session() ([]types.Decision, []recorder.CycleRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	decisions := append([]types.Decision(nil), s.decisions...)
	cycles := append([]recorder.CycleRecord(nil), s.cycles...)
	return decisions, cycles
}

func (s *Scheduler) cycleTask() {
	if !s.runMu.TryLock() {
		log.Println("[WARN] decision cycle already in flight, skipping trigger")
		return
	}
	defer s.runMu.Unlock()

	log.Println("[INFO] running decision cycle")

	result, err := s.Engine.EvaluateCycle(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] decision cycle: %v", err)
		monitoring.RecordError("cycle")
		if s.Health != nil {
			s.Health.ProviderDown(err)
		}
		s.trySend("error", fmt.Sprintf("decision cycle failed: %v", err))
		return
	}

	for _, d := range result.Decisions {
		monitoring.RecordDecision(d.Symbol, d.Direction.String(), string(d.Reason), d.Accepted, d.Lots)
		if err := s.Recorder.RecordDecision(d); err != nil {
			log.Printf("[ERROR] record decision: %v", err)
		}
		if s.Notifier != nil {
			if err := s.Notifier.SendDecision(d); err != nil {
				log.Printf("[ERROR] send decision alert: %v", err)
			}
		}
	}

	snap := result.Snapshot
	monitoring.UpdatePortfolio(snap.VaR, snap.NominalValue, len(snap.Positions))
	monitoring.RecordCycle(result.Elapsed.Seconds(), len(result.Skipped))
	if s.Health != nil {
		s.Health.CycleCompleted(snap.VaR)
	}

	cycle := recorder.CycleRecord{
		Timestamp:    time.Now().UTC(),
		Positions:    len(snap.Positions),
		NominalValue: snap.NominalValue,
		StdDev:       snap.StdDev,
		VaR:          snap.VaR,
		Skipped:      len(result.Skipped),
		Elapsed:      result.Elapsed,
	}
	if err := s.Recorder.RecordCycle(&cycle); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}

	s.mu.Lock()
	s.decisions = append(s.decisions, result.Decisions...)
	s.cycles = append(s.cycles, cycle)
	s.mu.Unlock()

	if s.Console != nil {
		s.Console.PrintDecisions(result.Decisions)
		s.Console.PrintSnapshot(*snap)
	}
}

func (s *Scheduler) trySend(level, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendAlert(level, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
