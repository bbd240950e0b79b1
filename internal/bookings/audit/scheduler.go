package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"kaycrm/pkg/logger"
)

// Scheduler runs the auditor on a cron schedule. Overlapping runs are
// skipped and a panicking run is recovered.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	auditor *Auditor
	timeout time.Duration
	log     *logger.Logger
}

// NewScheduler accepts standard five-field specs and descriptors such as
// "@every 10m" or "@hourly".
func NewScheduler(auditor *Auditor, spec string, timeout time.Duration, log *logger.Logger) (*Scheduler, error) {
	cronLog := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		spec:    spec,
		auditor: auditor,
		timeout: timeout,
		log:     log,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.auditor.Run(ctx); err != nil {
		s.log.Error("Availability index audit failed", "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Availability index audit scheduled", "schedule", s.spec)
}

// Stop waits for a running audit to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Availability index audit still running at shutdown")
	}
}

// cronLogger adapts the service logger to cron's logger interface.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
