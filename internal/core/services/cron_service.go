package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService runs periodic maintenance jobs
type CronService struct {
	cron    *cron.Cron
	auditor *LedgerAuditor
	timeout time.Duration
}

// CronConfig holds cron schedules. An empty schedule disables the job.
type CronConfig struct {
	AuditSchedule string
	JobTimeout    time.Duration
}

// NewCronService creates a new cron service
func NewCronService(cfg CronConfig, auditor *LedgerAuditor) (*CronService, error) {
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	s := &CronService{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{}))),
		auditor: auditor,
		timeout: timeout,
	}

	if cfg.AuditSchedule != "" && auditor != nil {
		if _, err := s.cron.AddFunc(cfg.AuditSchedule, s.runAudit); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start starts the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	zap.L().Info("cron service started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	zap.L().Info("cron service stopped")
}

func (s *CronService) runAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	drifts, err := s.auditor.Audit(ctx)
	if err != nil {
		zap.L().Error("ledger audit failed", zap.Error(err))
		return
	}
	zap.L().Info("ledger audit finished", zap.Int("drifts", len(drifts)))
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Infow(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw(msg, append(keysAndValues, "error", err)...)
}
