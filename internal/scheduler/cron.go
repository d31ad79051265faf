package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultRefreshSpec refreshes the popular lists every 6 hours
const DefaultRefreshSpec = "0 */6 * * *"

// Refresher is a job the scheduler runs periodically
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron    *cron.Cron
	popular Refresher
	spec    string
	timeout time.Duration
	logger  *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler. Nothing runs until Start.
func NewScheduler(popular Refresher, spec string, logger *logrus.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		popular: popular,
		spec:    spec,
		timeout: time.Minute,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers the jobs, starts the scheduler and runs one refresh immediately
func (s *Scheduler) Start() error {
	s.logger.WithField("spec", s.spec).Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add popular refresh job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run initial refresh immediately
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRefresh()
	}()

	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// runRefresh executes the popular refresh job
func (s *Scheduler) runRefresh() {
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Debug("Running popular refresh")

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	if err := s.popular.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("Popular refresh failed")
	} else {
		s.logger.Debug("Popular refresh completed successfully")
	}
}
