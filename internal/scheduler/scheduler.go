// Package scheduler runs the two background passes - endpoint monitoring
// and retry drain - on independent tickers until stopped.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/monitor"
	"github.com/raceops/resultsync/internal/retry"
)

// Scheduler owns the monitor and retry-drain tickers. Job-lifecycle
// notifications are the Ingestion Coordinator's and Retry Drainer's
// responsibility, not the Scheduler's - it only logs endpoint edges.
type Scheduler struct {
	monitor *monitor.Monitor
	drainer *retry.Drainer
	logger  *logrus.Logger

	monitorInterval time.Duration
	retryInterval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(m *monitor.Monitor, d *retry.Drainer, logger *logrus.Logger, monitorInterval, retryInterval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		monitor:         m,
		drainer:         d,
		logger:          logger,
		monitorInterval: monitorInterval,
		retryInterval:   retryInterval,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start launches the monitor and retry loops in the background.
func (s *Scheduler) Start() {
	s.logger.WithFields(logrus.Fields{
		"monitor_interval": s.monitorInterval,
		"retry_interval":   s.retryInterval,
	}).Info("scheduler: starting background passes")

	s.wg.Add(2)
	go s.monitorLoop()
	go s.retryLoop()
}

// Stop cancels both loops and waits for the in-flight pass, if any, to
// finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler: stopped")
}

func (s *Scheduler) monitorLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.monitorInterval)
	defer ticker.Stop()

	s.runMonitorPass()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runMonitorPass()
		}
	}
}

func (s *Scheduler) runMonitorPass() {
	edges, err := s.monitor.Run(s.ctx)
	if err != nil {
		s.logger.WithError(err).Warn("scheduler: monitor pass failed")
		return
	}
	for _, e := range edges {
		if e.WentDown {
			s.logger.WithField("endpoint", e.Name).Warn("scheduler: endpoint went down")
		}
		if e.WentUp {
			s.logger.WithField("endpoint", e.Name).Info("scheduler: endpoint recovered")
		}
	}
}

func (s *Scheduler) retryLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.retryInterval)
	defer ticker.Stop()

	s.runRetryPass()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runRetryPass()
		}
	}
}

func (s *Scheduler) runRetryPass() {
	n, err := s.drainer.Run(s.ctx)
	if err != nil {
		s.logger.WithError(err).Warn("scheduler: retry drain failed")
		return
	}
	if n > 0 {
		s.logger.WithField("count", n).Info("scheduler: retry drain processed jobs")
	}
}
