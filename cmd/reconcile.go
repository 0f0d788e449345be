package main

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/ingest"
	"github.com/raceops/resultsync/internal/matcher"
)

// reconcileInterval governs both the event-linker pass (cross-organiser
// same_event/related detection) and the athlete auto-match batch; neither
// is latency-sensitive enough to warrant its own configured interval.
const reconcileInterval = 10 * time.Minute

const autoMatchBatchSize = 200

// reconciler runs the EventLinker and Matcher passes on a shared ticker,
// separate from the Scheduler's monitor/retry loops since it operates on
// already-persisted results rather than external endpoints.
type reconciler struct {
	linker  *ingest.EventLinker
	matcher *matcher.Matcher
	logger  *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newReconciler(linker *ingest.EventLinker, m *matcher.Matcher, logger *logrus.Logger) *reconciler {
	ctx, cancel := context.WithCancel(context.Background())
	return &reconciler{linker: linker, matcher: m, logger: logger, ctx: ctx, cancel: cancel}
}

func (r *reconciler) start() {
	r.wg.Add(1)
	go r.loop()
}

func (r *reconciler) stop() {
	r.cancel()
	r.wg.Wait()
}

func (r *reconciler) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	r.runPass()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.runPass()
		}
	}
}

func (r *reconciler) runPass() {
	if err := r.linker.Run(r.ctx); err != nil {
		r.logger.WithError(err).Warn("reconciler: event link pass failed")
	}

	outcomes, err := r.matcher.RunBatch(r.ctx, autoMatchBatchSize)
	if err != nil {
		r.logger.WithError(err).Warn("reconciler: athlete auto-match batch failed")
		return
	}
	linked := 0
	for _, o := range outcomes {
		if o.Decision == "linked" {
			linked++
		}
	}
	if linked > 0 {
		r.logger.WithField("linked", linked).WithField("attempted", len(outcomes)).Info("reconciler: athlete auto-match pass complete")
	}
}
