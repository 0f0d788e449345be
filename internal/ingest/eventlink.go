package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/normalize"
	"github.com/raceops/resultsync/internal/repository"
)

// sameEventWindow is the date tolerance within which two recently-scraped
// Events from different organisers are considered candidates for the
// same real-world race.
const sameEventWindow = 24 * time.Hour

// EventLinker reconciles recently-scraped Events across organisers,
// grouping by normalised name and date proximity into EventSourceLinks.
type EventLinker struct {
	linkRepo *repository.EventLinkRepository
	logger   *logrus.Logger
}

func NewEventLinker(linkRepo *repository.EventLinkRepository, logger *logrus.Logger) *EventLinker {
	return &EventLinker{linkRepo: linkRepo, logger: logger}
}

// Run inspects the most recently scraped events, links any whose
// normalised names match exactly and whose dates fall within
// sameEventWindow, and any whose names overlap less strongly with a
// lower confidence "related" relation.
func (l *EventLinker) Run(ctx context.Context) error {
	events, err := l.linkRepo.CandidateEventsForReconciliation(ctx, 5000)
	if err != nil {
		return fmt.Errorf("list reconciliation candidates: %w", err)
	}
	if len(events) == 0 {
		l.logger.Info("eventlink: no candidates to reconcile")
		return nil
	}

	linked := 0
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			a, b := events[i], events[j]
			if a.Organiser == b.Organiser {
				continue
			}

			nameA, nameB := normalize.Name(a.Name), normalize.Name(b.Name)
			if nameA == "" || nameB == "" {
				continue
			}

			dateDelta := a.Date.Sub(b.Date)
			if dateDelta < 0 {
				dateDelta = -dateDelta
			}
			if dateDelta > sameEventWindow {
				continue
			}

			switch {
			case nameA == nameB:
				if err := l.linkRepo.EnsureLink(ctx, a.ID, b.ID, "same_event", 95); err != nil {
					l.logger.WithError(err).Warn("eventlink: ensure same_event link failed")
					continue
				}
				linked++
			case strings.Contains(nameA, nameB) || strings.Contains(nameB, nameA):
				if err := l.linkRepo.EnsureLink(ctx, a.ID, b.ID, "related", 60); err != nil {
					l.logger.WithError(err).Warn("eventlink: ensure related link failed")
					continue
				}
				linked++
			}
		}
	}

	l.logger.WithField("linked", linked).WithField("candidates", len(events)).Info("eventlink: reconciliation pass complete")
	return nil
}
