// Package matcher links RaceResults to Athletes by normalised-name
// similarity - the Athlete Matcher.
package matcher

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/model"
	"github.com/raceops/resultsync/internal/repository"
)

// defaultThreshold is T in the spec's scoring step: candidates scoring
// at or above this are discarded as too dissimilar.
const defaultThreshold = 0.6

// autoMatchThreshold is the lowered T used for initial candidate
// generation in autoMatch.
const autoMatchThreshold = 0.3

// autoLinkConfidence is the minimum confidence required, with exactly one
// surviving candidate, to auto-link without manual review.
const autoLinkConfidence = 90

const maxShortlist = 50

// Candidate is one scored Athlete match for a result.
type Candidate struct {
	Athlete    model.Athlete
	Confidence int
}

// Matcher runs the shortlist/score/link pipeline against persisted
// Athletes and RaceResults.
type Matcher struct {
	athletes *repository.AthleteRepository
	results  *repository.EventRepository
	logger   *logrus.Logger
}

func NewMatcher(athletes *repository.AthleteRepository, results *repository.EventRepository, logger *logrus.Logger) *Matcher {
	return &Matcher{athletes: athletes, results: results, logger: logger}
}

// Candidates shortlists and scores Athletes for a normalised query name,
// discarding any whose similarity score is at or above threshold.
func (m *Matcher) Candidates(ctx context.Context, normalizedName string, threshold float64) ([]Candidate, error) {
	shortlist, err := m.athletes.ShortlistByNormalizedName(ctx, normalizedName, maxShortlist)
	if err != nil {
		return nil, fmt.Errorf("shortlist athletes: %w", err)
	}

	var candidates []Candidate
	for _, a := range shortlist {
		score := similarity(normalizedName, a.NormalizedName)
		if score >= threshold {
			continue
		}
		candidates = append(candidates, Candidate{
			Athlete:    a,
			Confidence: confidenceFromScore(score),
		})
	}
	return candidates, nil
}

func confidenceFromScore(score float64) int {
	c := int((1 - score) * 100)
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	return c
}

// AutoMatchResult. Decision is either "linked" or "skipped".
type AutoMatchResult struct {
	ResultID  string
	Decision  string
	AthleteID string
}

// AutoMatch generates candidates at the lowered threshold and links only
// when exactly one candidate clears autoLinkConfidence; otherwise the
// result is recorded as skipped for manual review.
func (m *Matcher) AutoMatch(ctx context.Context, result model.RaceResult) (AutoMatchResult, error) {
	candidates, err := m.Candidates(ctx, result.NormalizedName, autoMatchThreshold)
	if err != nil {
		return AutoMatchResult{}, err
	}

	qualifying := make([]Candidate, 0, 1)
	for _, c := range candidates {
		if c.Confidence >= autoLinkConfidence {
			qualifying = append(qualifying, c)
		}
	}

	if len(qualifying) == 1 {
		if err := m.results.SetAthleteLink(ctx, result.ID, qualifying[0].Athlete.ID); err != nil {
			return AutoMatchResult{}, fmt.Errorf("set athlete link: %w", err)
		}
		return AutoMatchResult{ResultID: result.ID, Decision: "linked", AthleteID: qualifying[0].Athlete.ID}, nil
	}

	return AutoMatchResult{ResultID: result.ID, Decision: "skipped"}, nil
}

// RunBatch drives AutoMatch over every unlinked result, up to limit.
func (m *Matcher) RunBatch(ctx context.Context, limit int) ([]AutoMatchResult, error) {
	unlinked, err := m.results.UnlinkedResultsForAthleteMatch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list unlinked results: %w", err)
	}

	outcomes := make([]AutoMatchResult, 0, len(unlinked))
	for _, r := range unlinked {
		outcome, err := m.AutoMatch(ctx, r)
		if err != nil {
			m.logger.WithError(err).WithField("result_id", r.ID).Warn("matcher: auto-match failed")
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ResultSuggestion is one scored RaceResult suggested for an athlete.
type ResultSuggestion struct {
	Result     model.RaceResult
	Confidence int
}

// SuggestMatchesForAthlete is the inverse direction: given an athlete,
// lists unlinked results whose normalised names include, or are included
// by, the athlete's normalised name, then scores them at the default
// threshold.
func (m *Matcher) SuggestMatchesForAthlete(ctx context.Context, athleteID string) ([]ResultSuggestion, error) {
	athlete, err := m.athletes.GetByID(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("load athlete: %w", err)
	}

	results, err := m.athletes.UnlinkedResultsMatchingName(ctx, athlete.NormalizedName)
	if err != nil {
		return nil, fmt.Errorf("list matching unlinked results: %w", err)
	}

	var suggestions []ResultSuggestion
	for _, r := range results {
		score := similarity(athlete.NormalizedName, r.NormalizedName)
		if score >= defaultThreshold {
			continue
		}
		suggestions = append(suggestions, ResultSuggestion{
			Result:     r,
			Confidence: confidenceFromScore(score),
		})
	}
	return suggestions, nil
}
