// Package monitor probes organiser endpoints for liveness - the
// Endpoint Monitor.
package monitor

import (
	"context"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/fetch"
	"github.com/raceops/resultsync/internal/model"
	"github.com/raceops/resultsync/internal/repository"
)

const probeTimeout = 30 * time.Second

// descriptorPresent detects the Strategy A component attribute without
// needing to parse the JSON payload - liveness only cares whether the
// endpoint still embeds a race descriptor, not its contents.
var descriptorPresent = regexp.MustCompile(`data-races=(?:"|&quot;)\[`)
var baseURLAttr = regexp.MustCompile(`data-api-base=(?:"|&quot;)([^"&]+)(?:"|&quot;)`)
var raceIDAttr = regexp.MustCompile(`"race_id"\s*:\s*"([^"]+)"`)
var ptAttr = regexp.MustCompile(`"pt"\s*:\s*"([^"]+)"`)

// Edge is a status transition emitted for the notifier/scheduler.
type Edge struct {
	EndpointID string
	Name       string
	WentUp     bool
	WentDown   bool
}

// Monitor runs one probe pass over every enabled MonitoredEndpoint.
type Monitor struct {
	client *fetch.Client
	repo   *repository.EndpointRepository
	logger *logrus.Logger
}

func NewMonitor(client *fetch.Client, repo *repository.EndpointRepository, logger *logrus.Logger) *Monitor {
	return &Monitor{client: client, repo: repo, logger: logger}
}

// Run probes every enabled endpoint and persists the outcome, returning
// edges for any endpoint whose status changed this pass. A failure
// probing one endpoint never blocks the rest.
func (m *Monitor) Run(ctx context.Context) ([]Edge, error) {
	endpoints, err := m.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	var edges []Edge
	for _, ep := range endpoints {
		edge, err := m.probeOne(ctx, ep)
		if err != nil {
			m.logger.WithError(err).WithField("endpoint", ep.Name).Warn("monitor: probe failed")
			continue
		}
		if edge.WentUp || edge.WentDown {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

func (m *Monitor) probeOne(ctx context.Context, ep model.MonitoredEndpoint) (Edge, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	body, status, err := m.client.Get(ctx, ep.URL, fetch.Options{UserAgent: fetch.DefaultUserAgent, Timeout: probeTimeout})
	elapsed := time.Since(start)

	newStatus := model.EndpointUp
	hasResults := false
	httpCode := status
	var errMsg *string

	if err != nil || status >= 400 {
		newStatus = model.EndpointDown
		if err != nil {
			msg := err.Error()
			errMsg = &msg
		}
	} else {
		hasResults = m.probeDescriptor(ctx, string(body))
	}

	current, err := m.repo.CurrentStatus(ctx, ep.ID)
	if err != nil {
		return Edge{}, err
	}

	consecutiveFailures := 0
	priorStatus := model.EndpointUnknown
	if current != nil {
		priorStatus = current.Status
		consecutiveFailures = current.ConsecutiveFailures
	}
	if newStatus == model.EndpointDown {
		consecutiveFailures++
	} else {
		consecutiveFailures = 0
	}

	statusChanged := priorStatus != model.EndpointUnknown && priorStatus != newStatus

	probe := model.EndpointStatusHistory{
		EndpointID:     ep.ID,
		Status:         newStatus,
		HTTPCode:       httpCode,
		ResponseTimeMs: int(elapsed.Milliseconds()),
		HasResults:     hasResults,
		ErrorMessage:   errMsg,
		CheckedAt:      time.Now(),
	}

	if err := m.repo.RecordProbe(ctx, probe, newStatus, consecutiveFailures, statusChanged); err != nil {
		return Edge{}, err
	}

	edge := Edge{EndpointID: ep.ID, Name: ep.Name}
	if statusChanged {
		edge.WentUp = newStatus == model.EndpointUp
		edge.WentDown = newStatus == model.EndpointDown
	}
	return edge, nil
}

// probeDescriptor follows the first embedded race descriptor's API URL
// when present, and classifies the endpoint as having results based on
// body length and the absence of the literal "error".
func (m *Monitor) probeDescriptor(ctx context.Context, rawHTML string) bool {
	if !descriptorPresent.MatchString(rawHTML) {
		return false
	}

	unescaped := html.UnescapeString(rawHTML)
	baseMatch := baseURLAttr.FindStringSubmatch(rawHTML)
	raceIDMatch := raceIDAttr.FindStringSubmatch(unescaped)
	ptMatch := ptAttr.FindStringSubmatch(unescaped)
	if baseMatch == nil || raceIDMatch == nil {
		return false
	}

	pt := ""
	if ptMatch != nil {
		pt = ptMatch[1]
	}

	apiURL := baseMatch[1] + "?race_id=" + raceIDMatch[1] + "&pt=" + pt
	body, status, err := m.client.Get(ctx, apiURL, fetch.Options{UserAgent: fetch.DefaultUserAgent})
	if err != nil || status < 200 || status >= 400 {
		return false
	}

	text := string(body)
	return len(text) > 100 && !strings.Contains(text, "error")
}
