// Package notify fires job-lifecycle notifications out of band. Delivery
// never affects job state: a failed notification is logged and dropped.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier is the fire-and-forget job-lifecycle callout contract.
type Notifier interface {
	ScrapeComplete(job JobSummary)
	ScrapeFailed(job JobSummary)
	ScrapeRetrySuccess(job JobSummary)
	ScrapePermanentlyFailed(job JobSummary)
}

// JobSummary is the payload shape shared by every notification.
type JobSummary struct {
	JobID        string
	ShortID      string
	Organiser    string
	EventURL     string
	ResultsCount int
	RetryCount   int
	ErrorMessage string
}

// WebhookNotifier posts a single-line payload to a fixed webhook URL.
// Disabled (webhookURL == "") makes every call a no-op.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *logrus.Logger
}

func NewWebhookNotifier(webhookURL string, logger *logrus.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (n *WebhookNotifier) ScrapeComplete(job JobSummary) {
	n.fire(fmt.Sprintf("SCRAPE COMPLETE job=%s organiser=%s url=%s results=%d", job.ShortID, job.Organiser, job.EventURL, job.ResultsCount))
}

func (n *WebhookNotifier) ScrapeFailed(job JobSummary) {
	n.fire(fmt.Sprintf("SCRAPE FAILED job=%s organiser=%s url=%s error=%q", job.ShortID, job.Organiser, job.EventURL, job.ErrorMessage))
}

func (n *WebhookNotifier) ScrapeRetrySuccess(job JobSummary) {
	n.fire(fmt.Sprintf("SCRAPE RETRY SUCCESS job=%s organiser=%s url=%s attempt=%d", job.ShortID, job.Organiser, job.EventURL, job.RetryCount))
}

func (n *WebhookNotifier) ScrapePermanentlyFailed(job JobSummary) {
	n.fire(fmt.Sprintf("SCRAPE PERMANENTLY FAILED job=%s organiser=%s url=%s error=%q", job.ShortID, job.Organiser, job.EventURL, job.ErrorMessage))
}

// fire posts in the caller's goroutine but swallows all errors; callers
// that need true async dispatch wrap this in `go`.
func (n *WebhookNotifier) fire(message string) {
	if n.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		n.logger.WithError(err).Warn("notify: failed to marshal payload")
		return
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		n.logger.WithError(err).Warn("notify: webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.WithField("status", resp.StatusCode).Warn("notify: webhook returned non-2xx")
	}
}

// NoopNotifier discards every call; used when Notifier.Enabled is false.
type NoopNotifier struct{}

func (NoopNotifier) ScrapeComplete(JobSummary)          {}
func (NoopNotifier) ScrapeFailed(JobSummary)            {}
func (NoopNotifier) ScrapeRetrySuccess(JobSummary)      {}
func (NoopNotifier) ScrapePermanentlyFailed(JobSummary) {}
