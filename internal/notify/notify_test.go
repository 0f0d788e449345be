package notify

import "testing"

func TestWebhookNotifier_DisabledIsNoop(t *testing.T) {
	n := NewWebhookNotifier("", nil)
	job := JobSummary{JobID: "1", ShortID: "1", Organiser: "hopasports", EventURL: "https://example.com"}

	// With an empty webhookURL, fire() returns before touching the logger
	// or making an HTTP call, so none of these should panic.
	n.ScrapeComplete(job)
	n.ScrapeFailed(job)
	n.ScrapeRetrySuccess(job)
	n.ScrapePermanentlyFailed(job)
}

func TestNoopNotifier_DoesNothing(t *testing.T) {
	var n Notifier = NoopNotifier{}
	job := JobSummary{JobID: "1"}

	n.ScrapeComplete(job)
	n.ScrapeFailed(job)
	n.ScrapeRetrySuccess(job)
	n.ScrapePermanentlyFailed(job)
}
