// Package api is the minimal HTTP trigger surface: kick off a scrape,
// force a monitor pass, or check liveness. Every mutating route sits
// behind the pre-shared admin key.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/ingest"
	"github.com/raceops/resultsync/internal/model"
	"github.com/raceops/resultsync/internal/monitor"
	"github.com/raceops/resultsync/internal/repository"
)

// AdminKeyMiddleware rejects requests missing the configured X-Admin-Key
// header. An empty adminKey disables the check (local/dev only).
func AdminKeyMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-Admin-Key") != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing admin key"})
			return
		}
		c.Next()
	}
}

// ScrapeHandler triggers ingestion of a single event URL.
type ScrapeHandler struct {
	jobRepo     *repository.ScrapeJobRepository
	coordinator *ingest.Coordinator
	logger      *logrus.Logger
}

func NewScrapeHandler(jobRepo *repository.ScrapeJobRepository, coordinator *ingest.Coordinator, logger *logrus.Logger) *ScrapeHandler {
	return &ScrapeHandler{jobRepo: jobRepo, coordinator: coordinator, logger: logger}
}

type scrapeRequest struct {
	EventURL  string `json:"event_url" binding:"required"`
	Organiser string `json:"organiser"`
}

// Trigger creates a ScrapeJob and runs it synchronously, returning the
// job's final state. The caller inspects results_count/status rather
// than waiting on a callback.
// POST /scrape
func (h *ScrapeHandler) Trigger(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := &model.ScrapeJob{
		Organiser:  req.Organiser,
		EventURL:   req.EventURL,
		Status:     model.JobRunning,
		MaxRetries: 3,
	}
	if err := h.jobRepo.Create(c.Request.Context(), job); err != nil {
		h.logger.WithError(err).Error("scrape: failed to create job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.coordinator.Run(c.Request.Context(), job); err != nil {
		h.logger.WithError(err).WithField("job_id", job.ID).Warn("scrape: run failed, handed to retry queue")
		c.JSON(http.StatusAccepted, gin.H{
			"job_id": job.ID,
			"status": "failed",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":        job.ID,
		"status":        "completed",
		"results_count": job.ResultsCount,
	})
}

// MonitorHandler forces an out-of-band Endpoint Monitor pass.
type MonitorHandler struct {
	monitor *monitor.Monitor
	logger  *logrus.Logger
}

func NewMonitorHandler(m *monitor.Monitor, logger *logrus.Logger) *MonitorHandler {
	return &MonitorHandler{monitor: m, logger: logger}
}

// Trigger runs one monitor pass and reports which endpoints changed
// status.
// POST /monitor
func (h *MonitorHandler) Trigger(c *gin.Context) {
	edges, err := h.monitor.Run(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("monitor: pass failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type edgeView struct {
		EndpointID string `json:"endpoint_id"`
		Name       string `json:"name"`
		WentUp     bool   `json:"went_up"`
		WentDown   bool   `json:"went_down"`
	}
	views := make([]edgeView, 0, len(edges))
	for _, e := range edges {
		views = append(views, edgeView{EndpointID: e.EndpointID, Name: e.Name, WentUp: e.WentUp, WentDown: e.WentDown})
	}

	c.JSON(http.StatusOK, gin.H{"changed": views})
}

// Heartbeat is an unauthenticated liveness probe for the service itself.
// GET /heartbeat
func Heartbeat(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
