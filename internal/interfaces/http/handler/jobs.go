package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockwatch/backend/internal/application/poller"
	"github.com/stockwatch/backend/internal/domain/watch"
	"github.com/stockwatch/backend/internal/infrastructure/scheduler"
	"github.com/stockwatch/backend/internal/interfaces/http/dto"
)

// JobsHandler manages polling jobs over the admin API
type JobsHandler struct {
	BaseHandler
	scheduler *scheduler.PollScheduler
}

// NewJobsHandler creates a jobs handler over the poll scheduler
func NewJobsHandler(sched *scheduler.PollScheduler) *JobsHandler {
	return &JobsHandler{scheduler: sched}
}

// RegisterRoutes registers job management routes
func (h *JobsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs")
	{
		jobs.POST("", h.RegisterJob)
		jobs.GET("", h.ListJobs)
		jobs.GET("/:id", h.GetJob)
		jobs.DELETE("/:id", h.DeregisterJob)
		jobs.POST("/:id/poll", h.TriggerPoll)
		jobs.GET("/:id/runs", h.JobRuns)
	}
	rg.GET("/runs", h.AllRuns)
	rg.GET("/events", h.RecentEvents)
	rg.GET("/watched-events", h.WatchedEvents)
}

// registerJobRequest is the payload for creating a polling job
type registerJobRequest struct {
	// Event is the canonical watched event name, e.g. "salesOrder.fulfilled"
	Event string `json:"event" binding:"required,watchedevent"`
	// IntervalSeconds overrides the default poll interval
	IntervalSeconds int `json:"intervalSeconds" binding:"omitempty,min=1"`
	// LocationID restricts snapshots to one location
	LocationID string `json:"locationId"`
	// CategoryID restricts snapshots to one category
	CategoryID string `json:"categoryId"`
}

// jobResponse describes one registered job
type jobResponse struct {
	ID         string `json:"id"`
	Event      string `json:"event"`
	Interval   string `json:"interval"`
	LocationID string `json:"locationId,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}

func toJobResponse(info scheduler.JobInfo) jobResponse {
	return jobResponse{
		ID:         info.Job.ID.String(),
		Event:      info.Job.Event.Name(),
		Interval:   info.Interval.String(),
		LocationID: info.Job.Options.LocationID,
		CategoryID: info.Job.Options.CategoryID,
	}
}

// RegisterJob creates a new polling job
// POST /api/v1/jobs
func (h *JobsHandler) RegisterJob(c *gin.Context) {
	var req registerJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
		return
	}

	event, err := watch.ParseWatchedEvent(req.Event)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
		return
	}

	job, err := h.scheduler.RegisterJob(event, poller.Options{
		LocationID: req.LocationID,
		CategoryID: req.CategoryID,
	}, time.Duration(req.IntervalSeconds)*time.Second)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrInvalidInterval):
			h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
		case errors.Is(err, watch.ErrUnsupportedEvent):
			h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
		default:
			h.ErrorWithCode(c, dto.ErrCodeInternal, err.Error())
		}
		return
	}

	info, err := h.scheduler.GetJob(job.ID)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInternal, err.Error())
		return
	}
	h.Created(c, toJobResponse(info))
}

// ListJobs returns all registered jobs
// GET /api/v1/jobs
func (h *JobsHandler) ListJobs(c *gin.Context) {
	infos := h.scheduler.Jobs()
	jobs := make([]jobResponse, 0, len(infos))
	for _, info := range infos {
		jobs = append(jobs, toJobResponse(info))
	}
	h.Success(c, jobs)
}

// GetJob returns one registered job
// GET /api/v1/jobs/:id
func (h *JobsHandler) GetJob(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	info, err := h.scheduler.GetJob(jobID)
	if err != nil {
		h.NotFound(c, "job not found")
		return
	}
	h.Success(c, toJobResponse(info))
}

// DeregisterJob stops and removes a polling job
// DELETE /api/v1/jobs/:id
func (h *JobsHandler) DeregisterJob(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	if err := h.scheduler.DeregisterJob(jobID); err != nil {
		h.NotFound(c, "job not found")
		return
	}
	h.NoContent(c)
}

// TriggerPoll requests an immediate poll cycle for a job
// POST /api/v1/jobs/:id/poll
func (h *JobsHandler) TriggerPoll(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	if err := h.scheduler.TriggerNow(jobID); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrJobNotFound):
			h.NotFound(c, "job not found")
		case errors.Is(err, scheduler.ErrSchedulerNotRunning):
			h.ErrorWithCode(c, dto.ErrCodeInvalidState, "scheduler is not running")
		default:
			h.ErrorWithCode(c, dto.ErrCodeInternal, err.Error())
		}
		return
	}
	h.Success(c, gin.H{"triggered": true})
}

// JobRuns returns recent poll cycles of one job
// GET /api/v1/jobs/:id/runs
func (h *JobsHandler) JobRuns(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}
	if _, err := h.scheduler.GetJob(jobID); err != nil {
		h.NotFound(c, "job not found")
		return
	}
	h.Success(c, h.scheduler.GetRunHistoryByJob(jobID, h.limit(c)))
}

// AllRuns returns recent poll cycles across all jobs
// GET /api/v1/runs
func (h *JobsHandler) AllRuns(c *gin.Context) {
	h.Success(c, h.scheduler.GetRunHistory(h.limit(c)))
}

// RecentEvents returns recently detected change events
// GET /api/v1/events
func (h *JobsHandler) RecentEvents(c *gin.Context) {
	h.Success(c, h.scheduler.GetRecentEvents(h.limit(c)))
}

// WatchedEvents returns the canonical names of all supported watched events
// GET /api/v1/watched-events
func (h *JobsHandler) WatchedEvents(c *gin.Context) {
	events := watch.AllWatchedEvents()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name())
	}
	h.Success(c, names)
}

// jobID parses the :id path parameter, answering 400 on failure
func (h *JobsHandler) jobID(c *gin.Context) (uuid.UUID, bool) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid job ID")
		return uuid.Nil, false
	}
	return jobID, true
}

// limit parses the optional ?limit query parameter, 0 means all
func (h *JobsHandler) limit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
