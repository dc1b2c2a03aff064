package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves health and service information endpoints
type SystemHandler struct {
	BaseHandler
	appName   string
	env       string
	startedAt time.Time
}

// NewSystemHandler creates a system handler
func NewSystemHandler(appName, env string) *SystemHandler {
	return &SystemHandler{
		appName:   appName,
		env:       env,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers system routes on the root engine (unversioned)
func (h *SystemHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/ping", h.Ping)
	engine.GET("/info", h.Info)
}

// Health reports service liveness
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// Ping answers pong
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{"message": "pong"})
}

// Info reports service identity
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"name":        h.appName,
		"environment": h.env,
		"started_at":  h.startedAt,
	})
}
