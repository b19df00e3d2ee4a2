package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// MessageResponse carries a confirmation message with an optional payload
type MessageResponse struct {
	Message string      `json:"message"`
	User    interface{} `json:"user,omitempty"`
}

// ListQuery represents the query parameters shared by list endpoints
type ListQuery struct {
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
	Status         string `form:"status"`
	Role           string `form:"role"`
	ServiceRequest int64  `form:"service_request"`
}

func (q *ListQuery) normalize() {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *Handlers) bindListQuery(c *gin.Context) (ListQuery, bool) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid query parameters")
		return q, false
	}
	q.normalize()
	return q, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}
