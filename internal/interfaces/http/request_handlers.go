package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-service/internal/application/service"
)

// CreateRequestRequest is the body of POST /api/service-requests
type CreateRequestRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	Urgency     string `json:"urgency"`
}

// UpdateRequestRequest is the body of PUT/PATCH /api/service-requests/:id
type UpdateRequestRequest struct {
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Urgency     *string `json:"urgency"`
}

// RateBody is the body of POST /api/service-requests/:id/rate
type RateBody struct {
	Rating int `json:"rating"`
}

// AssignBody is the body of POST /api/service-requests/:id/assign.
// A null or missing worker clears the assignment.
type AssignBody struct {
	AssignedFieldWorker *int64 `json:"assigned_field_worker"`
}

// ListRequests handles GET /api/service-requests
func (h *Handlers) ListRequests(c *gin.Context) {
	q, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	requests, err := h.services.Requests.List(c.Request.Context(), principalFrom(c), service.RequestListFilter{
		Status: optional(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, requests)
}

// CreateRequest handles POST /api/service-requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.services.Requests.Create(c.Request.Context(), principalFrom(c), service.CreateRequestInput{
		Description: req.Description,
		Location:    req.Location,
		Urgency:     req.Urgency,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, created)
}

// GetRequest handles GET /api/service-requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, err := h.services.Requests.Get(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, req)
}

// UpdateRequest handles PUT and PATCH /api/service-requests/:id
func (h *Handlers) UpdateRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.services.Requests.Update(c.Request.Context(), principalFrom(c), id, service.UpdateRequestInput{
		Description: req.Description,
		Location:    req.Location,
		Urgency:     req.Urgency,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, updated)
}

// DeleteRequest handles DELETE /api/service-requests/:id
func (h *Handlers) DeleteRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.services.Requests.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RateRequest handles POST /api/service-requests/:id/rate
func (h *Handlers) RateRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RateBody
	if !bindJSON(c, &req) {
		return
	}

	rated, err := h.services.Requests.Rate(c.Request.Context(), principalFrom(c), id, req.Rating)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, rated)
}

// AssignRequest handles POST /api/service-requests/:id/assign
func (h *Handlers) AssignRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AssignBody
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondFailure(c, http.StatusBadRequest, "invalid request body")
		return
	}

	assigned, err := h.services.Assignments.Assign(c.Request.Context(), principalFrom(c), id, req.AssignedFieldWorker)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Service request assignment changed",
		"request_id", id,
		"worker_id", assigned.AssignedFieldWorker,
	)
	respond(c, http.StatusOK, assigned)
}
