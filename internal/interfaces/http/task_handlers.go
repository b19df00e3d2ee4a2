package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/application/service"
)

// SetStatusRequest is the body of POST /api/tasks/:id/set-status
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ListTasks handles GET /api/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	q, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	filter := service.TaskListFilter{
		Status: optional(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.ServiceRequest > 0 {
		filter.ServiceRequestID = &q.ServiceRequest
	}

	tasks, err := h.services.Tasks.ListTasks(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, tasks)
}

// GetTask handles GET /api/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.services.Tasks.GetTask(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handlers) DeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.services.Tasks.DeleteTask(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// SetTaskStatus handles POST /api/tasks/:id/set-status
func (h *Handlers) SetTaskStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.services.Tasks.SetStatus(c.Request.Context(), principalFrom(c), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, task)
}

// UploadProof handles POST /api/tasks/:id/upload-proof
func (h *Handlers) UploadProof(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input service.ProofInput
	if notes, present := c.GetPostForm("notes"); present {
		input.Notes = &notes
	}

	header, err := c.FormFile("proof_upload")
	switch {
	case err == nil:
		file, err := header.Open()
		if err != nil {
			h.logger.Error("Failed to open uploaded proof", "task_id", id, "error", err)
			respondFailure(c, http.StatusBadRequest, "invalid proof upload")
			return
		}
		defer file.Close()

		input.File = &port.Upload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// notes-only submission
	default:
		respondFailure(c, http.StatusBadRequest, "invalid multipart form")
		return
	}

	task, err := h.services.Tasks.SubmitProof(c.Request.Context(), principalFrom(c), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, task)
}

// DownloadProof handles GET /api/tasks/:id/proof
func (h *Handlers) DownloadProof(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	proof, err := h.services.Tasks.GetProof(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+proof.Name+`"`)
	c.Data(http.StatusOK, http.DetectContentType(proof.Content), proof.Content)
}
