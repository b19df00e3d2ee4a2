package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOverview handles GET /api/dashboard/admin
func (h *Handlers) AdminOverview(c *gin.Context) {
	overview, err := h.services.Dashboard.AdminOverview(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, overview)
}

// WorkerSummary handles GET /api/dashboard/worker
func (h *Handlers) WorkerSummary(c *gin.Context) {
	summary, err := h.services.Dashboard.WorkerSummary(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

// CustomerSummary handles GET /api/dashboard/customer
func (h *Handlers) CustomerSummary(c *gin.Context) {
	summary, err := h.services.Dashboard.CustomerSummary(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}
