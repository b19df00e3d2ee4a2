package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-service/internal/application/service"
	"github.com/garyjia/field-service/internal/domain/apperror"
)

const unauthenticatedMessage = "Authentication credentials were not provided or are invalid."

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondFailure(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

// statusOf maps an error onto the HTTP status its kind stands for
func statusOf(err error) int {
	if errors.Is(err, service.ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindPermissionDenied:
		return http.StatusForbidden
	case apperror.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err in the response envelope. Internal causes are logged, never returned.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusOf(err)
	message := apperror.MessageOf(err)

	switch status {
	case http.StatusUnauthorized:
		message = unauthenticatedMessage
	case http.StatusInternalServerError:
		h.logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	respondFailure(c, status, message)
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondFailure(c, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into dst, answering 400 on malformed input
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
