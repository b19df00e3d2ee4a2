package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-service/internal/application/service"
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            string `json:"role"`
	PhoneNumber     string `json:"phone_number"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/auth/refresh
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// ProfileRequest is the body of PUT /api/profile
type ProfileRequest struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	*service.AuthResult
	Message string `json:"message"`
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.services.Users.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            req.Role,
		PhoneNumber:     req.PhoneNumber,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, RegisterResponse{
		AuthResult: result,
		Message:    "User registered successfully.",
	})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.services.Users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, result)
}

// Refresh handles POST /api/auth/refresh
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.services.Users.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, tokens)
}

// GetProfile handles GET /api/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.services.Users.GetProfile(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.services.Users.UpdateProfile(c.Request.Context(), principalFrom(c), service.ProfileInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, user)
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	q, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	users, err := h.services.Users.ListUsers(c.Request.Context(), principalFrom(c), service.UserListFilter{
		Role:   optional(q.Role),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, users)
}

// ApproveFieldWorker handles POST /api/users/:id/approve
func (h *Handlers) ApproveFieldWorker(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.services.Users.ApproveFieldWorker(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Field worker approved", "user_id", id)
	respond(c, http.StatusOK, MessageResponse{Message: "Field worker approved successfully.", User: user})
}

// RejectFieldWorker handles POST /api/users/:id/reject
func (h *Handlers) RejectFieldWorker(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.services.Users.RejectFieldWorker(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, MessageResponse{Message: "Field worker rejected.", User: user})
}

// ToggleActive handles POST /api/users/:id/toggle-active
func (h *Handlers) ToggleActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.services.Users.ToggleActive(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	state := "deactivated"
	if user.IsActive {
		state = "activated"
	}
	respond(c, http.StatusOK, MessageResponse{Message: "User " + state + " successfully.", User: user})
}
