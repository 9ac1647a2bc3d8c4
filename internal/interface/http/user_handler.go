package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
	"github.com/oksasatya/pixel-news/pkg/response"
)

type UserHandler struct {
	Svc       *application.UserService
	Analytics *application.AnalyticsService
}

func NewUserHandler(svc *application.UserService, analytics *application.AnalyticsService) *UserHandler {
	return &UserHandler{Svc: svc, Analytics: analytics}
}

type registerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"max=200"`
	Image string `json:"image" binding:"omitempty,url"`
}

type roleRequest struct {
	IsAdmin   *bool `json:"isAdmin"`
	IsPremium *bool `json:"isPremium"`
}

type profileRequest struct {
	Name  string `json:"name" binding:"max=200"`
	Image string `json:"image" binding:"omitempty,url"`
}

// Register POST /api/users. Registering a known email is a no-op.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	u, created, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{Email: req.Email, Name: req.Name, Image: req.Image})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	if !created {
		response.OK[any](c, http.StatusOK, nil, "user already exists", gin.H{"created": false})
		return
	}
	response.OK(c, http.StatusCreated, u, "user registered", gin.H{"created": true})
}

// Counts GET /api/users/counts
func (h *UserHandler) Counts(c *gin.Context) {
	counts, err := h.Analytics.UserCounts(c.Request.Context())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, counts, "user counts", nil)
}

// List GET /api/users?skip=&limit= (admin)
func (h *UserHandler) List(c *gin.Context) {
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	users, err := h.Svc.List(c.Request.Context(), middleware.CallerFrom(c), page)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, users, "users", response.PageMeta{Skip: page.Skip, Limit: page.Limit, Count: len(users)})
}

// Detail GET /api/users/:email
func (h *UserHandler) Detail(c *gin.Context) {
	d, err := h.Svc.Detail(c.Request.Context(), middleware.CallerFrom(c), c.Param("email"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, d, "user", nil)
}

// Role GET /api/users/role/:email
func (h *UserHandler) Role(c *gin.Context) {
	role, err := h.Svc.Role(c.Request.Context(), middleware.CallerFrom(c), c.Param("email"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, role, "role", nil)
}

// UpdateRole PATCH /api/users/role/update/:email
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	role, err := h.Svc.UpdateRole(c.Request.Context(), middleware.CallerFrom(c), c.Param("email"),
		application.RoleUpdate{IsAdmin: req.IsAdmin, IsPremium: req.IsPremium})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, role, "role updated", nil)
}

// UpdateProfile PATCH /api/users/update/:id
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"),
		application.ProfileUpdate{Name: req.Name, Image: req.Image})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, u, "profile updated", nil)
}
