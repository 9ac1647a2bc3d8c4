package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
	"github.com/oksasatya/pixel-news/pkg/response"
)

type PublisherHandler struct {
	Svc *application.PublisherService
}

func NewPublisherHandler(svc *application.PublisherService) *PublisherHandler {
	return &PublisherHandler{Svc: svc}
}

type publisherRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Logo string `json:"logo" binding:"omitempty,url"`
}

// List GET /api/publishers
func (h *PublisherHandler) List(c *gin.Context) {
	pubs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, pubs, "publishers", nil)
}

// Create POST /api/publishers (admin)
func (h *PublisherHandler) Create(c *gin.Context) {
	var req publisherRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), middleware.CallerFrom(c), req.Name, req.Logo)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusCreated, p, "publisher created", nil)
}
