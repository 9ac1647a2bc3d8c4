package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
	"github.com/oksasatya/pixel-news/pkg/response"
)

type AnalyticsHandler struct {
	Svc *application.AnalyticsService
}

func NewAnalyticsHandler(svc *application.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Svc: svc}
}

// Report GET /api/admin/analytics (admin). Figures come from independent queries.
func (h *AnalyticsHandler) Report(c *gin.Context) {
	rep, err := h.Svc.Report(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, rep, "analytics", gin.H{"consistency": "eventual"})
}
