package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/pkg/validation"
)

// bind decodes the JSON body into dst and writes a 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.Invalid(c, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

// pageFrom reads ?skip=&limit=, defaulting to the first page.
func pageFrom(c *gin.Context) (entity.Page, bool) {
	var p entity.Page
	fields := []struct {
		name string
		dst  *int
	}{{"skip", &p.Skip}, {"limit", &p.Limit}}
	for _, f := range fields {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httperr.Invalid(c, "invalid paging", map[string]string{f.name: "must be a non-negative integer"})
			return entity.Page{}, false
		}
		*f.dst = n
	}
	return application.NormalizePage(p), true
}
