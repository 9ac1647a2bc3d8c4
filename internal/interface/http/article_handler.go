package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
	"github.com/oksasatya/pixel-news/pkg/response"
)

// MaxImageBytes caps article image uploads.
const MaxImageBytes = 5 << 20

type ArticleHandler struct {
	Svc *application.ArticleService
}

func NewArticleHandler(svc *application.ArticleService) *ArticleHandler {
	return &ArticleHandler{Svc: svc}
}

type articleRequest struct {
	Title       string   `json:"title" binding:"required,max=300"`
	Description string   `json:"description" binding:"max=2000"`
	Body        string   `json:"body"`
	Image       string   `json:"image" binding:"omitempty,url"`
	Tags        []string `json:"tags" binding:"max=20,dive,max=50"`
	Publisher   string   `json:"publisher" binding:"required"`
}

func (r articleRequest) content() entity.ArticleContent {
	return entity.ArticleContent{
		Title:       r.Title,
		Description: r.Description,
		Body:        r.Body,
		Image:       r.Image,
		Tags:        r.Tags,
		PublisherID: r.Publisher,
	}
}

type moderateRequest struct {
	Status        *string `json:"status" binding:"omitempty,articlestatus"`
	IsPaid        *bool   `json:"isPaid"`
	DeclineReason string  `json:"declineReason" binding:"max=1000"`
}

func list(c *gin.Context, items []*entity.Article, err error, message string) {
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, items, message, response.PageMeta{Count: len(items)})
}

// Slider GET /api/slider-articles
func (h *ArticleHandler) Slider(c *gin.Context) {
	items, err := h.Svc.Slider(c.Request.Context(), middleware.CallerFrom(c))
	list(c, items, err, "slider articles")
}

// MostPopular GET /api/articles/most-popular
func (h *ArticleHandler) MostPopular(c *gin.Context) {
	items, err := h.Svc.MostPopular(c.Request.Context(), middleware.CallerFrom(c))
	list(c, items, err, "most popular articles")
}

// ListApproved GET /api/articles/approved?title=&tag=&publisher=
func (h *ArticleHandler) ListApproved(c *gin.Context) {
	tag := c.Query("tag")
	if tag == "" {
		tag = c.Query("tags")
	}
	f := entity.ArticleFilter{Title: c.Query("title"), Tag: tag, Publisher: c.Query("publisher")}
	items, err := h.Svc.ListApproved(c.Request.Context(), middleware.CallerFrom(c), f)
	list(c, items, err, "approved articles")
}

// ListPremium GET /api/articles/premium
func (h *ArticleHandler) ListPremium(c *gin.Context) {
	items, err := h.Svc.ListPremium(c.Request.Context(), middleware.CallerFrom(c))
	list(c, items, err, "premium articles")
}

// ListAll GET /api/articles?skip=&limit= (admin)
func (h *ArticleHandler) ListAll(c *gin.Context) {
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	items, err := h.Svc.ListAll(c.Request.Context(), middleware.CallerFrom(c), page)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, items, "articles", response.PageMeta{Skip: page.Skip, Limit: page.Limit, Count: len(items)})
}

// ListByCreator GET /api/articles/creator/:email
func (h *ArticleHandler) ListByCreator(c *gin.Context) {
	items, err := h.Svc.ListByCreator(c.Request.Context(), middleware.CallerFrom(c), c.Param("email"))
	list(c, items, err, "creator articles")
}

// Search GET /api/articles/search?q=&size=
func (h *ArticleHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	items, err := h.Svc.Search(c.Request.Context(), middleware.CallerFrom(c), c.Query("q"), size)
	list(c, items, err, "search results")
}

// Get GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, a, "article", nil)
}

// Create POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req articleRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), middleware.CallerFrom(c), req.content())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusCreated, a, "article submitted for review", nil)
}

// Update PUT /api/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	var req articleRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req.content())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, a, "article updated and sent for review", nil)
}

// Moderate PATCH /api/articles/status-update/:id (admin)
func (h *ArticleHandler) Moderate(c *gin.Context) {
	var req moderateRequest
	if !bind(c, &req) {
		return
	}
	m := entity.Moderation{IsPaid: req.IsPaid, DeclineReason: req.DeclineReason}
	if req.Status != nil {
		s := entity.ArticleStatus(*req.Status)
		m.Status = &s
	}
	a, err := h.Svc.Moderate(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), m)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, a, "article moderated", nil)
}

// IncrementViews PATCH /api/articles/view-count/:id
func (h *ArticleHandler) IncrementViews(c *gin.Context) {
	views, err := h.Svc.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"viewCount": views}, "view counted", nil)
}

// Delete DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deleted": true}, "article deleted", nil)
}

// UploadImage POST /api/articles/image (multipart field "image")
func (h *ArticleHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageBytes+1<<10)
	fh, err := c.FormFile("image")
	if err != nil {
		httperr.Invalid(c, "invalid upload", map[string]string{"image": "is required"})
		return
	}
	if fh.Size > MaxImageBytes {
		httperr.Invalid(c, "invalid upload", map[string]string{"image": "must be at most 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		httperr.Invalid(c, "invalid upload", map[string]string{"image": "unreadable file"})
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadImage(c.Request.Context(), middleware.CallerFrom(c), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"url": url}, "image uploaded", nil)
}
