package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
	"github.com/oksasatya/pixel-news/pkg/response"
)

type SubscriptionHandler struct {
	Ledger   *application.LedgerService
	Payments *application.PaymentService
}

func NewSubscriptionHandler(ledger *application.LedgerService, payments *application.PaymentService) *SubscriptionHandler {
	return &SubscriptionHandler{Ledger: ledger, Payments: payments}
}

type intentRequest struct {
	Price float64 `json:"price" binding:"price"`
}

type subscriptionRequest struct {
	Email        string `json:"email" binding:"required,email"`
	PriceAndTime struct {
		Price float64 `json:"price" binding:"price"`
		Time  int     `json:"time" binding:"minutes"`
		Label string  `json:"label" binding:"max=100"`
	} `json:"priceAndTime"`
	TransactionID string `json:"transactionId" binding:"max=255"`
}

// CreateIntent POST /api/create-payment-intent
func (h *SubscriptionHandler) CreateIntent(c *gin.Context) {
	var req intentRequest
	if !bind(c, &req) {
		return
	}
	pi, err := h.Payments.CreateIntent(c.Request.Context(), middleware.CallerFrom(c), req.Price)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, pi, "payment intent created", nil)
}

// Record POST /api/subscription-histories
func (h *SubscriptionHandler) Record(c *gin.Context) {
	var req subscriptionRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Ledger.RecordPayment(c.Request.Context(), middleware.CallerFrom(c), application.PaymentInput{
		Email:           req.Email,
		Price:           req.PriceAndTime.Price,
		DurationMinutes: req.PriceAndTime.Time,
		Plan:            req.PriceAndTime.Label,
		TransactionID:   req.TransactionID,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusCreated, res, "subscription recorded", nil)
}

// History GET /api/subscription-histories/:email
func (h *SubscriptionHandler) History(c *gin.Context) {
	items, err := h.Ledger.History(c.Request.Context(), middleware.CallerFrom(c), c.Param("email"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, items, "subscription history", response.PageMeta{Count: len(items)})
}
