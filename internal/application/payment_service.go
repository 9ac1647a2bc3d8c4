package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// PaymentService opens card payments at the provider. Confirmed payments are recorded
// separately through the ledger.
type PaymentService struct {
	Gateway  PaymentGateway
	Currency string
	Timeout  time.Duration
	Logger   *logrus.Logger
}

func NewPaymentService(gw PaymentGateway, currency string, timeout time.Duration, logger *logrus.Logger) *PaymentService {
	return &PaymentService{Gateway: gw, Currency: strings.ToLower(currency), Timeout: timeout, Logger: orNop(logger)}
}

// MinorUnits converts a price in major currency units to the provider's integer amount.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func (s *PaymentService) CreateIntent(ctx context.Context, caller policy.Caller, price float64) (*PaymentIntent, error) {
	if !caller.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	if math.IsNaN(price) || price < entity.MinPrice || price > entity.MaxPrice {
		return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("price must be between %.2f and %d", entity.MinPrice, entity.MaxPrice))
	}
	if s.Gateway == nil {
		return nil, apperr.New(apperr.KindUpstream, "payment provider not configured")
	}

	c := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		c, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	intent, err := s.Gateway.CreateIntent(c, MinorUnits(price), s.Currency, caller.Email)
	if err != nil {
		helpers.LogError(s.Logger, "create payment intent failed", err, logrus.Fields{"email": caller.Email})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.KindTimeout, "payment provider timeout", err)
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "payment provider failure", err)
	}
	return intent, nil
}
