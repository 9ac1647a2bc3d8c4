package application

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// LedgerService is the subscription ledger and the only writer of premium state.
type LedgerService struct {
	Subs     repo.SubscriptionRepository
	Users    repo.UserRepository
	Roles    *RoleResolver
	Policy   *policy.Engine
	Receipts ReceiptPublisher
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewLedgerService(subs repo.SubscriptionRepository, users repo.UserRepository, roles *RoleResolver, pe *policy.Engine, receipts ReceiptPublisher, logger *logrus.Logger) *LedgerService {
	return &LedgerService{Subs: subs, Users: users, Roles: roles, Policy: pe, Receipts: receipts, Logger: orNop(logger)}
}

type PaymentInput struct {
	Email           string
	Price           float64
	DurationMinutes int
	Plan            string
	TransactionID   string
}

type PaymentResult struct {
	Entry            *entity.SubscriptionRecord `json:"entry"`
	PremiumExpiresAt time.Time                  `json:"premiumExpiresAt"`
}

func validatePayment(in PaymentInput) error {
	if strings.TrimSpace(in.Email) == "" {
		return apperr.New(apperr.KindInvalidInput, "email is required")
	}
	if math.IsNaN(in.Price) || in.Price < entity.MinPrice || in.Price > entity.MaxPrice {
		return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("price must be between %.2f and %d", entity.MinPrice, entity.MaxPrice))
	}
	if in.DurationMinutes <= 0 || in.DurationMinutes > entity.MaxDurationMinutes {
		return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("duration must be between 1 and %d minutes", entity.MaxDurationMinutes))
	}
	return nil
}

// RecordPayment appends a ledger entry and sets the payer's premium window to
// now + duration. Concurrent payments for one user are last-write-wins on the expiry.
func (s *LedgerService) RecordPayment(ctx context.Context, caller policy.Caller, in PaymentInput) (*PaymentResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validatePayment(in); err != nil {
		return nil, err
	}
	if s.Policy != nil {
		if _, err := s.Policy.Authorize(caller, policy.ActionPay, policy.LedgerResource(in.Email)); err != nil {
			return nil, err
		}
	}

	now := clock(s.Now).now()
	rec := &entity.SubscriptionRecord{
		ID:              uuid.NewString(),
		Email:           in.Email,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		Plan:            in.Plan,
		TransactionID:   in.TransactionID,
		CreatedAt:       now,
	}
	expiresAt := rec.ExpiryFrom(now)

	if err := s.commit(ctx, rec, expiresAt); err != nil {
		return nil, err
	}

	if s.Roles != nil {
		s.Roles.Invalidate(ctx, in.Email)
	}
	s.publishReceipt(ctx, rec, expiresAt)

	helpers.LogInfo(s.Logger, "payment recorded", logrus.Fields{
		"entry_id":   rec.ID,
		"email":      rec.Email,
		"duration":   rec.DurationMinutes,
		"expires_at": expiresAt,
	})
	return &PaymentResult{Entry: rec, PremiumExpiresAt: expiresAt}, nil
}

func (s *LedgerService) commit(ctx context.Context, rec *entity.SubscriptionRecord, expiresAt time.Time) error {
	if atomic, ok := s.Subs.(repo.AtomicLedger); ok {
		return atomic.AppendAndPromote(ctx, rec, expiresAt)
	}

	if _, err := s.Users.GetByEmail(ctx, rec.Email); err != nil {
		return err
	}
	if err := s.Subs.Append(ctx, rec); err != nil {
		return err
	}
	if err := s.Users.SetPremium(ctx, rec.Email, expiresAt); err != nil {
		helpers.LogError(s.Logger, "premium promotion failed after ledger append", err, logrus.Fields{
			"entry_id": rec.ID,
			"email":    rec.Email,
		})
		return apperr.Wrap(apperr.KindPartialFailure, "payment "+rec.ID+" recorded but premium was not applied", err)
	}
	return nil
}

func (s *LedgerService) publishReceipt(ctx context.Context, rec *entity.SubscriptionRecord, expiresAt time.Time) {
	if s.Receipts == nil {
		return
	}
	receipt := entity.PaymentReceipt{
		EntryID:          rec.ID,
		Email:            rec.Email,
		Price:            rec.Price,
		DurationMinutes:  rec.DurationMinutes,
		Plan:             rec.Plan,
		PremiumExpiresAt: expiresAt,
		PaidAt:           rec.CreatedAt,
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Receipts.PublishJSON(c, receipt); err != nil {
		helpers.LogWarn(s.Logger, "receipt publish failed", err, logrus.Fields{"entry_id": rec.ID})
	}
}

// History lists the ledger entries of email, newest first.
func (s *LedgerService) History(ctx context.Context, caller policy.Caller, email string) ([]*entity.SubscriptionRecord, error) {
	if s.Policy != nil {
		if _, err := s.Policy.Authorize(caller, policy.ActionList, policy.LedgerResource(email)); err != nil {
			return nil, err
		}
	}
	return retry(ctx, func(ctx context.Context) ([]*entity.SubscriptionRecord, error) {
		return s.Subs.ListByEmail(ctx, email)
	})
}
