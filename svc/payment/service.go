package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nutrisnap/nutrisnap/pkg/logger"
	"github.com/nutrisnap/nutrisnap/pkg/qrcode"
)

// multiDishDuration is how long the multi-dish product unlocks
// multi-subject analysis for.
const multiDishDuration = 24 * time.Hour

// Activator applies a settled purchase to the buyer's subscription record.
// Implemented by subscription.Ledger.
type Activator interface {
	ActivatePro(ctx context.Context, userID int64, durationMonths int) error
	AddBonusUnits(ctx context.Context, userID int64, count int64) error
	UnlockMultiSubject(ctx context.Context, userID int64, until time.Time) error
}

// ReportScheduler queues a weekly report for generation after a pdf_report
// purchase. Optional, see WithReportScheduler.
type ReportScheduler interface {
	ScheduleWeeklyReport(ctx context.Context, userID int64) error
}

// Invoice describes a payable bill to present to the buyer. Amount is in
// minor units (kopecks) for RUB and whole stars for XTR.
type Invoice struct {
	Title       string
	Description string
	Payload     string
	Amount      int64
	Currency    string
}

// ChargeInfo carries the provider's confirmation of a settled charge.
type ChargeInfo struct {
	Payload          string
	TotalAmount      int64 // minor units for RUB, whole stars for XTR
	Currency         string
	ProviderChargeID string
}

// Service issues invoices and settles successful charges against the
// subscription ledger. Settlement is idempotent per provider charge ID.
type Service struct {
	activator Activator
	repo      Repository
	dedup     Deduper
	reports   ReportScheduler
	now       func() time.Time
	log       *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithNowFunc overrides the time source, primarily for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithReportScheduler enables pdf_report purchases to queue report
// generation. Without it the purchase is recorded but not fulfilled here.
func WithReportScheduler(r ReportScheduler) Option {
	return func(s *Service) {
		s.reports = r
	}
}

// NewService creates a payment Service. The activator, repository and
// deduper are required.
func NewService(activator Activator, repo Repository, dedup Deduper, opts ...Option) *Service {
	if activator == nil {
		panic("payment: activator is required")
	}
	if repo == nil {
		panic("payment: repository is required")
	}
	if dedup == nil {
		panic("payment: deduper is required")
	}
	s := &Service{
		activator: activator,
		repo:      repo,
		dedup:     dedup,
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSubscriptionInvoice builds an invoice for a pro subscription of
// 1, 3 or 12 months, priced in RUB.
func (s *Service) CreateSubscriptionInvoice(userID int64, durationMonths int) (Invoice, error) {
	priceRUB, err := SubscriptionPriceRUB(durationMonths)
	if err != nil {
		return Invoice{}, err
	}

	var title, description string
	switch durationMonths {
	case 1:
		title = "Pro subscription, 1 month"
		description = "200 photos/month, multi-dish, micronutrients, export, calendar sync"
	case 3:
		title = "Pro subscription, 3 months"
		description = "All Pro features, save 33%"
	case 12:
		title = "Pro subscription, 1 year"
		description = "All Pro features, save 50%"
	}

	return Invoice{
		Title:       title,
		Description: description,
		Payload:     BuildSubscriptionPayload("pro", durationMonths, userID, s.now()),
		Amount:      priceRUB * 100,
		Currency:    "RUB",
	}, nil
}

// CreateStarsInvoice builds an invoice for a one-off catalog product,
// priced in Telegram Stars.
func (s *Service) CreateStarsInvoice(userID int64, product Product) (Invoice, error) {
	price, err := StarsPrice(product)
	if err != nil {
		return Invoice{}, err
	}
	return Invoice{
		Title:       ProductTitle(product),
		Description: ProductTitle(product),
		Payload:     BuildStarsPayload(product, userID, s.now()),
		Amount:      price,
		Currency:    "XTR",
	}, nil
}

// PaymentLinkQR renders a payment link as a PNG QR code for landing pages
// and printed materials.
func (s *Service) PaymentLinkQR(link string, size int) ([]byte, error) {
	png, err := qrcode.Generate(link, size)
	if err != nil {
		return nil, errors.Join(ErrInvoiceGeneration, err)
	}
	return png, nil
}

// ProcessSuccessfulPayment settles a confirmed charge: it deduplicates by
// charge ID, persists a receipt, then applies the purchase to the ledger.
// Redelivered charges return ErrDuplicatePayment without side effects.
func (s *Service) ProcessSuccessfulPayment(ctx context.Context, charge ChargeInfo) error {
	payload, err := ParsePayload(charge.Payload)
	if err != nil {
		s.log.WarnContext(ctx, "rejected payment with bad payload",
			logger.Component("payment"),
			logger.PaymentID(charge.ProviderChargeID),
			logger.Error(err))
		return err
	}

	first, err := s.dedup.MarkProcessed(ctx, charge.ProviderChargeID)
	if err != nil {
		return err
	}
	if !first {
		s.log.InfoContext(ctx, "skipped redelivered payment",
			logger.Component("payment"),
			logger.UserID(payload.UserID),
			logger.PaymentID(charge.ProviderChargeID))
		return ErrDuplicatePayment
	}

	receipt := Receipt{
		UserID:           payload.UserID,
		Kind:             payload.Kind,
		Plan:             payload.Plan,
		DurationMonths:   payload.DurationMonths,
		Product:          payload.Product,
		Amount:           charge.TotalAmount,
		Currency:         charge.Currency,
		ProviderChargeID: charge.ProviderChargeID,
		Payload:          charge.Payload,
		CreatedAt:        s.now(),
	}
	// RUB charges arrive in kopecks, receipts store whole rubles.
	if charge.Currency == "RUB" {
		receipt.Amount = charge.TotalAmount / 100
	}
	if err := s.repo.Save(ctx, receipt); err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			return ErrDuplicatePayment
		}
		return err
	}

	if err := s.apply(ctx, payload); err != nil {
		s.log.ErrorContext(ctx, "failed to activate purchase",
			logger.Component("payment"),
			logger.UserID(payload.UserID),
			logger.PaymentID(charge.ProviderChargeID),
			logger.Error(err))
		return errors.Join(ErrActivationFailed, err)
	}

	s.log.InfoContext(ctx, "payment settled",
		logger.Component("payment"),
		logger.UserID(payload.UserID),
		logger.PaymentID(charge.ProviderChargeID),
		logger.Event(string(payload.Kind)))
	return nil
}

func (s *Service) apply(ctx context.Context, payload Payload) error {
	switch payload.Kind {
	case KindSubscription:
		if payload.Plan != "pro" {
			return ErrUnknownPlan
		}
		return s.activator.ActivatePro(ctx, payload.UserID, payload.DurationMonths)

	case KindStars:
		switch payload.Product {
		case ProductExtraAnalyses:
			return s.activator.AddBonusUnits(ctx, payload.UserID, ExtraAnalysesCount)
		case ProductMultiDish24h:
			return s.activator.UnlockMultiSubject(ctx, payload.UserID, s.now().Add(multiDishDuration))
		case ProductPDFReport:
			if s.reports == nil {
				s.log.WarnContext(ctx, "pdf report purchased but no report scheduler configured",
					logger.Component("payment"),
					logger.UserID(payload.UserID))
				return nil
			}
			return s.reports.ScheduleWeeklyReport(ctx, payload.UserID)
		}
		return ErrUnknownProduct
	}

	return ErrInvalidPayload
}

// Receipts returns the user's payment history, newest first.
func (s *Service) Receipts(ctx context.Context, userID int64, limit int) ([]Receipt, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}
