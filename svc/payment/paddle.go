package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/nutrisnap/nutrisnap/pkg/logger"
)

// PaddleConfig holds configuration for the Paddle billing provider used
// by the web checkout flow.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
	SuccessURL    string `env:"PADDLE_SUCCESS_URL"`
}

// PaddleProvider accepts card payments through Paddle as an alternative
// to in-chat Telegram invoices. Settled transactions are fed into the
// same Service settlement path.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
	svc      *Service
	config   PaddleConfig
	log      *slog.Logger
}

// NewPaddleProvider creates a Paddle provider wired to the payment service.
func NewPaddleProvider(config PaddleConfig, svc *Service, log *slog.Logger) (*PaddleProvider, error) {
	if config.APIKey == "" || config.WebhookSecret == "" {
		return nil, ErrProviderNotReady
	}
	if svc == nil {
		panic("payment: service is required")
	}
	if log == nil {
		log = slog.Default()
	}

	var client *paddle.SDK
	var err error
	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, fmt.Errorf("invalid paddle environment: %s", config.Environment)
	}
	if err != nil {
		return nil, errors.Join(ErrProviderNotReady, err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(config.WebhookSecret),
		svc:      svc,
		config:   config,
		log:      log,
	}, nil
}

// CreateCheckoutLink creates a hosted Paddle checkout for a pro
// subscription. The invoice payload rides in the transaction custom data
// and comes back on the completion webhook.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, userID int64, durationMonths int, priceID string) (string, error) {
	if priceID == "" {
		return "", errors.New("price ID is required")
	}

	invoice, err := p.svc.CreateSubscriptionInvoice(userID, durationMonths)
	if err != nil {
		return "", err
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  priceID,
		Quantity: 1,
	})
	req := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"payload": invoice.Payload,
			"user_id": strconv.FormatInt(userID, 10),
		},
	}
	if p.config.SuccessURL != "" {
		req.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(p.config.SuccessURL),
		}
	}

	transaction, err := p.client.TransactionsClient.CreateTransaction(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create paddle transaction: %w", err)
	}
	if transaction.Checkout == nil || transaction.Checkout.URL == nil {
		return "", errors.New("no checkout URL returned from paddle")
	}
	return *transaction.Checkout.URL, nil
}

// WebhookHandler returns an http.HandlerFunc that verifies and settles
// Paddle transaction.completed events. Other event types are acknowledged
// and ignored.
func (p *PaddleProvider) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		charge, err := p.parseWebhook(r)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidSignature):
				http.Error(w, "invalid signature", http.StatusUnauthorized)
			case errors.Is(err, errIgnoredEvent):
				w.WriteHeader(http.StatusOK)
			default:
				p.log.WarnContext(r.Context(), "rejected paddle webhook",
					logger.Component("payment.paddle"),
					logger.Error(err))
				http.Error(w, "bad request", http.StatusBadRequest)
			}
			return
		}

		err = p.svc.ProcessSuccessfulPayment(r.Context(), charge)
		if err != nil && !errors.Is(err, ErrDuplicatePayment) {
			// Signal retry so Paddle redelivers; dedup makes that safe.
			http.Error(w, "settlement failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// errIgnoredEvent marks webhook events that carry nothing to settle.
var errIgnoredEvent = errors.New("payment.errors.ignored_webhook_event")

func (p *PaddleProvider) parseWebhook(r *http.Request) (ChargeInfo, error) {
	valid, err := p.verifier.Verify(r)
	if err != nil {
		return ChargeInfo{}, errors.Join(ErrInvalidSignature, err)
	}
	if !valid {
		return ChargeInfo{}, ErrInvalidSignature
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ChargeInfo{}, errors.Join(ErrMalformedWebhook, err)
	}

	var event struct {
		EventID    string `json:"event_id"`
		EventType  string `json:"event_type"`
		OccurredAt string `json:"occurred_at"`
		Data       struct {
			ID         string            `json:"id"`
			Status     string            `json:"status"`
			CustomData map[string]string `json:"custom_data"`
			Details    struct {
				Totals struct {
					GrandTotal   string `json:"grand_total"`
					CurrencyCode string `json:"currency_code"`
				} `json:"totals"`
			} `json:"details"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return ChargeInfo{}, errors.Join(ErrMalformedWebhook, err)
	}

	if event.EventType != "transaction.completed" {
		return ChargeInfo{}, errIgnoredEvent
	}

	payload := event.Data.CustomData["payload"]
	if payload == "" {
		return ChargeInfo{}, ErrMalformedWebhook
	}

	// Paddle reports totals as strings in the currency's minor unit.
	amount, err := strconv.ParseInt(event.Data.Details.Totals.GrandTotal, 10, 64)
	if err != nil {
		return ChargeInfo{}, errors.Join(ErrMalformedWebhook, err)
	}

	return ChargeInfo{
		Payload:          payload,
		TotalAmount:      amount,
		Currency:         event.Data.Details.Totals.CurrencyCode,
		ProviderChargeID: event.Data.ID,
	}, nil
}
