package payment

import "errors"

var (
	ErrInvalidPayload    = errors.New("payment.errors.invalid_payload")
	ErrUnknownProduct    = errors.New("payment.errors.unknown_product")
	ErrUnknownPlan       = errors.New("payment.errors.unknown_plan")
	ErrDuplicatePayment  = errors.New("payment.errors.duplicate_payment")
	ErrPersistence       = errors.New("payment.errors.persistence_failure")
	ErrActivationFailed  = errors.New("payment.errors.activation_failed")
	ErrInvalidSignature  = errors.New("payment.errors.invalid_webhook_signature")
	ErrMalformedWebhook  = errors.New("payment.errors.malformed_webhook_payload")
	ErrProviderNotReady  = errors.New("payment.errors.billing_provider_not_configured")
	ErrInvoiceGeneration = errors.New("payment.errors.invoice_generation_failed")
)
