package payment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisnap/nutrisnap/svc/payment"
)

func TestParsePayload(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("subscription round trip", func(t *testing.T) {
		t.Parallel()

		raw := payment.BuildSubscriptionPayload("pro", 3, 42, issued)
		assert.Equal(t, "subscription_pro_3_42_1741608000", raw)

		p, err := payment.ParsePayload(raw)
		require.NoError(t, err)
		assert.Equal(t, payment.KindSubscription, p.Kind)
		assert.Equal(t, "pro", p.Plan)
		assert.Equal(t, 3, p.DurationMonths)
		assert.Equal(t, int64(42), p.UserID)
		assert.True(t, p.IssuedAt.Equal(issued))
	})

	t.Run("stars round trip for every product", func(t *testing.T) {
		t.Parallel()

		products := []payment.Product{
			payment.ProductExtraAnalyses,
			payment.ProductMultiDish24h,
			payment.ProductPDFReport,
		}
		for _, product := range products {
			raw := payment.BuildStarsPayload(product, 7, issued)
			p, err := payment.ParsePayload(raw)
			require.NoError(t, err, "product %s", product)
			assert.Equal(t, payment.KindStars, p.Kind)
			assert.Equal(t, product, p.Product)
			assert.Equal(t, int64(7), p.UserID)
		}
	})

	t.Run("product names with underscores parse from the tail", func(t *testing.T) {
		t.Parallel()

		p, err := payment.ParsePayload("stars_extra_10_analyses_99_1741608000")
		require.NoError(t, err)
		assert.Equal(t, payment.ProductExtraAnalyses, p.Product)
		assert.Equal(t, int64(99), p.UserID)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"empty":              "",
			"too few segments":   "subscription_pro_1",
			"unknown kind":       "refund_pro_1_42_1741608000",
			"zero months":        "subscription_pro_0_42_1741608000",
			"negative user":      "subscription_pro_1_-5_1741608000",
			"garbage user":       "subscription_pro_1_abc_1741608000",
			"garbage timestamp":  "subscription_pro_1_42_later",
			"extra segment":      "subscription_pro_1_42_1741608000_junk",
			"stars missing user": "stars_pdf_report_1741608000",
		}
		for name, raw := range cases {
			_, err := payment.ParsePayload(raw)
			assert.Error(t, err, "case %q", name)
		}
	})

	t.Run("rejects unknown stars product", func(t *testing.T) {
		t.Parallel()

		_, err := payment.ParsePayload("stars_free_lunch_42_1741608000")
		assert.ErrorIs(t, err, payment.ErrUnknownProduct)
	})
}

func TestPricing(t *testing.T) {
	t.Parallel()

	t.Run("subscription terms", func(t *testing.T) {
		t.Parallel()

		for months, want := range map[int]int64{1: 399, 3: 999, 12: 2990} {
			got, err := payment.SubscriptionPriceRUB(months)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		_, err := payment.SubscriptionPriceRUB(6)
		assert.ErrorIs(t, err, payment.ErrUnknownPlan)
	})

	t.Run("stars catalog", func(t *testing.T) {
		t.Parallel()

		for product, want := range map[payment.Product]int64{
			payment.ProductExtraAnalyses: 99,
			payment.ProductMultiDish24h:  149,
			payment.ProductPDFReport:     199,
		} {
			got, err := payment.StarsPrice(product)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		_, err := payment.StarsPrice(payment.Product("free_lunch"))
		assert.ErrorIs(t, err, payment.ErrUnknownProduct)
	})
}
