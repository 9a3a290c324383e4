package payment

// Product identifies a one-off purchase payable with Telegram Stars.
type Product string

const (
	ProductExtraAnalyses Product = "extra_10_analyses"
	ProductMultiDish24h  Product = "multi_dish_24h"
	ProductPDFReport     Product = "pdf_report"
)

// Valid reports whether the product is one of the known catalog entries.
func (p Product) Valid() bool {
	switch p {
	case ProductExtraAnalyses, ProductMultiDish24h, ProductPDFReport:
		return true
	}
	return false
}

// Subscription prices in whole rubles. Invoices are issued in minor units
// (kopecks), see SubscriptionInvoiceAmount.
const (
	ProMonthlyRUB   = 399
	ProQuarterlyRUB = 999
	ProYearlyRUB    = 2990
)

// Star prices are denominated directly in Telegram Stars (XTR), which has
// no minor unit.
const (
	ExtraAnalysesStars = 99
	MultiDish24hStars  = 149
	PDFReportStars     = 199
)

// ExtraAnalysesCount is how many bonus analyses the extra-analyses product grants.
const ExtraAnalysesCount = 10

// SubscriptionPriceRUB returns the price in rubles for a pro subscription
// of the given duration. Only 1, 3 and 12 month terms are sold.
func SubscriptionPriceRUB(durationMonths int) (int64, error) {
	switch durationMonths {
	case 1:
		return ProMonthlyRUB, nil
	case 3:
		return ProQuarterlyRUB, nil
	case 12:
		return ProYearlyRUB, nil
	}
	return 0, ErrUnknownPlan
}

// StarsPrice returns the price in Telegram Stars for a catalog product.
func StarsPrice(product Product) (int64, error) {
	switch product {
	case ProductExtraAnalyses:
		return ExtraAnalysesStars, nil
	case ProductMultiDish24h:
		return MultiDish24hStars, nil
	case ProductPDFReport:
		return PDFReportStars, nil
	}
	return 0, ErrUnknownProduct
}

// ProductTitle returns the human readable invoice title for a product.
func ProductTitle(product Product) string {
	switch product {
	case ProductExtraAnalyses:
		return "+10 extra analyses"
	case ProductMultiDish24h:
		return "Multi-dish mode for 24 hours"
	case ProductPDFReport:
		return "Weekly PDF report"
	}
	return "Unknown product"
}
