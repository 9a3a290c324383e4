package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the two invoice families carried in a payload.
type Kind string

const (
	KindSubscription Kind = "subscription"
	KindStars        Kind = "stars"
)

// Payload is the decoded form of the opaque string attached to an invoice.
// It round-trips through the payment provider untouched and is the only
// link between an invoice and the purchase it settles.
type Payload struct {
	Kind           Kind
	Plan           string  // subscription payloads only, currently always "pro"
	DurationMonths int     // subscription payloads only
	Product        Product // stars payloads only
	UserID         int64
	IssuedAt       time.Time
}

// BuildSubscriptionPayload encodes a pro subscription purchase as
// "subscription_<plan>_<months>_<userID>_<unix>".
func BuildSubscriptionPayload(plan string, durationMonths int, userID int64, now time.Time) string {
	return fmt.Sprintf("subscription_%s_%d_%d_%d", plan, durationMonths, userID, now.Unix())
}

// BuildStarsPayload encodes a one-off Stars purchase as
// "stars_<product>_<userID>_<unix>".
func BuildStarsPayload(product Product, userID int64, now time.Time) string {
	return fmt.Sprintf("stars_%s_%d_%d", product, userID, now.Unix())
}

// ParsePayload decodes an invoice payload. Product names contain
// underscores, so stars payloads are parsed from the tail: the last two
// segments are always the user ID and issue timestamp.
func ParsePayload(raw string) (Payload, error) {
	parts := strings.Split(raw, "_")
	if len(parts) < 4 {
		return Payload{}, ErrInvalidPayload
	}

	switch Kind(parts[0]) {
	case KindSubscription:
		if len(parts) != 5 {
			return Payload{}, ErrInvalidPayload
		}
		months, err := strconv.Atoi(parts[2])
		if err != nil || months < 1 {
			return Payload{}, ErrInvalidPayload
		}
		userID, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil || userID <= 0 {
			return Payload{}, ErrInvalidPayload
		}
		issued, err := parseIssuedAt(parts[4])
		if err != nil {
			return Payload{}, ErrInvalidPayload
		}
		return Payload{
			Kind:           KindSubscription,
			Plan:           parts[1],
			DurationMonths: months,
			UserID:         userID,
			IssuedAt:       issued,
		}, nil

	case KindStars:
		userID, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
		if err != nil || userID <= 0 {
			return Payload{}, ErrInvalidPayload
		}
		issued, err := parseIssuedAt(parts[len(parts)-1])
		if err != nil {
			return Payload{}, ErrInvalidPayload
		}
		product := Product(strings.Join(parts[1:len(parts)-2], "_"))
		if !product.Valid() {
			return Payload{}, ErrUnknownProduct
		}
		return Payload{
			Kind:     KindStars,
			Product:  product,
			UserID:   userID,
			IssuedAt: issued,
		}, nil
	}

	return Payload{}, ErrInvalidPayload
}

func parseIssuedAt(s string) (time.Time, error) {
	unix, err := strconv.ParseInt(s, 10, 64)
	if err != nil || unix <= 0 {
		return time.Time{}, ErrInvalidPayload
	}
	return time.Unix(unix, 0).UTC(), nil
}
