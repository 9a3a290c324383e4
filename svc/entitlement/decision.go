package entitlement

// Decision is the outcome of an entitlement check. Reason is set on
// denials and is user-presentable; the front-end branches on it to show
// either an upsell or a retry message.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denial with the given human-readable reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// ReasonSystemError is the catch-all denial reason for store failures.
// Quota checks fail closed: a timeout is a denial, never an allow.
const ReasonSystemError = "system error, please try again"
