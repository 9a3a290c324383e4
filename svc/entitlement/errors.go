package entitlement

import "errors"

// Domain errors for entitlement checks.
var (
	ErrFailedToLoadPlans = errors.New("entitlement.errors.failed_to_load_plans")
	ErrUnknownFeature    = errors.New("entitlement.errors.unknown_feature")
)
