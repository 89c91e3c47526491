package payments

import (
	"errors"

	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrAllocationPending = errors.New("payment allocation pending")
	ErrSessionNotFound   = errors.New("payment session not found")
	ErrNotCryptoOrder    = errors.New("order is not payable by crypto")
	ErrMissingIdentity   = errors.New("order id and user id are required")
)

// AllocationRetryAfterSeconds is the hint returned to clients polling a
// pending allocation.
const AllocationRetryAfterSeconds = 5

// toAPIError wraps a domain sentinel into the coded error the HTTP layer renders.
// Unknown errors pass through untouched.
func toAPIError(err error) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, ErrMissingIdentity):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	case errors.Is(err, ErrNotCryptoOrder):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()).
			WithDetails(map[string]any{"field": "paymentMethod"})
	case errors.Is(err, ErrOrderNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found").
			WithDetails(map[string]any{"action": "create_order"})
	case errors.Is(err, ErrSessionNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no active payment session").
			WithDetails(map[string]any{"action": "open_session"})
	case errors.Is(err, ErrAllocationPending):
		return pkgerrors.Wrap(pkgerrors.CodeAllocationPending, err, "payment details are still being allocated").
			WithDetails(map[string]any{"retryable": true, "retryAfterSeconds": AllocationRetryAfterSeconds})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "payment session failure")
	}
}
