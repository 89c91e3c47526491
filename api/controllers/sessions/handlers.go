package sessions

import (
	"context"
	"net/http"

	"github.com/propdesk/fundedpay/api/responses"
	"github.com/propdesk/fundedpay/api/validators"
	"github.com/propdesk/fundedpay/internal/payments"
	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
	"github.com/propdesk/fundedpay/pkg/logger"
)

// Service is the session surface the handlers drive.
type Service interface {
	Open(ctx context.Context, orderID, userID string) (payments.Snapshot, error)
	Get(orderID, userID string) (payments.Snapshot, error)
	Close(ctx context.Context, orderID, userID string) error
}

// Open starts or resumes the payment session of an order.
func Open(svc Service, identity payments.IdentityProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, orderID, userID, ok := resolve(w, r, svc, identity, logg)
		if !ok {
			return
		}

		snap, err := svc.Open(ctx, orderID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(snap))
	}
}

// Get returns the current snapshot of a live session.
func Get(svc Service, identity payments.IdentityProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, orderID, userID, ok := resolve(w, r, svc, identity, logg)
		if !ok {
			return
		}

		snap, err := svc.Get(orderID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(snap))
	}
}

// Close stops a session's timers.
func Close(svc Service, identity payments.IdentityProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, orderID, userID, ok := resolve(w, r, svc, identity, logg)
		if !ok {
			return
		}

		if err := svc.Close(ctx, orderID, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}

func resolve(w http.ResponseWriter, r *http.Request, svc Service, identity payments.IdentityProvider, logg *logger.Logger) (context.Context, string, string, bool) {
	ctx := r.Context()
	if svc == nil || identity == nil {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment sessions unavailable"))
		return ctx, "", "", false
	}

	userID, ok := identity.CurrentUserID(ctx)
	if !ok || userID == "" {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return ctx, "", "", false
	}

	orderID := validators.PathParam(r, "orderId")
	if orderID == "" {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required").
			WithDetails(map[string]string{"orderId": "is required"}))
		return ctx, "", "", false
	}

	if logg != nil {
		ctx = logg.WithOrderID(ctx, orderID)
	}
	return ctx, orderID, userID, true
}
