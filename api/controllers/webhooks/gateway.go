package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/propdesk/fundedpay/api/responses"
	"github.com/propdesk/fundedpay/api/validators"
	"github.com/propdesk/fundedpay/internal/gateway"
	gatewaywebhook "github.com/propdesk/fundedpay/internal/webhooks/gateway"
	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
	"github.com/propdesk/fundedpay/pkg/logger"
)

const maxNotificationBytes = 64 << 10

type GatewayWebhookService interface {
	HandleNotification(ctx context.Context, n gatewaywebhook.Notification) error
}

type gatewayWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// GatewayWebhook handles payment status callbacks from the crypto gateway.
func GatewayWebhook(svc GatewayWebhookService, secret string, guard gatewayWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if err := gateway.VerifySignature(secret, payload, r.Header.Get(gateway.SignatureHeader)); err != nil {
			if errors.Is(err, gateway.ErrMissingSecret) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "gateway webhook not configured"))
				return
			}
			msg := "invalid signature"
			if errors.Is(err, gateway.ErrMissingSignature) {
				msg = "signature missing"
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, msg))
			return
		}

		var notification gatewaywebhook.Notification
		if err := validators.DecodeJSONBytes(payload, &notification); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		eventID := notification.EventID()
		if logg != nil {
			ctx = logg.WithFields(logg.WithOrderID(ctx, notification.OrderID), map[string]any{
				"payment_id":     notification.PaymentID,
				"payment_status": notification.PaymentStatus,
			})
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			if logg != nil {
				logg.Info(ctx, "gateway notification already processed")
			}
			responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
			return
		}

		if err := svc.HandleNotification(ctx, notification); err != nil {
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "accepted"})
	}
}
