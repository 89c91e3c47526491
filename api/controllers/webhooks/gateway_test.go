package webhooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/fundedpay/internal/gateway"
	gatewaywebhook "github.com/propdesk/fundedpay/internal/webhooks/gateway"
	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
)

const testSecret = "ipn-secret"

const finishedBody = `{"payment_id":"5077125051","payment_status":"finished","order_id":"8a1f5c2e-4b3d-4e6f-9a7b-1c2d3e4f5a6b","pay_address":"bc1qexampleaddress","pay_amount":0.00312,"pay_currency":"btc","outcome_amount":0.0031}`

type stubWebhookService struct {
	received []gatewaywebhook.Notification
	err      error
}

func (s *stubWebhookService) HandleNotification(_ context.Context, n gatewaywebhook.Notification) error {
	s.received = append(s.received, n)
	return s.err
}

type stubGuard struct {
	seen    map[string]bool
	deleted []string
	err     error
}

func newStubGuard() *stubGuard {
	return &stubGuard{seen: map[string]bool{}}
}

func (g *stubGuard) CheckAndMark(_ context.Context, eventID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen[eventID] {
		return true, nil
	}
	g.seen[eventID] = true
	return false, nil
}

func (g *stubGuard) Delete(_ context.Context, eventID string) error {
	delete(g.seen, eventID)
	g.deleted = append(g.deleted, eventID)
	return nil
}

func postNotification(t *testing.T, h http.Handler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/gateway", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(gateway.SignatureHeader, signature)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestGatewayWebhookProcessesSignedNotification(t *testing.T) {
	svc := &stubWebhookService{}
	guard := newStubGuard()
	handler := GatewayWebhook(svc, testSecret, guard, nil)

	resp := postNotification(t, handler, finishedBody, gateway.Sign(testSecret, []byte(finishedBody)))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, svc.received, 1)
	assert.Equal(t, "5077125051", svc.received[0].PaymentID)
	assert.Equal(t, "finished", svc.received[0].PaymentStatus)
	assert.True(t, guard.seen["5077125051:finished"])
}

func TestGatewayWebhookSkipsDuplicateDelivery(t *testing.T) {
	svc := &stubWebhookService{}
	guard := newStubGuard()
	handler := GatewayWebhook(svc, testSecret, guard, nil)
	sig := gateway.Sign(testSecret, []byte(finishedBody))

	require.Equal(t, http.StatusOK, postNotification(t, handler, finishedBody, sig).Code)
	resp := postNotification(t, handler, finishedBody, sig)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "duplicate")
	assert.Len(t, svc.received, 1)
}

func TestGatewayWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{}
	handler := GatewayWebhook(svc, testSecret, newStubGuard(), nil)

	resp := postNotification(t, handler, finishedBody, gateway.Sign("other", []byte(finishedBody)))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), string(pkgerrors.CodeSignature))

	resp = postNotification(t, handler, finishedBody, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, svc.received)
}

func TestGatewayWebhookRefusesForgeryWithBlankSecret(t *testing.T) {
	svc := &stubWebhookService{}
	guard := newStubGuard()
	handler := GatewayWebhook(svc, "", guard, nil)

	resp := postNotification(t, handler, finishedBody, gateway.Sign("", []byte(finishedBody)))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Empty(t, svc.received)
	assert.Empty(t, guard.seen)
}

func TestGatewayWebhookRejectsInvalidPayload(t *testing.T) {
	svc := &stubWebhookService{}
	handler := GatewayWebhook(svc, testSecret, newStubGuard(), nil)

	body := `{"payment_id":"1","payment_status":"finished","order_id":"not-a-uuid"}`
	resp := postNotification(t, handler, body, gateway.Sign(testSecret, []byte(body)))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "must be a valid uuid")
	assert.Empty(t, svc.received)
}

func TestGatewayWebhookReleasesMarkOnFailure(t *testing.T) {
	svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
	guard := newStubGuard()
	handler := GatewayWebhook(svc, testSecret, guard, nil)

	resp := postNotification(t, handler, finishedBody, gateway.Sign(testSecret, []byte(finishedBody)))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, []string{"5077125051:finished"}, guard.deleted)
	assert.False(t, guard.seen["5077125051:finished"])
}

func TestGatewayWebhookGuardFailure(t *testing.T) {
	svc := &stubWebhookService{}
	guard := newStubGuard()
	guard.err = errors.New("redis down")
	handler := GatewayWebhook(svc, testSecret, guard, nil)

	resp := postNotification(t, handler, finishedBody, gateway.Sign(testSecret, []byte(finishedBody)))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Empty(t, svc.received)
}
