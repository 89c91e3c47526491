package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propdesk/fundedpay/pkg/config"
	"github.com/propdesk/fundedpay/pkg/enums"
	"github.com/propdesk/fundedpay/pkg/metrics"
)

const (
	apiKeyHeader      = "x-api-key"
	maxResponseBytes  = 1 << 20
	opCreatePayment   = "create_payment"
	opCheckStatus     = "check_status"
	defaultReqTimeout = 8 * time.Second
)

// HTTPClient talks JSON to the crypto gateway. Transport failures, 5xx, 429
// and undecodable bodies surface as transient results; 404 as not found.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.PaymentMetrics
}

// NewHTTPClient builds a gateway client. httpClient may be nil.
func NewHTTPClient(cfg config.GatewayConfig, httpClient *http.Client, m *metrics.PaymentMetrics) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gateway api key is required")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultReqTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	return &HTTPClient{baseURL: base, apiKey: cfg.APIKey, http: httpClient, metrics: m}, nil
}

type orderRef struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

type paymentResponse struct {
	PaymentID     string              `json:"payment_id"`
	PayAmount     decimal.NullDecimal `json:"pay_amount"`
	PayCurrency   string              `json:"pay_currency"`
	PayAddress    string              `json:"pay_address"`
	PaymentStatus string              `json:"payment_status"`
}

type statusResponse struct {
	PaymentStatus string `json:"payment_status"`
	Order         struct {
		FinalAmount    decimal.Decimal     `json:"final_amount"`
		CryptoAmount   decimal.NullDecimal `json:"crypto_amount"`
		CryptoCurrency string              `json:"crypto_currency"`
		CryptoAddress  string              `json:"crypto_address"`
	} `json:"order"`
}

var errNotFound = errors.New("not found")

// outcomeRejected labels 4xx answers other than 404, usually a revoked or
// mistyped API key. They are still retried as transient.
const outcomeRejected = "rejected"

// HTTPError is a non-2xx gateway answer other than 404.
type HTTPError struct {
	Op      string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: gateway http %d: %s", e.Op, e.Status, e.Message)
}

func (e *HTTPError) UpstreamOp() string  { return e.Op }
func (e *HTTPError) UpstreamStatus() int { return e.Status }

// IsRejected reports whether err is a 4xx gateway answer that retrying will
// not fix until the gateway configuration changes. 408 and 429 are excluded.
func IsRejected(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return httpErr.Status >= 400 && httpErr.Status < 500
}

// CreateOrGetPayment asks the gateway for the payment tied to the order,
// creating it on first call.
func (c *HTTPClient) CreateOrGetPayment(ctx context.Context, orderID, userID string) PaymentResult {
	var body paymentResponse
	err := c.post(ctx, opCreatePayment, "/payments", orderRef{OrderID: orderID, UserID: userID}, &body)
	switch {
	case errors.Is(err, errNotFound):
		return PaymentNotFound()
	case err != nil:
		return PaymentTransient(err)
	}
	return PaymentOK(Payment{
		PaymentID:      strings.TrimSpace(body.PaymentID),
		AmountCrypto:   body.PayAmount,
		CryptoCurrency: string(enums.NormalizeCryptoCurrency(body.PayCurrency)),
		Address:        strings.TrimSpace(body.PayAddress),
		Status:         normalizeStatus(body.PaymentStatus),
	})
}

// CheckStatus reports the current gateway status for the order's payment.
func (c *HTTPClient) CheckStatus(ctx context.Context, orderID, userID string) StatusResult {
	var body statusResponse
	err := c.post(ctx, opCheckStatus, "/payments/status", orderRef{OrderID: orderID, UserID: userID}, &body)
	switch {
	case errors.Is(err, errNotFound):
		return StatusNotFound()
	case err != nil:
		return StatusTransient(err)
	}
	if strings.TrimSpace(body.PaymentStatus) == "" {
		return StatusTransient(fmt.Errorf("gateway returned empty payment_status"))
	}
	return StatusOK(normalizeStatus(body.PaymentStatus), StatusOrder{
		FinalAmount:    body.Order.FinalAmount,
		CryptoAmount:   body.Order.CryptoAmount,
		CryptoCurrency: string(enums.NormalizeCryptoCurrency(body.Order.CryptoCurrency)),
		CryptoAddress:  strings.TrimSpace(body.Order.CryptoAddress),
	})
}

func (c *HTTPClient) post(ctx context.Context, op, path string, payload any, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveGateway(op, outcomeOf(err), time.Since(start))
	}()

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &HTTPError{Op: op, Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func normalizeStatus(raw string) enums.PaymentStatus {
	return enums.PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return KindOK.String()
	case errors.Is(err, errNotFound):
		return KindNotFound.String()
	case IsRejected(err):
		return outcomeRejected
	default:
		return KindTransient.String()
	}
}
