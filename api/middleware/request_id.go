package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/propdesk/fundedpay/api/responses"
	"github.com/propdesk/fundedpay/api/validators"
	"github.com/propdesk/fundedpay/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 64
)

// Ids forwarded by the checkout frontend or the gateway end up in logs and
// error bodies, so only plain tokens are reused.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// RequestID reuses a well-formed inbound X-Request-Id or mints a uuid, then
// attaches it to the response header, the log context and error envelopes.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := validators.TrimParam(r.Header.Get(requestIDHeader), maxRequestIDLength)
			if !requestIDPattern.MatchString(reqID) {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := responses.WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
