package types

// SuccessEnvelope wraps every 2xx body returned by the payment API.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public view of a coded error. Retryable tells clients such
// as the checkout page to try again after the Retry-After delay.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// ErrorEnvelope carries the request id so support can match a failed
// payment screen to the server logs.
type ErrorEnvelope struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"requestId,omitempty"`
}

func NewErrorEnvelope(requestID string, apiErr APIError) ErrorEnvelope {
	return ErrorEnvelope{Error: apiErr, RequestID: requestID}
}
