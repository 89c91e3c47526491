package enums

// SessionStatus is the state of one crypto payment session.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// String implements fmt.Stringer.
func (s SessionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is absorbing.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed
}

// FailureReason explains why a session ended in SessionStatusFailed.
type FailureReason string

const (
	FailureReasonNone          FailureReason = ""
	FailureReasonExpired       FailureReason = "expired"
	FailureReasonGatewayFailed FailureReason = "gateway_failed"
)

// String implements fmt.Stringer.
func (r FailureReason) String() string {
	return string(r)
}
