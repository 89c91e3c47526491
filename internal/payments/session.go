package payments

import (
	"context"
	"sync"

	"github.com/propdesk/fundedpay/internal/gateway"
	"github.com/propdesk/fundedpay/pkg/enums"
	"github.com/propdesk/fundedpay/pkg/logger"
	"github.com/propdesk/fundedpay/pkg/metrics"
)

// Session holds the state of one crypto payment attempt. Completed and failed
// are absorbing: once reached, Tick and Poll never change the state again.
// After dispose every write is a no-op.
type Session struct {
	mu       sync.Mutex
	state    Snapshot
	disposed bool
	done     chan struct{}

	gateway  gateway.Client
	logg     *logger.Logger
	logCtx   context.Context
	metrics  *metrics.PaymentMetrics
	onChange func(Snapshot)
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

func WithLogger(logg *logger.Logger) SessionOption {
	return func(s *Session) { s.logg = logg }
}

func WithMetrics(m *metrics.PaymentMetrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithStatusListener registers fn to be called after every status transition.
// fn runs outside the session lock.
func WithStatusListener(fn func(Snapshot)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// NewSession builds a session from a loaded snapshot. A pending snapshot with
// no time left fails immediately as expired.
func NewSession(initial Snapshot, gw gateway.Client, opts ...SessionOption) *Session {
	s := &Session{
		state:   initial,
		done:    make(chan struct{}),
		gateway: gw,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.state.SecondsRemaining < 0 {
		s.state.SecondsRemaining = 0
	}
	s.logCtx = s.logg.WithFields(context.Background(), map[string]any{
		"order_id":           initial.OrderID,
		"user_id":            initial.UserID,
		"session_generation": initial.Generation,
	})

	if s.state.Status == enums.SessionStatusPending && s.state.SecondsRemaining == 0 {
		s.state.Status = enums.SessionStatusFailed
		s.state.Reason = enums.FailureReasonExpired
	}
	if s.state.Status.IsTerminal() {
		close(s.done)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session reaches a terminal status.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Tick advances the countdown by one second while pending. Reaching zero
// fails the session as expired.
func (s *Session) Tick() Snapshot {
	s.mu.Lock()
	if s.disposed || s.state.Status != enums.SessionStatusPending {
		snap := s.state
		s.mu.Unlock()
		return snap
	}
	if s.state.SecondsRemaining > 0 {
		s.state.SecondsRemaining--
	}
	changed := false
	if s.state.SecondsRemaining == 0 {
		changed = s.transitionLocked(enums.SessionStatusFailed, enums.FailureReasonExpired)
	}
	snap := s.state
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return snap
}

// Poll asks the gateway for the payment status and applies it. The network
// call happens outside the lock; a session that became terminal or was
// disposed meanwhile ignores the result.
func (s *Session) Poll(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.disposed || s.state.Status.IsTerminal() {
		snap := s.state
		s.mu.Unlock()
		return snap
	}
	orderID, userID := s.state.OrderID, s.state.UserID
	s.mu.Unlock()

	res := s.gateway.CheckStatus(ctx, orderID, userID)

	s.mu.Lock()
	if s.disposed || s.state.Status.IsTerminal() {
		snap := s.state
		s.mu.Unlock()
		s.metrics.IncPoll("discarded")
		return snap
	}
	changed := false
	switch res.Kind {
	case gateway.KindOK:
		s.metrics.IncPoll(gateway.KindOK.String())
		changed = s.applyStatusLocked(res.Status)
	case gateway.KindNotFound:
		s.metrics.IncPoll(gateway.KindNotFound.String())
		s.logg.Warn(s.logCtx, "payment status not found at gateway; will retry")
	default:
		s.metrics.IncPoll(gateway.KindTransient.String())
		switch {
		case ctx.Err() != nil:
		case gateway.IsRejected(res.Err):
			s.logg.Error(s.logCtx, "payment status poll rejected by gateway; check gateway credentials", res.Err)
		default:
			s.logg.Warn(s.logg.WithField(s.logCtx, "error", errString(res.Err)), "payment status poll failed; will retry")
		}
	}
	snap := s.state
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return snap
}

func (s *Session) applyStatusLocked(status enums.PaymentStatus) bool {
	switch {
	case status.IsSettled():
		return s.transitionLocked(enums.SessionStatusCompleted, enums.FailureReasonNone)
	case status.IsRejected():
		return s.transitionLocked(enums.SessionStatusFailed, enums.FailureReasonGatewayFailed)
	case status.IsInFlight():
		return s.transitionLocked(enums.SessionStatusProcessing, enums.FailureReasonNone)
	default:
		return false
	}
}

// transitionLocked moves the state machine forward. Backward moves and moves
// out of a terminal status are rejected.
func (s *Session) transitionLocked(to enums.SessionStatus, reason enums.FailureReason) bool {
	from := s.state.Status
	if from == to || from.IsTerminal() {
		return false
	}
	s.state.Status = to
	s.state.Reason = reason

	s.metrics.IncTransition(to.String(), reason.String())
	s.logg.Info(s.logg.WithFields(s.logCtx, map[string]any{
		"from":   from.String(),
		"to":     to.String(),
		"reason": reason.String(),
	}), "payment session transition")

	if to.IsTerminal() {
		close(s.done)
	}
	return true
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// dispose detaches the session; later Tick and Poll calls do nothing.
func (s *Session) dispose() {
	s.mu.Lock()
	s.disposed = true
	s.mu.Unlock()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
