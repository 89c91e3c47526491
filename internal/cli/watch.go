package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/propdesk/fundedpay/internal/payments"
	"github.com/propdesk/fundedpay/pkg/enums"
)

// ErrPaymentFailed is returned by watch when the session ends failed.
var ErrPaymentFailed = errors.New("payment failed")

type watchOptions struct {
	orderID string
	userID  string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions, factory RegistryFactory) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open a payment session and follow it to a final status",
		Long: `Open the crypto payment session of an order on behalf of its owner and print
one status line per transition until the session completes or fails.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, rootOpts, factory, opts)
		},
	}
	cmd.Flags().StringVar(&opts.orderID, "order", "", "order id")
	cmd.Flags().StringVar(&opts.userID, "user", "", "id of the user who owns the order")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runWatch(cmd *cobra.Command, rootOpts *RootOptions, factory RegistryFactory, opts *watchOptions) error {
	if factory == nil {
		return errors.New("watch is not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	identity := payments.StaticIdentity(strings.TrimSpace(opts.userID))
	userID, ok := identity.CurrentUserID(ctx)
	if !ok {
		return errors.New("--user is required")
	}

	updates := make(chan payments.Snapshot, 8)
	done := make(chan struct{})
	listener := func(snap payments.Snapshot) {
		select {
		case updates <- snap:
		case <-done:
		}
	}

	registry, cleanup, err := factory(ctx, rootOpts, listener)
	if err != nil {
		return err
	}
	defer func() {
		close(done)
		_ = registry.Shutdown(context.WithoutCancel(ctx))
		if cleanup != nil {
			cleanup()
		}
	}()

	snap, err := registry.Open(ctx, strings.TrimSpace(opts.orderID), userID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printSession(out, snap)

	for !snap.Terminal() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap = <-updates:
			printLine(out, "status", statusLine(snap))
		}
	}
	if snap.Status == enums.SessionStatusFailed {
		return fmt.Errorf("%w: %s", ErrPaymentFailed, snap.Reason)
	}
	return nil
}

func printSession(w io.Writer, snap payments.Snapshot) {
	printLine(w, "order", snap.OrderID)
	printLine(w, "amount", snap.AmountFiat.StringFixed(2)+" USD")
	if snap.AmountCrypto.Valid {
		printLine(w, "pay", snap.AmountCrypto.Decimal.String()+" "+enums.NormalizeCryptoCurrency(snap.CryptoCurrency).Display())
	}
	printLine(w, "address", snap.Address)
	if uri := snap.PaymentURI(); uri != "" {
		printLine(w, "uri", uri)
	}
	printLine(w, "status", statusLine(snap))
}

func statusLine(snap payments.Snapshot) string {
	switch {
	case snap.Status == enums.SessionStatusPending:
		return fmt.Sprintf("%s (%s left)", snap.Status, snap.Remaining())
	case snap.Reason != enums.FailureReasonNone:
		return fmt.Sprintf("%s (%s)", snap.Status, snap.Reason)
	default:
		return snap.Status.String()
	}
}

func printLine(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-8s %s\n", label, value)
}
