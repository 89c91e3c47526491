package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/propdesk/fundedpay/internal/payments"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// SessionRegistry is the part of payments.Registry the CLI drives.
type SessionRegistry interface {
	Open(ctx context.Context, orderID, userID string) (payments.Snapshot, error)
	Shutdown(ctx context.Context) error
}

// RegistryFactory wires a registry whose sessions report every status
// transition to listener. cleanup releases the backing connections.
type RegistryFactory func(ctx context.Context, opts *RootOptions, listener func(payments.Snapshot)) (registry SessionRegistry, cleanup func(), err error)

// NewRootCommand creates the payctl command tree.
func NewRootCommand(factory RegistryFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "payctl",
		Short: "Operator tooling for crypto payment sessions",
		Long:  "Inspect crypto payment sessions against the configured gateway and order store.",
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log session activity to stderr")

	cmd.AddCommand(NewWatchCommand(opts, factory))
	cmd.AddCommand(NewURICommand())
	return cmd
}
