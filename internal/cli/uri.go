package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/propdesk/fundedpay/internal/payments"
)

// NewURICommand creates the uri command.
func NewURICommand() *cobra.Command {
	var address, amount, currency string
	cmd := &cobra.Command{
		Use:          "uri",
		Short:        "Print the wallet payment URI for a deposit",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(strings.TrimSpace(amount))
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			uri := payments.DerivePaymentPayload(address, decimal.NewNullDecimal(value), currency)
			if uri == "" {
				return errors.New("incomplete payment details")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)
			return err
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "deposit address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in crypto units")
	cmd.Flags().StringVar(&currency, "currency", "", "gateway ticker, for example btc or usdttrc20")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("currency")
	return cmd
}
