package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/links"
)

// OpenCmd builds dashboard URLs from known ids, independent of cobra.
type OpenCmd struct{}

type OpenInput struct {
	ID   string
	Test bool
}

func (OpenCmd) BalanceAccount(in OpenInput) error {
	return openDashboard(links.BalanceAccount(in.ID, in.Test))
}

func (OpenCmd) PaymentInstrument(in OpenInput) error {
	return openDashboard(links.PaymentInstrument(in.ID, in.Test))
}

func (OpenCmd) Transfer(in OpenInput) error {
	return openDashboard(links.Transfer(in.ID, in.Test))
}

// --- Cobra wiring ---

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a payment-platform dashboard page for a known id",
	Long:  "Open the dashboard page for a balance account, payment instrument or transfer without fetching anything first",
}

var openBalanceAccountCmd = &cobra.Command{
	Use:   "balance-account <id>",
	Short: "Open a balance account in the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen(OpenCmd.BalanceAccount),
}

var openPaymentInstrumentCmd = &cobra.Command{
	Use:   "payment-instrument <id>",
	Short: "Open a payment instrument in the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen(OpenCmd.PaymentInstrument),
}

var openTransferCmd = &cobra.Command{
	Use:   "transfer <id>",
	Short: "Open a transfer in the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen(OpenCmd.Transfer),
}

func init() {
	for _, sub := range []*cobra.Command{openBalanceAccountCmd, openPaymentInstrumentCmd, openTransferCmd} {
		sub.Flags().Bool("test", false, "Open the test dashboard instead of live")
		openCmd.AddCommand(sub)
	}

	rootCmd.AddCommand(openCmd)
}

func runOpen(op func(OpenCmd, OpenInput) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		test, _ := cmd.Flags().GetBool("test")
		return op(OpenCmd{}, OpenInput{ID: args[0], Test: test})
	}
}
