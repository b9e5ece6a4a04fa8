package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/links"
	"github.com/spendcloudtools/spendlink/pkg/spendcloud"
	"github.com/spendcloudtools/spendlink/pkg/util"
)

// ResourceService defines the subset of the spend.cloud client that we use.
type ResourceService interface {
	FetchCard(ctx context.Context, ref spendcloud.Ref) (*spendcloud.CardDetails, error)
	FetchBook(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BookDetails, error)
	FetchAdministration(ctx context.Context, ref spendcloud.Ref) (*spendcloud.AdministrationDetails, error)
	FetchBalanceAccount(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BalanceAccountDetails, error)
	FetchEntry(ctx context.Context, ref spendcloud.Ref) (*spendcloud.EntryDetails, error)
}

// FetchCmd handles resource lookups independent of cobra.
type FetchCmd struct {
	resources ResourceService
}

type FetchInput struct {
	Tenant string
	Dev    bool
	ID     string
	Open   bool
	Output string
}

const fetchRetryAttempts = 3

// fetchRetryInitial is the first backoff delay; a variable so tests can
// shrink it.
var fetchRetryInitial = time.Second

func (in FetchInput) ref() spendcloud.Ref {
	return spendcloud.Ref{Tenant: in.Tenant, Dev: in.Dev, ID: in.ID}
}

func (c FetchCmd) Card(ctx context.Context, in FetchInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	var details *spendcloud.CardDetails
	err := withRetry(fetchRetryAttempts, fetchRetryInitial, func() error {
		var err error
		details, err = c.resources.FetchCard(ctx, in.ref())
		return err
	})
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(details)
	}

	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Card ID", util.OrDash(details.CardID)},
		{"Payment Instrument", util.OrDash(details.PaymentInstrumentID)},
		{"Balance Account", util.OrDash(details.BalanceAccountID)},
		{"Administration", util.OrDash(details.AdministrationID)},
		{"Vendor", util.OrDash(details.Vendor)},
	}
	PrintTableNoPad(tableData, true)

	if in.Open {
		if details.PaymentInstrumentID == "" {
			pterm.Warning.Println("No payment instrument id to open")
			return nil
		}
		return openDashboard(links.PaymentInstrument(details.PaymentInstrumentID, in.Dev))
	}
	return nil
}

func (c FetchCmd) Book(ctx context.Context, in FetchInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	var details *spendcloud.BookDetails
	err := withRetry(fetchRetryAttempts, fetchRetryInitial, func() error {
		var err error
		details, err = c.resources.FetchBook(ctx, in.ref())
		return err
	})
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(details)
	}

	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Balance Account", util.OrDash(details.BalanceAccountID)},
		{"Administration", util.OrDash(details.AdministrationID)},
	}
	PrintTableNoPad(tableData, true)

	if in.Open {
		if details.BalanceAccountID == "" {
			pterm.Warning.Println("No balance account id to open")
			return nil
		}
		return openDashboard(links.BalanceAccount(details.BalanceAccountID, in.Dev))
	}
	return nil
}

func (c FetchCmd) Administration(ctx context.Context, in FetchInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	var details *spendcloud.AdministrationDetails
	err := withRetry(fetchRetryAttempts, fetchRetryInitial, func() error {
		var err error
		details, err = c.resources.FetchAdministration(ctx, in.ref())
		return err
	})
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(details)
	}

	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Administration", util.OrDash(details.AdministrationID)},
		{"Balance Account", util.OrDash(details.BalanceAccountID)},
	}
	PrintTableNoPad(tableData, true)

	if in.Open {
		if details.BalanceAccountID == "" {
			pterm.Warning.Println("No balance account id to open")
			return nil
		}
		return openDashboard(links.BalanceAccount(details.BalanceAccountID, in.Dev))
	}
	return nil
}

func (c FetchCmd) BalanceAccount(ctx context.Context, in FetchInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	var details *spendcloud.BalanceAccountDetails
	err := withRetry(fetchRetryAttempts, fetchRetryInitial, func() error {
		var err error
		details, err = c.resources.FetchBalanceAccount(ctx, in.ref())
		return err
	})
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(details)
	}

	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Balance Account", util.OrDash(details.BalanceAccountID)},
	}
	PrintTableNoPad(tableData, true)

	if in.Open {
		if details.BalanceAccountID == "" {
			pterm.Warning.Println("No balance account id to open")
			return nil
		}
		return openDashboard(links.BalanceAccount(details.BalanceAccountID, in.Dev))
	}
	return nil
}

func (c FetchCmd) Entry(ctx context.Context, in FetchInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	var details *spendcloud.EntryDetails
	err := withRetry(fetchRetryAttempts, fetchRetryInitial, func() error {
		var err error
		details, err = c.resources.FetchEntry(ctx, in.ref())
		return err
	})
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(details)
	}

	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Entry ID", util.OrDash(details.EntryID)},
		{"Administration", util.OrDash(details.AdministrationID)},
		{"Transfer", util.OrDash(details.TransferID)},
	}
	PrintTableNoPad(tableData, true)

	if in.Open {
		if details.TransferID == "" {
			pterm.Warning.Println("No transfer id to open")
			return nil
		}
		return openDashboard(links.Transfer(details.TransferID, in.Dev))
	}
	return nil
}

func openDashboard(u string) error {
	pterm.Info.Printf("Opening %s\n", u)
	return browser.OpenURL(u)
}

// --- Cobra wiring ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Look up a spend.cloud resource and its cross-referenced ids",
	Long: `Fetch a spend.cloud resource with the freshest captured token and print the
payment-platform identifiers extracted from it. Pass --open to jump straight
to the matching dashboard page.`,
}

var fetchCardCmd = &cobra.Command{
	Use:   "card <id>",
	Short: "Fetch a card",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch((FetchCmd).Card),
}

var fetchBookCmd = &cobra.Command{
	Use:   "book <id>",
	Short: "Fetch a book",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch((FetchCmd).Book),
}

var fetchAdministrationCmd = &cobra.Command{
	Use:   "administration <id>",
	Short: "Fetch an administration",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch((FetchCmd).Administration),
}

var fetchBalanceAccountCmd = &cobra.Command{
	Use:   "balance-account <id>",
	Short: "Fetch a balance account",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch((FetchCmd).BalanceAccount),
}

var fetchEntryCmd = &cobra.Command{
	Use:   "entry <id>",
	Short: "Fetch a book entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch((FetchCmd).Entry),
}

func init() {
	for _, sub := range []*cobra.Command{
		fetchCardCmd, fetchBookCmd, fetchAdministrationCmd, fetchBalanceAccountCmd, fetchEntryCmd,
	} {
		sub.Flags().StringP("output", "o", "", "Output format (json)")
		sub.Flags().String("tenant", "", "Tenant subdomain, e.g. 'acme' for acme.spend.cloud (required)")
		sub.Flags().Bool("dev", false, "Use the tenant's dev environment")
		sub.Flags().Bool("open", false, "Open the matching dashboard page in the browser")
		_ = sub.MarkFlagRequired("tenant")
		fetchCmd.AddCommand(sub)
	}

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(op func(FetchCmd, context.Context, FetchInput) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		tenant, _ := cmd.Flags().GetString("tenant")
		dev, _ := cmd.Flags().GetBool("dev")
		open, _ := cmd.Flags().GetBool("open")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		c := FetchCmd{resources: newResourceClient(cfg, store)}
		return op(c, cmd.Context(), FetchInput{
			Tenant: tenant,
			Dev:    dev,
			ID:     args[0],
			Open:   open,
			Output: output,
		})
	}
}
