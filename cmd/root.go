// Package cmd implements the spendlink command line interface.
package cmd

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/internal/config"
	"github.com/spendcloudtools/spendlink/pkg/spendcloud"
	"github.com/spendcloudtools/spendlink/pkg/token"
)

var metadata = struct {
	Version string
}{
	Version: "dev",
}

var rootCmd = &cobra.Command{
	Use:   "spendlink",
	Short: "Capture spend.cloud auth tokens and cross-reference platform resources",
	Long: `spendlink captures spend.cloud bearer tokens, keeps a short history of
them, and uses the freshest one to look up cards, books, administrations,
balance accounts and book entries - linking them through to the payment
platform dashboard.

Tokens are captured by the local proxy (spendlink proxy), reported to the
daemon (spendlink serve) by page tooling, or added by hand (spendlink tokens
add).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

// RootCmd exposes the root command for the fang entrypoint.
func RootCmd() *cobra.Command {
	rootCmd.Version = metadata.Version
	return rootCmd
}

// loadConfig resolves the shared CLI/daemon configuration.
func loadConfig() (config.Config, error) {
	return config.Load()
}

// openStore opens the token store under the configured state dir.
func openStore(cfg config.Config) (*token.Store, error) {
	return token.NewStore(cfg.StateDir)
}

// newResourceClient builds a spend.cloud client backed by the store's
// freshest valid token per tenant/environment, bounded by the configured
// request timeout.
func newResourceClient(cfg config.Config, store *token.Store) *spendcloud.Client {
	return spendcloud.NewClient(token.Provider{Store: store}, spendcloud.WithTimeout(cfg.APITimeout))
}

// PrintTableNoPad renders rows with a narrow separator instead of pterm's
// default padding. hasHeader styles the first row as a header.
func PrintTableNoPad(data pterm.TableData, hasHeader bool) {
	t := pterm.DefaultTable.WithData(data).WithSeparator("  ")
	if hasHeader {
		t = t.WithHasHeader()
	}
	_ = t.Render()
}

// withRetry runs fn up to attempts times, doubling the delay between tries
// starting from initial. The last error is returned when every try fails.
func withRetry(attempts int, initial time.Duration, fn func() error) error {
	delay := initial
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			pterm.Warning.Printf("Attempt %d/%d failed: %v (retrying in %s)\n", i+1, attempts, err, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
