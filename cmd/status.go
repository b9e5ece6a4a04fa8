package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/router"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the spendlink daemon is running",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format (json)")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := router.NewClient(cfg.DaemonURL)
	start := time.Now()
	pingErr := client.Ping(cmd.Context())
	latency := time.Since(start)

	if output == "json" {
		result := map[string]any{
			"daemonUrl": cfg.DaemonURL,
			"running":   pingErr == nil,
			"latencyMs": latency.Milliseconds(),
		}
		if pingErr != nil {
			result["error"] = pingErr.Error()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if pingErr != nil {
		pterm.Error.Printf("Daemon not reachable at %s\n", cfg.DaemonURL)
		pterm.Info.Println("Start it with 'spendlink serve'")
		return fmt.Errorf("daemon not reachable: %w", pingErr)
	}

	pterm.Success.Printf("Daemon running at %s (%s)\n", cfg.DaemonURL, latency.Round(time.Millisecond))
	return nil
}
