package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/router"
	"github.com/spendcloudtools/spendlink/pkg/util"
)

// DaemonService defines the subset of the daemon client that we use.
type DaemonService interface {
	Call(ctx context.Context, action string, params map[string]any) (map[string]any, error)
}

// HealthCmd queries a running daemon's telemetry, independent of cobra.
type HealthCmd struct {
	daemon DaemonService
}

type HealthShowInput struct {
	Output string
}

type HealthLogsInput struct {
	Errors bool
	Output string
}

type HealthExportInput struct {
	File string
}

func (c HealthCmd) Show(ctx context.Context, in HealthShowInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	resp, err := c.daemon.Call(ctx, "getExtensionHealth", nil)
	if err != nil {
		return err
	}
	report, _ := resp["health"].(map[string]any)

	if in.Output == "json" {
		return util.PrintPrettyJSON(report)
	}

	counters, _ := report["counters"].(map[string]any)
	uptime, _ := report["uptimeSec"].(float64)

	pterm.Success.Println("Daemon is healthy")
	tableData := pterm.TableData{{"Counter", "Value"}}
	tableData = append(tableData, []string{"uptime (s)", fmt.Sprintf("%.0f", uptime)})

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tableData = append(tableData, []string{name, fmt.Sprintf("%v", counters[name])})
	}

	PrintTableNoPad(tableData, true)
	return nil
}

func (c HealthCmd) Logs(ctx context.Context, in HealthLogsInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	action, key := "getDebugLogs", "logs"
	if in.Errors {
		action, key = "getErrorReports", "errors"
	}

	resp, err := c.daemon.Call(ctx, action, nil)
	if err != nil {
		return err
	}
	entries, _ := resp[key].([]any)

	if in.Output == "json" {
		if len(entries) == 0 {
			fmt.Println("[]")
			return nil
		}
		return util.PrintPrettyJSON(entries)
	}

	if len(entries) == 0 {
		pterm.Info.Println("Nothing recorded yet")
		return nil
	}
	for _, e := range entries {
		entry, _ := e.(map[string]any)
		if in.Errors {
			pterm.Printf("%v  [%v] %v\n", entry["time"], entry["source"], entry["message"])
		} else {
			pterm.Printf("%v  %v\n", entry["time"], entry["message"])
		}
	}
	return nil
}

func (c HealthCmd) Export(ctx context.Context, in HealthExportInput) error {
	resp, err := c.daemon.Call(ctx, "exportHealthReport", nil)
	if err != nil {
		return err
	}

	report, err := json.MarshalIndent(resp["report"], "", "  ")
	if err != nil {
		return err
	}

	if in.File == "" {
		fmt.Println(string(report))
		return nil
	}
	if err := os.WriteFile(in.File, append(report, '\n'), 0o600); err != nil {
		return err
	}
	pterm.Success.Printf("Health report written to %s\n", in.File)
	return nil
}

// --- Cobra wiring ---

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Inspect the daemon's health telemetry",
	Long:  "Commands for querying a running daemon's counters, debug logs and error reports",
}

var healthShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show counters and uptime",
	Args:  cobra.NoArgs,
	RunE:  runHealthShow,
}

var healthLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent debug logs or error reports",
	Args:  cobra.NoArgs,
	RunE:  runHealthLogs,
}

var healthExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full health report as JSON",
	Args:  cobra.NoArgs,
	RunE:  runHealthExport,
}

func init() {
	healthShowCmd.Flags().StringP("output", "o", "", "Output format (json)")

	healthLogsCmd.Flags().StringP("output", "o", "", "Output format (json)")
	healthLogsCmd.Flags().Bool("errors", false, "Show error reports instead of debug logs")

	healthExportCmd.Flags().StringP("file", "f", "", "Write the report to a file instead of stdout")

	healthCmd.AddCommand(healthShowCmd)
	healthCmd.AddCommand(healthLogsCmd)
	healthCmd.AddCommand(healthExportCmd)

	rootCmd.AddCommand(healthCmd)
}

func getHealthCmd() (HealthCmd, error) {
	cfg, err := loadConfig()
	if err != nil {
		return HealthCmd{}, err
	}
	return HealthCmd{daemon: router.NewClient(cfg.DaemonURL)}, nil
}

func runHealthShow(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	c, err := getHealthCmd()
	if err != nil {
		return err
	}
	return c.Show(cmd.Context(), HealthShowInput{Output: output})
}

func runHealthLogs(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	errs, _ := cmd.Flags().GetBool("errors")

	c, err := getHealthCmd()
	if err != nil {
		return err
	}
	return c.Logs(cmd.Context(), HealthLogsInput{Errors: errs, Output: output})
}

func runHealthExport(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	c, err := getHealthCmd()
	if err != nil {
		return err
	}
	return c.Export(cmd.Context(), HealthExportInput{File: file})
}
