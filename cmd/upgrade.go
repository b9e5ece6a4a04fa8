package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/update"
)

var dryRun bool

var upgradeCmd = &cobra.Command{
	Use:     "upgrade",
	Aliases: []string{"update"},
	Short:   "Upgrade spendlink to the latest version",
	Long: `Upgrade spendlink to the latest version.

Supported installation methods:
  - Homebrew (brew)
  - pnpm
  - npm
  - bun

If your installation method cannot be detected, manual upgrade instructions will be provided.`,
	RunE: runUpgrade,
}

func init() {
	upgradeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be executed without running")

	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	currentVersion := metadata.Version

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	pterm.Info.Println("Checking for updates...")

	latestTag, releaseURL, err := update.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	isNewer, err := update.IsNewerVersion(currentVersion, latestTag)
	if err != nil {
		// Dev builds carry a non-semver version; let them upgrade anyway.
		pterm.Warning.Printf("Could not compare versions (%s vs %s): %v\n", currentVersion, latestTag, err)
		pterm.Info.Println("Proceeding with upgrade...")
	} else if !isNewer {
		pterm.Success.Printf("You are already on the latest version (%s)\n", strings.TrimPrefix(currentVersion, "v"))
		return nil
	} else {
		pterm.Info.Printf("New version available: %s → %s\n", strings.TrimPrefix(currentVersion, "v"), strings.TrimPrefix(latestTag, "v"))
		if releaseURL != "" {
			pterm.Info.Printf("Release notes: %s\n", releaseURL)
		}
	}

	method, binaryPath := update.DetectInstallMethod()

	if method == update.InstallMethodUnknown {
		printManualUpgradeInstructions(latestTag, binaryPath)
		return fmt.Errorf("could not detect installation method")
	}

	if dryRun {
		pterm.Info.Printf("Would run: %s\n", strings.Join(upgradeCommands[method], " "))
		return nil
	}

	pterm.Info.Printf("Upgrading via %s...\n", method)
	return executeUpgrade(method)
}

// upgradeCommands maps each detectable install method to the argv that
// upgrades spendlink through it.
var upgradeCommands = map[update.InstallMethod][]string{
	update.InstallMethodBrew: {"brew", "upgrade", "spendcloudtools/tap/spendlink"},
	update.InstallMethodPNPM: {"pnpm", "add", "-g", "@spendcloudtools/spendlink@latest"},
	update.InstallMethodNPM:  {"npm", "i", "-g", "@spendcloudtools/spendlink@latest"},
	update.InstallMethodBun:  {"bun", "add", "-g", "@spendcloudtools/spendlink@latest"},
}

func executeUpgrade(method update.InstallMethod) error {
	argv, ok := upgradeCommands[method]
	if !ok {
		return fmt.Errorf("unknown installation method")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

// printManualUpgradeInstructions shows the release-tarball steps for installs
// whose method could not be detected.
func printManualUpgradeInstructions(version, binaryPath string) {
	version = strings.TrimPrefix(version, "v")

	goos := runtime.GOOS
	goarch := runtime.GOARCH

	downloadURL := fmt.Sprintf(
		"https://github.com/spendcloudtools/spendlink/releases/download/v%s/spendlink_%s_%s_%s.tar.gz",
		version, version, goos, goarch,
	)

	if binaryPath == "" {
		binaryPath = "/usr/local/bin/spendlink"
	}

	pterm.Warning.Println("Could not detect installation method.")
	pterm.Info.Println("To upgrade manually, run:")
	pterm.Println()
	fmt.Printf("  wget %s -O /tmp/spendlink.tar.gz\n", downloadURL)
	fmt.Printf("  tar -xzf /tmp/spendlink.tar.gz -C /tmp\n")
	fmt.Printf("  sudo cp /tmp/spendlink %s\n", binaryPath)
	pterm.Println()
}
