package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/capture"
	"github.com/spendcloudtools/spendlink/pkg/spendcloud"
)

// --- Cobra wiring ---

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run a capture proxy in front of one tenant's spend.cloud API",
	Long: `Run a local reverse proxy that forwards requests to a tenant's spend.cloud
origin and records every bearer token that passes through on an API route.
Point your tooling at the proxy address instead of the tenant origin.`,
	Args: cobra.NoArgs,
	RunE: runProxy,
}

func init() {
	proxyCmd.Flags().String("tenant", "", "Tenant subdomain to front (required)")
	proxyCmd.Flags().Bool("dev", false, "Front the tenant's dev environment")
	proxyCmd.Flags().String("listen", "127.0.0.1:7408", "Bind address for the proxy")

	_ = proxyCmd.MarkFlagRequired("tenant")

	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	dev, _ := cmd.Flags().GetBool("dev")
	listen, _ := cmd.Flags().GetString("listen")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	interceptor := capture.NewInterceptor(store, logger, nil)

	origin := spendcloud.BaseURL(tenant, dev)
	target, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin %s: %w", origin, err)
	}

	proxy := capture.NewProxy(origin, target, interceptor)
	srv := &http.Server{
		Addr:         listen,
		Handler:      proxy,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	pterm.Info.Printf("Proxying %s on http://%s\n", origin, listen)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
