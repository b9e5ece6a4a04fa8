package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/capture"
	"github.com/spendcloudtools/spendlink/pkg/health"
	"github.com/spendcloudtools/spendlink/pkg/router"
)

// --- Cobra wiring ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the spendlink daemon",
	Long: `Run the local daemon that answers action messages on POST /messages and
liveness checks on GET /healthz. Page tooling reports captured tokens to it
and queries resource details through it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "Bind address (defaults to SPENDLINK_LISTEN_ADDR or 127.0.0.1:7407)")
	serveCmd.Flags().Bool("verbose", false, "Log at debug level")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	listen, _ := cmd.Flags().GetString("listen")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.ListenAddr = listen
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	monitor := health.NewMonitor()
	interceptor := capture.NewInterceptor(store, logger, monitor)
	resources := newResourceClient(cfg, store)

	r := router.NewWithHandlers(router.Deps{
		Store:     store,
		Resources: resources,
		Capture:   interceptor,
		Monitor:   monitor,
		Logger:    logger,
	})
	srv := router.NewServer(r, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.Printf("Daemon listening on %s\n", cfg.ListenAddr)
	logger.Info("daemon starting", "addr", cfg.ListenAddr, "state_dir", cfg.StateDir)

	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		return err
	}
	logger.Info("daemon stopped")
	return nil
}
