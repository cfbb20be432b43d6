package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/orbitwallet/linkdispatch/internal/control"
	"github.com/orbitwallet/linkdispatch/internal/core/config"
	"github.com/orbitwallet/linkdispatch/internal/prompt"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "linkd",
	Short: "Deep-link dispatch service",
	Long:  `linkd classifies scanned URIs and deep links and routes them through the wallet dispatch pipeline.`,
	Run:   runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig loads the config file and initializes logging.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	return cfg
}

// buildApp wires a terminal-driven app from the loaded config. The
// account is built up front so the wallet picker can enumerate it.
func buildApp(cfg *config.AppConfig) (*control.App, error) {
	account := control.BuildDemoAccount(cfg.Wallets)
	return control.NewApp(cfg, control.Options{
		Account:   account,
		Prompter:  prompt.NewTerminalPrompter(os.Stdin, os.Stdout, account),
		Navigator: prompt.NewLogNavigator(slog.Default()),
		Alerter:   prompt.NewTerminalAlerter(os.Stdin, os.Stdout),
	})
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := buildApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start app", "error", err)
		os.Exit(1)
	}

	slog.Info("linkdispatch started", "config", cfgPath)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
