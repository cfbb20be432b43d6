package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var fromClipboard bool

var scanCmd = &cobra.Command{
	Use:   "scan [uri]",
	Short: "Dispatch a single URI through the pipeline",
	Long:  `scan classifies a URI and runs it through the dispatch pipeline once, prompting on the terminal where confirmation is required. The URI is taken from the argument, or from the system clipboard with --clipboard.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "read the URI from the system clipboard")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}
	if fromClipboard {
		if raw != "" {
			fmt.Println("Provide a URI argument or --clipboard, not both")
			os.Exit(1)
		}
		text, err := clipboard.ReadAll()
		if err != nil {
			slog.Error("Failed to read clipboard", "error", err)
			os.Exit(1)
		}
		raw = strings.TrimSpace(text)
	}
	if raw == "" {
		fmt.Println("Nothing to scan")
		os.Exit(1)
	}

	app, err := buildApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app.Dispatcher().Dispatch(ctx, raw)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
