package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent dispatches and their outcomes",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "number of dispatches to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := buildApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Stop(shutdownCtx)
	}()

	ctx := context.Background()
	records, err := app.Dispatches().Recent(ctx, statusLimit)
	if err != nil {
		slog.Error("Failed to query dispatches", "error", err)
		os.Exit(1)
	}

	counts, err := app.Dispatches().CountByOutcome(ctx)
	if err != nil {
		slog.Error("Failed to query outcome counts", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tOUTCOME\tDURATION\tCREATED")

	for _, rec := range records {
		errText := ""
		if rec.Error != "" {
			errText = " (" + rec.Error + ")"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s%s\t%s\t%s\n",
			rec.ID, rec.LinkType, rec.Outcome, errText,
			rec.Duration.Round(time.Millisecond), rec.CreatedAt.Format(time.RFC3339))
	}
	_ = w.Flush()

	if len(counts) > 0 {
		fmt.Println()
		for outcome, n := range counts {
			fmt.Printf("%s: %d\n", outcome, n)
		}
	}
}
