package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/McSavage/edgar-rag/internal/bootstrap"
	"github.com/McSavage/edgar-rag/internal/config"
	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
	"github.com/McSavage/edgar-rag/internal/observability/logging"

	"github.com/google/uuid"
)

var (
	flagTickers []string
	flagTopK    int
	flagJSON    bool

	rootCmd = &cobra.Command{
		Use:   "ask \"question\"",
		Short: "Ask a question about the indexed SEC filings",
		Long: `ask routes a natural-language question about the tracked companies'
10-K and 10-Q filings to the right retrieval strategy (structured facts,
narrative search, or both) and prints a cited answer.`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}
)

func init() {
	rootCmd.Flags().StringSliceVar(&flagTickers, "tickers", nil, "restrict retrieval to these ticker symbols")
	rootCmd.Flags().IntVar(&flagTopK, "top-k", 0, "number of narrative chunks to retrieve (default from config)")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "print the full answer as JSON")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Keep structured logs off the answer output.
	slog.SetDefault(logging.NewJSONLogger("edgar-rag-cli", "error"))

	app, err := bootstrap.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	question := domain.Question{
		ID:   uuid.NewString(),
		Text: args[0],
	}
	answer, err := app.AskUC.Ask(cmd.Context(), question, ports.AskOptions{
		Tickers: flagTickers,
		TopK:    flagTopK,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(answer)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, ref := range answer.Citations {
			fmt.Fprintf(out, "  - %s\n", ref.Label())
		}
	}
	if answer.Partial {
		branches := make([]string, 0, len(answer.FailedBranches))
		for _, b := range answer.FailedBranches {
			branches = append(branches, string(b))
		}
		fmt.Fprintf(out, "\n(partial evidence: %s retrieval failed)\n", strings.Join(branches, ", "))
	}
	return nil
}
