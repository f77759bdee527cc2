package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"videoapi/internal/media"
	"videoapi/internal/provider"
	"videoapi/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "List catalog results for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  searchRun,
}

func searchRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	var entries []media.CatalogEntry
	err = spin(ctx, fmt.Sprintf("Searching %q", query), func(ctx context.Context) error {
		var err error
		entries, err = a.resolver.Search(ctx, query)
		return err
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if flagJSON {
		return writeJSON(entries)
	}
	out := cmd.OutOrStdout()
	if !ui.IsTerminal(os.Stdout) {
		for _, e := range entries {
			fmt.Fprintln(out, provider.FormatDisplayTitle(e))
		}
		return nil
	}
	fmt.Fprintln(out, ui.CatalogTable(entries))
	return nil
}

// spin shows a spinner on an interactive stderr, otherwise just runs fn.
func spin(ctx context.Context, label string, fn func(context.Context) error) error {
	if flagJSON || flagDebug || !ui.IsTerminal(os.Stderr) {
		return fn(ctx)
	}
	return ui.Spin(ctx, os.Stderr, label, fn)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
