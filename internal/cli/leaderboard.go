package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"
)

// NewLeaderboardCmd prints the ranking kept by the configured sink.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var (
		setID string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard of a question set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if setID != "" {
				cfg.Quiz.SetID = setID
			}
			return printLeaderboard(cmd.Context(), cmd.OutOrStdout(), cfg, limit)
		},
	}
	cmd.Flags().StringVar(&setID, "set", "", "question set id (defaults to quiz.setId)")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries to print, 0 for all")
	return cmd
}

func printLeaderboard(ctx context.Context, out io.Writer, cfg config.Config, limit int) error {
	switch cfg.Leaderboard.Sink {
	case config.StoreRedis, config.StorePostgres:
	default:
		return fmt.Errorf("leaderboard sink %q is not durable, nothing to print", cfg.Leaderboard.Sink)
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	entries, err := b.leaderboard(cfg, cfg.Quiz.SetID).List(ctx)
	if err != nil {
		return err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return writeLeaderboard(out, entries)
}

func writeLeaderboard(out io.Writer, entries []domain.LeaderboardEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tSCORE\tTIME\tRECORDED")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\t%s\n",
			i+1, e.Name, e.Score, e.Total,
			app.FormatClock(e.Elapsed()),
			e.RecordedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
