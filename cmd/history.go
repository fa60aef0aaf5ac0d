package cmd

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/dshield/internal/cli"
	"github.com/theirongolddev/dshield/internal/model"
	"github.com/theirongolddev/dshield/internal/pipeline"
	"github.com/theirongolddev/dshield/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagHistoryProfile string
	flagHistoryLimit   int
	flagHistoryDelete  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Previously scored runs from the cache",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&flagHistoryProfile, "profile", "p", "", "Only runs for this profile name")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum runs to show (0 = all)")
	historyCmd.Flags().StringVar(&flagHistoryDelete, "delete", "", "Delete the cached run with this ID or ID prefix")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return err
	}
	defer cache.Close()

	if flagHistoryDelete != "" {
		id, err := cache.DeleteRun(flagHistoryDelete)
		if err != nil {
			return err
		}
		logger.WithField("run_id", id).Info("deleted cached run")
		fmt.Printf("  Deleted run %s\n", shortID(id))
		return nil
	}

	reports, err := cache.History(flagHistoryProfile, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println("\n  No scored runs yet.")
		fmt.Println("  Run `dshield score profile.toml` first.")
		return nil
	}

	title := "HISTORY"
	if flagHistoryProfile != "" {
		title += "  " + flagHistoryProfile
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Profile,
			cli.FormatScore(r.ShieldScore),
			cli.FormatProbability(r.Probability),
			cli.FormatNumber(int64(r.Trials)),
			fmt.Sprintf("%d", r.Seed),
			cli.FormatElapsed(r.Elapsed),
			shortID(r.RunID),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"When", "Profile", "Score", "P(default)", "Trials", "Seed", "Took", "Run"},
		Rows:     rows,
		LeftCols: 2,
	}))

	if flagHistoryProfile != "" && len(reports) > 1 {
		trend := pipeline.SummarizeHistory(reports)
		fmt.Println()
		fmt.Printf("  Trend  %s  latest %s  (%s since first shown)  best %s  worst %s\n",
			cli.RenderSparkline(trend.Scores),
			cli.FormatScore(trend.Latest),
			cli.FormatScoreDelta(trend.Change),
			cli.FormatScore(trend.Best),
			cli.FormatScore(trend.Worst),
		)
	} else if flagHistoryProfile == "" {
		printTrends(reports)
	}

	total, err := cache.ReportCount()
	if err == nil {
		fmt.Printf("\n  %s runs cached in %s\n", cli.FormatNumber(int64(total)), pipeline.CachePath())
	}
	fmt.Println()
	return nil
}

// printTrends shows one trend row per profile that appears more than once.
func printTrends(reports []model.Report) {
	var names []string
	seen := make(map[string]bool)
	for _, r := range reports {
		if !seen[r.Profile] {
			seen[r.Profile] = true
			names = append(names, r.Profile)
		}
	}
	sort.Strings(names)

	var rows [][]string
	for _, name := range names {
		runs := pipeline.FilterByProfile(reports, name)
		if len(runs) < 2 {
			continue
		}
		trend := pipeline.SummarizeHistory(runs)
		rows = append(rows, []string{
			name,
			cli.RenderSparkline(trend.Scores),
			cli.FormatScore(trend.Latest),
			cli.FormatScoreDelta(trend.Change),
			cli.FormatScore(trend.Best),
			cli.FormatScore(trend.Worst),
		})
	}
	if len(rows) == 0 {
		return
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Trends",
		Headers:  []string{"Profile", "Scores", "Latest", "Change", "Best", "Worst"},
		Rows:     rows,
		LeftCols: 2,
	}))
}
