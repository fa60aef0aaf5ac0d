package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/theirongolddev/dshield/internal/cli"
	"github.com/theirongolddev/dshield/internal/pipeline"
	"github.com/theirongolddev/dshield/internal/profile"

	"github.com/spf13/cobra"
)

var flagJSON bool

var scoreCmd = &cobra.Command{
	Use:   "score profile.toml|dir",
	Short: "Shield Score and 12-month default probability",
	Long: "Score one profile, or every .toml profile under a directory.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(scoreCmd)
}

type scoreJSON struct {
	RunID        string    `json:"run_id"`
	Profile      string    `json:"profile"`
	ShieldScore  float64   `json:"shield_score"`
	Probability  float64   `json:"probability_of_default"`
	StdErr       float64   `json:"std_err"`
	CILow        float64   `json:"ci95_low"`
	CIHigh       float64   `json:"ci95_high"`
	Trials       int       `json:"trials"`
	Defaults     int       `json:"defaults"`
	Seed         uint64    `json:"seed"`
	DefaultCurve []float64 `json:"default_curve"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	CacheHit     bool      `json:"cache_hit"`
	CreatedAt    time.Time `json:"created_at"`
}

func runScore(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
		return runScoreDir(args[0])
	}

	p, err := loadProfile(args[0])
	if err != nil {
		return err
	}

	res, err := scoreProfile(p)
	if err != nil {
		return err
	}

	if flagJSON {
		return printScoreJSON(res)
	}
	printScore(res)
	return nil
}

// runScoreDir scores every profile under dir and prints them riskiest first.
func runScoreDir(dir string) error {
	loaded, err := profile.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		fmt.Printf("\n  No .toml profiles found in %s\n", dir)
		return nil
	}

	var results []*pipeline.RunResult
	var failed int
	for _, l := range loaded {
		if l.Err != nil {
			failed++
			logger.WithError(l.Err).WithField("path", l.Path).Warn("skipping profile")
			continue
		}
		res, err := scoreProfile(l.Profile)
		if err != nil {
			failed++
			logger.WithError(err).WithField("path", l.Path).Warn("scoring profile")
			continue
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Report.ShieldScore < results[j].Report.ShieldScore
	})

	if flagJSON {
		out := make([]scoreJSON, len(results))
		for i, res := range results {
			out[i] = toScoreJSON(res)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		r := res.Report
		rows = append(rows, []string{
			r.Profile,
			cli.FormatScore(r.ShieldScore),
			cli.FormatProbability(r.Probability),
			cli.RenderSparkline(r.DefaultCurve),
			cli.FormatNumber(int64(r.Trials)),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DEBT SHIELD  %d profiles", len(results))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Profile", "Score", "P(default)", "By month", "Trials"},
		Rows:    rows,
	}))
	if failed > 0 {
		fmt.Printf("\n  %d profile(s) could not be scored; see the warnings above.\n", failed)
	}
	fmt.Println()
	return nil
}

func printScoreJSON(res *pipeline.RunResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(toScoreJSON(res))
}

func toScoreJSON(res *pipeline.RunResult) scoreJSON {
	r := res.Report
	lo, hi := r.ConfidenceInterval()
	return scoreJSON{
		RunID:        r.RunID,
		Profile:      r.Profile,
		ShieldScore:  r.ShieldScore,
		Probability:  r.Probability,
		StdErr:       r.StdErr,
		CILow:        lo,
		CIHigh:       hi,
		Trials:       r.Trials,
		Defaults:     r.Defaults,
		Seed:         r.Seed,
		DefaultCurve: r.DefaultCurve,
		ElapsedMs:    r.Elapsed.Milliseconds(),
		CacheHit:     r.CacheHit,
		CreatedAt:    r.CreatedAt,
	}
}

func printScore(res *pipeline.RunResult) {
	r := res.Report
	in := res.Inputs
	lo, hi := r.ConfidenceInterval()

	var debtService float64
	for _, d := range res.Debts {
		debtService += d.MonthlyPayment
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DEBT SHIELD  %s", r.Profile)))
	fmt.Println()
	fmt.Printf("  %s\n\n", cli.RenderScoreBar(r.ShieldScore, 40))

	rows := [][]string{
		{"Shield Score", cli.FormatScore(r.ShieldScore)},
		{"P(default, 12 mo)", cli.FormatProbability(r.Probability)},
		{"95% interval", fmt.Sprintf("%s - %s", cli.FormatProbability(lo), cli.FormatProbability(hi))},
		{"Std error", cli.FormatProbability(r.StdErr)},
		cli.SeparatorRow,
		{"Trials", cli.FormatNumber(int64(r.Trials))},
		{"Defaults", cli.FormatNumber(int64(r.Defaults))},
		{"Seed", fmt.Sprintf("%d", r.Seed)},
		cli.SeparatorRow,
		{"Income / mo", cli.FormatMoney(in.IncomeMean)},
		{"Essential expenses / mo", cli.FormatMoney(in.ExpenseMean)},
		{"Debt service / mo", cli.FormatMoney(debtService)},
		{"Starting cash", cli.FormatMoney(in.StartingCash)},
		{"Correlation", fmt.Sprintf("%+.2f", in.Correlation)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Risk",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(r.DefaultCurve) > 0 {
		fmt.Println()
		fmt.Printf("  Cumulative default by month  %s  %s\n",
			cli.RenderSparkline(r.DefaultCurve),
			cli.FormatProbability(r.DefaultCurve[len(r.DefaultCurve)-1]))
	}

	if len(res.Debts) > 0 {
		fmt.Println()
		debtRows := make([][]string, 0, len(res.Debts))
		for _, d := range res.Debts {
			balloon := "-"
			if d.BalloonMonth > 0 {
				balloon = fmt.Sprintf("%s in month %d", cli.FormatMoney(d.BalloonAmount), d.BalloonMonth)
			}
			debtRows = append(debtRows, []string{
				d.Label,
				d.Category,
				cli.FormatMoney(d.Balance),
				cli.FormatMoney(d.MonthlyPayment),
				fmt.Sprintf("%.2f%%", d.APR),
				cli.FormatTerm(d.TermMonths),
				balloon,
				cli.FormatMoney(d.BalanceAfterHorizon),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Debts",
			Headers:  []string{"Debt", "Category", "Balance", "Payment", "APR", "Term", "Balloon", "After 12 mo"},
			Rows:     debtRows,
			LeftCols: 2,
		}))
	}
	fmt.Println()
}
