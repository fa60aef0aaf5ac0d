package cmd

import (
	"fmt"

	"github.com/theirongolddev/dshield/internal/cli"
	"github.com/theirongolddev/dshield/internal/engine"

	"github.com/spf13/cobra"
)

var flagMonths int

var scheduleCmd = &cobra.Command{
	Use:   "schedule profile.toml",
	Short: "Deterministic repayment schedule for each debt",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().IntVar(&flagMonths, "months", engine.Horizon, "Months to project")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(_ *cobra.Command, args []string) error {
	if flagMonths <= 0 {
		return fmt.Errorf("--months must be positive, got %d", flagMonths)
	}

	p, err := loadProfile(args[0])
	if err != nil {
		return err
	}
	if len(p.Debts) == 0 {
		fmt.Println("\n  No debts in this profile.")
		return nil
	}

	schedule := p.Portfolio().Project(flagMonths)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("REPAYMENT SCHEDULE  %s  %d months", p.Name, flagMonths)))
	fmt.Println()

	totals := make([]float64, flagMonths)
	for i, rows := range schedule {
		d := p.Debts[i]
		table := cli.Table{
			Title:   fmt.Sprintf("%s  (%s APR, %s)", d.Label, d.APR.StringFixed(2)+"%", cli.FormatTerm(d.Term())),
			Headers: []string{"Month", "Opening", "Interest", "Payment", "Balloon", "Closing"},
		}
		for _, inst := range rows {
			totals[inst.Month-1] += inst.Due()
			balloon := ""
			if inst.Balloon > 0 {
				balloon = cli.FormatMoney(inst.Balloon)
			}
			table.Rows = append(table.Rows, []string{
				fmt.Sprintf("%d", inst.Month),
				cli.FormatMoney(inst.Opening),
				cli.FormatMoney(inst.Interest),
				cli.FormatMoney(inst.Scheduled),
				balloon,
				cli.FormatMoney(inst.Closing),
			})
		}
		fmt.Print(cli.RenderTable(table))
		fmt.Println()
	}

	totalTable := cli.Table{
		Title:   "Total due per month",
		Headers: []string{"Month", "Due"},
	}
	for m, due := range totals {
		totalTable.Rows = append(totalTable.Rows, []string{fmt.Sprintf("%d", m+1), cli.FormatMoney(due)})
	}
	fmt.Print(cli.RenderTable(totalTable))
	fmt.Println()
	return nil
}
