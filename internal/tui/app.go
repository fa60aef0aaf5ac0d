// Package tui provides the interactive what-if dashboard for dshield.
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/dshield/internal/cli"
	"github.com/theirongolddev/dshield/internal/engine"
	"github.com/theirongolddev/dshield/internal/model"
	"github.com/theirongolddev/dshield/internal/pipeline"
	"github.com/theirongolddev/dshield/internal/tui/components"
	"github.com/theirongolddev/dshield/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressMsg reports finished trial blocks.
type ProgressMsg struct {
	Current int
	Total   int
}

// ResultMsg is sent when a simulation finishes.
type ResultMsg struct {
	Report model.Report
	Err    error
}

const (
	minTerminalWidth = 70
	maxContentWidth  = 120

	correlationStep = 0.1
	// cashStepFraction is the share of monthly income added or removed
	// from starting cash per keypress.
	cashStepFraction = 0.10
)

// App is the root Bubble Tea model.
type App struct {
	name  string
	base  engine.Inputs
	in    engine.Inputs
	debts []model.DebtLine
	opts  pipeline.Options

	report   model.Report
	baseline *model.Report
	err      error
	loaded   bool
	running  bool
	runs     int

	width    int
	height   int
	showHelp bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

// NewApp builds the dashboard for one converted profile.
func NewApp(name string, in engine.Inputs, debts []model.DebtLine, opts pipeline.Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		name:    name,
		base:    in,
		in:      in,
		debts:   debts,
		opts:    opts,
		spinner: sp,
		running: true,
		loadSub: make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		runCmd(a.name, a.in, a.opts, a.loadSub),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case ResultMsg:
		a.running = false
		a.loaded = true
		a.progress, a.progressMax = 0, 0
		a.err = msg.Err
		if msg.Err == nil {
			a.report = msg.Report
			a.runs++
			if a.baseline == nil {
				baseline := msg.Report
				a.baseline = &baseline
			}
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "?":
		a.showHelp = !a.showHelp
		return a, nil
	case "esc":
		a.showHelp = false
		return a, nil
	}

	// One simulation at a time; edits wait for the current run.
	if a.running {
		return a, nil
	}

	switch key {
	case "left", "h":
		a.in.Correlation = stepCorrelation(a.in.Correlation, -correlationStep)
	case "right", "l":
		a.in.Correlation = stepCorrelation(a.in.Correlation, correlationStep)
	case "up", "k":
		a.in.StartingCash += cashStep(a.base.IncomeMean)
	case "down", "j":
		a.in.StartingCash -= cashStep(a.base.IncomeMean)
	case "s":
		a.in.Seed++
	case "0":
		a.in = a.base
	case "r":
	default:
		return a, nil
	}

	a.running = true
	return a, runCmd(a.name, a.in, a.opts, a.loadSub)
}

// stepCorrelation moves rho by delta, snapped to one decimal and clamped to [-1, 1].
func stepCorrelation(rho, delta float64) float64 {
	next := math.Round((rho+delta)*10) / 10
	return max(-1, min(1, next))
}

func cashStep(income float64) float64 {
	return math.Abs(income) * cashStepFraction
}

// runCmd starts a simulation in a background goroutine. It streams
// ProgressMsg updates and a final ResultMsg through sub.
func runCmd(name string, in engine.Inputs, opts pipeline.Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send so workers are never stalled; a dropped
			// update is replaced by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			report, err := pipeline.Simulate(name, in, opts, progressFn)
			sub <- ResultMsg{Report: report, Err: err}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the run goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  dshield needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ dshield"))
	b.WriteString(subtitleStyle.Render(" · Debt Shield"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Simulating %s trials for %s",
		cli.FormatNumber(int64(a.in.Trials)), a.name)))
	b.WriteString("\n\n")
	b.WriteString(components.ProgressBar(a.progressPct(), 40))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) progressPct() float64 {
	if a.progressMax <= 0 {
		return 0
	}
	return float64(a.progress) / float64(a.progressMax)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.contentWidth()

	var sections []string

	header := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ " + a.name)
	sections = append(sections, header)

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(t.Critical)
		sections = append(sections, errStyle.Render("simulation failed: "+a.err.Error()))
	}

	sections = append(sections,
		components.MetricCardRow(a.metrics(), w),
		components.ContentCard("Shield Score", components.ScoreGauge(a.report.ShieldScore, components.CardInnerWidth(w)-8), w),
		components.CardRow(a.detailCards(w)),
		a.debtTable(),
	)

	status := "[←/→] ρ  [↑/↓] cash  [s] seed  [r] rerun  [0] reset  [?] help  [q] quit"
	detail := fmt.Sprintf("seed %d · %s", a.in.Seed, cli.FormatElapsed(a.report.Elapsed))
	if a.running {
		detail = a.spinner.View() + " running"
	}
	sections = append(sections, components.RenderStatusBar(w, status, detail))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) metrics() []components.Metric {
	t := theme.Active
	r := a.report
	lo, hi := r.ConfidenceInterval()

	scoreNote := ""
	if a.baseline != nil && a.runs > 1 {
		scoreNote = "vs baseline " + cli.FormatScoreDelta(r.ShieldScore-a.baseline.ShieldScore)
	}

	return []components.Metric{
		{
			Label: "Shield Score",
			Value: cli.FormatScore(r.ShieldScore),
			Note:  scoreNote,
			Color: t.ForScore(r.ShieldScore),
		},
		{
			Label: "P(default, 12 mo)",
			Value: cli.FormatProbability(r.Probability),
			Note:  fmt.Sprintf("95%% CI %s to %s", cli.FormatProbability(lo), cli.FormatProbability(hi)),
		},
		{
			Label: "Correlation ρ",
			Value: fmt.Sprintf("%+.1f", a.in.Correlation),
			Note:  fmt.Sprintf("profile %+.1f", a.base.Correlation),
		},
		{
			Label: "Starting cash",
			Value: cli.FormatMoney(a.in.StartingCash),
			Note:  "profile " + cli.FormatMoney(a.base.StartingCash),
		},
	}
}

func (a App) detailCards(w int) []string {
	widths := components.LayoutRow(w, 2)

	curve := a.report.DefaultCurve
	var curveBody string
	if len(curve) > 0 {
		curveBody = cli.RenderSparkline(curve) + "\n" +
			fmt.Sprintf("month 1 %s → month %d %s",
				cli.FormatProbability(curve[0]), len(curve), cli.FormatProbability(curve[len(curve)-1]))
	}

	in := a.in
	flows := fmt.Sprintf("income   %s ± %s\nexpenses %s ± %s\ntrials   %s",
		cli.FormatMoney(in.IncomeMean), cli.FormatMoney(math.Sqrt(in.IncomeVariance)),
		cli.FormatMoney(in.ExpenseMean), cli.FormatMoney(math.Sqrt(in.ExpenseVariance)),
		cli.FormatNumber(int64(in.Trials)))

	return []string{
		components.ContentCard("Cumulative default", curveBody, widths[0]),
		components.ContentCard("Monthly flows", flows, widths[1]),
	}
}

func (a App) debtTable() string {
	if len(a.debts) == 0 {
		return ""
	}
	rows := make([][]string, 0, len(a.debts))
	for _, d := range a.debts {
		balloon := "-"
		if d.BalloonMonth > 0 {
			balloon = fmt.Sprintf("%s (m%d)", cli.FormatMoney(d.BalloonAmount), d.BalloonMonth)
		}
		rows = append(rows, []string{
			d.Label,
			cli.FormatMoney(d.Balance),
			cli.FormatMoney(d.MonthlyPayment),
			fmt.Sprintf("%.2f%%", d.APR),
			cli.FormatTerm(d.TermMonths),
			balloon,
		})
	}
	return cli.RenderTable(cli.Table{
		Headers: []string{"Debt", "Balance", "Payment", "APR", "Term", "Balloon"},
		Rows:    rows,
	})
}

func (a App) viewHelp() string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	keys := []struct{ key, desc string }{
		{"← / →", "correlation ρ -/+ 0.1"},
		{"↑ / ↓", "starting cash +/- 10% of monthly income"},
		{"s", "next seed"},
		{"r", "rerun"},
		{"0", "reset to profile"},
		{"?", "toggle help"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("Keys"))
	b.WriteString("\n\n")
	for _, k := range keys {
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-8s", k.key)))
		b.WriteString(descStyle.Render(k.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render(
		fmt.Sprintf("Every change reruns %s uncached trials.", cli.FormatNumber(int64(a.in.Trials)))))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}
