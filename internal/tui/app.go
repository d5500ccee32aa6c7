// Package tui provides the interactive Bubble Tea dashboard for savecast.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"
	"github.com/theirongolddev/savecast/internal/store"
	"github.com/theirongolddev/savecast/internal/tui/components"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Transactions []model.Transaction
	ParseErrors  int
	LoadTime     time.Duration
	Err          error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Transactions []model.Transaction
	ParseErrors  int
	LoadTime     time.Duration
	Err          error
}

// Options configures a new App.
type Options struct {
	LedgerDir string
	Filters   pipeline.FilterOptions
	UseCache  bool
	Config    config.Config
	Params    forecast.Params
}

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabHorizons
	tabScenario
	tabMonthly
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	refreshInterval = time.Minute

	minScenarioPercent = 1
	maxScenarioPercent = 50
)

// App is the root Bubble Tea model.
type App struct {
	// Data
	transactions []model.Transaction
	parseErrors  int
	loaded       bool
	loadTime     time.Duration
	loadErr      error

	// Pre-computed for current filter
	filtered    []model.Transaction
	months      []model.MonthlyAggregate
	averages    model.Averages
	spanMonths  int
	predictions []model.PredictionResult
	seasonality [12]float64
	scenario    model.ScenarioResult
	sweep       []model.ScenarioResult
	categories  []model.CategoryStats

	// Auto-refresh state
	autoRefresh bool
	lastRefresh time.Time
	refreshing  bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Scenario controls
	scenarioKind    model.ScenarioKind
	scenarioPercent float64

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	opts Options
	cfg  config.Config
	fc   forecast.Forecaster
}

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	kind, ok := model.ParseScenarioKind(opts.Config.Scenario.DefaultKind)
	if !ok {
		kind = model.ExpenseReduction
	}
	percent := clampPercent(opts.Config.Scenario.DefaultPercent)

	return App{
		needSetup:       !config.Exists(),
		scenarioKind:    kind,
		scenarioPercent: percent,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
		opts:            opts,
		cfg:             opts.Config,
		fc:              forecast.New(opts.Params),
	}
}

func clampPercent(p float64) float64 {
	return max(minScenarioPercent, min(p, maxScenarioPercent))
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts.LedgerDir, a.opts.UseCache, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a App) horizons() forecast.Horizons {
	return config.Horizons(a.cfg)
}

func (a App) scenarioMonths() int {
	if a.cfg.Scenario.DefaultMonths > 0 {
		return a.cfg.Scenario.DefaultMonths
	}
	return 12
}

// recompute derives every view from the loaded transactions. Nothing is
// carried over between calls.
func (a *App) recompute() {
	a.filtered = pipeline.ApplyFilters(a.transactions, a.opts.Filters)
	a.months = pipeline.AggregateMonths(a.filtered)
	a.averages = pipeline.MonthlyAverages(a.filtered)
	a.spanMonths = pipeline.DataTimeSpan(a.filtered)
	a.predictions = a.fc.Forecast(a.filtered, a.horizons())
	a.seasonality = a.fc.Seasonality(a.filtered)
	a.categories = pipeline.AggregateCategories(a.filtered)
	a.recomputeScenario()
}

func (a *App) recomputeScenario() {
	months := a.scenarioMonths()
	a.scenario = a.fc.Scenario(a.filtered, a.scenarioKind, a.scenarioPercent, months)
	a.sweep = forecast.Sweep(a.filtered, a.scenarioKind, 5, maxScenarioPercent, 5, months)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}

		// First-run setup wizard intercepts all keys
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.activeTab == tabScenario {
			if handled := a.updateScenarioKeys(key); handled {
				return a, nil
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, refreshDataCmd(a.opts.LedgerDir, a.opts.UseCache)
			}
			return a, nil
		case "R":
			a.autoRefresh = !a.autoRefresh
			return a, nil
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.transactions = msg.Transactions
		a.parseErrors = msg.ParseErrors
		a.loadErr = msg.Err
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.recompute()

		if a.needSetup {
			a.setupForm = NewSetupForm(a.cfg, len(a.transactions), a.opts.LedgerDir, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.opts.LedgerDir, a.opts.UseCache))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.transactions = msg.Transactions
			a.parseErrors = msg.ParseErrors
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

// updateScenarioKeys handles the scenario controls. It reports whether key
// was consumed.
func (a *App) updateScenarioKeys(key string) bool {
	switch key {
	case "+", "=", "up", "k":
		a.scenarioPercent = clampPercent(a.scenarioPercent + 1)
	case "-", "_", "down", "j":
		a.scenarioPercent = clampPercent(a.scenarioPercent - 1)
	case "e":
		a.scenarioKind = model.ExpenseReduction
	case "i":
		a.scenarioKind = model.IncomeIncrease
	default:
		return false
	}
	a.recomputeScenario()
	return true
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		_ = a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		a.scenarioPercent = clampPercent(a.cfg.Scenario.DefaultPercent)
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  savecast needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Focus).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ savecast"))
	b.WriteString(subtitleStyle.Render(" · Savings Forecast"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing ledger files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Discovering ledger files..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Focus).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Info).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o h s m", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
		}},
		{"Scenario", []struct{ key, desc string }{
			{"+ -", "Adjust percentage (1-50%)"},
			{"e i", "Expense cut / income raise"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// filterSummary describes the active filters for the header pill.
func (a App) filterSummary() string {
	parts := []string{fmt.Sprintf("%d txns", len(a.filtered))}
	f := a.opts.Filters
	if !f.Since.IsZero() {
		parts = append(parts, "since "+f.Since.Format(model.DateLayout))
	}
	if !f.Until.IsZero() {
		parts = append(parts, "until "+f.Until.Format(model.DateLayout))
	}
	if f.Category != "" {
		parts = append(parts, f.Category)
	}
	if f.RecurringOnly {
		parts = append(parts, "recurring")
	}
	return strings.Join(parts, " │ ")
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	pillStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Width(w)
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		pillStyle.Render(" "+a.filterSummary())

	info := fmt.Sprintf("Loaded in %.1fs", a.loadTime.Seconds())
	if a.loadErr != nil {
		info = "Load error: " + truncStr(a.loadErr.Error(), 40)
	}
	statusBar := components.RenderStatusBar(w, info, a.refreshing, a.autoRefresh)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case len(a.filtered) == 0:
		content = a.renderEmpty(cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabHorizons:
		content = a.renderHorizonsTab(cw)
	case a.activeTab == tabScenario:
		content = a.renderScenarioTab(cw)
	case a.activeTab == tabMonthly:
		content = a.renderMonthlyTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderEmpty(cw int) string {
	body := fmt.Sprintf("No transactions found in %s.\n\nAdd .jsonl or .csv ledger files, then press r to refresh.", a.opts.LedgerDir)
	if a.loadErr != nil {
		body = fmt.Sprintf("Could not load %s:\n%v", a.opts.LedgerDir, a.loadErr)
	}
	return components.ContentCard("Empty ledger", body, cw)
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadLedger runs the pipeline, preferring the SQLite cache.
func loadLedger(ledgerDir string, useCache bool, progressFn pipeline.ProgressFunc) ([]model.Transaction, int, error) {
	if useCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			cr, loadErr := pipeline.LoadWithCache(ledgerDir, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return cr.Transactions, cr.ParseErrors, nil
			}
		}
	}

	result, err := pipeline.Load(ledgerDir, progressFn)
	if err != nil {
		return nil, 0, err
	}
	return result.Transactions, result.ParseErrors, nil
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(ledgerDir string, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			txs, parseErrors, err := loadLedger(ledgerDir, useCache, progressFn)
			sub <- DataLoadedMsg{
				Transactions: txs,
				ParseErrors:  parseErrors,
				LoadTime:     time.Since(start),
				Err:          err,
			}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads the ledger in the background (no progress UI).
func refreshDataCmd(ledgerDir string, useCache bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		txs, parseErrors, err := loadLedger(ledgerDir, useCache, nil)
		return RefreshDataMsg{
			Transactions: txs,
			ParseErrors:  parseErrors,
			LoadTime:     time.Since(start),
			Err:          err,
		}
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
