package tui

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

func testTx(typ model.TxType, amount int64, date string, category string) model.Transaction {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		ID:       date + category,
		Type:     typ,
		Amount:   decimal.NewFromInt(amount),
		Category: category,
		Date:     d,
	}
}

func loadedApp(t *testing.T) App {
	t.Helper()
	cfg := config.DefaultConfig()
	params := forecast.DefaultParams()
	params.AsOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := NewApp(Options{LedgerDir: t.TempDir(), Config: cfg, Params: params})
	a.needSetup = false
	m, _ := a.Update(DataLoadedMsg{Transactions: []model.Transaction{
		testTx(model.Income, 3000, "2024-01-05", "salary"),
		testTx(model.Expense, 1200, "2024-01-10", "rent"),
		testTx(model.Income, 3000, "2024-02-05", "salary"),
		testTx(model.Expense, 1500, "2024-02-10", "rent"),
	}})
	return m.(App)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDataLoadedRecomputes(t *testing.T) {
	a := loadedApp(t)
	if len(a.months) != 2 {
		t.Fatalf("months = %d, want 2", len(a.months))
	}
	if a.averages.Savings != 1650 {
		t.Errorf("avg savings = %v, want 1650", a.averages.Savings)
	}
	if len(a.predictions) != 3 {
		t.Errorf("predictions = %d, want 3", len(a.predictions))
	}
	if len(a.sweep) == 0 {
		t.Error("sweep should not be empty")
	}
}

func TestScenarioKeysOnlyOnScenarioTab(t *testing.T) {
	a := loadedApp(t)
	start := a.scenarioPercent

	m, _ := a.Update(key("+"))
	if m.(App).scenarioPercent != start {
		t.Error("+ outside the scenario tab should not change the percentage")
	}

	m, _ = m.(App).Update(key("s"))
	a = m.(App)
	if a.activeTab != tabScenario {
		t.Fatalf("activeTab = %d, want scenario", a.activeTab)
	}
	m, _ = a.Update(key("+"))
	a = m.(App)
	if a.scenarioPercent != start+1 {
		t.Errorf("percent = %v, want %v", a.scenarioPercent, start+1)
	}

	m, _ = a.Update(key("i"))
	a = m.(App)
	if a.scenarioKind != model.IncomeIncrease || a.scenario.Scenario != model.IncomeIncrease {
		t.Errorf("kind = %s / %s, want income_increase", a.scenarioKind, a.scenario.Scenario)
	}
}

func TestScenarioPercentClamped(t *testing.T) {
	a := loadedApp(t)
	a.activeTab = tabScenario
	for i := 0; i < 100; i++ {
		m, _ := a.Update(key("+"))
		a = m.(App)
	}
	if a.scenarioPercent != maxScenarioPercent {
		t.Errorf("percent = %v, want %d", a.scenarioPercent, maxScenarioPercent)
	}
	for i := 0; i < 100; i++ {
		m, _ := a.Update(key("-"))
		a = m.(App)
	}
	if a.scenarioPercent != minScenarioPercent {
		t.Errorf("percent = %v, want %d", a.scenarioPercent, minScenarioPercent)
	}
}

func TestRefreshErrorKeepsData(t *testing.T) {
	a := loadedApp(t)
	m, _ := a.Update(RefreshDataMsg{Err: errors.New("boom")})
	a = m.(App)
	if len(a.transactions) != 4 || a.loadErr == nil {
		t.Errorf("transactions = %d, err = %v", len(a.transactions), a.loadErr)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	a = m.(App)
	for tab := 0; tab < 4; tab++ {
		a.activeTab = tab
		out := a.View()
		if !strings.Contains(out, "Overview") {
			t.Errorf("tab %d: missing tab bar", tab)
		}
		if got := strings.Count(out, "\n") + 1; got != 50 {
			t.Errorf("tab %d: height = %d, want 50", tab, got)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := App{width: 40, height: 10}
	if !strings.Contains(a.View(), "too narrow") {
		t.Error("expected narrow-terminal message")
	}
}

func TestConfigThemesMatchThemePackage(t *testing.T) {
	if !slices.Equal(config.Themes, theme.Names()) {
		t.Errorf("config.Themes = %v, theme.Names() = %v", config.Themes, theme.Names())
	}
}

func TestApplySetup(t *testing.T) {
	cfg := config.DefaultConfig()
	ApplySetup(&cfg, SetupValues{
		LedgerDir: "  /tmp/ledger ",
		Horizons:  horizonPresets[2].label,
		Percent:   "15",
		Theme:     "tokyo-night",
	})
	if cfg.General.LedgerDir != "/tmp/ledger" {
		t.Errorf("ledger dir = %q", cfg.General.LedgerDir)
	}
	if cfg.General.ShortMonths != 24 || cfg.General.LongMonths != 240 {
		t.Errorf("horizons = %d/%d", cfg.General.ShortMonths, cfg.General.LongMonths)
	}
	if cfg.Scenario.DefaultPercent != 15 || cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("percent = %v theme = %s", cfg.Scenario.DefaultPercent, cfg.Appearance.Theme)
	}
}
