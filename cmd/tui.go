package cmd

import (
	"fmt"

	"github.com/theirongolddev/savecast/internal/tui"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Background fills only render under a color profile.
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts, err := filterOptions()
	if err != nil {
		return err
	}
	fc, err := newForecaster()
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		LedgerDir: flagLedgerDir,
		Filters:   opts,
		UseCache:  !flagNoCache,
		Config:    appCfg,
		Params:    fc.Params(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
