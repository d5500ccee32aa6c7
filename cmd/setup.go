package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/source"
	"github.com/theirongolddev/savecast/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:         "setup",
	Short:       "First-time setup wizard",
	Annotations: map[string]string{rawConfigAnnotation: "true"},
	RunE:        runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	files, _ := source.ScanDir(flagLedgerDir)
	txCount := 0
	for _, f := range files {
		txCount += len(source.ParseFile(f).Transactions)
	}

	var vals tui.SetupValues
	form := tui.NewSetupForm(cfg, txCount, flagLedgerDir, &vals)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	tui.ApplySetup(&cfg, vals)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `savecast setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
