package tui

import (
	"testing"

	"github.com/theirongolddev/savecast/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Errorf("active=%d x past last tab -> %d, want -1", active, got)
		}
	}
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := App{loaded: true}
	x := tabWidthForTest(0, 0) + 1 + 2 // inside the second tab
	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := m.(App).activeTab; got != tabHorizons {
		t.Errorf("activeTab = %d, want %d", got, tabHorizons)
	}

	// Clicks below the tab bar are ignored.
	m, _ = m.(App).Update(tea.MouseMsg{X: 1, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := m.(App).activeTab; got != tabHorizons {
		t.Errorf("activeTab after body click = %d, want %d", got, tabHorizons)
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Overview"),
		len("Horizons"),
		len("Scenario"),
		len("Monthly"),
	}

	w := nameWidths[tabIdx] + 2 // horizontal padding in tab renderer
	if tabIdx != activeIdx {
		w += 2 // inactive tabs bracket their shortcut letter
	}
	return w
}
