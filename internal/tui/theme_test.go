package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// These mutate lipgloss's process-wide background flag, so no t.Parallel.

func clearThemeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STEWARD_TUI_THEME", "")
	t.Setenv("STEWARD_TUI_DARKBG", "")
	t.Setenv("COLORFGBG", "")
}

func TestApplyThemePreferenceExplicit(t *testing.T) {
	clearThemeEnv(t)

	applyThemePreference("dark")
	if !lipgloss.HasDarkBackground() {
		t.Fatal("expected dark background for dark preference")
	}
	applyThemePreference("light")
	if lipgloss.HasDarkBackground() {
		t.Fatal("expected light background for light preference")
	}
}

func TestThemeEnvBeatsConfig(t *testing.T) {
	clearThemeEnv(t)
	t.Setenv("STEWARD_TUI_THEME", "light")

	applyThemePreference("dark")
	if lipgloss.HasDarkBackground() {
		t.Fatal("expected the env override to win over the config value")
	}
}

func TestThemeDarkBGFallback(t *testing.T) {
	clearThemeEnv(t)

	t.Setenv("STEWARD_TUI_DARKBG", "true")
	applyThemePreference("auto")
	if !lipgloss.HasDarkBackground() {
		t.Fatal("expected STEWARD_TUI_DARKBG=true to select dark")
	}

	t.Setenv("STEWARD_TUI_DARKBG", "false")
	applyThemePreference("auto")
	if lipgloss.HasDarkBackground() {
		t.Fatal("expected STEWARD_TUI_DARKBG=false to select light")
	}
}

func TestThemeColorFGBGHeuristic(t *testing.T) {
	clearThemeEnv(t)

	t.Setenv("COLORFGBG", "15;0")
	applyThemePreference("auto")
	if !lipgloss.HasDarkBackground() {
		t.Fatal("expected bg segment 0 to count as dark")
	}

	t.Setenv("COLORFGBG", "0;default;15")
	applyThemePreference("auto")
	if lipgloss.HasDarkBackground() {
		t.Fatal("expected bg segment 15 to count as light")
	}
}
