package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must stay readable on both light and dark terminal backgrounds, so
// every semantic color is a lipgloss.AdaptiveColor pair and "faint" styling is
// applied only on dark backgrounds (faint on light terminals often becomes
// illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "39")
	colorDone       lipgloss.TerminalColor = ac("28", "35")
	colorOverdue    lipgloss.TerminalColor = ac("160", "203")
	colorImportant  lipgloss.TerminalColor = ac("130", "214")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func styleTabActive() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Underline(true)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the
// interactive TUI. termenv.EnvColorProfile also honors CLICOLOR, which is
// right for piped CLI output but can accidentally strip a TUI of color, so
// here only NO_COLOR is honored and the terminal's capabilities decide the
// rest.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection for AdaptiveColor.
// Some terminals do not report their background reliably; TASKFLOW_TUI_THEME
// (light|dark) wins, then the COLORFGBG convention ("fg;bg", last segment is
// the background color number).
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKFLOW_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}

// categoryColor maps a stored hex color onto a terminal color, falling back
// to the accent when the value is not usable.
func categoryColor(hex string) lipgloss.TerminalColor {
	hex = strings.TrimSpace(hex)
	if strings.HasPrefix(hex, "#") && (len(hex) == 7 || len(hex) == 4) {
		return lipgloss.Color(hex)
	}
	return colorAccent
}
