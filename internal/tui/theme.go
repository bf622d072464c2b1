package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"tasker/internal/output"
	"tasker/internal/service"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorAccent   lipgloss.TerminalColor = ac("#1d4ed8", "#60a5fa")
	colorError    lipgloss.TerminalColor = ac("#b91c1c", "#f87171")
	colorSelectBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")

	colorWarning lipgloss.TerminalColor = ac("#a16207", "#facc15")
	colorPrimary lipgloss.TerminalColor = ac("#1d4ed8", "#60a5fa")
	colorSuccess lipgloss.TerminalColor = ac("#15803d", "#4ade80")
)

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorSelectBg).Bold(true)
}

func styleBox() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1)
}

// badge renders the status label in its badge color.
func badge(s service.Status) string {
	var fg lipgloss.TerminalColor
	switch output.StatusBadge(s) {
	case output.BadgeWarning:
		fg = colorWarning
	case output.BadgePrimary:
		fg = colorPrimary
	case output.BadgeSuccess:
		fg = colorSuccess
	default:
		fg = colorMuted
	}
	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render("[" + s.Label() + "]")
}

// applyColorProfile honors NO_COLOR and otherwise follows the terminal.
func applyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if profile != termenv.Ascii && (strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit")) {
		profile = termenv.TrueColor
	}
	lipgloss.SetColorProfile(profile)
}
