package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ToneStyle returns the lipgloss style corresponding to a tone bucket.
func ToneStyle(tone domain.Tone) lipgloss.Style {
	switch tone {
	case domain.ToneAlert:
		return StyleRed
	case domain.ToneCaution:
		return StyleYellow
	case domain.ToneClear:
		return StyleGreen
	default:
		return StyleDim
	}
}

// ToneIndicator returns a colored tone indicator string such as "● ALERT".
func ToneIndicator(tone domain.Tone) string {
	switch tone {
	case domain.ToneAlert:
		return StyleRed.Render("● ALERT")
	case domain.ToneCaution:
		return StyleYellow.Render("● CAUTION")
	case domain.ToneClear:
		return StyleGreen.Render("● CLEAR")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// BandPill returns the colored severity-band label.
func BandPill(band domain.Band) string {
	switch band {
	case domain.BandHigh:
		return StyleRed.Render("▲ HIGH")
	case domain.BandMed:
		return StyleYellow.Render("■ MED")
	case domain.BandLow:
		return StyleGreen.Render("● LOW")
	default:
		return StyleDim.Render("○ --")
	}
}

// StyleBadge returns a colored attachment-style label.
func StyleBadge(style domain.AttachmentStyle) string {
	switch style {
	case domain.StyleAnxious:
		return StylePurple.Render("Anxious")
	case domain.StyleAvoidant:
		return StyleBlue.Render("Avoidant")
	case domain.StyleDisorganized:
		return StyleYellow.Render("Disorganized")
	case domain.StyleSecure:
		return StyleGreen.Render("Secure")
	default:
		return StyleDim.Render("--")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
