package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// FormatEstimate renders the attachment estimate: per-style meters, primary
// and secondary badges, confidence, and learning-window progress.
func FormatEstimate(est domain.AttachmentEstimate, learningDays int) string {
	var b strings.Builder

	b.WriteString(Header("Attachment profile"))
	b.WriteString("\n")

	if est.Primary == "" {
		b.WriteString(Dim("Not enough evidence yet — keep writing."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(StyleBadge(est.Primary))
	if est.Secondary != "" {
		b.WriteString(Dim(" / ") + StyleBadge(est.Secondary))
	}
	b.WriteString("\n\n")

	for _, ss := range est.Scores.Sorted() {
		b.WriteString(fmt.Sprintf("  %-14s %s\n",
			ss.Style, RenderMeter(ss.Score, meterWidth, styleMeterStyle(ss.Style))))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  %-14s %s\n", "confidence", RenderConfidence(est.Confidence, meterWidth)))

	window := fmt.Sprintf("day %d of %d", est.DaysObserved, learningDays)
	if est.WindowComplete {
		window = "window complete"
	}
	b.WriteString(Dim("  " + window))
	if est.PriorWeight > 0 {
		b.WriteString(Dim(fmt.Sprintf("  ·  prior weight %.2f", est.PriorWeight)))
	}
	b.WriteString("\n")

	return b.String()
}

func styleMeterStyle(style domain.AttachmentStyle) lipgloss.Style {
	switch style {
	case domain.StyleAnxious:
		return StylePurple
	case domain.StyleAvoidant:
		return StyleBlue
	case domain.StyleDisorganized:
		return StyleYellow
	case domain.StyleSecure:
		return StyleGreen
	default:
		return StyleDim
	}
}

// FormatHistory renders recent profile events as an aligned table, newest
// first.
func FormatHistory(events []domain.ProfileEvent) string {
	if len(events) == 0 {
		return Dim("No history.") + "\n"
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		style := string(ev.Style)
		if style == "" {
			style = "--"
		}
		weight := "--"
		if ev.Weight > 0 {
			weight = fmt.Sprintf("%.2f", ev.Weight)
		}
		signal := ev.SignalID
		if signal == "" {
			signal = "--"
		}
		rows = append(rows, []string{ev.DayKey, string(ev.Type), style, weight, signal})
	}
	return RenderTable([]string{"DAY", "EVENT", "STYLE", "WEIGHT", "SIGNAL"}, rows)
}
