package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/attune/internal/domain"
)

const meterWidth = 16

// FormatClassification renders a full tone report: primary tone with band,
// the three-bucket distribution as meters, and any active contexts.
func FormatClassification(tc domain.ToneClassification, contexts map[domain.ContextID]float64) string {
	var b strings.Builder

	b.WriteString(Header("Tone"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		ToneIndicator(tc.Primary),
		BandPill(tc.Band),
		Dim(fmt.Sprintf("confidence %.2f", tc.Confidence)),
	))
	if tc.Secondary != "" {
		b.WriteString(Dim(fmt.Sprintf("leaning %s", tc.Secondary)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, tone := range []domain.Tone{domain.ToneAlert, domain.ToneCaution, domain.ToneClear} {
		b.WriteString(fmt.Sprintf("  %-8s %s\n",
			tone, RenderMeter(tc.Distribution.Get(tone), meterWidth, ToneStyle(tone))))
	}

	if line := activeContextLine(contexts); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// activeContextLine lists the active contexts ordered by score, dimmed.
// Returns "" when nothing scored.
func activeContextLine(contexts map[domain.ContextID]float64) string {
	type ctxScore struct {
		id    domain.ContextID
		score float64
	}
	var active []ctxScore
	for id, score := range contexts {
		if score > 0 {
			active = append(active, ctxScore{id, score})
		}
	}
	if len(active) == 0 {
		return ""
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].score != active[j].score {
			return active[i].score > active[j].score
		}
		return active[i].id < active[j].id
	})

	parts := make([]string, len(active))
	for i, cs := range active {
		parts[i] = fmt.Sprintf("%s %.2f", cs.id, cs.score)
	}
	return Dim("contexts: " + strings.Join(parts, "  "))
}
