package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/attune/internal/domain"
)

// FormatRanked renders ranked advice as a numbered list with scores.
func FormatRanked(ranked []domain.RankedAdvice) string {
	if len(ranked) == 0 {
		return Dim("No advice matched — the message reads fine as is.") + "\n"
	}

	var b strings.Builder
	b.WriteString(Header("Suggestions"))
	b.WriteString("\n")
	for i, ra := range ranked {
		b.WriteString(fmt.Sprintf("%s %s\n",
			StyleBold.Render(fmt.Sprintf("%d.", i+1)),
			ra.Item.Text,
		))
		b.WriteString(Dim(fmt.Sprintf("   %s  score %.3f", ra.Item.ID, ra.Score)))
		b.WriteString("\n")
	}
	return b.String()
}
