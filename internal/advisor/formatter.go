package advisor

import (
	"fmt"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// Formatter renders advice as plain text for the terminal.
type Formatter struct{}

// FormatAdvice renders the full advice block.
func (f *Formatter) FormatAdvice(advice *Advice) string {
	out := fmt.Sprintf("Side to move: %s\n", advice.Side)
	out += fmt.Sprintf("Assessment: %s\n", advice.Baseline.Summary())

	if advice.Status.Terminal() {
		out += fmt.Sprintf("Game over: %s, %s loses\n", advice.Status, advice.Side)
		return out
	}
	if advice.Status == xiangqi.StatusCheck {
		out += "The king is in check.\n"
	}

	if len(advice.Threats) > 0 {
		out += "Under attack:"
		for _, th := range advice.Threats {
			out += fmt.Sprintf(" %s@%s", th.Piece.Kind, th.Cell)
		}
		out += "\n"
	}
	if len(advice.Opportunities) > 0 {
		out += "Capturable:"
		for _, th := range advice.Opportunities {
			out += fmt.Sprintf(" %s@%s", th.Piece.Kind, th.Cell)
		}
		out += "\n"
	}

	out += "\nRecommended moves:\n"
	for _, rec := range advice.Recommendations {
		out += fmt.Sprintf("  %d. %-6s %-22s %.1f (%.1f%% win, %.0f%% conf, %s)\n",
			rec.Rank,
			rec.Move.String(),
			rec.Reasoning,
			rec.Score,
			rec.WinProbability*100,
			rec.Confidence*100,
			rec.Category,
		)
	}
	out += fmt.Sprintf("\nAnalysis time: %v\n", advice.Elapsed)
	return out
}
