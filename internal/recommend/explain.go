package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-planner/internal/model"
)

// Explanation is a stored recommendation together with a readable account of
// how it was reached.
type Explanation struct {
	Recommendation model.Recommendation
	Summary        string
}

// Explain loads a stored recommendation and describes its reasoning. The
// pipeline is not re-run.
func (e *Engine) Explain(ctx context.Context, id string) (Explanation, error) {
	rec, err := e.store.GetRecommendation(ctx, id)
	if err != nil {
		return Explanation{}, fmt.Errorf("failed to load recommendation %q: %w", id, err)
	}
	return Explanation{Recommendation: *rec, Summary: Summarize(*rec)}, nil
}

// Summarize renders a recommendation's reasoning as plain text.
func Summarize(rec model.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s priority)\n", rec.Title, rec.Priority)
	fmt.Fprintf(&b, "%s\n\n", rec.Description)
	fmt.Fprintf(&b, "How: %s\n", rec.Reasoning.Methodology)

	if len(rec.Reasoning.Factors) > 0 {
		b.WriteString("Factors:\n")
		for _, f := range rec.Reasoning.Factors {
			fmt.Fprintf(&b, "  - %s: %s (weight %.2f)\n", f.Name, f.Value, f.Weight)
		}
	}
	if len(rec.Reasoning.Assumptions) > 0 {
		b.WriteString("Assumptions:\n")
		for _, a := range rec.Reasoning.Assumptions {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	}
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", rec.Reasoning.Confidence*100)
	fmt.Fprintf(&b, "Expected impact: %s within %d months\n", rec.Impact.Amount, rec.Impact.MonthsToRealize)
	return b.String()
}
