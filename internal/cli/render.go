package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-planner/internal/category"
	"github.com/Veraticus/spice-planner/internal/debt"
	"github.com/Veraticus/spice-planner/internal/engine"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/recommend"
	"github.com/Veraticus/spice-planner/internal/tax"
)

const dateLayout = "2006-01-02"

func percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// RenderTaxBreakdown shows the income tax owed at one income.
func RenderTaxBreakdown(b tax.Breakdown) string {
	rows := [][]string{
		{"Gross income", b.GrossIncome.String()},
		{"Federal tax", b.FederalTax.String()},
		{fmt.Sprintf("Provincial tax (%s)", b.Jurisdiction), b.JurisdictionTax.String()},
		{"Pension contributions", b.PensionContribution.String()},
		{"Employment insurance", b.InsuranceContribution.String()},
		{"Total", BoldStyle.Render(b.TotalTax.String())},
		{"After-tax income", SuccessStyle.Render(b.AfterTaxIncome.String())},
		{"Marginal rate", percent(b.MarginalRate)},
		{"Average rate", percent(b.AverageRate)},
	}
	return RenderBox("Tax breakdown", RenderTable([]string{"", "Amount"}, rows))
}

// RenderRegistered shows contribution room for both registered account classes.
func RenderRegistered(a tax.RegisteredAnalysis) string {
	row := func(label string, r tax.RoomAnalysis) []string {
		current := r.CurrentContribution.String()
		if r.AssumedCurrent {
			current += "*"
		}
		material := ""
		if r.Material {
			material = WarningStyle.Render("act")
		}
		return []string{
			label,
			r.MaxContribution.String(),
			current,
			r.ContributionRoom.String(),
			r.RecommendedContribution.String(),
			r.EstimatedTaxSavings.String(),
			material,
		}
	}

	table := RenderTable(
		[]string{"Account", "Limit", "Contributed", "Room", "Suggested", "Tax saved", ""},
		[][]string{
			row("Tax-deferred", a.TaxDeferred),
			row("Tax-free", a.TaxFree),
		},
	)
	if a.TaxDeferred.AssumedCurrent || a.TaxFree.AssumedCurrent {
		table += "\n" + SubtleStyle.Render("* estimated; supply contributions in the profile for exact room")
	}
	return RenderBox("Registered accounts", table)
}

// RenderDebtPlan shows the recommended payoff plan and how the alternatives compare.
func RenderDebtPlan(r debt.Result) string {
	if len(r.Debts) == 0 {
		return FormatSuccess("No outstanding debt")
	}

	plan := r.Recommended
	rows := make([][]string, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		payoff := "never"
		if s.Payable {
			payoff = fmt.Sprintf("%d months", s.PayoffMonth)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Position),
			s.Debt.Name,
			s.Debt.Balance.String(),
			percent(s.Debt.AnnualRate),
			s.Debt.MinimumPayment.String(),
			payoff,
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"#", "Debt", "Balance", "Rate", "Minimum", "Paid off"}, rows))
	fmt.Fprintf(&b, "\n\nMethod: %s  Monthly payment: %s (extra %s)\n",
		BoldStyle.Render(string(plan.Method)), plan.MonthlyPayment, plan.ExtraPayment)
	fmt.Fprintf(&b, "Total interest: %s  Interest saved: %s\n", plan.TotalInterest, plan.InterestSaved)
	if plan.Feasible {
		fmt.Fprintf(&b, "Debt free in %d months", plan.MonthsToPayoff)
	} else {
		b.WriteString(WarningStyle.Render("Payments do not cover interest on every debt"))
	}

	alternatives := make([][]string, 0, len(r.Alternatives))
	for _, m := range debt.Methods() {
		alt, ok := r.Alternatives[m]
		if !ok {
			continue
		}
		months := "-"
		if alt.Feasible {
			months = fmt.Sprintf("%d", alt.MonthsToPayoff)
		}
		alternatives = append(alternatives, []string{string(m), alt.TotalInterest.String(), months})
	}
	if len(alternatives) > 0 {
		b.WriteString("\n\n")
		b.WriteString(RenderTable([]string{"Method", "Interest", "Months"}, alternatives))
	}

	return RenderBox("Debt payoff plan", b.String())
}

func priorityStyle(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return ErrorStyle.Render(p.String())
	case model.PriorityHigh:
		return WarningStyle.Render(p.String())
	default:
		return SubtleStyle.Render(p.String())
	}
}

// RenderRecommendations lists recommendations in the order given.
func RenderRecommendations(recs []model.Recommendation) string {
	if len(recs) == 0 {
		return FormatInfo("No recommendations")
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		title := r.Title
		if r.Completed {
			title = SubtleStyle.Render(SuccessIcon + " " + title)
		}
		rows = append(rows, []string{
			r.ID,
			priorityStyle(r.Priority),
			string(r.Kind),
			title,
			r.Impact.Amount.String(),
		})
	}
	return RenderTable([]string{"ID", "Priority", "Kind", "Recommendation", "Impact"}, rows)
}

// RenderExplanation shows a stored recommendation with its full reasoning.
func RenderExplanation(e recommend.Explanation) string {
	rec := e.Recommendation
	var b strings.Builder
	b.WriteString(e.Summary)

	if len(rec.Actions) > 0 {
		b.WriteString("\nSteps:\n")
		for _, a := range rec.Actions {
			fmt.Fprintf(&b, "  %d. %s", a.Order, a.Description)
			if a.Amount != nil {
				fmt.Fprintf(&b, " (%s)", a.Amount)
			}
			b.WriteString("\n")
		}
	}
	return RenderBox(fmt.Sprintf("%s %s", ChartIcon, rec.ID), strings.TrimRight(b.String(), "\n"))
}

func severityStyle(s model.Severity) string {
	switch s {
	case model.SeverityCritical, model.SeverityHigh:
		return ErrorStyle.Render(s.String())
	case model.SeverityMedium:
		return WarningStyle.Render(s.String())
	default:
		return SubtleStyle.Render(s.String())
	}
}

// RenderAlerts lists unusual-spending alerts.
func RenderAlerts(alerts []model.UnusualSpendingAlert) string {
	if len(alerts) == 0 {
		return FormatSuccess("No unusual spending found")
	}

	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{
			severityStyle(a.Severity),
			string(a.Type),
			a.Merchant,
			a.Amount.String(),
			a.Message,
		})
	}
	return RenderTable([]string{"Severity", "Type", "Merchant", "Amount", "Details"}, rows)
}

// RenderCategories lists the taxonomy with sub-categories indented under their parents.
func RenderCategories(cats []model.Category) string {
	children := make(map[string][]model.Category)
	var roots []model.Category
	for _, c := range cats {
		if c.HasParent() {
			children[c.ParentID] = append(children[c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	row := func(c model.Category, indent string) []string {
		kind := "default"
		if c.IsCustom {
			kind = "custom"
		}
		return []string{c.ID, indent + c.Name, c.Color, kind}
	}

	rows := make([][]string, 0, len(cats))
	for _, root := range roots {
		rows = append(rows, row(root, ""))
		for _, child := range children[root.ID] {
			rows = append(rows, row(child, "  └ "))
		}
	}
	return RenderTable([]string{"ID", "Name", "Color", "Type"}, rows)
}

// RenderUsage shows category usage statistics.
func RenderUsage(stats []category.Usage) string {
	rows := make([][]string, 0, len(stats))
	for _, u := range stats {
		last := "-"
		if u.LastUsed != nil {
			last = u.LastUsed.Format(dateLayout)
		}
		rows = append(rows, []string{
			u.Category.Name,
			fmt.Sprintf("%d", u.TransactionCount),
			u.TotalAmount.String(),
			u.AverageAmount.String(),
			string(u.Frequency),
			last,
		})
	}
	return RenderTable([]string{"Category", "Count", "Total", "Average", "Frequency", "Last used"}, rows)
}

// RenderSuggestions lists taxonomy clean-up suggestions.
func RenderSuggestions(suggestions []category.Suggestion) string {
	if len(suggestions) == 0 {
		return FormatSuccess("Categories look tidy")
	}
	lines := make([]string, len(suggestions))
	for i, s := range suggestions {
		lines[i] = FormatInfo(s.Message)
	}
	return strings.Join(lines, "\n")
}

// RenderCategorization shows one prediction and its runners-up.
func RenderCategorization(r model.CategorizationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s → %s (%s confidence)", r.TransactionID, BoldStyle.Render(r.CategoryID), percent(r.Confidence))
	if r.Degraded {
		b.WriteString(" " + WarningStyle.Render("[no usable text]"))
	}
	for _, alt := range r.Alternatives {
		fmt.Fprintf(&b, "\n    %s %s", alt.CategoryID, SubtleStyle.Render(percent(alt.Confidence)))
	}
	return b.String()
}

// RenderBatchSummary summarizes a batch categorization run.
func RenderBatchSummary(s *engine.BatchSummary) string {
	if s.Total == 0 {
		return FormatInfo("Nothing to categorize")
	}
	lines := []string{
		fmt.Sprintf("Categorized:    %d", s.Total),
		fmt.Sprintf("Auto-accepted:  %d", s.Accepted),
		fmt.Sprintf("Written:        %d", s.Applied),
		fmt.Sprintf("Needs review:   %d", s.NeedsReview),
		fmt.Sprintf("No usable text: %d", s.Degraded),
		SubtleStyle.Render(fmt.Sprintf("Took %s", s.ProcessingTime.Round(time.Millisecond))),
	}
	return RenderBox("Categorization", strings.Join(lines, "\n"))
}
