package model

import "time"

// goalTrackingTolerance is how far progress may lag elapsed time before a goal is off track.
const goalTrackingTolerance = 0.10

// FinancialGoal is a savings target with a deadline.
type FinancialGoal struct {
	TargetDate    time.Time
	CreatedDate   time.Time
	ID            string
	Title         string
	TargetAmount  Money
	CurrentAmount Money
}

// Progress returns the saved fraction of the target, clamped to [0, 1].
func (g FinancialGoal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 1
	}
	return clamp01(g.CurrentAmount.Float64() / g.TargetAmount.Float64())
}

// ElapsedFraction returns how much of the goal's time window has passed at now, clamped to [0, 1].
func (g FinancialGoal) ElapsedFraction(now time.Time) float64 {
	total := g.TargetDate.Sub(g.CreatedDate)
	if total <= 0 {
		return 1
	}
	return clamp01(float64(now.Sub(g.CreatedDate)) / float64(total))
}

// IsOffTrack reports whether progress trails elapsed time by more than the tolerance band.
func (g FinancialGoal) IsOffTrack(now time.Time) bool {
	if g.Remaining().IsZero() {
		return false
	}
	return g.Progress() < g.ElapsedFraction(now)-goalTrackingTolerance
}

// Remaining returns the amount still to be saved, never negative.
func (g FinancialGoal) Remaining() Money {
	return MaxMoney(g.TargetAmount.Sub(g.CurrentAmount), Zero(g.TargetAmount.Currency))
}

// MonthsLeft returns whole months between now and the target date, at least 1.
func (g FinancialGoal) MonthsLeft(now time.Time) int {
	months := int(g.TargetDate.Sub(now).Hours() / hoursPerDay / daysPerMonth)
	if months < 1 {
		return 1
	}
	return months
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
