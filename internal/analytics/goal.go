package analytics

import (
	"strings"

	"fino/internal/core"
)

// GoalProgressKind tells consumers which fields of a GoalProgress are
// meaningful.
type GoalProgressKind string

const (
	GoalInProgress    GoalProgressKind = "in-progress"
	GoalReached       GoalProgressKind = "goal-reached"
	GoalInvalidTarget GoalProgressKind = "invalid-target"
)

// GoalProgress is the derived view of a single goal. Saved amounts are
// clamped at zero on the way in so a corrupt negative total never produces
// negative progress.
type GoalProgress struct {
	Goal core.Goal
	Kind GoalProgressKind

	// Saved is the clamped total, Displayed is Saved capped at the target
	// so progress bars never overflow.
	Saved     core.Money
	Displayed core.Money

	// Percent is Saved against the target, capped at 100. Exact; round at
	// presentation with Round1.
	Percent float64

	Remaining core.Money // max(target - saved, 0)
	Overshoot core.Money // max(saved - target, 0)

	// MonthsToTarget is Remaining divided by the goal's monthly target,
	// meaningful only when HasEstimate is true.
	MonthsToTarget float64
	HasEstimate    bool
}

// ComputeGoalProgress derives the display figures for one goal.
func ComputeGoalProgress(g core.Goal) GoalProgress {
	saved := g.TotalSaved
	if saved.Cents < 0 {
		saved = core.Money{}
	}
	p := GoalProgress{Goal: g, Saved: saved}

	if g.TargetAmount.Cents <= 0 {
		p.Kind = GoalInvalidTarget
		p.Displayed = saved
		return p
	}

	target := g.TargetAmount.Cents
	p.Percent = float64(saved.Cents) / float64(target) * 100
	if p.Percent > 100 {
		p.Percent = 100
	}
	if saved.Cents >= target {
		p.Kind = GoalReached
		p.Displayed = core.Money{Cents: target}
		p.Overshoot = core.Money{Cents: saved.Cents - target}
	} else {
		p.Kind = GoalInProgress
		p.Displayed = saved
		p.Remaining = core.Money{Cents: target - saved.Cents}
	}

	if g.MonthlyTarget.Cents > 0 {
		p.HasEstimate = true
		p.MonthsToTarget = float64(p.Remaining.Cents) / float64(g.MonthlyTarget.Cents)
	}
	return p
}

// StrategyProgress is one plan line with the saved amount reported toward
// it for the current month.
type StrategyProgress struct {
	Item  core.StrategyItem
	Saved core.Money

	// Percent is Saved against the plan's monthly contribution, capped at
	// 100. A zero plan amount reports 0, never NaN or Inf.
	Percent float64
}

// ComputeStrategyProgress pairs every strategy item with the saved amount
// reported for its method, matched case-insensitively like reconciliation.
// Methods with no reported amount count zero; negative amounts clamp to
// zero. Item order is preserved.
func ComputeStrategyProgress(items []core.StrategyItem, savedByMethod map[string]core.Money) []StrategyProgress {
	out := make([]StrategyProgress, 0, len(items))
	for _, item := range items {
		var saved core.Money
		for method, amount := range savedByMethod {
			if strings.EqualFold(method, item.Method) {
				saved = amount
				break
			}
		}
		if saved.Cents < 0 {
			saved = core.Money{}
		}
		p := StrategyProgress{Item: item, Saved: saved}
		if item.MonthlyContribution.Cents > 0 {
			p.Percent = float64(saved.Cents) / float64(item.MonthlyContribution.Cents) * 100
			if p.Percent > 100 {
				p.Percent = 100
			}
		}
		out = append(out, p)
	}
	return out
}

// StrategyTotal sums the planned monthly contributions across a goal's
// strategy items.
func StrategyTotal(items []core.StrategyItem) core.Money {
	var total core.Money
	for _, item := range items {
		total = total.Add(item.MonthlyContribution)
	}
	return total
}

// OverallGoalProgress aggregates every goal into a single saved-vs-target
// figure. Goals with invalid targets contribute their saved amount but no
// target, matching the per-goal treatment.
type OverallGoalProgress struct {
	Target  core.Money
	Saved   core.Money
	Percent float64
	Reached int
	Total   int
}

// ComputeOverallGoalProgress evaluates every goal and rolls the results up.
func ComputeOverallGoalProgress(goals []core.Goal) OverallGoalProgress {
	var o OverallGoalProgress
	o.Total = len(goals)
	for _, g := range goals {
		p := ComputeGoalProgress(g)
		o.Saved = o.Saved.Add(p.Saved)
		if p.Kind == GoalInvalidTarget {
			continue
		}
		o.Target = o.Target.Add(g.TargetAmount)
		if p.Kind == GoalReached {
			o.Reached++
		}
	}
	if o.Target.Cents > 0 {
		o.Percent = float64(o.Saved.Cents) / float64(o.Target.Cents) * 100
		if o.Percent > 100 {
			o.Percent = 100
		}
	}
	return o
}
