package services

import "errors"

// Budget evaluator errors.
var (
	ErrInvalidBudget = errors.New("budget: planned budget must be positive")
	ErrNegativeSpend = errors.New("budget: total spent cannot be negative")
)

// UsagePercentage computes how much of a planned budget has been consumed,
// as a percentage. Pure function; the plannedBudget guard replaces the
// division-by-zero sharp edge of unvalidated budgets.
func UsagePercentage(totalSpent, plannedBudget float64) (float64, error) {
	if totalSpent < 0 {
		return 0, ErrNegativeSpend
	}
	if plannedBudget <= 0 {
		return 0, ErrInvalidBudget
	}
	return totalSpent / plannedBudget * 100, nil
}
