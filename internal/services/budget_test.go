package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsagePercentage(t *testing.T) {
	usage, err := UsagePercentage(9500, 10000)
	require.NoError(t, err)
	require.InDelta(t, 95.0, usage, 1e-9)

	usage, err = UsagePercentage(0, 10000)
	require.NoError(t, err)
	require.Zero(t, usage)

	usage, err = UsagePercentage(12000, 10000)
	require.NoError(t, err)
	require.InDelta(t, 120.0, usage, 1e-9)
}

func TestUsagePercentageMonotonicInSpend(t *testing.T) {
	budget := 7500.0
	prev := -1.0
	for spend := 0.0; spend <= 15000; spend += 250 {
		usage, err := UsagePercentage(spend, budget)
		require.NoError(t, err)
		require.GreaterOrEqual(t, usage, prev)
		prev = usage
	}
}

func TestUsagePercentageRejectsInvalidInputs(t *testing.T) {
	_, err := UsagePercentage(100, 0)
	require.ErrorIs(t, err, ErrInvalidBudget)

	_, err = UsagePercentage(100, -50)
	require.ErrorIs(t, err, ErrInvalidBudget)

	_, err = UsagePercentage(-1, 100)
	require.ErrorIs(t, err, ErrNegativeSpend)
}
