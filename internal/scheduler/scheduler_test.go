package scheduler

import (
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func mustNY(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02 15:04", s, newYork)
	require.NoError(t, err)
	return tm
}

func TestCurrentSession_WeekdayWindows(t *testing.T) {
	cases := []struct {
		at   string
		want model.Session
	}{
		{"2026-07-27 08:45", model.PreMarket}, // Monday
		{"2026-07-27 09:10", model.OpenRush},
		{"2026-07-27 09:45", model.PowerOpen},
		{"2026-07-27 12:00", model.Midday},
		{"2026-07-27 15:30", model.PowerHour},
		{"2026-07-27 16:45", model.AfterHours},
		{"2026-07-27 20:00", model.Overnight},
		{"2026-07-27 03:00", model.Overnight},
	}
	for _, c := range cases {
		got := CurrentSession(mustNY(t, c.at))
		require.Equal(t, c.want, got, "at %s", c.at)
	}
}

func TestCurrentSession_WeekendIsOvernight(t *testing.T) {
	saturday := mustNY(t, "2026-08-01 10:00")
	require.Equal(t, model.Overnight, CurrentSession(saturday))
}

func TestCurrentSession_HolidayIsOvernight(t *testing.T) {
	christmas := mustNY(t, "2026-12-25 10:00")
	require.Equal(t, model.Overnight, CurrentSession(christmas))
}

func TestIsTradingSession_FalseOvernightAndWeekends(t *testing.T) {
	require.False(t, IsTradingSession(mustNY(t, "2026-07-27 03:00")))
	require.False(t, IsTradingSession(mustNY(t, "2026-08-01 10:00")))
	require.True(t, IsTradingSession(mustNY(t, "2026-07-27 10:00")))
}

func TestTierForCycle_CumulativeCadence(t *testing.T) {
	require.Equal(t, model.Cold, TierForCycle(15, 5, 15))
	require.Equal(t, model.Warm, TierForCycle(5, 5, 15))
	require.Equal(t, model.Hot, TierForCycle(3, 5, 15))
	require.Equal(t, model.Cold, TierForCycle(30, 5, 15))
}

func TestTierIncludes_Cumulative(t *testing.T) {
	require.True(t, model.Cold.Includes(model.Warm))
	require.True(t, model.Cold.Includes(model.Hot))
	require.True(t, model.Warm.Includes(model.Hot))
	require.False(t, model.Hot.Includes(model.Warm))
}

func TestGovernor_BudgetGate(t *testing.T) {
	// Restored at cycle 4, so the next cycle (5) is WARM by cadence.
	g := NewGovernor(100, 0.5, 5, 15, Counters{CycleCount: 4})
	require.True(t, g.IsWithinBudget())

	g.RecordCalls(50)
	require.False(t, g.IsWithinBudget(), "50/100 at 0.5 margin must trip the gate")

	_, tier := g.NextTier()
	require.Equal(t, model.Hot, tier, "next cycle's tier must be forced to HOT once over budget")
}

func TestGovernor_DateRolloverIsIdempotent(t *testing.T) {
	today := estDate(time.Now())
	restored := Counters{CycleCount: 10, DailyCallCount: 500, LastResetDate: today}

	g := NewGovernor(15000, 0.9, 5, 15, restored)
	require.Equal(t, 500, g.Snapshot().DailyCallCount, "same-day restart must preserve counters")

	// Calling rollover again on the same day must not double-reset.
	g.rolloverIfNeeded(time.Now())
	require.Equal(t, 500, g.Snapshot().DailyCallCount)
}

func TestGovernor_DateRolloverResetsOnNewDay(t *testing.T) {
	restored := Counters{CycleCount: 10, DailyCallCount: 500, LastResetDate: "2000-01-01"}
	g := NewGovernor(15000, 0.9, 5, 15, restored)
	require.Zero(t, g.Snapshot().DailyCallCount)
}

func TestEndpointsForTier_IsSubsetByTier(t *testing.T) {
	hot := EndpointsForTier(model.Hot, PerTickerEndpoints)
	warm := EndpointsForTier(model.Warm, PerTickerEndpoints)
	cold := EndpointsForTier(model.Cold, PerTickerEndpoints)

	require.Len(t, hot, 6)
	require.Greater(t, len(warm), len(hot))
	require.Greater(t, len(cold), len(warm))

	for _, e := range hot {
		require.Equal(t, model.Hot, e.Tier)
	}
}
