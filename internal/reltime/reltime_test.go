package reltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const baseMs int64 = 1_767_225_600_000 // 2026-01-01T00:00:00Z

func secs(n int64) int64 { return baseMs + n*1000 }

func TestComputeMillis_Table(t *testing.T) {
	p := DefaultPhrases()

	tests := []struct {
		name      string
		gap       int64 // seconds, cutoff minus now
		unit      Unit
		magnitude int64
		text      string
		delay     time.Duration
	}{
		{"one hour and a bit", 3661, UnitHour, 1, "1 hour", 61 * time.Second},
		{"two hours exactly", 7200, UnitHour, 2, "2 hours", time.Second},
		{"one hour exactly stays in minutes", 3600, UnitMinute, 60, "60 minutes", time.Second},
		{"sub-minute reports zero minutes", 45, UnitMinute, 0, "0 minutes", 45 * time.Second},
		{"ninety seconds", 90, UnitMinute, 1, "1 minute", 30 * time.Second},
		{"thirty days is four weeks", 30 * 86400, UnitWeek, 4, "4 weeks", time.Second},
		{"three weeks and change", 3*604800 + 100, UnitWeek, 3, "3 weeks", 100 * time.Second},
		{"just over a month", SecondsPerMonth + 1, UnitMonth, 1, "1 month", time.Second},
		{"two years and five seconds", 2*SecondsPerYear + 5, UnitYear, 2, "2 years", 5 * time.Second},
		{"past by 25 hours", -90000, UnitDay, 1, "1 day", time.Second},
		{"past by two days", -172800, UnitDay, 2, "2 days", time.Second},
		{"past by one second", -1, UnitMinute, 0, "0 minutes", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ComputeMillis(baseMs, secs(tt.gap), p)
			require.Equal(t, tt.unit, r.Unit)
			require.Equal(t, tt.magnitude, r.Magnitude)
			require.Equal(t, tt.text, r.Text)
			require.Equal(t, tt.delay, r.NextDelay)
			require.Equal(t, tt.gap, r.DiffSeconds)
		})
	}
}

func TestComputeMillis_Now(t *testing.T) {
	r := ComputeMillis(baseMs, baseMs, DefaultPhrases())

	require.Equal(t, "now", r.Text)
	require.False(t, r.IsPast)
	require.Empty(t, r.Start)
	require.Empty(t, r.End)
	require.Equal(t, "Expires", r.Direction)
	require.Equal(t, int64(1000), r.NextDelayMs())
	require.Equal(t, "Expires now", r.Sentence())
}

func TestComputeMillis_SubSecondFloors(t *testing.T) {
	p := DefaultPhrases()

	ahead := ComputeMillis(baseMs, baseMs+500, p)
	require.Equal(t, "now", ahead.Text, "half a second ahead floors to zero")

	behind := ComputeMillis(baseMs, baseMs-500, p)
	require.True(t, behind.IsPast, "half a second behind floors to -1")
	require.Equal(t, int64(-1), behind.DiffSeconds)
}

func TestComputeMillis_PastPhrasing(t *testing.T) {
	r := ComputeMillis(baseMs, secs(-90000), DefaultPhrases())

	require.True(t, r.IsPast)
	require.Equal(t, "Expired", r.Direction)
	require.Equal(t, "ago", r.End)
	require.Empty(t, r.Start)
	require.Equal(t, "Expired 1 day ago", r.Sentence())
}

func TestComputeMillis_FuturePhrasing(t *testing.T) {
	p := Phrases{Before: "Closes", After: "Closed", Start: "in", End: "ago"}
	r := ComputeMillis(baseMs, secs(3*3600+10), p)

	require.False(t, r.IsPast)
	require.Equal(t, "Closes", r.Direction)
	require.Equal(t, "in", r.Start)
	require.Empty(t, r.End)
	require.Equal(t, "Closes in 3 hours", r.Sentence())
}

func TestCompute_TimeValues(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	r := Compute(now, now.Add(26*time.Hour+30*time.Second), DefaultPhrases())

	require.Equal(t, UnitDay, r.Unit)
	require.Equal(t, "1 day", r.Text)
	require.Equal(t, 2*time.Hour+30*time.Second, r.NextDelay)
}

func TestUnit_String(t *testing.T) {
	require.Equal(t, "year", UnitYear.String())
	require.Equal(t, "month", UnitMonth.String())
	require.Equal(t, "week", UnitWeek.String())
	require.Equal(t, "day", UnitDay.String())
	require.Equal(t, "hour", UnitHour.String())
	require.Equal(t, "minute", UnitMinute.String())
	require.Equal(t, "second", UnitSecond.String())
	require.Equal(t, "unknown", Unit(42).String())
}

func TestUnit_MonthIsTwelfthOfYear(t *testing.T) {
	require.Equal(t, int64(2_629_800), UnitMonth.Seconds())
	require.Equal(t, UnitYear.Seconds(), 12*UnitMonth.Seconds())
}

// ============================================================================
// Property-Based Tests
// ============================================================================

func TestProperty_Direction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		now := rapid.Int64Range(0, 4_000_000_000_000).Draw(t, "now")
		gap := rapid.Int64Range(0, 10*SecondsPerYear).Draw(t, "gap")

		future := ComputeMillis(now, now+gap*1000, DefaultPhrases())
		require.False(t, future.IsPast)

		if gap > 0 {
			past := ComputeMillis(now+gap*1000, now, DefaultPhrases())
			require.True(t, past.IsPast)
			require.Equal(t, future.Unit, past.Unit)
			require.Equal(t, future.Magnitude, past.Magnitude)
		}
	})
}

func TestProperty_LargestExceededUnit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gap := rapid.Int64Range(-10*SecondsPerYear, 10*SecondsPerYear).Draw(t, "gap")
		r := ComputeMillis(baseMs, secs(gap), DefaultPhrases())
		abs := r.AbsSeconds()

		require.GreaterOrEqual(t, r.Magnitude, int64(0))
		if r.Unit == UnitMinute {
			require.LessOrEqual(t, abs, SecondsPerHour)
		} else {
			require.Greater(t, abs, r.Unit.Seconds())
		}
		for _, u := range coarseUnits {
			if u > r.Unit {
				require.LessOrEqual(t, abs, u.Seconds(), "coarser unit %s was exceeded", u)
			}
		}

		unitLen := r.Unit.Seconds()
		require.LessOrEqual(t, r.Magnitude*unitLen, abs)
		require.Greater(t, (r.Magnitude+1)*unitLen, abs)
	})
}

func TestProperty_DelayFloorAndPlural(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gap := rapid.Int64Range(-2*SecondsPerYear, 2*SecondsPerYear).Draw(t, "gap")
		r := ComputeMillis(baseMs, secs(gap), DefaultPhrases())

		require.GreaterOrEqual(t, r.NextDelayMs(), int64(1000))
		require.NotZero(t, int64(r.NextDelay/time.Second)%60, "whole-minute delays collapse to a second")

		switch {
		case gap == 0:
			require.Equal(t, "now", r.Text)
		case r.Magnitude == 1:
			require.Equal(t, "1 "+r.Unit.String(), r.Text)
		default:
			require.Equal(t, r.Unit.String()+"s", r.Text[len(r.Text)-len(r.Unit.String())-1:])
		}
	})
}

func TestProperty_FutureDelayLandsOnBoundary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gap := rapid.Int64Range(1, 2*SecondsPerYear).Draw(t, "gap")
		r := ComputeMillis(baseMs, secs(gap), DefaultPhrases())

		unitLen := r.Unit.Seconds()
		rem := gap % unitLen
		if rem == 0 || rem%SecondsPerMinute == 0 {
			require.Equal(t, MinDelay, r.NextDelay)
			return
		}

		waited := int64(r.NextDelay / time.Second)
		require.Equal(t, rem, waited)
		require.Zero(t, (gap-waited)%unitLen)
	})
}
