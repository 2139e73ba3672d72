// Package reltime computes human-readable relative durations against a cut-off
// instant, together with the delay after which the rendered label goes stale.
//
// Units are fixed-length approximations (a year is 365.25 days, a month is a
// twelfth of that), so the computation needs no calendar and is O(1).
package reltime

import (
	"fmt"
	"strings"
	"time"
)

// Unit is a display unit for a relative duration.
type Unit int

const (
	UnitSecond Unit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
	UnitYear
)

// Fixed unit lengths in seconds.
const (
	SecondsPerMinute int64 = 60
	SecondsPerHour   int64 = 3600
	SecondsPerDay    int64 = 86400
	SecondsPerWeek   int64 = 604800
	SecondsPerYear   int64 = 31557600 // 365.25 days
	SecondsPerMonth  int64 = SecondsPerYear / 12
)

// MinDelay is the shortest recompute delay ever recommended.
const MinDelay = time.Second

func (u Unit) String() string {
	switch u {
	case UnitSecond:
		return "second"
	case UnitMinute:
		return "minute"
	case UnitHour:
		return "hour"
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	case UnitYear:
		return "year"
	default:
		return "unknown"
	}
}

// Seconds returns the fixed length of the unit.
func (u Unit) Seconds() int64 {
	switch u {
	case UnitMinute:
		return SecondsPerMinute
	case UnitHour:
		return SecondsPerHour
	case UnitDay:
		return SecondsPerDay
	case UnitWeek:
		return SecondsPerWeek
	case UnitMonth:
		return SecondsPerMonth
	case UnitYear:
		return SecondsPerYear
	default:
		return 1
	}
}

// coarseUnits is walked in order; the first unit whose length the gap strictly
// exceeds is chosen. Anything not exceeding an hour falls back to minutes.
var coarseUnits = []Unit{UnitYear, UnitMonth, UnitWeek, UnitDay, UnitHour}

// Phrases holds the words used to build a label on either side of the cut-off.
type Phrases struct {
	Before string `mapstructure:"before" yaml:"before"` // direction word while the cut-off is ahead
	After  string `mapstructure:"after" yaml:"after"`   // direction word once it has passed
	Start  string `mapstructure:"start" yaml:"start"`   // leading connector, future only ("in")
	End    string `mapstructure:"end" yaml:"end"`       // trailing connector, past only ("ago")
}

// DefaultPhrases returns the expiry wording.
func DefaultPhrases() Phrases {
	return Phrases{
		Before: "Expires",
		After:  "Expired",
		Start:  "in",
		End:    "ago",
	}
}

// Result is one computation of a relative label.
type Result struct {
	Magnitude   int64
	Unit        Unit
	IsPast      bool
	DiffSeconds int64 // cutoff minus now, floored to whole seconds
	Text        string
	Direction   string
	Start       string
	End         string
	NextDelay   time.Duration
}

// AbsSeconds returns the absolute gap in seconds.
func (r Result) AbsSeconds() int64 {
	if r.DiffSeconds < 0 {
		return -r.DiffSeconds
	}
	return r.DiffSeconds
}

// NextDelayMs returns NextDelay in whole milliseconds.
func (r Result) NextDelayMs() int64 {
	return r.NextDelay.Milliseconds()
}

// Sentence joins the non-empty parts with single spaces,
// e.g. "Expires in 3 hours" or "Expired 2 days ago".
func (r Result) Sentence() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.Direction, r.Start, r.Text, r.End} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Compute is ComputeMillis for time.Time values.
func Compute(now, cutoff time.Time, p Phrases) Result {
	return ComputeMillis(now.UnixMilli(), cutoff.UnixMilli(), p)
}

// ComputeMillis formats the gap between nowMs and cutoffMs (Unix milliseconds).
func ComputeMillis(nowMs, cutoffMs int64, p Phrases) Result {
	diff := floorDiv(cutoffMs-nowMs, 1000)

	r := Result{
		DiffSeconds: diff,
		Unit:        UnitMinute,
	}

	gap := diff
	if diff < 0 {
		gap = -diff
		r.IsPast = true
		r.Direction = p.After
		r.End = p.End
	} else {
		r.Direction = p.Before
		r.Start = p.Start
	}

	for _, u := range coarseUnits {
		if gap > u.Seconds() {
			r.Unit = u
			break
		}
	}

	unitLen := r.Unit.Seconds()
	r.Magnitude = gap / unitLen

	if diff == 0 {
		r.Text = "now"
		r.Start = ""
		r.End = ""
	} else {
		r.Text = fmt.Sprintf("%d %s", r.Magnitude, r.Unit)
		if r.Magnitude != 1 {
			r.Text += "s"
		}
	}

	r.NextDelay = nextDelay(gap, unitLen, r.IsPast)
	return r
}

// nextDelay returns how long until the rendered magnitude would change.
// Counting down, that is the remainder within the current unit. Counting up,
// or sitting exactly on a boundary, it is a whole unit. A delay of whole
// minutes collapses to one second so a coarser unit's roll-over is never
// waited past.
func nextDelay(gap, unitLen int64, past bool) time.Duration {
	secs := unitLen
	if rem := gap % unitLen; !past && rem > 0 {
		secs = rem
	}
	if secs%SecondsPerMinute == 0 {
		secs = 1
	}
	d := time.Duration(secs) * time.Second
	if d < MinDelay {
		d = MinDelay
	}
	return d
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
