package livelabel

import (
	"time"

	"github.com/zjrosen/cutoff/internal/reltime"
)

// State is an immutable snapshot of a label, published after every change.
type State struct {
	LabelID     string
	Name        string
	SessionID   string // empty until a cut-off has been accepted
	Raw         string
	Cutoff      time.Time
	Result      reltime.Result
	Urgency     Urgency
	ComputedAt  time.Time
	Armed       bool      // a follow-up recompute is scheduled
	NextRefresh time.Time // when it fires; zero unless Armed
}

// Valid reports whether the state carries a computed result.
func (s State) Valid() bool {
	return s.SessionID != ""
}
