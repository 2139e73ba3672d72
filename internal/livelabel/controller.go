// Package livelabel keeps a relative-time label accurate as time passes.
//
// A Controller owns one cut-off at a time. Every recompute reads the clock,
// formats the gap with reltime, and arms a single timer for the moment the
// label would go stale. Changing the cut-off or disposing the controller
// cancels that timer before any newer state becomes visible; a timer from an
// older session that still manages to fire is ignored.
package livelabel

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/cutoff/internal/log"
	"github.com/zjrosen/cutoff/internal/pubsub"
	"github.com/zjrosen/cutoff/internal/reltime"
	"github.com/zjrosen/cutoff/internal/tracing"
)

// RefreshCeiling is the largest gap for which a follow-up recompute is armed.
// Beyond it the label only changes on the next Present or Refresh.
const RefreshCeiling = 8 * time.Hour

const refreshCeilingSeconds = int64(RefreshCeiling / time.Second)

// Config configures a Controller.
type Config struct {
	Name       string
	Phrases    reltime.Phrases
	Thresholds Thresholds
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Parser defaults to NewParser with local time and default caching.
	Parser *Parser
	// Tracer defaults to a no-op tracer.
	Tracer trace.Tracer
}

// Controller drives one live label. It is safe for concurrent use; timer
// callbacks arrive on clock goroutines and serialise on the same lock as
// Present, Refresh and Dispose.
type Controller struct {
	id     string
	name   string
	clock  clockwork.Clock
	parser *Parser
	tracer trace.Tracer
	broker *pubsub.Broker[State]

	mu         sync.Mutex
	phrases    reltime.Phrases
	thresholds Thresholds
	session    *session
	lastErr    error
}

type timerHandle struct {
	timer clockwork.Timer
	due   time.Time
}

// session is everything derived from one accepted cut-off string.
type session struct {
	id         string
	raw        string
	cutoff     time.Time
	pending    map[*timerHandle]struct{}
	result     reltime.Result
	computedAt time.Time
}

// New creates a Controller with no cut-off.
func New(cfg Config) *Controller {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	parser := cfg.Parser
	if parser == nil {
		parser = NewParser(ParserConfig{})
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracing.Noop().Tracer()
	}

	return &Controller{
		id:         uuid.NewString(),
		name:       cfg.Name,
		clock:      clock,
		parser:     parser,
		tracer:     tracer,
		broker:     pubsub.NewReplayBroker[State](),
		phrases:    cfg.Phrases,
		thresholds: cfg.Thresholds,
	}
}

// ID uniquely identifies the controller for the life of the process.
func (c *Controller) ID() string { return c.id }

// Name returns the configured label name.
func (c *Controller) Name() string { return c.name }

// Broker publishes a State after every change. New subscribers receive the
// latest state first.
func (c *Controller) Broker() *pubsub.Broker[State] { return c.broker }

// Present shows raw with phrases p. A new cut-off string is parsed and, if
// valid, replaces the current session: pending timers are cancelled and the
// label is recomputed immediately. An unparsable string is logged, leaves
// the current state untouched and publishes that state as an ErrorEvent.
// Presenting the current string again clears any earlier parse error and is
// otherwise a no-op, apart from re-rendering when only the phrases differ.
func (c *Controller) Present(raw string, p reltime.Phrases) {
	ctx, span := c.tracer.Start(context.Background(), tracing.SpanPresent,
		trace.WithAttributes(
			attribute.String(tracing.AttrLabelID, c.id),
			attribute.String(tracing.AttrLabelName, c.name),
			attribute.String(tracing.AttrCutoffRaw, raw),
		))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.raw == raw {
		c.lastErr = nil
		if c.phrases == p {
			span.AddEvent(tracing.EventUnchanged)
			return
		}
		c.phrases = p
		c.rerenderLocked()
		span.AddEvent(tracing.EventPhrasesSwap)
		return
	}

	cutoff, err := c.parser.Parse(raw)
	if err != nil {
		c.lastErr = err
		log.ErrorErr(log.CatParse, "rejected cut-off", err, "label", c.name, "input", raw)
		span.AddEvent(tracing.EventParseFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid cut-off")
		c.broker.Publish(pubsub.ErrorEvent, c.stateLocked())
		return
	}

	c.lastErr = nil
	c.phrases = p
	cancelled := 0
	if c.session != nil {
		cancelled = c.cancelPendingLocked(c.session)
	}

	c.session = &session{
		id:      uuid.NewString(),
		raw:     raw,
		cutoff:  cutoff,
		pending: make(map[*timerHandle]struct{}),
	}
	span.SetAttributes(
		attribute.String(tracing.AttrSessionID, c.session.id),
		attribute.Int64(tracing.AttrCutoffUnix, cutoff.UnixMilli()),
		attribute.Int(tracing.AttrCancelled, cancelled),
	)
	log.Info(log.CatLabel, "presented cut-off", "label", c.name, "session", c.session.id,
		"cutoff", cutoff.Format(time.RFC3339), "cancelled", cancelled)

	c.refreshLocked(ctx)
}

// Refresh recomputes the label from the current time and re-arms its timer.
// Does nothing before a cut-off has been accepted.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	c.refreshLocked(context.Background())
}

// SetThresholds changes the urgency thresholds and republishes the state.
func (c *Controller) SetThresholds(t Thresholds) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.thresholds == t {
		return
	}
	c.thresholds = t
	if c.session != nil {
		c.broker.Publish(pubsub.RefreshedEvent, c.stateLocked())
	}
}

// Dispose cancels all pending timers and forgets the cut-off. Safe to call
// more than once; a later Present starts afresh.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}

	_, span := c.tracer.Start(context.Background(), tracing.SpanDispose,
		trace.WithAttributes(
			attribute.String(tracing.AttrLabelID, c.id),
			attribute.String(tracing.AttrSessionID, c.session.id),
		))
	defer span.End()

	cancelled := c.cancelPendingLocked(c.session)
	span.SetAttributes(attribute.Int(tracing.AttrCancelled, cancelled))
	log.Info(log.CatLabel, "disposed", "label", c.name, "session", c.session.id, "cancelled", cancelled)

	c.session = nil
	c.broker.Publish(pubsub.DisposedEvent, c.stateLocked())
}

// Close disposes the controller and shuts its broker down.
func (c *Controller) Close() {
	c.Dispose()
	c.broker.Close()
}

// State returns the latest snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// LastError returns the error from the most recent rejected Present, cleared
// by the next accepted one.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Pending returns the number of outstanding timers (0 or 1).
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return 0
	}
	return len(c.session.pending)
}

func (c *Controller) refreshLocked(ctx context.Context) {
	s := c.session

	_, span := c.tracer.Start(ctx, tracing.SpanRefresh,
		trace.WithAttributes(
			attribute.String(tracing.AttrLabelID, c.id),
			attribute.String(tracing.AttrSessionID, s.id),
		))
	defer span.End()

	c.cancelPendingLocked(s)

	now := c.clock.Now()
	res := reltime.Compute(now, s.cutoff, c.phrases)
	s.result = res
	s.computedAt = now

	armed := res.AbsSeconds() < refreshCeilingSeconds
	if armed {
		c.armLocked(s, res.NextDelay)
	}

	state := c.stateLocked()
	span.SetAttributes(
		attribute.Int64(tracing.AttrDiffSecs, res.DiffSeconds),
		attribute.String(tracing.AttrUnit, res.Unit.String()),
		attribute.Int64(tracing.AttrMagnitude, res.Magnitude),
		attribute.String(tracing.AttrUrgency, string(state.Urgency)),
		attribute.Bool(tracing.AttrTimerArmed, armed),
		attribute.Int64(tracing.AttrDelayMs, res.NextDelayMs()),
	)
	log.Debug(log.CatLabel, "refreshed", "label", c.name, "text", res.Sentence(),
		"urgency", state.Urgency, "armed", armed)

	c.broker.Publish(pubsub.RefreshedEvent, state)
}

// rerenderLocked re-applies the phrases to the last computation without
// touching the timer.
func (c *Controller) rerenderLocked() {
	s := c.session
	next := reltime.Compute(s.computedAt, s.cutoff, c.phrases)
	s.result = next
	c.broker.Publish(pubsub.RefreshedEvent, c.stateLocked())
}

func (c *Controller) armLocked(s *session, d time.Duration) {
	h := &timerHandle{due: c.clock.Now().Add(d)}
	s.pending[h] = struct{}{}
	h.timer = c.clock.AfterFunc(d, func() { c.fire(s, h) })
	log.Debug(log.CatTimer, "armed", "label", c.name, "session", s.id, "delay", d)
}

// fire is the timer callback. It only acts while its session is current and
// its handle has not been cancelled.
func (c *Controller) fire(s *session, h *timerHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != s {
		log.Debug(log.CatTimer, "ignored timer from replaced session", "label", c.name, "session", s.id)
		return
	}
	if _, ok := s.pending[h]; !ok {
		log.Debug(log.CatTimer, "ignored cancelled timer", "label", c.name, "session", s.id)
		return
	}
	delete(s.pending, h)
	c.refreshLocked(context.Background())
}

func (c *Controller) cancelPendingLocked(s *session) int {
	n := 0
	for h := range s.pending {
		if h.timer != nil {
			h.timer.Stop()
		}
		delete(s.pending, h)
		n++
	}
	if n > 0 {
		log.Debug(log.CatTimer, "cancelled", "label", c.name, "session", s.id, "count", n)
	}
	return n
}

func (c *Controller) stateLocked() State {
	st := State{LabelID: c.id, Name: c.name}
	s := c.session
	if s == nil {
		return st
	}

	st.SessionID = s.id
	st.Raw = s.raw
	st.Cutoff = s.cutoff
	st.Result = s.result
	st.Urgency = Classify(s.result.DiffSeconds, c.thresholds)
	st.ComputedAt = s.computedAt
	for h := range s.pending {
		st.Armed = true
		st.NextRefresh = h.due
	}
	return st
}
