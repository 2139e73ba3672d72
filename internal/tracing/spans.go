package tracing

// Span names.
const (
	SpanPresent = "label.present"
	SpanRefresh = "label.refresh"
	SpanDispose = "label.dispose"
)

// Span attribute keys.
const (
	AttrLabelID    = "label.id"
	AttrLabelName  = "label.name"
	AttrSessionID  = "session.id"
	AttrCutoffRaw  = "cutoff.raw"
	AttrCutoffUnix = "cutoff.unix_ms"
	AttrDiffSecs   = "result.diff_seconds"
	AttrUnit       = "result.unit"
	AttrMagnitude  = "result.magnitude"
	AttrUrgency    = "result.urgency"
	AttrTimerArmed = "timer.armed"
	AttrDelayMs    = "timer.delay_ms"
	AttrCancelled  = "timer.cancelled"
)

// Span event names.
const (
	EventParseFailed = "cutoff.parse_failed"
	EventUnchanged   = "cutoff.unchanged"
	EventPhrasesSwap = "phrases.updated"
	EventStaleTimer  = "timer.stale"
)
