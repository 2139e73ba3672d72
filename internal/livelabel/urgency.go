package livelabel

// Urgency classifies a label for styling.
type Urgency string

const (
	UrgencyNormal  Urgency = "normal"
	UrgencyNotice  Urgency = "notice"
	UrgencyWarning Urgency = "warning"
	UrgencyExpired Urgency = "expired"
)

// Disabled turns a threshold off.
const Disabled int64 = -1

// Thresholds are seconds-before-cut-off at which a label escalates.
// Non-positive values disable a level.
type Thresholds struct {
	WarnAt   int64 `mapstructure:"warn_at" yaml:"warn_at"`
	NoticeAt int64 `mapstructure:"notice_at" yaml:"notice_at"`
}

// DefaultThresholds disables both levels.
func DefaultThresholds() Thresholds {
	return Thresholds{WarnAt: Disabled, NoticeAt: Disabled}
}

// Classify maps a signed gap (cut-off minus now) to an Urgency. Warning is
// checked before notice, so it wins when both apply.
func Classify(diffSeconds int64, t Thresholds) Urgency {
	switch {
	case diffSeconds < 0:
		return UrgencyExpired
	case t.WarnAt > 0 && diffSeconds <= t.WarnAt:
		return UrgencyWarning
	case t.NoticeAt > 0 && diffSeconds <= t.NoticeAt:
		return UrgencyNotice
	default:
		return UrgencyNormal
	}
}
