package livelabel

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClassify(t *testing.T) {
	th := Thresholds{WarnAt: 3600, NoticeAt: 7200}

	tests := []struct {
		name string
		diff int64
		th   Thresholds
		want Urgency
	}{
		{"past", -1, th, UrgencyExpired},
		{"past with thresholds off", -100, DefaultThresholds(), UrgencyExpired},
		{"inside both picks warning", 1800, th, UrgencyWarning},
		{"warn boundary inclusive", 3600, th, UrgencyWarning},
		{"notice only", 3601, th, UrgencyNotice},
		{"notice boundary inclusive", 7200, th, UrgencyNotice},
		{"beyond both", 7201, th, UrgencyNormal},
		{"zero gap is not expired", 0, th, UrgencyWarning},
		{"disabled thresholds", 10, DefaultThresholds(), UrgencyNormal},
		{"zero threshold disables", 10, Thresholds{WarnAt: 0, NoticeAt: 0}, UrgencyNormal},
		{"notice larger than warn only", 10, Thresholds{WarnAt: Disabled, NoticeAt: 60}, UrgencyNotice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.diff, tt.th))
		})
	}
}

func TestProperty_ClassifyExpiredIffPast(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		diff := rapid.Int64Range(-1_000_000, 1_000_000).Draw(t, "diff")
		th := Thresholds{
			WarnAt:   rapid.Int64Range(-1, 100_000).Draw(t, "warn"),
			NoticeAt: rapid.Int64Range(-1, 100_000).Draw(t, "notice"),
		}

		got := Classify(diff, th)
		require.Equal(t, diff < 0, got == UrgencyExpired)
		if th.WarnAt > 0 && diff >= 0 && diff <= th.WarnAt {
			require.Equal(t, UrgencyWarning, got)
		}
	})
}
