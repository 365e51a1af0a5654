package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func TestRRuleEvaluator_Between(t *testing.T) {
	ev := NewRRuleEvaluator()

	anchor := time.Date(2025, 6, 4, 19, 0, 0, 0, time.UTC)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name     string
		rule     string
		expected []string
	}{
		{
			name:     "weekly on wednesday",
			rule:     "FREQ=WEEKLY;BYDAY=WE",
			expected: []string{"2025-06-04", "2025-06-11", "2025-06-18", "2025-06-25"},
		},
		{
			name:     "rrule prefix is accepted",
			rule:     "RRULE:FREQ=WEEKLY;BYDAY=WE;COUNT=2",
			expected: []string{"2025-06-04", "2025-06-11"},
		},
		{
			name:     "interval",
			rule:     "FREQ=DAILY;INTERVAL=10",
			expected: []string{"2025-06-04", "2025-06-14", "2025-06-24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated, err := ev.Between(tt.rule, anchor, from, until, 0)
			require.NoError(t, err)
			assert.False(t, truncated)

			dates := make([]string, 0, len(got))
			for _, g := range got {
				assert.Equal(t, 19, g.Hour())
				dates = append(dates, g.Format("2006-01-02"))
			}
			assert.Equal(t, tt.expected, dates)
		})
	}
}

func TestRRuleEvaluator_UnboundedRuleStopsAtUntil(t *testing.T) {
	ev := NewRRuleEvaluator()

	anchor := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 3, 23, 59, 59, 0, time.UTC)

	got, _, err := ev.Between("FREQ=DAILY", anchor, from, until, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), got[2])
}

func TestRRuleEvaluator_InvalidRules(t *testing.T) {
	ev := NewRRuleEvaluator()
	anchor := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	_, _, err := ev.Between("INVALID_RULE", anchor, anchor, anchor.AddDate(0, 1, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidRule)

	assert.ErrorIs(t, ev.Check("", anchor), ErrEmptyRule)
	assert.ErrorIs(t, ev.Check("FREQ=SOMETIMES", anchor), ErrInvalidRule)
	assert.NoError(t, ev.Check("FREQ=MONTHLY;BYMONTHDAY=1", anchor))
}

func TestRRuleEvaluator_ReversedRange(t *testing.T) {
	ev := NewRRuleEvaluator()
	anchor := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	got, _, err := ev.Between("FREQ=DAILY", anchor, anchor.AddDate(0, 0, 5), anchor, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRRuleEvaluator_LimitStopsEnumeration(t *testing.T) {
	ev := NewRRuleEvaluator()

	anchor := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)

	start := time.Now()
	got, truncated, err := ev.Between("FREQ=SECONDLY", anchor, from, until, 10)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, truncated)
	require.Len(t, got, 10)
	assert.Equal(t, from, got[0])
	assert.Equal(t, from.Add(9*time.Second), got[9])
	assert.Less(t, elapsed, 500*time.Millisecond)

	got, truncated, err = ev.Between("FREQ=DAILY;COUNT=3", from, from, until, 3)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Len(t, got, 3)
}

func TestFastForward_KeepsRuleGrid(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name   string
		rule   string
		anchor time.Time
		from   time.Time
	}{
		{
			name:   "hourly interval",
			rule:   "FREQ=HOURLY;INTERVAL=5",
			anchor: time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC),
			from:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "minutely across dst",
			rule:   "FREQ=MINUTELY;INTERVAL=7;BYHOUR=9,10",
			anchor: time.Date(2025, 1, 1, 9, 0, 0, 0, ny),
			from:   time.Date(2025, 3, 15, 0, 0, 0, 0, ny),
		},
		{
			name:   "count is not moved",
			rule:   "FREQ=HOURLY;COUNT=3000",
			anchor: time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC),
			from:   time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	ev := NewRRuleEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			until := tt.from.AddDate(0, 0, 3)

			opt, err := rrule.StrToROptionInLocation(tt.rule, tt.anchor.Location())
			require.NoError(t, err)
			opt.Dtstart = tt.anchor
			full, err := rrule.NewRRule(*opt)
			require.NoError(t, err)
			expected := full.Between(tt.from, until, true)
			require.NotEmpty(t, expected)

			got, truncated, err := ev.Between(tt.rule, tt.anchor, tt.from, until, 0)
			require.NoError(t, err)
			assert.False(t, truncated)
			assert.Equal(t, expected, got)
		})
	}
}
