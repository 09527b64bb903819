package report

import (
	"testing"
	"time"

	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, mid-quarter, mid-month. Makes the keyword boundaries interesting.
var clock = time.Date(2025, time.May, 14, 15, 30, 45, 0, time.UTC)

func TestResolvePeriodKeywords(t *testing.T) {
	dayStart := time.Date(2025, time.May, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{"today", dayStart, clock},
		{"", dayStart, clock}, // defaults to today
		{"yesterday", dayStart.AddDate(0, 0, -1), dayStart.Add(-time.Nanosecond)},
		{"week", time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC), clock}, // Monday
		{"month", time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), clock},
		{"quarter", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), clock},
		{"year", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), clock},
	}

	for _, tt := range tests {
		t.Run("period "+tt.period, func(t *testing.T) {
			start, end, err := ResolvePeriod(tt.period, "", "", clock)
			require.NoError(t, err)
			assert.True(t, tt.start.Equal(start), "start: want %v got %v", tt.start, start)
			assert.True(t, tt.end.Equal(end), "end: want %v got %v", tt.end, end)
		})
	}
}

func TestResolvePeriodWeekStartsMonday(t *testing.T) {
	// A Sunday should reach back six days to the preceding Monday
	sunday := time.Date(2025, time.May, 18, 12, 0, 0, 0, time.UTC)
	start, _, err := ResolvePeriod("week", "", "", sunday)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 12, start.Day())
}

func TestResolvePeriodExplicitDatesWin(t *testing.T) {
	// Explicit dates override the keyword entirely
	start, end, err := ResolvePeriod("year", "2025-03-01", "2025-03-10", clock)
	require.NoError(t, err)
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 1, start.Day())
	// Bare end date stretches through end of day
	assert.Equal(t, 10, end.Day())
	assert.Equal(t, 23, end.Hour())
}

func TestResolvePeriodRFC3339(t *testing.T) {
	start, end, err := ResolvePeriod("", "2025-05-01T08:00:00Z", "2025-05-01T17:00:00Z", clock)
	require.NoError(t, err)
	assert.Equal(t, 8, start.Hour())
	assert.Equal(t, 17, end.Hour())
}

func TestResolvePeriodErrors(t *testing.T) {
	_, _, err := ResolvePeriod("fortnight", "", "", clock)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))

	_, _, err = ResolvePeriod("", "2025-05-10", "2025-05-01", clock)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))

	_, _, err = ResolvePeriod("", "not-a-date", "", clock)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))
}

func TestResolveBranchIDs(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	ids, err := ResolveBranchIDs("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = ResolveBranchIDs("all")
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = ResolveBranchIDs(a.String() + ", " + b.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = ResolveBranchIDs("not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))
}
