package timeframe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weblytics/internal/timeframe"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseInterval(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected timeframe.Interval
		wantErr  bool
	}{
		{name: "daily", input: "daily", expected: timeframe.IntervalDaily},
		{name: "weekly", input: "weekly", expected: timeframe.IntervalWeekly},
		{name: "monthly", input: "monthly", expected: timeframe.IntervalMonthly},
		{name: "empty defaults to daily", input: "", expected: timeframe.IntervalDaily},
		{name: "unknown is an error", input: "hourly", wantErr: true},
		{name: "case sensitive", input: "Daily", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := timeframe.ParseInterval(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, iv)
		})
	}
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	parsed, err := timeframe.ParseDate("20240229", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), parsed)

	_, err = timeframe.ParseDate("2024-02-29", loc)
	assert.Error(t, err)

	_, err = timeframe.ParseDate("20240230", loc)
	assert.Error(t, err)
}

func TestPlanDaily(t *testing.T) {
	buckets := timeframe.Plan(date(2024, 1, 1), date(2024, 1, 3), timeframe.IntervalDaily)

	require.Len(t, buckets, 3)
	assert.Equal(t, "20240101", buckets[0].Key)
	assert.Equal(t, "20240102", buckets[1].Key)
	assert.Equal(t, "20240103", buckets[2].Key)
	assert.Equal(t, date(2024, 1, 1), buckets[0].Start)
	assert.Equal(t, date(2024, 1, 2), buckets[0].End)
}

func TestPlanWeeklyNormalizesToMondaySunday(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-07 a Sunday: exactly one week.
	buckets := timeframe.Plan(date(2024, 1, 1), date(2024, 1, 7), timeframe.IntervalWeekly)

	require.Len(t, buckets, 1)
	assert.Equal(t, "20240101-20240107", buckets[0].Key)
	assert.Equal(t, date(2024, 1, 1), buckets[0].Start)
	assert.Equal(t, date(2024, 1, 8), buckets[0].End)
}

func TestPlanWeeklyExpandsPartialWeeks(t *testing.T) {
	// Wednesday to Tuesday spans two calendar weeks once normalized.
	buckets := timeframe.Plan(date(2024, 1, 3), date(2024, 1, 9), timeframe.IntervalWeekly)

	require.Len(t, buckets, 2)
	assert.Equal(t, "20240101-20240107", buckets[0].Key)
	assert.Equal(t, "20240108-20240114", buckets[1].Key)
}

func TestPlanMonthly(t *testing.T) {
	buckets := timeframe.Plan(date(2024, 1, 15), date(2024, 3, 2), timeframe.IntervalMonthly)

	require.Len(t, buckets, 3)
	assert.Equal(t, "202401", buckets[0].Key)
	assert.Equal(t, "202402", buckets[1].Key)
	assert.Equal(t, "202403", buckets[2].Key)

	// February 2024 is a leap month: 29 days.
	assert.Equal(t, date(2024, 2, 1), buckets[1].Start)
	assert.Equal(t, date(2024, 3, 1), buckets[1].End)
	assert.Equal(t, date(2024, 4, 1), buckets[2].End)
}

func TestPlanIsContiguousAndOrdered(t *testing.T) {
	testCases := []struct {
		name     string
		start    time.Time
		end      time.Time
		interval timeframe.Interval
	}{
		{"daily across month boundary", date(2024, 1, 28), date(2024, 2, 3), timeframe.IntervalDaily},
		{"weekly across year boundary", date(2023, 12, 20), date(2024, 1, 10), timeframe.IntervalWeekly},
		{"monthly across leap february", date(2023, 11, 3), date(2024, 4, 20), timeframe.IntervalMonthly},
		{"single day", date(2024, 6, 1), date(2024, 6, 1), timeframe.IntervalDaily},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buckets := timeframe.Plan(tc.start, tc.end, tc.interval)
			require.NotEmpty(t, buckets)

			for i := 1; i < len(buckets); i++ {
				assert.Equal(t, buckets[i-1].End, buckets[i].Start, "buckets must be gapless")
				assert.True(t, buckets[i-1].Start.Before(buckets[i].Start), "buckets must be ordered")
			}

			normStart, normEnd := tc.interval.Normalize(tc.start, tc.end)
			assert.Equal(t, normStart, buckets[0].Start)
			assert.Equal(t, normEnd.AddDate(0, 0, 1), buckets[len(buckets)-1].End)
		})
	}
}

func TestBucketUpperBoundIsExclusive(t *testing.T) {
	buckets := timeframe.Plan(date(2024, 1, 1), date(2024, 1, 2), timeframe.IntervalDaily)
	require.Len(t, buckets, 2)

	boundary := date(2024, 1, 2)
	assert.False(t, buckets[0].Contains(boundary))
	assert.True(t, buckets[1].Contains(boundary))
	assert.True(t, buckets[0].Contains(boundary.Add(-time.Nanosecond)))
}

func TestPlanEmptyRange(t *testing.T) {
	buckets := timeframe.Plan(date(2024, 1, 5), date(2024, 1, 2), timeframe.IntervalDaily)
	assert.Empty(t, buckets)
}

func TestAdvanceMonthlyHandlesShortMonths(t *testing.T) {
	assert.Equal(t, date(2024, 2, 1), timeframe.IntervalMonthly.Advance(date(2024, 1, 1)))
	assert.Equal(t, date(2024, 3, 1), timeframe.IntervalMonthly.Advance(date(2024, 2, 1)))
	assert.Equal(t, date(2023, 3, 1), timeframe.IntervalMonthly.Advance(date(2023, 2, 1)))
	assert.Equal(t, date(2025, 1, 1), timeframe.IntervalMonthly.Advance(date(2024, 12, 1)))
}
