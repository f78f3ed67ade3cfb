package services_test

import (
	"testing"
	"time"

	"droptrack/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestMostRecentWeekStart(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  time.Time
	}{
		{
			name:  "wednesday maps to itself",
			today: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), // Wednesday
			want:  time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "thursday maps to the day before",
			today: time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "tuesday maps six days back",
			today: time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "time of day is discarded",
			today: time.Date(2024, 6, 7, 23, 59, 59, 0, time.UTC), // Friday night
			want:  time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "wednesday with time of day still maps to same date",
			today: time.Date(2024, 6, 5, 18, 30, 0, 0, time.UTC),
			want:  time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.MostRecentWeekStart(tt.today)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

// Sweep a year of dates and check the calculator's contract on each.
func TestMostRecentWeekStartProperties(t *testing.T) {
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		start := services.MostRecentWeekStart(day)

		assert.Equal(t, time.Wednesday, start.Weekday(), "day %v", day)
		assert.False(t, start.After(day), "start %v after %v", start, day)
		assert.Less(t, day.Sub(start), 7*24*time.Hour, "start %v more than 6 days before %v", start, day)
		assert.Equal(t, 0, start.Hour())
		assert.Equal(t, 0, start.Minute())

		prev := services.PreviousWeekStart(start)
		assert.True(t, prev.Equal(start.AddDate(0, 0, -7)))
		assert.Equal(t, time.Wednesday, prev.Weekday())

		day = day.AddDate(0, 0, 1)
	}
}

func TestNormalizeWeekStart(t *testing.T) {
	in := time.Date(2024, 6, 5, 15, 4, 5, 123, time.UTC)
	got := services.NormalizeWeekStart(in)
	assert.True(t, got.Equal(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)))
}

func TestParseWeekStart(t *testing.T) {
	got, err := services.ParseWeekStart("2024-06-05")
	assert.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)))

	_, err = services.ParseWeekStart("06/05/2024")
	assert.Error(t, err)

	_, err = services.ParseWeekStart("")
	assert.Error(t, err)
}
