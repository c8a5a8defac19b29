package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", want: 1440},
		{in: "24:01", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "09-30", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "24:00", FormatClock(1440))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2030-02-28", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	_, err = ParseDate("2030-02-30", time.UTC)
	assert.Error(t, err)
	_, err = ParseDate("28/02/2030", time.UTC)
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)
	now := time.Date(2030, 1, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2030-01-01", Today(now, loc))
	assert.Equal(t, "2030-01-02", Today(now, nil))
}

func TestRangesOverlap(t *testing.T) {
	assert.True(t, RangesOverlap(600, 660, 630, 690))
	assert.True(t, RangesOverlap(600, 720, 630, 660))
	assert.False(t, RangesOverlap(600, 660, 660, 720))
	assert.False(t, RangesOverlap(660, 720, 600, 660))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2030, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2030, 1, 3, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysBetween(a, b))
}
