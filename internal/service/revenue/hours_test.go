package revenue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

func clock(s string) *string { return &s }

func TestParseClock(t *testing.T) {
	secs, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*3600+30*60, secs)

	secs, err = ParseClock("23:59:59")
	require.NoError(t, err)
	assert.Equal(t, 86399, secs)

	for _, bad := range []string{"", "9:30", "24:00", "12:60", "12:00:60", "ab:cd", "12:00:00:00"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}

	normalized, err := NormalizeClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05:00", normalized)
}

func TestIsOpenAt(t *testing.T) {
	at := func(hms string) time.Time {
		ts, err := time.Parse("2006-01-02 15:04:05", "2024-03-04 "+hms)
		require.NoError(t, err)
		return ts
	}

	t.Run("白天时段含边界", func(t *testing.T) {
		h := &models.BusinessHours{OpenTime: clock("09:00"), CloseTime: clock("17:00:00")}
		assert.False(t, IsOpenAt(h, at("08:59:59")))
		assert.True(t, IsOpenAt(h, at("09:00:00")))
		assert.True(t, IsOpenAt(h, at("12:00:00")))
		assert.True(t, IsOpenAt(h, at("17:00:00")))
		assert.False(t, IsOpenAt(h, at("17:00:01")))
	})

	t.Run("跨午夜时段", func(t *testing.T) {
		h := &models.BusinessHours{DayOfWeek: 1, OpenTime: clock("22:00"), CloseTime: clock("02:00")}
		assert.True(t, IsOpenAt(h, at("23:00:00")))
		assert.True(t, IsOpenAt(h, at("01:00:00")))
		assert.True(t, IsOpenAt(h, at("22:00:00")))
		assert.True(t, IsOpenAt(h, at("02:00:00")))
		assert.False(t, IsOpenAt(h, at("02:00:01")))
		assert.False(t, IsOpenAt(h, at("12:00:00")))
	})

	t.Run("休息日", func(t *testing.T) {
		assert.False(t, IsOpenAt(nil, at("12:00:00")))
		assert.False(t, IsOpenAt(&models.BusinessHours{IsClosed: true, OpenTime: clock("00:00"), CloseTime: clock("23:59")}, at("12:00:00")))
		assert.False(t, IsOpenAt(&models.BusinessHours{OpenTime: clock("09:00")}, at("12:00:00")))
		assert.False(t, IsOpenAt(&models.BusinessHours{CloseTime: clock("18:00")}, at("12:00:00")))
	})
}
