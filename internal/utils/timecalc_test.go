package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"08:30": 510,
		"23:59": 1439,
		"07:05": 425,
	}
	for in, want := range cases {
		got, err := ToMinutes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestToMinutes_Invalid(t *testing.T) {
	for _, in := range []string{"", "0800", "24:00", "12:60", "ab:cd", "12:00:00", ":30", "-1:10", "+8:+5", "008:00", "7:5", "7:05", "08:5", "08:+5", "08：00", " 08:00"} {
		_, err := ToMinutes(in)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, in)
	}
}

func TestDurationMinutes_SameDay(t *testing.T) {
	d, err := DurationMinutes("08:00", "17:00")
	require.NoError(t, err)
	assert.Equal(t, 540, d)
}

func TestDurationMinutes_Overnight(t *testing.T) {
	// 对于 end <= start 的所有组合，时长都应为 (1440 - start) + end
	for s := 0; s < MinutesPerDay; s += 37 {
		for e := 0; e <= s; e += 53 {
			start := fmt.Sprintf("%02d:%02d", s/60, s%60)
			end := fmt.Sprintf("%02d:%02d", e/60, e%60)

			d, err := DurationMinutes(start, end)
			require.NoError(t, err)
			assert.Equal(t, (MinutesPerDay-s)+e, d, "%s-%s", start, end)
		}
	}
}

func TestDurationMinutes_EqualMeansFullDay(t *testing.T) {
	d, err := DurationMinutes("09:00", "09:00")
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, d)
}

func TestHours(t *testing.T) {
	h, err := Hours("08:00", "17:00")
	require.NoError(t, err)
	assert.Equal(t, 9.0, h)

	h, err = Hours("22:00", "06:00")
	require.NoError(t, err)
	assert.Equal(t, 8.0, h)

	h, err = Hours("08:00", "08:20")
	require.NoError(t, err)
	assert.Equal(t, 0.33, h)

	h, err = Hours("08:00", "10:25")
	require.NoError(t, err)
	assert.Equal(t, 2.42, h)
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 2.5, RoundHours(2.496))
	assert.Equal(t, 2.49, RoundHours(2.494))
}

func TestHours_InvalidInput(t *testing.T) {
	_, err := Hours("8 Uhr", "17:00")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}
