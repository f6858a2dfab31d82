package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(t *testing.T, raw string) Clock {
	t.Helper()
	c, err := ParseClock(raw)
	require.NoError(t, err)
	return c
}

func rng(t *testing.T, start, end string) Range {
	t.Helper()
	return New(clock(t, start), clock(t, end))
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, c.Minutes())

	c, err = ParseClock("12:37:45")
	require.NoError(t, err)
	assert.Equal(t, "12:37", c.String())

	c, err = ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, EndOfDay, c)

	for _, bad := range []string{"", "9", "25:00", "24:01", "10:60", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockAsEnd(t *testing.T) {
	assert.Equal(t, EndOfDay, clock(t, "00:00").AsEnd())
	assert.Equal(t, "02:00", clock(t, "02:00").AsEnd().String())
	assert.False(t, New(clock(t, "21:00"), clock(t, "02:00").AsEnd()).Valid())
	assert.True(t, New(clock(t, "21:00"), clock(t, "00:00").AsEnd()).Valid())
}

func TestClockOnDate(t *testing.T) {
	loc := time.FixedZone("AST", 3*3600)
	day := time.Date(2025, 3, 4, 17, 45, 0, 0, loc)

	assert.Equal(t, time.Date(2025, 3, 4, 9, 15, 0, 0, loc), clock(t, "09:15").On(day))
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, loc), EndOfDay.On(day))
	assert.Equal(t, clock(t, "17:45"), ClockOf(day))
}

func TestClockJSON(t *testing.T) {
	raw, err := clock(t, "08:05").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"08:05"`, string(raw))

	var c Clock
	require.NoError(t, c.UnmarshalJSON([]byte(`"13:22"`)))
	assert.Equal(t, 13*60+22, c.Minutes())
	assert.Error(t, c.UnmarshalJSON([]byte(`1322`)))
}

func TestDateWithin(t *testing.T) {
	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)

	assert.True(t, DateWithin(time.Date(2025, 1, 10, 23, 0, 0, 0, time.UTC), from, to))
	assert.True(t, DateWithin(time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), from, to))
	assert.False(t, DateWithin(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), from, to))
	assert.False(t, DateWithin(time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), from, to))
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := rng(t, "09:00", "10:00")
	assert.True(t, a.Overlaps(rng(t, "09:59", "10:30")))
	assert.False(t, a.Overlaps(rng(t, "10:00", "10:30")))
	assert.False(t, a.Overlaps(rng(t, "08:00", "09:00")))
	assert.True(t, a.Overlaps(rng(t, "08:00", "12:00")))
}

func TestExpandClipsToDay(t *testing.T) {
	assert.Equal(t, rng(t, "00:00", "01:15"), rng(t, "00:10", "01:00").Expand(30, 15))
	assert.Equal(t, rng(t, "22:50", "24:00"), rng(t, "23:00", "23:50").Expand(10, 20))
}

func TestFirstOverlap(t *testing.T) {
	_, _, found := FirstOverlap([]Range{rng(t, "15:00", "19:00"), rng(t, "09:00", "13:00")})
	assert.False(t, found)

	a, b, found := FirstOverlap([]Range{rng(t, "12:00", "16:00"), rng(t, "09:00", "13:00")})
	require.True(t, found)
	assert.Equal(t, rng(t, "09:00", "13:00"), a)
	assert.Equal(t, rng(t, "12:00", "16:00"), b)
}

func TestMerge(t *testing.T) {
	merged := Merge([]Range{
		rng(t, "13:00", "14:00"),
		rng(t, "09:00", "10:00"),
		rng(t, "09:30", "11:00"),
		rng(t, "11:00", "11:30"),
		rng(t, "12:00", "12:00"),
	})
	assert.Equal(t, []Range{rng(t, "09:00", "11:30"), rng(t, "13:00", "14:00")}, merged)
}

func TestSubtract(t *testing.T) {
	base := []Range{rng(t, "09:00", "13:00"), rng(t, "15:00", "19:00")}
	cuts := []Range{
		rng(t, "12:22", "13:22"),
		rng(t, "15:30", "16:00"),
		rng(t, "15:45", "16:30"),
		rng(t, "18:30", "20:00"),
	}

	free := Subtract(base, cuts)

	assert.Equal(t, []Range{
		rng(t, "09:00", "12:22"),
		rng(t, "15:00", "15:30"),
		rng(t, "16:30", "18:30"),
	}, free)
}

func TestSubtractEverything(t *testing.T) {
	base := []Range{rng(t, "09:00", "10:00")}
	assert.Empty(t, Subtract(base, []Range{rng(t, "08:00", "11:00")}))
	assert.Equal(t, base, Subtract(base, nil))
}

func TestContainedIn(t *testing.T) {
	free := []Range{rng(t, "09:00", "12:22"), rng(t, "15:00", "19:00")}
	assert.True(t, ContainedIn(rng(t, "11:00", "12:00"), free))
	assert.False(t, ContainedIn(rng(t, "12:00", "13:00"), free))
	assert.True(t, ContainedIn(rng(t, "18:00", "19:00"), free))
}

func TestClockScanAndValue(t *testing.T) {
	var c Clock
	require.NoError(t, c.Scan([]byte("13:22:00")))
	assert.Equal(t, "13:22", c.String())
	require.NoError(t, c.Scan(int64(90)))
	assert.Equal(t, "01:30", c.String())
	assert.Error(t, c.Scan(3.5))

	v, err := EndOfDay.Value()
	require.NoError(t, err)
	assert.Equal(t, "24:00:00", v)
}
