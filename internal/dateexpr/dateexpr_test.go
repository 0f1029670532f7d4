package dateexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_Vocabulary(t *testing.T) {
	today := day(2025, time.March, 14)

	tests := []struct {
		token string
		want  time.Time
	}{
		{"/today", today},
		{"/tomorrow", day(2025, time.March, 15)},
		{"/yesterday", day(2025, time.March, 13)},
		{"/next-week", day(2025, time.March, 21)},
		{"/next-month", day(2025, time.April, 14)},
		{"/next-year", day(2026, time.March, 14)},
		{"/this-month", day(2025, time.March, 31)},
		{"/this-year", day(2025, time.December, 31)},
		{"/TOMORROW", day(2025, time.March, 15)},
		{"/Next-Week", day(2025, time.March, 21)},
		{"/in-0-days", today},
		{"/in-1-days", day(2025, time.March, 15)},
		{"/in-30-days", day(2025, time.April, 13)},
		{"/in-0-weeks", today},
		{"/in-1-weeks", day(2025, time.March, 21)},
		{"/in-30-weeks", day(2025, time.October, 10)},
		{"/in-0-months", today},
		{"/in-1-months", day(2025, time.April, 14)},
		{"/in-30-months", day(2027, time.September, 14)},
		{"/in-0-years", today},
		{"/in-1-years", day(2026, time.March, 14)},
		{"/in-30-years", day(2055, time.March, 14)},
		{"/2025-12-01", day(2025, time.December, 1)},
		{"2024-02-29", day(2024, time.February, 29)},
		{"  /today  ", today},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := Parse(tt.token, today)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unrecognized(t *testing.T) {
	today := day(2025, time.March, 14)

	for _, token := range []string{
		"",
		"/",
		"/someday",
		"/in-x-days",
		"/in--1-days",
		"/in-3-fortnights",
		"tomorrow",
		"milk",
		"2025-02-30",
		"2025-2-3",
		"/2025-13-01",
		"12345",
		"0000-01-01",
		"/in-8000-years",
		"/in-96000-months",
		"/in-768614336404564652-years",
		"/in-9223372036854775807-days",
		"/in-99999999999999999999-weeks",
	} {
		t.Run(token, func(t *testing.T) {
			_, ok := Parse(token, today)
			assert.False(t, ok)
		})
	}
}

func TestParse_YearRange(t *testing.T) {
	got, ok := Parse("/in-7974-years", day(2025, time.March, 14))
	require.True(t, ok)
	assert.Equal(t, day(9999, time.March, 14), got)

	_, ok = Parse("/next-year", day(9999, time.June, 1))
	assert.False(t, ok)

	_, ok = Parse("/tomorrow", day(9999, time.December, 31))
	assert.False(t, ok)

	_, ok = Parse("/yesterday", day(1, time.January, 1))
	assert.False(t, ok)

	got, ok = Parse("/this-year", day(9999, time.June, 1))
	require.True(t, ok)
	assert.Equal(t, day(9999, time.December, 31), got)
}

func TestExtractTitleAndDue_OutOfRangeStaysInTitle(t *testing.T) {
	title, _, ok := ExtractTitleAndDue("far away /in-8000-years", day(2025, time.March, 14))
	assert.False(t, ok)
	assert.Equal(t, "far away /in-8000-years", title)
}

func TestParse_ISOMatchesTimeParse(t *testing.T) {
	today := day(2025, time.March, 14)
	for _, s := range []string{"1999-12-31", "2000-02-29", "2025-01-01", "2100-06-15"} {
		want, err := time.Parse(Layout, s)
		require.NoError(t, err)

		got, ok := Parse(s, today)
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, s, Format(got))
	}
}

func TestParse_MonthEndClamping(t *testing.T) {
	tests := []struct {
		name  string
		token string
		today time.Time
		want  time.Time
	}{
		{"next-month from jan 31", "/next-month", day(2025, time.January, 31), day(2025, time.February, 28)},
		{"next-month from jan 31 leap", "/next-month", day(2024, time.January, 31), day(2024, time.February, 29)},
		{"next-month from dec", "/next-month", day(2024, time.December, 15), day(2025, time.January, 15)},
		{"in-1-months from mar 31", "/in-1-months", day(2025, time.March, 31), day(2025, time.April, 30)},
		{"in-13-months from jan 31", "/in-13-months", day(2024, time.January, 31), day(2025, time.February, 28)},
		{"in-1-years from leap day", "/in-1-years", day(2024, time.February, 29), day(2025, time.February, 28)},
		{"in-4-years from leap day", "/in-4-years", day(2024, time.February, 29), day(2028, time.February, 29)},
		{"next-year from leap day", "/next-year", day(2024, time.February, 29), day(2025, time.February, 28)},
		{"this-month in leap feb", "/this-month", day(2024, time.February, 3), day(2024, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.token, tt.today)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_IgnoresClockTime(t *testing.T) {
	now := time.Date(2025, time.March, 14, 23, 59, 0, 0, time.Local)
	got, ok := Parse("/tomorrow", now)
	require.True(t, ok)
	assert.Equal(t, day(2025, time.March, 15), got)
}

func TestExtractTitleAndDue(t *testing.T) {
	today := day(2025, time.March, 14)
	tomorrow := day(2025, time.March, 15)

	tests := []struct {
		name      string
		text      string
		wantTitle string
		wantDue   time.Time
		wantOK    bool
	}{
		{"trailing command", "buy milk /tomorrow", "buy milk", tomorrow, true},
		{"leading command", "/tomorrow buy milk", "buy milk", tomorrow, true},
		{"no date", "buy milk", "buy milk", time.Time{}, false},
		{"trailing iso", "file taxes 2025-04-15", "file taxes", day(2025, time.April, 15), true},
		{"first wins over last", "/today call mom /tomorrow", "call mom /tomorrow", today, true},
		{"middle token ignored", "buy /tomorrow milk", "buy /tomorrow milk", time.Time{}, false},
		{"unknown command kept", "read /later", "read /later", time.Time{}, false},
		{"only a date", "/tomorrow", "", tomorrow, true},
		{"surrounding space", "  write report  ", "write report", time.Time{}, false},
		{"empty", "   ", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, due, ok := ExtractTitleAndDue(tt.text, today)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDue, due)
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
	assert.Equal(t, 30, DaysIn(2025, time.April))
}
