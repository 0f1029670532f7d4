// Package dateexpr turns short due-date expressions into calendar dates.
//
// A token is either a slash command ("/tomorrow", "/in-3-weeks", "/2025-01-31")
// or a bare ISO date ("2025-01-31"). Dates carry no time component and are
// represented as midnight UTC.
package dateexpr

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the ISO calendar date layout used for parsing and display.
const Layout = "2006-01-02"

// Dates are limited to years 1 through 9999, the range Layout can round-trip.
const (
	minYear = 1
	maxYear = 9999
)

var offsetPattern = regexp.MustCompile(`^in-(\d+)-(days|weeks|months|years)$`)

// offsetLimit bounds N per unit. Anything larger leaves the supported year
// range from any starting date, and would overflow int once multiplied.
var offsetLimit = map[string]int{
	"days":   maxYear * 366,
	"weeks":  maxYear * 366 / 7,
	"months": maxYear * 12,
	"years":  maxYear,
}

// Date returns the calendar date of t as midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a date as YYYY-MM-DD.
func Format(d time.Time) string {
	return d.Format(Layout)
}

// Parse converts a single token into a date relative to today. The second
// return value is false when the token is not a recognized expression.
//
// An unknown slash command is not retried as a plain ISO date: "/foo" never
// matches, while "/2025-03-01" does. Results outside years 1 through 9999 do
// not match either.
func Parse(token string, today time.Time) (time.Time, bool) {
	d, ok := parse(token, today)
	if !ok || d.Year() < minYear || d.Year() > maxYear {
		return time.Time{}, false
	}
	return d, true
}

func parse(token string, today time.Time) (time.Time, bool) {
	t := strings.TrimSpace(token)
	today = Date(today)

	cmd, ok := strings.CutPrefix(t, "/")
	if !ok {
		return parseISO(t)
	}

	switch low := strings.ToLower(cmd); low {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	case "next-week":
		return today.AddDate(0, 0, 7), true
	case "next-month":
		return AddMonths(today, 1), true
	case "next-year":
		return AddMonths(today, 12), true
	case "this-month":
		return time.Date(today.Year(), today.Month(), DaysIn(today.Year(), today.Month()), 0, 0, 0, 0, time.UTC), true
	case "this-year":
		return time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC), true
	default:
		if m := offsetPattern.FindStringSubmatch(low); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n > offsetLimit[m[2]] {
				return time.Time{}, false
			}
			return offset(today, n, m[2]), true
		}
	}
	return parseISO(cmd)
}

// ExtractTitleAndDue pulls a due date out of free text. Only the first token
// and then the last token are tried; the one that parses is dropped from the
// title. When neither parses the whole (trimmed) text is the title.
func ExtractTitleAndDue(text string, today time.Time) (string, time.Time, bool) {
	text = strings.TrimSpace(text)
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return "", time.Time{}, false
	}

	if due, ok := Parse(tokens[0], today); ok {
		return strings.Join(tokens[1:], " "), due, true
	}
	last := len(tokens) - 1
	if due, ok := Parse(tokens[last], today); ok {
		return strings.Join(tokens[:last], " "), due, true
	}
	return text, time.Time{}, false
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves d forward by n calendar months, clamping the day to the
// last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(d time.Time, n int) time.Time {
	total := int(d.Month()) - 1 + n
	year := d.Year() + total/12
	month := time.Month(total%12 + 1)
	day := min(d.Day(), DaysIn(year, month))
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func offset(today time.Time, n int, unit string) time.Time {
	switch unit {
	case "days":
		return today.AddDate(0, 0, n)
	case "weeks":
		return today.AddDate(0, 0, 7*n)
	case "months":
		return AddMonths(today, n)
	default:
		return AddMonths(today, 12*n)
	}
}

func parseISO(s string) (time.Time, bool) {
	d, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
