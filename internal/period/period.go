// Package period models the reporting periods the feeds are published
// in: whole past years (YYYY) and months of the current year (YYYYMM).
package period

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Period is a validated period token. Both forms are zero padded, so
// plain string ordering matches chronological ordering.
type Period string

// Error reports an invalid or unavailable period.
type Error struct {
	Value  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid period %q: %s", e.Value, e.Reason)
}

// Parse validates a raw period token against the clock. Bare years must
// lie strictly in the past; monthly tokens must belong to the current
// year and not point past the current month.
func Parse(s string, now time.Time) (Period, error) {
	if !allDigits(s) {
		return "", &Error{Value: s, Reason: "must be YYYY or YYYYMM"}
	}
	switch len(s) {
	case 4:
		year, _ := strconv.Atoi(s)
		if year >= now.Year() {
			return "", &Error{Value: s, Reason: fmt.Sprintf("yearly periods must be before %d; use YYYYMM for the current year", now.Year())}
		}
		return Period(s), nil
	case 6:
		year, _ := strconv.Atoi(s[:4])
		month, _ := strconv.Atoi(s[4:])
		if month < 1 || month > 12 {
			return "", &Error{Value: s, Reason: "month must be 01..12"}
		}
		if year != now.Year() {
			return "", &Error{Value: s, Reason: fmt.Sprintf("monthly periods are only published for the current year (%d); use YYYY for past years", now.Year())}
		}
		if time.Month(month) > now.Month() {
			return "", &Error{Value: s, Reason: "month is in the future"}
		}
		return Period(s), nil
	default:
		return "", &Error{Value: s, Reason: "must be YYYY or YYYYMM"}
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p Period) String() string { return string(p) }

// Year returns the calendar year of the period.
func (p Period) Year() int {
	y, _ := strconv.Atoi(string(p)[:4])
	return y
}

// Month returns the month for monthly periods; ok is false for bare years.
func (p Period) Month() (time.Month, bool) {
	if len(p) != 6 {
		return 0, false
	}
	m, _ := strconv.Atoi(string(p)[4:])
	return time.Month(m), true
}

// Filter narrows the available periods to the inclusive [start, end]
// range. Empty bounds are open. A non-empty bound that is not itself an
// available period is rejected with the available set in the message, so
// typos surface instead of silently selecting nothing.
func Filter(available []Period, start, end string) ([]Period, error) {
	if start != "" && !contains(available, Period(start)) {
		return nil, &Error{Value: start, Reason: fmt.Sprintf("not available; published periods: %v", available)}
	}
	if end != "" && !contains(available, Period(end)) {
		return nil, &Error{Value: end, Reason: fmt.Sprintf("not available; published periods: %v", available)}
	}
	var out []Period
	for _, p := range available {
		if start != "" && string(p) < start {
			continue
		}
		if end != "" && string(p) > end {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func contains(ps []Period, p Period) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
