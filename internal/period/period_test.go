package period

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestParseAccepts(t *testing.T) {
	for _, s := range []string{"2018", "2023", "202401", "202406"} {
		p, err := Parse(s, now)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", s, err)
			continue
		}
		if p.String() != s {
			t.Errorf("Parse(%q) = %q", s, p)
		}
	}
}

func TestParseRejects(t *testing.T) {
	cases := []string{
		"2024",   // current year needs a month
		"2025",   // future year
		"202407", // future month
		"202500", // month out of range, wrong year
		"202313", // month out of range
		"202200", // month zero
		"202312", // monthly token for a past year
		"20x4",
		"24",
		"2024060",
		"",
		"2024-06",
	}
	for _, s := range cases {
		if _, err := Parse(s, now); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", s)
		}
	}
}

func TestParseErrorType(t *testing.T) {
	_, err := Parse("2024", now)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Value != "2024" {
		t.Fatalf("perr.Value = %q", perr.Value)
	}
}

func TestYearAndMonth(t *testing.T) {
	p, _ := Parse("202403", now)
	if p.Year() != 2024 {
		t.Fatalf("Year() = %d", p.Year())
	}
	if m, ok := p.Month(); !ok || m != time.March {
		t.Fatalf("Month() = %v, %v", m, ok)
	}
	y, _ := Parse("2020", now)
	if _, ok := y.Month(); ok {
		t.Fatal("bare year should not report a month")
	}
}

func TestFilterRange(t *testing.T) {
	avail := []Period{"2021", "2022", "2023", "202401", "202402"}
	got, err := Filter(avail, "2022", "202401")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := []Period{"2022", "2023", "202401"}
	if len(got) != len(want) {
		t.Fatalf("Filter = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Filter = %v, want %v", got, want)
		}
	}
}

func TestFilterOpenBounds(t *testing.T) {
	avail := []Period{"2021", "2022", "2023"}
	got, err := Filter(avail, "", "")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Filter = %v", got)
	}
}

func TestFilterUnknownBound(t *testing.T) {
	avail := []Period{"2021", "2022"}
	if _, err := Filter(avail, "2019", ""); err == nil {
		t.Fatal("expected error for unavailable start bound")
	}
	if _, err := Filter(avail, "", "2030"); err == nil {
		t.Fatal("expected error for unavailable end bound")
	}
}
