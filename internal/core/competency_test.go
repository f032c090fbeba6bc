package core

import (
	"testing"
	"time"
)

func TestParseCompetency(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"01/2025", true},
		{"12/1999", true},
		{"13/2025", false},
		{"00/2025", false},
		{"1/2025", false},   // month must be two digits
		{"01/25", false},    // year must be four digits
		{"01-2025", false},
		{"aa/2025", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseCompetency(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCompetencyAddMonths(t *testing.T) {
	cases := []struct {
		in   Competency
		n    int
		want Competency
	}{
		{"01/2025", 0, "01/2025"},
		{"01/2025", 1, "02/2025"},
		{"11/2025", 1, "12/2025"},
		{"12/2025", 1, "01/2026"}, // year rollover
		{"01/2025", 14, "03/2026"},
		{"02/2025", -3, "11/2024"},
	}
	for _, tc := range cases {
		if got := tc.in.AddMonths(tc.n); got != tc.want {
			t.Fatalf("%s + %d months = %s, want %s", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestCompetencyOf(t *testing.T) {
	if got := CompetencyOf(time.Date(2025, time.July, 31, 23, 0, 0, 0, time.UTC)); got != "07/2025" {
		t.Fatalf("CompetencyOf = %s", got)
	}
}

func TestLastCompetencies(t *testing.T) {
	now := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)
	got := LastCompetencies(now, 4)
	want := []Competency{"11/2024", "12/2024", "01/2025", "02/2025"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
