package units

import (
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s): %v", name, err)
	}
	return loc
}

func TestLocalDateUsesWallClock(t *testing.T) {
	berlin := mustLoc(t, "Europe/Berlin")

	// 23:30 UTC on Jan 5 is already Jan 6 in Berlin (UTC+1 in winter).
	ts := time.Date(2025, 1, 5, 23, 30, 0, 0, time.UTC).UnixMilli()
	if got := LocalDate(ts, berlin); got != "06.01.2025" {
		t.Errorf("LocalDate = %q, want 06.01.2025", got)
	}
	if got := LocalDate(ts, time.UTC); got != "05.01.2025" {
		t.Errorf("LocalDate in UTC = %q, want 05.01.2025", got)
	}
}

func TestParseLocalDateRoundTrip(t *testing.T) {
	berlin := mustLoc(t, "Europe/Berlin")
	parsed, err := ParseLocalDate("24.12.2024", berlin)
	if err != nil {
		t.Fatalf("ParseLocalDate: %v", err)
	}
	if got := parsed.Format("2006-01-02"); got != "2024-12-24" {
		t.Errorf("parsed = %s, want 2024-12-24", got)
	}

	if _, err := ParseLocalDate("2024-12-24", berlin); err == nil {
		t.Error("expected error for ISO-formatted date")
	}
}

func TestDateDiffDays(t *testing.T) {
	berlin := mustLoc(t, "Europe/Berlin")

	cases := []struct {
		a, b string
		want int
	}{
		{"01.01.2025", "01.01.2025", 0},
		{"01.01.2025", "02.01.2025", 1},
		{"02.01.2025", "01.01.2025", 1},
		{"28.12.2024", "03.01.2025", 6},
	}

	for _, tc := range cases {
		got, err := DateDiffDays(tc.a, tc.b, berlin)
		if err != nil {
			t.Fatalf("DateDiffDays(%s, %s): %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Errorf("DateDiffDays(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestEndOfPreviousDay(t *testing.T) {
	berlin := mustLoc(t, "Europe/Berlin")

	now := time.Date(2025, 6, 10, 0, 0, 5, 0, berlin)
	boundary := EndOfPreviousDay(now, berlin)

	want := time.Date(2025, 6, 9, 23, 59, 59, 999_000_000, berlin).UnixMilli()
	if boundary != want {
		t.Errorf("EndOfPreviousDay = %d, want %d", boundary, want)
	}
	if got := LocalDate(boundary, berlin); got != "09.06.2025" {
		t.Errorf("boundary date = %q, want 09.06.2025", got)
	}
}

func TestStartOfDay(t *testing.T) {
	berlin := mustLoc(t, "Europe/Berlin")
	now := time.Date(2025, 6, 10, 17, 45, 0, 0, berlin)

	start := StartOfDay(now, berlin)
	want := time.Date(2025, 6, 10, 0, 0, 0, 0, berlin).UnixMilli()
	if start != want {
		t.Errorf("StartOfDay = %d, want %d", start, want)
	}
}
