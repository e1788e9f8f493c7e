package weekly

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFor_KnownWeeks(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		week      int
		wantStart time.Time
	}{
		{"2024 starts on Monday, week 1", 2024, 1, date(2024, time.January, 1)},
		{"2024 week 0 collapses onto Jan 1", 2024, 0, date(2024, time.January, 1)},
		{"2023 starts on Sunday, week 0 spills into 2022", 2023, 0, date(2022, time.December, 26)},
		{"2023 week 1 is the first Monday", 2023, 1, date(2023, time.January, 2)},
		{"2023 week 52", 2023, 52, date(2023, time.December, 25)},
		{"2023 week 53 spills into 2024", 2023, 53, date(2024, time.January, 1)},
		{"2025 week 1", 2025, 1, date(2025, time.January, 6)},
		{"2025 week 0 starts in 2024", 2025, 0, date(2024, time.December, 30)},
		{"2026 week 10", 2026, 10, date(2026, time.March, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := For(tt.year, tt.week)
			if err != nil {
				t.Fatalf("For(%d, %d) error = %v", tt.year, tt.week, err)
			}
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %s, want %s", w.Start.Format(DateLayout), tt.wantStart.Format(DateLayout))
			}
		})
	}
}

func TestFor_AlwaysMondayToSunday(t *testing.T) {
	for year := 1999; year <= 2031; year++ {
		for week := 0; week <= 53; week++ {
			w, err := For(year, week)
			if err != nil {
				t.Fatalf("For(%d, %d) error = %v", year, week, err)
			}
			if w.Start.Weekday() != time.Monday {
				t.Fatalf("For(%d, %d).Start is %s, want Monday", year, week, w.Start.Weekday())
			}
			if !w.End.Equal(w.Start.AddDate(0, 0, 6)) {
				t.Fatalf("For(%d, %d).End = %s, want Start + 6 days", year, week, w.EndDate())
			}
		}
	}
}

func TestFor_RejectsOutOfRangeInput(t *testing.T) {
	cases := []struct{ year, week int }{
		{2024, -1},
		{2024, 54},
		{0, 10},
		{10000, 10},
	}
	for _, c := range cases {
		if _, err := For(c.year, c.week); !errors.Is(err, ErrInvalidWeek) {
			t.Errorf("For(%d, %d) error = %v, want ErrInvalidWeek", c.year, c.week, err)
		}
	}
}

func TestWindow_Contains(t *testing.T) {
	w, err := For(2024, 10)
	if err != nil {
		t.Fatal(err)
	}
	// 2024 week 10 is Mon 4 March .. Sun 10 March.
	if w.StartDate() != "2024-03-04" || w.EndDate() != "2024-03-10" {
		t.Fatalf("window = %s", w)
	}

	inside := []time.Time{
		date(2024, time.March, 4),
		time.Date(2024, time.March, 10, 23, 59, 59, 0, time.UTC),
	}
	for _, ts := range inside {
		if !w.Contains(ts) {
			t.Errorf("Contains(%s) = false, want true", ts)
		}
	}

	outside := []time.Time{
		time.Date(2024, time.March, 3, 23, 59, 59, 0, time.UTC),
		date(2024, time.March, 11),
	}
	for _, ts := range outside {
		if w.Contains(ts) {
			t.Errorf("Contains(%s) = true, want false", ts)
		}
	}
}

func TestCurrent_UsesISOCalendar(t *testing.T) {
	// 29 Dec 2025 is a Monday in ISO week 1 of 2026.
	year, week := Current(date(2025, time.December, 29))
	if year != 2026 || week != 1 {
		t.Errorf("Current() = (%d, %d), want (2026, 1)", year, week)
	}
}
