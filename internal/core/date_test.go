package core

import (
	"testing"
	"time"
)

func TestMonthWindow_Contains_Boundaries(t *testing.T) {
	window := MonthWindow{Year: 2025, Month: time.January}

	tests := []struct {
		name string
		date Date
		want bool
	}{
		{
			name: "first day of month - included",
			date: NewDate(2025, 1, 1),
			want: true,
		},
		{
			name: "middle of month - included",
			date: NewDate(2025, 1, 15),
			want: true,
		},
		{
			name: "last day of month - included",
			date: NewDate(2025, 1, 31),
			want: true,
		},
		{
			name: "first day of next month - excluded",
			date: NewDate(2025, 2, 1),
			want: false,
		},
		{
			name: "last day of previous month - excluded",
			date: NewDate(2024, 12, 31),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestMonthWindow_Contains_FebruaryBoundary(t *testing.T) {
	window := MonthWindow{Year: 2024, Month: time.February}

	// 2024 is a leap year
	if !window.Contains(NewDate(2024, 2, 29)) {
		t.Error("Feb 29 of a leap year must belong to February")
	}
	if window.Contains(NewDate(2024, 3, 1)) {
		t.Error("Mar 1 must not belong to February")
	}
}

func TestMonthWindow_NextStart_YearRollover(t *testing.T) {
	window := MonthWindow{Year: 2024, Month: time.December}

	want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := window.NextStart(); !got.Equal(want) {
		t.Errorf("NextStart() = %v, want %v", got, want)
	}
}

func TestMonthWindow_Prev_YearRollover(t *testing.T) {
	window := MonthWindow{Year: 2025, Month: time.January}

	prev := window.Prev()
	if prev.Year != 2024 || prev.Month != time.December {
		t.Errorf("Prev() = %v, want December 2024", prev)
	}
}

func TestMonthWindow_Back(t *testing.T) {
	tests := []struct {
		name      string
		window    MonthWindow
		n         int
		wantYear  int
		wantMonth time.Month
	}{
		{
			name:      "zero months back",
			window:    MonthWindow{Year: 2025, Month: time.June},
			n:         0,
			wantYear:  2025,
			wantMonth: time.June,
		},
		{
			name:      "within same year",
			window:    MonthWindow{Year: 2025, Month: time.June},
			n:         3,
			wantYear:  2025,
			wantMonth: time.March,
		},
		{
			name:      "across one year boundary",
			window:    MonthWindow{Year: 2025, Month: time.February},
			n:         5,
			wantYear:  2024,
			wantMonth: time.September,
		},
		{
			name:      "across multiple years",
			window:    MonthWindow{Year: 2025, Month: time.January},
			n:         25,
			wantYear:  2022,
			wantMonth: time.December,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.window.Back(tt.n)
			if got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Errorf("Back(%d) = %v, want %v %d", tt.n, got, tt.wantMonth, tt.wantYear)
			}
		})
	}
}

func TestMonthWindow_Label(t *testing.T) {
	tests := []struct {
		window MonthWindow
		want   string
	}{
		{MonthWindow{Year: 2025, Month: time.January}, "ene 25"},
		{MonthWindow{Year: 2024, Month: time.December}, "dic 24"},
		{MonthWindow{Year: 2025, Month: time.August}, "ago 25"},
		{MonthWindow{Year: 2003, Month: time.June}, "jun 03"},
	}

	for _, tt := range tests {
		if got := tt.window.Label(); got != tt.want {
			t.Errorf("Label(%v %d) = %q, want %q", tt.window.Month, tt.window.Year, got, tt.want)
		}
	}
}

func TestMonthOf(t *testing.T) {
	ref := time.Date(2025, time.March, 17, 14, 30, 0, 0, time.UTC)
	got := MonthOf(ref)
	if got.Year != 2025 || got.Month != time.March {
		t.Errorf("MonthOf(%v) = %v, want March 2025", ref, got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.January || d.Day() != 15 {
		t.Errorf("ParseDate() = %v, want 2025-01-15", d)
	}

	if _, err := ParseDate("15/01/2025"); err == nil {
		t.Error("ParseDate() accepted a non-ISO date format")
	}
}
