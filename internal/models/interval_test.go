package models

import (
	"testing"
	"time"
)

func TestRecurringInterval_Advance(t *testing.T) {
	tests := []struct {
		name     string
		interval RecurringInterval
		from     Date
		want     Date
	}{
		{"daily", IntervalDaily, NewDate(2024, 1, 31), NewDate(2024, 2, 1)},
		{"daily across year", IntervalDaily, NewDate(2023, 12, 31), NewDate(2024, 1, 1)},
		{"weekly", IntervalWeekly, NewDate(2024, 2, 26), NewDate(2024, 3, 4)},
		{"monthly plain", IntervalMonthly, NewDate(2024, 1, 15), NewDate(2024, 2, 15)},
		{"monthly clamps leap feb", IntervalMonthly, NewDate(2024, 1, 31), NewDate(2024, 2, 29)},
		{"monthly clamps feb", IntervalMonthly, NewDate(2023, 1, 31), NewDate(2023, 2, 28)},
		{"monthly clamps 30-day month", IntervalMonthly, NewDate(2024, 3, 31), NewDate(2024, 4, 30)},
		{"monthly across year", IntervalMonthly, NewDate(2024, 12, 31), NewDate(2025, 1, 31)},
		{"yearly", IntervalYearly, NewDate(2024, 6, 1), NewDate(2025, 6, 1)},
		{"yearly clamps leap day", IntervalYearly, NewDate(2024, 2, 29), NewDate(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.interval.Advance(tt.from)
			if !got.Equal(tt.want) {
				t.Errorf("%s.Advance(%s) = %s, want %s", tt.interval, tt.from, got, tt.want)
			}
		})
	}
}

func TestRecurringInterval_AdvanceIsStepwise(t *testing.T) {
	start := NewDate(2024, 1, 31)

	// Jan 31 -> Feb 29 -> Mar 29 -> Apr 29: a clamped day is not restored.
	want := []Date{NewDate(2024, 2, 29), NewDate(2024, 3, 29), NewDate(2024, 4, 29)}
	d := start
	for i, w := range want {
		d = IntervalMonthly.Advance(d)
		if !d.Equal(w) {
			t.Fatalf("step %d = %s, want %s", i+1, d, w)
		}
	}

	// Advancing twice in one go equals two single steps.
	twice := IntervalMonthly.Advance(IntervalMonthly.Advance(start))
	once := IntervalMonthly.Advance(start)
	again := IntervalMonthly.Advance(once)
	if !twice.Equal(again) {
		t.Errorf("double advance = %s, stepwise = %s", twice, again)
	}
}

func TestRecurringInterval_AdvanceNeverSkips(t *testing.T) {
	for _, iv := range []RecurringInterval{IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly} {
		d := NewDate(2024, 1, 31)
		for i := 0; i < 40; i++ {
			next := iv.Advance(d)
			if !next.After(d) {
				t.Fatalf("%s: Advance(%s) = %s, not after", iv, d, next)
			}
			if iv == IntervalMonthly {
				gap := (int(next.Month()) - int(d.Month()) + 12) % 12
				if gap != 1 {
					t.Fatalf("monthly skipped a month: %s -> %s", d, next)
				}
			}
			d = next
		}
	}
}

func TestRecurringInterval_Valid(t *testing.T) {
	if RecurringInterval("hourly").Valid() {
		t.Error(`Valid("hourly") = true, want false`)
	}
	if !IntervalYearly.Valid() {
		t.Error("Valid(yearly) = false, want true")
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	var d Date
	if err := d.UnmarshalJSON([]byte(`"2024-02-29"`)); err != nil {
		t.Fatalf("UnmarshalJSON error = %v", err)
	}
	b, _ := d.MarshalJSON()
	if string(b) != `"2024-02-29"` {
		t.Errorf("MarshalJSON = %s", b)
	}
	if err := d.UnmarshalJSON([]byte(`"2024-13-01"`)); err == nil {
		t.Error("UnmarshalJSON(2024-13-01) error = nil, want error")
	}
	if err := d.UnmarshalJSON([]byte(`"2024-03-05T23:10:00+00:00"`)); err != nil || d.String() != "2024-03-05" {
		t.Errorf("UnmarshalJSON(timestamp) = %s, %v", d, err)
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-05-06" {
		t.Errorf("Scan(time) = %s, %v", d, err)
	}
	if err := d.Scan("2024-05-07 00:00:00+00:00"); err != nil || d.String() != "2024-05-07" {
		t.Errorf("Scan(string) = %s, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) error = nil, want error")
	}
}
