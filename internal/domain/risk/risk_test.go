package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{Start: day("2025-03-10"), End: day("2025-03-14")}
	tests := []struct {
		date time.Time
		want bool
	}{
		{day("2025-03-09"), false},
		{day("2025-03-10"), true},
		{day("2025-03-14").Add(23 * time.Hour), true},
		{day("2025-03-15"), false},
		{time.Time{}, true},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.date); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestDateRange_Unbounded(t *testing.T) {
	var r DateRange
	if !r.Contains(day("1999-01-01")) {
		t.Error("zero range must contain every date")
	}
	if r.Days() != 0 {
		t.Errorf("Days() = %d, want 0", r.Days())
	}
}

func TestDateRange_Days(t *testing.T) {
	r := DateRange{Start: day("2025-12-30"), End: day("2026-01-02")}
	if r.Days() != 4 {
		t.Errorf("Days() = %d, want 4", r.Days())
	}
}

func TestDateRange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"unbounded", DateRange{}, false},
		{"open end", DateRange{Start: day("2026-12-31")}, false},
		{"open start", DateRange{End: day("2026-12-20")}, false},
		{"same day", DateRange{Start: day("2026-12-20"), End: day("2026-12-20").Add(time.Hour)}, false},
		{"ordered", DateRange{Start: day("2026-12-20"), End: day("2026-12-31")}, false},
		{"reversed", DateRange{Start: day("2026-12-31"), End: day("2026-12-20")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := ParseDate("10/03/2025"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAssessment_HighRisks(t *testing.T) {
	a := Assessment{
		Budget:   BudgetRisk{Level: High},
		Weather:  WeatherRisk{Level: Medium},
		Crowding: CrowdingRisk{Level: High},
	}
	got := a.HighRisks()
	if len(got) != 2 || got[0] != "budget" || got[1] != "crowding" {
		t.Errorf("HighRisks() = %v", got)
	}
}

func TestLevel_IsValid(t *testing.T) {
	if !High.IsValid() || Level("extreme").IsValid() {
		t.Error("unexpected IsValid result")
	}
}
