package source

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
)

// CalendarEntry is a recurring holiday, Date formatted as MM-DD.
type CalendarEntry struct {
	Name string `yaml:"name"`
	Date string `yaml:"date"`
}

// DefaultHolidays is used when no calendar is configured.
var DefaultHolidays = []CalendarEntry{
	{Name: "New Year's Day", Date: "01-01"},
	{Name: "Christmas", Date: "12-25"},
}

type recurring struct {
	name  string
	month time.Month
	day   int
}

// Calendar projects recurring holidays onto concrete years.
type Calendar struct {
	entries []recurring
}

// NewCalendar parses entries; an empty list selects DefaultHolidays.
func NewCalendar(entries []CalendarEntry) (*Calendar, error) {
	if len(entries) == 0 {
		entries = DefaultHolidays
	}
	c := &Calendar{entries: make([]recurring, 0, len(entries))}
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, domain.NewFieldError(fmt.Sprintf("sources.holidays[%d].name", i), "is required")
		}
		t, err := time.Parse("01-02", strings.TrimSpace(e.Date))
		if err != nil {
			return nil, domain.NewFieldError(fmt.Sprintf("sources.holidays[%d].date", i), "must be MM-DD")
		}
		c.entries = append(c.entries, recurring{name: name, month: t.Month(), day: t.Day()})
	}
	return c, nil
}

// Between returns holidays falling inside the bounded window, ordered by date.
func (c *Calendar) Between(window risk.DateRange) []risk.Holiday {
	out := []risk.Holiday{}
	for year := window.Start.Year(); year <= window.End.Year(); year++ {
		for _, e := range c.entries {
			d := time.Date(year, e.month, e.day, 0, 0, 0, 0, time.UTC)
			// Feb 29 rolls over in non-leap years; skip it.
			if d.Month() != e.month {
				continue
			}
			if window.Contains(d) {
				out = append(out, risk.Holiday{Name: e.name, Date: d})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
