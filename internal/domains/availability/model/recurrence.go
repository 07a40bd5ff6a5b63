package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"clinicore/shared/failure"
)

const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

// Safety bound on expansion so a no_end pattern over a huge query window can
// never spin unbounded.
const maxOccurrences = 1000

// Safety bound on the month/year scan inside a single starts iterator. A
// monthly or yearly pattern whose day never lands on a real date (interval
// 12 anchored in February looking for day 30) would otherwise scan forever.
const maxScanPeriods = 1200

// neverOccurs is past any range policy, so Occurrences stops immediately.
var neverOccurs = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Recurrence is one repetition rule. Each variant carries only the fields
// that make sense for its type, so an impossible combination cannot be
// represented.
type Recurrence interface {
	Type() string
	Validate() error

	// starts returns successive occurrence start times beginning at the
	// anchor, in ascending order, without end.
	starts(anchor time.Time) func() time.Time
}

type Daily struct {
	Interval int `json:"interval"`
}

func (d *Daily) Type() string { return RecurrenceDaily }

func (d *Daily) Validate() error {
	if d.Interval < 1 {
		return failure.Validation("daily recurrence interval must be at least 1")
	}

	return nil
}

func (d *Daily) starts(anchor time.Time) func() time.Time {
	next := anchor

	return func() time.Time {
		current := next
		next = next.AddDate(0, 0, d.Interval)

		return current
	}
}

type Weekly struct {
	Interval int      `json:"interval"`
	Days     []string `json:"days"`
}

func (w *Weekly) Type() string { return RecurrenceWeekly }

func (w *Weekly) Validate() error {
	if w.Interval < 1 {
		return failure.Validation("weekly recurrence interval must be at least 1")
	}

	if len(w.Days) == 0 {
		return failure.Validation("weekly recurrence needs at least one day")
	}

	for _, day := range w.Days {
		if _, ok := weekdayNames[day]; !ok {
			return failure.Validation(fmt.Sprintf("unknown weekday %q", day))
		}
	}

	return nil
}

func (w *Weekly) starts(anchor time.Time) func() time.Time {
	days := make(map[time.Weekday]bool, len(w.Days))
	for _, day := range w.Days {
		days[weekdayNames[day]] = true
	}

	// Weeks start on Monday; the anchor's week is week zero for the
	// interval arithmetic.
	weekStart := startOfWeek(anchor)
	cursor := anchor

	return func() time.Time {
		for {
			if days[cursor.Weekday()] && weeksBetween(weekStart, startOfWeek(cursor))%w.Interval == 0 {
				current := cursor
				cursor = cursor.AddDate(0, 0, 1)

				return current
			}

			cursor = cursor.AddDate(0, 0, 1)
		}
	}
}

// Monthly repeats either on a fixed day of the month or on the nth weekday
// (first Monday, third Friday). Exactly one form must be set. Months lacking
// the day are skipped.
type Monthly struct {
	Interval   int     `json:"interval"`
	DayOfMonth *int    `json:"day_of_month,omitempty"`
	Nth        *int    `json:"nth,omitempty"`
	Weekday    *string `json:"weekday,omitempty"`
}

func (m *Monthly) Type() string { return RecurrenceMonthly }

func (m *Monthly) Validate() error {
	if m.Interval < 1 {
		return failure.Validation("monthly recurrence interval must be at least 1")
	}

	byDay := m.DayOfMonth != nil
	byNth := m.Nth != nil || m.Weekday != nil

	if byDay == byNth {
		return failure.Validation("monthly recurrence needs either day_of_month or nth+weekday")
	}

	if byDay && (*m.DayOfMonth < 1 || *m.DayOfMonth > 31) {
		return failure.Validation("day_of_month must be between 1 and 31")
	}

	if byNth {
		if m.Nth == nil || m.Weekday == nil {
			return failure.Validation("monthly recurrence needs both nth and weekday")
		}

		if *m.Nth < 1 || *m.Nth > 5 {
			return failure.Validation("nth must be between 1 and 5")
		}

		if _, ok := weekdayNames[*m.Weekday]; !ok {
			return failure.Validation(fmt.Sprintf("unknown weekday %q", *m.Weekday))
		}
	}

	return nil
}

func (m *Monthly) starts(anchor time.Time) func() time.Time {
	year, month, _ := anchor.Date()
	monthCursor := time.Date(year, month, 1, 0, 0, 0, 0, anchor.Location())

	return func() time.Time {
		for i := 0; i < maxScanPeriods; i++ {
			occurrence, ok := m.inMonth(monthCursor, anchor)
			monthCursor = monthCursor.AddDate(0, m.Interval, 0)

			if ok && !occurrence.Before(anchor) {
				return occurrence
			}
		}

		return neverOccurs
	}
}

func (m *Monthly) inMonth(monthStart, anchor time.Time) (time.Time, bool) {
	year, month, _ := monthStart.Date()

	if m.DayOfMonth != nil {
		candidate := time.Date(year, month, *m.DayOfMonth,
			anchor.Hour(), anchor.Minute(), anchor.Second(), 0, anchor.Location())
		if candidate.Month() != month {
			return time.Time{}, false
		}

		return candidate, true
	}

	weekday := weekdayNames[*m.Weekday]
	first := time.Date(year, month, 1, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, anchor.Location())

	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	candidate := first.AddDate(0, 0, offset+(*m.Nth-1)*7)
	if candidate.Month() != month {
		return time.Time{}, false
	}

	return candidate, true
}

type Yearly struct {
	Interval int `json:"interval"`
	Month    int `json:"month"`
	Day      int `json:"day"`
}

func (y *Yearly) Type() string { return RecurrenceYearly }

func (y *Yearly) Validate() error {
	if y.Interval < 1 {
		return failure.Validation("yearly recurrence interval must be at least 1")
	}

	if y.Month < 1 || y.Month > 12 {
		return failure.Validation("yearly recurrence month must be between 1 and 12")
	}

	if y.Day < 1 || y.Day > 31 {
		return failure.Validation("yearly recurrence day must be between 1 and 31")
	}

	// Leap day is allowed; it simply skips non-leap years.
	maxDay := 29
	if y.Month != int(time.February) {
		maxDay = time.Date(2001, time.Month(y.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	}

	if y.Day > maxDay {
		return failure.Validation(fmt.Sprintf("month %d has no day %d", y.Month, y.Day))
	}

	return nil
}

func (y *Yearly) starts(anchor time.Time) func() time.Time {
	yearCursor := anchor.Year()

	return func() time.Time {
		for i := 0; i < maxScanPeriods; i++ {
			candidate := time.Date(yearCursor, time.Month(y.Month), y.Day,
				anchor.Hour(), anchor.Minute(), anchor.Second(), 0, anchor.Location())
			yearCursor += y.Interval

			// Feb 29 in a non-leap year normalizes into March; skip it.
			if int(candidate.Month()) != y.Month {
				continue
			}

			if !candidate.Before(anchor) {
				return candidate
			}
		}

		return neverOccurs
	}
}

// RecurrenceColumn is the nullable jsonb envelope storing a tagged variant:
// {"type":"weekly","interval":1,"days":["monday"]}.
type RecurrenceColumn struct {
	Recurrence Recurrence
}

func (c RecurrenceColumn) MarshalJSON() ([]byte, error) {
	if c.Recurrence == nil {
		return []byte("null"), nil
	}

	raw, err := json.Marshal(c.Recurrence)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err //nolint:wrapcheck
	}

	fields["type"] = c.Recurrence.Type()

	return json.Marshal(fields) //nolint:wrapcheck
}

func (c *RecurrenceColumn) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		c.Recurrence = nil

		return nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err //nolint:wrapcheck
	}

	var recurrence Recurrence

	switch head.Type {
	case RecurrenceDaily:
		recurrence = &Daily{}
	case RecurrenceWeekly:
		recurrence = &Weekly{}
	case RecurrenceMonthly:
		recurrence = &Monthly{}
	case RecurrenceYearly:
		recurrence = &Yearly{}
	default:
		return failure.Validation(fmt.Sprintf("unknown recurrence type %q", head.Type)) //nolint:wrapcheck
	}

	if err := json.Unmarshal(data, recurrence); err != nil {
		return err //nolint:wrapcheck
	}

	c.Recurrence = recurrence

	return nil
}

func (c RecurrenceColumn) Value() (driver.Value, error) {
	if c.Recurrence == nil {
		return nil, nil
	}

	return c.MarshalJSON()
}

func (c *RecurrenceColumn) Scan(src any) error {
	if src == nil {
		c.Recurrence = nil

		return nil
	}

	switch v := src.(type) {
	case []byte:
		return c.UnmarshalJSON(v)
	case string:
		return c.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported type for recurrence column: %T", src)
	}
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) - int(time.Monday) + 7) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	return day.AddDate(0, 0, -offset)
}

func weeksBetween(from, to time.Time) int {
	// Rounding absorbs the hour a DST transition adds or removes.
	return int(math.Round(to.Sub(from).Hours() / (24 * 7)))
}
