package model

import (
	"sort"
	"time"

	"clinicore/shared/failure"
	"clinicore/shared/model"
)

const (
	TableName  = "resource_availabilities"
	EntityName = "resource_availability"

	FieldID           = "id"
	FieldTenantID     = "tenant_id"
	FieldResourceID   = "resource_id"
	FieldStartAt      = "start_at"
	FieldEndAt        = "end_at"
	FieldKind         = "kind"
	FieldRecurrence   = "recurrence"
	FieldRangeType    = "range_type"
	FieldRangeEnd     = "range_end"
	FieldRangeCount   = "range_count"
	FieldOverrideMode = "override_mode"
	FieldOverrideMax  = "override_max"
)

const (
	KindAvailable = "available"
	KindBlocked   = "blocked"

	RangeNoEnd   = "no_end"
	RangeEndDate = "end_date"
	RangeCount   = "count"
)

// ResourceAvailability is one availability or blocking window on a resource,
// optionally repeating. StartAt/EndAt are the first occurrence; the range
// policy bounds how far the recurrence extends.
type ResourceAvailability struct {
	ID           string           `db:"id"`
	TenantID     string           `db:"tenant_id"`
	ResourceID   string           `db:"resource_id"`
	StartAt      time.Time        `db:"start_at"`
	EndAt        time.Time        `db:"end_at"`
	Kind         string           `db:"kind"`
	Recurrence   RecurrenceColumn `db:"recurrence"`
	RangeType    string           `db:"range_type"`
	RangeEnd     *time.Time       `db:"range_end"`
	RangeCount   *int             `db:"range_count"`
	OverrideMode *string          `db:"override_mode"`
	OverrideMax  *int             `db:"override_max"`
	model.Metadata
}

func (a *ResourceAvailability) Validate() error {
	if !a.StartAt.Before(a.EndAt) {
		return failure.Validation("availability window start must be before end")
	}

	if a.Kind != KindAvailable && a.Kind != KindBlocked {
		return failure.Validation("availability kind must be available or blocked")
	}

	switch a.RangeType {
	case RangeNoEnd:
	case RangeEndDate:
		if a.RangeEnd == nil {
			return failure.Validation("end_date range needs range_end")
		}

		if a.RangeEnd.Before(a.StartAt) {
			return failure.Validation("range_end must not precede the first occurrence")
		}
	case RangeCount:
		if a.RangeCount == nil || *a.RangeCount < 1 {
			return failure.Validation("count range needs a positive range_count")
		}
	default:
		return failure.Validation("range_type must be no_end, end_date or count")
	}

	if a.Recurrence.Recurrence != nil {
		if err := a.Recurrence.Recurrence.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Occurrences expands the record into concrete windows overlapping
// [from, to), clipped to it. A record without a recurrence is its own single
// occurrence.
func (a *ResourceAvailability) Occurrences(from, to time.Time) []Interval {
	duration := a.EndAt.Sub(a.StartAt)

	if a.Recurrence.Recurrence == nil {
		return clip(Interval{Start: a.StartAt, End: a.EndAt}, from, to)
	}

	var out []Interval

	next := a.Recurrence.Recurrence.starts(a.StartAt)
	for i := 0; i < maxOccurrences; i++ {
		start := next()

		if a.RangeType == RangeCount && i >= *a.RangeCount {
			break
		}

		if a.RangeType == RangeEndDate && start.After(*a.RangeEnd) {
			break
		}

		if !start.Before(to) {
			break
		}

		out = append(out, clip(Interval{Start: start, End: start.Add(duration)}, from, to)...)
	}

	return out
}

func clip(window Interval, from, to time.Time) []Interval {
	if !window.Start.Before(to) || !from.Before(window.End) {
		return nil
	}

	if window.Start.Before(from) {
		window.Start = from
	}

	if window.End.After(to) {
		window.End = to
	}

	return []Interval{window}
}

// Subtract removes every blocked interval from the available ones, splitting
// windows where a block lands in the middle.
func Subtract(available, blocked []Interval) []Interval {
	result := available

	for _, block := range blocked {
		var next []Interval

		for _, window := range result {
			if !window.Overlaps(block) {
				next = append(next, window)

				continue
			}

			if window.Start.Before(block.Start) {
				next = append(next, Interval{Start: window.Start, End: block.Start})
			}

			if block.End.Before(window.End) {
				next = append(next, Interval{Start: block.End, End: window.End})
			}
		}

		result = next
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })

	return result
}

// Merge coalesces overlapping or touching intervals into a minimal sorted set.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []Interval{sorted[0]}
	for _, window := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !window.Start.After(last.End) {
			if window.End.After(last.End) {
				last.End = window.End
			}

			continue
		}

		merged = append(merged, window)
	}

	return merged
}

// EffectiveWindow is one bookable stretch for a resource with the
// reservation policy in force during it.
type EffectiveWindow struct {
	ResourceID      string    `json:"resource_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	ReservationMode string    `json:"reservation_mode"`
	MaxConcurrent   int       `json:"max_concurrent"`
}
