package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicore/internal/domains/availability/model"
	"clinicore/shared/failure"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return parsed
}

func TestWeeklyExpansion_TwoWeeks(t *testing.T) {
	// Monday 2026-01-05 09:00, one day long, mondays and wednesdays.
	start := mustTime(t, "2026-01-05T09:00:00Z")

	availability := model.ResourceAvailability{
		ID:         "a1",
		ResourceID: "r1",
		StartAt:    start,
		EndAt:      start.Add(24 * time.Hour),
		Kind:       model.KindAvailable,
		RangeType:  model.RangeNoEnd,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Weekly{
			Interval: 1,
			Days:     []string{"monday", "wednesday"},
		}},
	}

	from := mustTime(t, "2026-01-05T00:00:00Z")
	to := mustTime(t, "2026-01-19T00:00:00Z")

	occurrences := availability.Occurrences(from, to)

	require.Len(t, occurrences, 4)

	expected := []string{
		"2026-01-05T09:00:00Z",
		"2026-01-07T09:00:00Z",
		"2026-01-12T09:00:00Z",
		"2026-01-14T09:00:00Z",
	}
	for i, occ := range occurrences {
		assert.Equal(t, mustTime(t, expected[i]), occ.Start)
		assert.Equal(t, 9, occ.Start.Hour())
	}
}

func TestWeeklyExpansion_IntervalTwo(t *testing.T) {
	start := mustTime(t, "2026-01-05T08:00:00Z")

	availability := model.ResourceAvailability{
		StartAt:   start,
		EndAt:     start.Add(4 * time.Hour),
		Kind:      model.KindAvailable,
		RangeType: model.RangeNoEnd,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Weekly{
			Interval: 2,
			Days:     []string{"monday"},
		}},
	}

	occurrences := availability.Occurrences(
		mustTime(t, "2026-01-01T00:00:00Z"),
		mustTime(t, "2026-02-01T00:00:00Z"),
	)

	require.Len(t, occurrences, 2)
	assert.Equal(t, mustTime(t, "2026-01-05T08:00:00Z"), occurrences[0].Start)
	assert.Equal(t, mustTime(t, "2026-01-19T08:00:00Z"), occurrences[1].Start)
}

func TestDailyExpansion_CountRange(t *testing.T) {
	start := mustTime(t, "2026-03-02T10:00:00Z")
	count := 3

	availability := model.ResourceAvailability{
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Kind:       model.KindAvailable,
		RangeType:  model.RangeCount,
		RangeCount: &count,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Daily{Interval: 1}},
	}

	occurrences := availability.Occurrences(
		mustTime(t, "2026-03-01T00:00:00Z"),
		mustTime(t, "2026-04-01T00:00:00Z"),
	)

	require.Len(t, occurrences, 3)
	assert.Equal(t, mustTime(t, "2026-03-04T10:00:00Z"), occurrences[2].Start)
}

func TestDailyExpansion_EndDateRange(t *testing.T) {
	start := mustTime(t, "2026-03-02T10:00:00Z")
	rangeEnd := mustTime(t, "2026-03-04T00:00:00Z")

	availability := model.ResourceAvailability{
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Kind:       model.KindAvailable,
		RangeType:  model.RangeEndDate,
		RangeEnd:   &rangeEnd,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Daily{Interval: 1}},
	}

	occurrences := availability.Occurrences(
		mustTime(t, "2026-03-01T00:00:00Z"),
		mustTime(t, "2026-04-01T00:00:00Z"),
	)

	require.Len(t, occurrences, 2)
}

func TestMonthlyExpansion_NthWeekday(t *testing.T) {
	// First Monday of each month.
	start := mustTime(t, "2026-01-05T14:00:00Z")
	nth := 1
	weekday := "monday"

	availability := model.ResourceAvailability{
		StartAt:   start,
		EndAt:     start.Add(2 * time.Hour),
		Kind:      model.KindAvailable,
		RangeType: model.RangeNoEnd,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Monthly{
			Interval: 1,
			Nth:      &nth,
			Weekday:  &weekday,
		}},
	}

	occurrences := availability.Occurrences(
		mustTime(t, "2026-01-01T00:00:00Z"),
		mustTime(t, "2026-04-01T00:00:00Z"),
	)

	require.Len(t, occurrences, 3)
	assert.Equal(t, mustTime(t, "2026-02-02T14:00:00Z"), occurrences[1].Start)
	assert.Equal(t, mustTime(t, "2026-03-02T14:00:00Z"), occurrences[2].Start)
}

func TestMonthlyExpansion_SkipsShortMonths(t *testing.T) {
	start := mustTime(t, "2026-01-31T09:00:00Z")
	day := 31

	availability := model.ResourceAvailability{
		StartAt:   start,
		EndAt:     start.Add(time.Hour),
		Kind:      model.KindAvailable,
		RangeType: model.RangeNoEnd,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Monthly{
			Interval:   1,
			DayOfMonth: &day,
		}},
	}

	occurrences := availability.Occurrences(
		mustTime(t, "2026-01-01T00:00:00Z"),
		mustTime(t, "2026-05-01T00:00:00Z"),
	)

	// January and March only: February and April have no 31st.
	require.Len(t, occurrences, 2)
	assert.Equal(t, mustTime(t, "2026-03-31T09:00:00Z"), occurrences[1].Start)
}

func TestSubtract_BlockedWins(t *testing.T) {
	at := func(h int) time.Time { return mustTime(t, "2026-01-05T00:00:00Z").Add(time.Duration(h) * time.Hour) }

	available := []model.Interval{{Start: at(9), End: at(17)}}
	blocked := []model.Interval{{Start: at(12), End: at(13)}}

	remaining := model.Subtract(available, blocked)

	require.Len(t, remaining, 2)
	assert.Equal(t, at(9), remaining[0].Start)
	assert.Equal(t, at(12), remaining[0].End)
	assert.Equal(t, at(13), remaining[1].Start)
	assert.Equal(t, at(17), remaining[1].End)
}

func TestSubtract_FullCover(t *testing.T) {
	at := func(h int) time.Time { return mustTime(t, "2026-01-05T00:00:00Z").Add(time.Duration(h) * time.Hour) }

	remaining := model.Subtract(
		[]model.Interval{{Start: at(9), End: at(12)}},
		[]model.Interval{{Start: at(8), End: at(13)}},
	)

	assert.Empty(t, remaining)
}

func TestValidate(t *testing.T) {
	start := mustTime(t, "2026-01-05T09:00:00Z")

	base := func() model.ResourceAvailability {
		return model.ResourceAvailability{
			StartAt:   start,
			EndAt:     start.Add(time.Hour),
			Kind:      model.KindAvailable,
			RangeType: model.RangeNoEnd,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*model.ResourceAvailability)
		wantErr bool
	}{
		{name: "valid plain window", mutate: func(*model.ResourceAvailability) {}},
		{
			name:    "inverted window",
			mutate:  func(a *model.ResourceAvailability) { a.EndAt = a.StartAt.Add(-time.Hour) },
			wantErr: true,
		},
		{
			name:    "unknown kind",
			mutate:  func(a *model.ResourceAvailability) { a.Kind = "maybe" },
			wantErr: true,
		},
		{
			name:    "end_date range without range_end",
			mutate:  func(a *model.ResourceAvailability) { a.RangeType = model.RangeEndDate },
			wantErr: true,
		},
		{
			name: "count range without count",
			mutate: func(a *model.ResourceAvailability) {
				a.RangeType = model.RangeCount
			},
			wantErr: true,
		},
		{
			name: "weekly without days",
			mutate: func(a *model.ResourceAvailability) {
				a.Recurrence = model.RecurrenceColumn{Recurrence: &model.Weekly{Interval: 1}}
			},
			wantErr: true,
		},
		{
			name: "monthly with both forms",
			mutate: func(a *model.ResourceAvailability) {
				day := 15
				nth := 2
				weekday := "friday"
				a.Recurrence = model.RecurrenceColumn{Recurrence: &model.Monthly{
					Interval: 1, DayOfMonth: &day, Nth: &nth, Weekday: &weekday,
				}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			availability := base()
			tt.mutate(&availability)

			err := availability.Validate()

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, failure.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecurrenceColumn_JSONRoundTrip(t *testing.T) {
	column := model.RecurrenceColumn{Recurrence: &model.Weekly{
		Interval: 2,
		Days:     []string{"monday", "thursday"},
	}}

	data, err := json.Marshal(column)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"weekly","interval":2,"days":["monday","thursday"]}`, string(data))

	var decoded model.RecurrenceColumn
	require.NoError(t, json.Unmarshal(data, &decoded))

	weekly, ok := decoded.Recurrence.(*model.Weekly)
	require.True(t, ok)
	assert.Equal(t, 2, weekly.Interval)
	assert.Equal(t, []string{"monday", "thursday"}, weekly.Days)
}

func TestRecurrenceColumn_UnknownType(t *testing.T) {
	var decoded model.RecurrenceColumn

	err := json.Unmarshal([]byte(`{"type":"hourly","interval":1}`), &decoded)

	assert.Error(t, err)
}

func TestYearlyExpansion_ImpossibleDateRejected(t *testing.T) {
	recurrence := &model.Yearly{Interval: 1, Month: 2, Day: 30}

	err := recurrence.Validate()

	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func TestYearlyExpansion_LeapDaySkipsNonLeapYears(t *testing.T) {
	start := mustTime(t, "2024-02-29T09:00:00Z")

	availability := model.ResourceAvailability{
		StartAt:   start,
		EndAt:     start.Add(2 * time.Hour),
		Kind:      model.KindAvailable,
		RangeType: model.RangeNoEnd,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Yearly{
			Interval: 1,
			Month:    2,
			Day:      29,
		}},
	}

	require.NoError(t, availability.Validate())

	occurrences := availability.Occurrences(
		mustTime(t, "2024-01-01T00:00:00Z"),
		mustTime(t, "2029-01-01T00:00:00Z"),
	)

	require.Len(t, occurrences, 2)
	assert.Equal(t, mustTime(t, "2024-02-29T09:00:00Z"), occurrences[0].Start)
	assert.Equal(t, mustTime(t, "2028-02-29T09:00:00Z"), occurrences[1].Start)
}

func TestMonthlyExpansion_UnreachableDayTerminates(t *testing.T) {
	// Interval 12 anchored in February can only ever revisit February, which
	// has no day 30. The expansion must give up, not spin.
	start := mustTime(t, "2026-02-01T09:00:00Z")
	day := 30

	availability := model.ResourceAvailability{
		StartAt:   start,
		EndAt:     start.Add(time.Hour),
		Kind:      model.KindAvailable,
		RangeType: model.RangeNoEnd,
		Recurrence: model.RecurrenceColumn{Recurrence: &model.Monthly{
			Interval:   12,
			DayOfMonth: &day,
		}},
	}

	done := make(chan []model.Interval, 1)
	go func() {
		done <- availability.Occurrences(
			mustTime(t, "2026-01-01T00:00:00Z"),
			mustTime(t, "2030-01-01T00:00:00Z"),
		)
	}()

	select {
	case occurrences := <-done:
		assert.Empty(t, occurrences)
	case <-time.After(5 * time.Second):
		t.Fatal("expansion did not terminate")
	}
}
