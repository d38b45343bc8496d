// Package lifecycle holds the pure derivation rules for equipment maintenance
// state: urgency thresholds, the due-soon horizon filter, distribution counts
// and the randomized scheduling windows used by the mutation actions.
package lifecycle

import (
	"math/rand"
	"time"

	"equipment-maintenance-api/internal/model"
)

// Urgency thresholds in whole days since the last maintenance. Both
// comparisons are strict: exactly 180 days is Medium, exactly 90 is Low.
const (
	HighUrgencyAfterDays   = 180
	MediumUrgencyAfterDays = 90
)

// DefaultDueSoonHorizonDays is the default window for the due-soon filter.
const DefaultDueSoonHorizonDays = 60

// Scheduling windows, all half-open [min, max) day ranges.
const (
	RequestWindowMinDays = 30
	RequestWindowMaxDays = 60

	BackdateMinDays = 30
	BackdateMaxDays = 180

	NextOffsetMinDays = 30
	NextOffsetMaxDays = 90
)

// Day converts a whole number of days to a time.Duration.
func Day(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// DaysSince returns the number of whole days elapsed between last and now.
func DaysSince(last, now time.Time) int {
	return int(now.Sub(last).Hours() / 24)
}

// UrgencyOf derives the maintenance urgency of e at the given instant.
func UrgencyOf(e model.Equipment, now time.Time) model.Urgency {
	days := DaysSince(e.LastMaintenance, now)
	switch {
	case days > HighUrgencyAfterDays:
		return model.UrgencyHigh
	case days > MediumUrgencyAfterDays:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}

// View decorates e with its derived display fields.
func View(e model.Equipment, now time.Time) model.EquipmentView {
	return model.EquipmentView{
		Equipment:                e,
		DaysSinceLastMaintenance: DaysSince(e.LastMaintenance, now),
		Urgency:                  UrgencyOf(e, now),
	}
}

// Views decorates every record in the snapshot.
func Views(records []model.Equipment, now time.Time) []model.EquipmentView {
	views := make([]model.EquipmentView, 0, len(records))
	for _, e := range records {
		views = append(views, View(e, now))
	}
	return views
}

// DueSoon returns the records whose next maintenance falls strictly before
// now + horizonDays. A record due exactly at the horizon is excluded.
func DueSoon(records []model.Equipment, now time.Time, horizonDays int) []model.Equipment {
	cutoff := now.Add(Day(horizonDays))
	var due []model.Equipment
	for _, e := range records {
		if e.NextMaintenance.Before(cutoff) {
			due = append(due, e)
		}
	}
	return due
}

// CountByStatus tallies the snapshot by equipment status.
func CountByStatus(records []model.Equipment) map[model.Status]int {
	counts := make(map[model.Status]int)
	for _, e := range records {
		counts[e.Status]++
	}
	return counts
}

// CountByUrgency tallies the snapshot by derived urgency at the given instant.
func CountByUrgency(records []model.Equipment, now time.Time) map[model.Urgency]int {
	counts := make(map[model.Urgency]int)
	for _, e := range records {
		counts[UrgencyOf(e, now)]++
	}
	return counts
}

// DayPicker supplies uniform random day offsets. It exists so tests can
// substitute deterministic values for the scheduling windows.
type DayPicker interface {
	// Days returns a uniform integer in [min, max).
	Days(min, max int) int
}

type randPicker struct {
	r *rand.Rand
}

// NewDayPicker returns a DayPicker backed by its own rand.Rand.
func NewDayPicker(seed int64) DayPicker {
	return &randPicker{r: rand.New(rand.NewSource(seed))}
}

func (p *randPicker) Days(min, max int) int {
	return min + p.r.Intn(max-min)
}

// RequestSchedule returns the next maintenance date assigned by a
// maintenance request: now plus a random offset in the request window.
func RequestSchedule(now time.Time, picker DayPicker) time.Time {
	return now.Add(Day(picker.Days(RequestWindowMinDays, RequestWindowMaxDays)))
}

// NewEquipmentSchedule returns the randomized maintenance dates assigned to
// newly added equipment: a backdated last maintenance and a next maintenance
// offset from it. The next date is not guaranteed to fall after now.
func NewEquipmentSchedule(now time.Time, picker DayPicker) (last, next time.Time) {
	last = now.Add(-Day(picker.Days(BackdateMinDays, BackdateMaxDays)))
	next = last.Add(Day(picker.Days(NextOffsetMinDays, NextOffsetMaxDays)))
	return last, next
}
