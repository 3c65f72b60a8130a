package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/easypills/easypills/internal/models"
)

var rruleWeekdays = map[int]rrule.Weekday{
	1: rrule.MO, 2: rrule.TU, 3: rrule.WE, 4: rrule.TH,
	5: rrule.FR, 6: rrule.SA, 7: rrule.SU,
}

// NextDose returns the next administration instant strictly after the
// given time, or nil when the medication is paused, past its end date,
// or has no recurrence. The medication rule is translated to an RFC
// 5545 RRULE and evaluated in local time.
func NextDose(m *models.Medication, after time.Time) (*time.Time, error) {
	if m.Paused || len(m.Times) == 0 {
		return nil, nil
	}
	if !m.Daily && len(m.Days) == 0 && len(m.MonthlyDays) == 0 {
		return nil, nil
	}

	opt := rrule.ROption{Interval: 1}
	switch {
	case m.IsMonthly():
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = append([]int(nil), m.MonthlyDays...)
	case m.Daily:
		opt.Freq = rrule.DAILY
	default:
		opt.Freq = rrule.WEEKLY
		for _, d := range m.Days {
			wd, ok := rruleWeekdays[d]
			if !ok {
				return nil, fmt.Errorf("invalid weekday %d", d)
			}
			opt.Byweekday = append(opt.Byweekday, wd)
		}
	}

	hours, minutes, err := clockComponents(m.Times)
	if err != nil {
		return nil, err
	}
	opt.Byhour = hours
	opt.Byminute = minutes
	opt.Bysecond = []int{0}

	opt.Dtstart = dayStart(m.StartISO, after.AddDate(0, 0, -1))
	if m.EndISO != "" {
		end, err := time.ParseInLocation("2006-01-02", m.EndISO, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", m.EndISO, err)
		}
		opt.Until = end.Add(24*time.Hour - time.Second)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule: %w", err)
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}

func dayStart(iso string, fallback time.Time) time.Time {
	if iso != "" {
		if t, err := time.ParseInLocation("2006-01-02", iso, time.Local); err == nil {
			return t
		}
	}
	return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.Local)
}

// clockComponents collects the distinct hours and minutes of the
// "HH:MM" slots. The rule expands the full hour x minute grid, which
// may include instants no slot names; callers filtering per-slot use
// the today expansion instead. For "next reminder" lookahead the grid
// is close enough and always contains every real slot.
func clockComponents(times []string) ([]int, []int, error) {
	hourSet := map[int]bool{}
	minuteSet := map[int]bool{}
	for _, hm := range times {
		parts := strings.SplitN(hm, ":", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("invalid time %q", hm)
		}
		h, err := strconv.Atoi(parts[0])
		if err != nil || h < 0 || h > 23 {
			return nil, nil, fmt.Errorf("invalid time %q", hm)
		}
		mn, err := strconv.Atoi(parts[1])
		if err != nil || mn < 0 || mn > 59 {
			return nil, nil, fmt.Errorf("invalid time %q", hm)
		}
		hourSet[h] = true
		minuteSet[mn] = true
	}
	var hours, minutes []int
	for h := 0; h < 24; h++ {
		if hourSet[h] {
			hours = append(hours, h)
		}
	}
	for mn := 0; mn < 60; mn++ {
		if minuteSet[mn] {
			minutes = append(minutes, mn)
		}
	}
	return hours, minutes, nil
}
