package history

import (
	"context"
	"math"

	"github.com/easypills/easypills/internal/schedule"
)

// DayStats is one day's adherence summary.
type DayStats struct {
	Date       string `json:"date"`
	Taken      int    `json:"taken"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// RangeStats aggregates a trailing window of days, newest first.
//
// Overall is the mean of per-day percentages over every day in the
// window: a day with nothing scheduled contributes 0%, which skews the
// mean downward. Worst excludes zero-total days (a day with nothing
// scheduled is not a missed day); Best has no such guard and ties go
// to the most recent day. Both quirks match the shipped behavior and
// are kept on purpose.
type RangeStats struct {
	Days          []DayStats `json:"days"`
	Overall       int        `json:"overall"`
	Best          DayStats   `json:"best"`
	Worst         DayStats   `json:"worst"`
	PerfectDays   int        `json:"perfectDays"`
	CurrentStreak int        `json:"currentStreak"`
	FirstHalfAvg  float64    `json:"firstHalfAvg"`
	SecondHalfAvg float64    `json:"secondHalfAvg"`
}

// Stats summarizes the trailing window of the given length ending
// today.
func (s *Service) Stats(ctx context.Context, windowDays int) RangeStats {
	if windowDays <= 0 {
		windowDays = 7
	}
	end := s.now()
	start := end.AddDate(0, 0, -(windowDays - 1))
	byDay := s.ForRange(ctx, start, end)

	// Newest first, matching how the report reads.
	days := make([]DayStats, 0, len(byDay))
	for i := len(byDay) - 1; i >= 0; i-- {
		hd := byDay[i]
		taken := 0
		for _, t := range hd.Takes {
			if t.Taken {
				taken++
			}
		}
		total := len(hd.Takes)
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(taken) / float64(total) * 100))
		}
		days = append(days, DayStats{Date: hd.Date, Taken: taken, Total: total, Percentage: pct})
	}

	stats := RangeStats{Days: days, Worst: DayStats{Date: "-", Percentage: 100}}
	if len(days) == 0 {
		stats.Best = DayStats{Date: "-"}
		return stats
	}

	sum := 0
	stats.Best = days[0]
	worstInit := false
	for _, d := range days {
		sum += d.Percentage
		if d.Percentage > stats.Best.Percentage {
			stats.Best = d
		}
		if d.Total > 0 {
			if !worstInit {
				stats.Worst = d
				worstInit = true
			} else if d.Percentage < stats.Worst.Percentage {
				stats.Worst = d
			}
		}
		if d.Percentage == 100 && d.Total > 0 {
			stats.PerfectDays++
		}
	}
	stats.Overall = int(math.Round(float64(sum) / float64(len(days))))

	stats.CurrentStreak = streak(days, schedule.ISODate(end))

	half := len(days) / 2
	if half > 0 {
		stats.FirstHalfAvg = mean(days[:half])
		stats.SecondHalfAvg = mean(days[half:])
	}
	return stats
}

// streak counts consecutive perfect days scanning back from today.
// Days with nothing scheduled neither count nor break the run; today
// still in progress does not break it either.
func streak(days []DayStats, todayISO string) int {
	n := 0
	for _, d := range days {
		if d.Total == 0 {
			continue
		}
		if d.Percentage == 100 {
			n++
			continue
		}
		if d.Date == todayISO {
			continue
		}
		break
	}
	return n
}

func mean(days []DayStats) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0
	for _, d := range days {
		sum += d.Percentage
	}
	return float64(sum) / float64(len(days))
}
