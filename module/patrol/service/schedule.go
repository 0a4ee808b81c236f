package service

import (
	"time"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

const defaultToleranceMin = 10

// scheduleAllows reports whether now falls inside the checkpoint's allowed
// visiting window. lastValid is the timestamp of the newest VALID scan of
// the same checkpoint, nil when there has never been one; it only matters
// for INTERVAL schedules.
//
// FIXED_TIME compares on the minute-of-day axis, so a window never crosses
// midnight: 23:55 with 10 minutes of tolerance does not reach 00:03.
func scheduleAllows(cfg domain.ScheduleConfig, now time.Time, lastValid *time.Time) bool {
	switch cfg.Type {
	case domain.ScheduleFixedTime:
		tolerance := cfg.ToleranceMin
		if tolerance <= 0 {
			tolerance = defaultToleranceMin
		}
		nowMin := now.Hour()*60 + now.Minute()
		for _, raw := range cfg.FixedTimes {
			t, err := time.Parse("15:04", raw)
			if err != nil {
				continue
			}
			diff := nowMin - (t.Hour()*60 + t.Minute())
			if diff < 0 {
				diff = -diff
			}
			if diff <= tolerance {
				return true
			}
		}
		return false
	case domain.ScheduleInterval:
		if cfg.IntervalMin <= 0 || lastValid == nil {
			return true
		}
		return now.Sub(*lastValid) >= time.Duration(cfg.IntervalMin)*time.Minute
	default:
		return true
	}
}
