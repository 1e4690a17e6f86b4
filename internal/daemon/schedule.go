package daemon

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jellyjams/internal/config"
)

// schedule decides when the next automatic pass fires.
type schedule struct {
	mode     string
	hour     int
	minute   int
	interval time.Duration
}

func parseSchedule(cfg config.Schedule) (schedule, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "", "manual":
		return schedule{mode: "manual"}, nil
	case "daily":
		hour, minute, err := parseClock(cfg.Time)
		if err != nil {
			return schedule{}, err
		}
		return schedule{mode: "daily", hour: hour, minute: minute}, nil
	case "interval":
		if cfg.IntervalHours <= 0 {
			return schedule{}, fmt.Errorf("interval schedule requires a positive interval_hours, got %d", cfg.IntervalHours)
		}
		return schedule{mode: "interval", interval: time.Duration(cfg.IntervalHours) * time.Hour}, nil
	default:
		return schedule{}, fmt.Errorf("unknown schedule mode %q", cfg.Mode)
	}
}

// next returns the next fire time after now. ok is false for manual mode.
func (s schedule) next(now time.Time) (time.Time, bool) {
	switch s.mode {
	case "daily":
		fire := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
		if !fire.After(now) {
			fire = fire.AddDate(0, 0, 1)
		}
		return fire, true
	case "interval":
		return now.Add(s.interval), true
	default:
		return time.Time{}, false
	}
}

func parseClock(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("schedule time must be HH:MM, got %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("schedule time has invalid hour %q", parts[0])
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule time has invalid minute %q", parts[1])
	}
	return hour, minute, nil
}
