package daemon

import (
	"testing"
	"time"

	"jellyjams/internal/config"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Schedule
		mode    string
		wantErr bool
	}{
		{name: "manual", cfg: config.Schedule{Mode: "manual"}, mode: "manual"},
		{name: "empty defaults to manual", cfg: config.Schedule{}, mode: "manual"},
		{name: "daily", cfg: config.Schedule{Mode: "daily", Time: "03:30"}, mode: "daily"},
		{name: "interval", cfg: config.Schedule{Mode: "interval", IntervalHours: 6}, mode: "interval"},
		{name: "daily bad clock", cfg: config.Schedule{Mode: "daily", Time: "25:00"}, wantErr: true},
		{name: "daily missing minute", cfg: config.Schedule{Mode: "daily", Time: "12"}, wantErr: true},
		{name: "interval non-positive", cfg: config.Schedule{Mode: "interval"}, wantErr: true},
		{name: "unknown mode", cfg: config.Schedule{Mode: "hourly"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sched, err := parseSchedule(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSchedule failed: %v", err)
			}
			if sched.mode != tc.mode {
				t.Fatalf("expected mode %q, got %q", tc.mode, sched.mode)
			}
		})
	}
}

func TestScheduleNextDaily(t *testing.T) {
	sched, err := parseSchedule(config.Schedule{Mode: "daily", Time: "06:15"})
	if err != nil {
		t.Fatalf("parseSchedule failed: %v", err)
	}

	now := time.Date(2026, 3, 10, 5, 0, 0, 0, time.Local)
	next, ok := sched.next(now)
	if !ok {
		t.Fatal("daily schedule should produce a next run")
	}
	want := time.Date(2026, 3, 10, 6, 15, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}

	now = time.Date(2026, 3, 10, 7, 0, 0, 0, time.Local)
	next, _ = sched.next(now)
	want = time.Date(2026, 3, 11, 6, 15, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Fatalf("expected next day %v, got %v", want, next)
	}
}

func TestScheduleNextInterval(t *testing.T) {
	sched, err := parseSchedule(config.Schedule{Mode: "interval", IntervalHours: 4})
	if err != nil {
		t.Fatalf("parseSchedule failed: %v", err)
	}
	now := time.Now()
	next, ok := sched.next(now)
	if !ok {
		t.Fatal("interval schedule should produce a next run")
	}
	if got := next.Sub(now); got != 4*time.Hour {
		t.Fatalf("expected 4h interval, got %v", got)
	}
}

func TestScheduleNextManual(t *testing.T) {
	sched, err := parseSchedule(config.Schedule{Mode: "manual"})
	if err != nil {
		t.Fatalf("parseSchedule failed: %v", err)
	}
	if _, ok := sched.next(time.Now()); ok {
		t.Fatal("manual schedule should never fire")
	}
}
