package history

import "time"

// Status describes the lifecycle state of a generation pass.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Pass records a single generation run.
type Pass struct {
	ID            string
	Status        Status
	StartedAt     time.Time
	FinishedAt    time.Time
	PlaylistCount int
	TrackCount    int
	ErrorMessage  string
}

// Finished reports whether the pass has reached a terminal state.
func (p *Pass) Finished() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

// Duration returns the elapsed run time, or zero while the pass is running.
func (p *Pass) Duration() time.Duration {
	if p.FinishedAt.IsZero() {
		return 0
	}
	return p.FinishedAt.Sub(p.StartedAt)
}

// PlaylistRecord captures one playlist written during a pass.
type PlaylistRecord struct {
	ID          int64
	PassID      string
	RemoteID    string
	Name        string
	Type        string
	Owner       string
	TrackCount  int
	CoverSource string
	CreatedAt   time.Time
}
