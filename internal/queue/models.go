package queue

import (
	"errors"
	"strings"
	"time"
)

// State is a ticket's position in the work queue.
type State string

const (
	StateQueued  State = "queued"
	StateClaimed State = "claimed"
	StateDone    State = "done"
)

var (
	// ErrDuplicateJob is returned when a ticket for the job already exists.
	ErrDuplicateJob = errors.New("queue: job already enqueued")
	// ErrNotClaimed is returned when a worker touches a ticket it does not hold.
	ErrNotClaimed = errors.New("queue: ticket not claimed by worker")
)

// Payload carries everything a worker needs to run the pipeline for a job.
type Payload struct {
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Platform       string `json:"platform"`
	MediaURL       string `json:"media_url,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	Template       string `json:"template,omitempty"`
	Mode           string `json:"mode"`
}

// Query is the text handed to search-based downloaders when no URL is given.
func (p Payload) Query() string {
	parts := make([]string, 0, 2)
	if artist := strings.TrimSpace(p.Artist); artist != "" {
		parts = append(parts, artist)
	}
	if title := strings.TrimSpace(p.Title); title != "" {
		parts = append(parts, title)
	}
	return strings.Join(parts, " - ")
}

// Ticket is one row of the work queue.
type Ticket struct {
	ID            int64
	JobID         string
	Payload       Payload
	State         State
	Worker        string
	CreatedAt     time.Time
	ClaimedAt     *time.Time
	LastHeartbeat *time.Time
	FinishedAt    *time.Time
}

// Stats summarizes ticket counts per state.
type Stats struct {
	Queued  int `json:"queued"`
	Claimed int `json:"claimed"`
	Done    int `json:"done"`
}

// Pending is the number of tickets not yet finished.
func (s Stats) Pending() int {
	return s.Queued + s.Claimed
}
