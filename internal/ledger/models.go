package ledger

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus converts a string (case-insensitive) to a Status.
func ParseStatus(value string) (Status, bool) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

var (
	// ErrDuplicateID is returned by Create when the id already exists.
	ErrDuplicateID = errors.New("ledger: duplicate job id")
	// ErrNotFound is returned when no record exists for the id.
	ErrNotFound = errors.New("ledger: job not found")
	// ErrTerminal is returned by MergeUpdate once a record is COMPLETED or FAILED.
	ErrTerminal = errors.New("ledger: job already terminal")
)

// Result is the structured payload attached at COMPLETED.
type Result struct {
	OutputPath   string `json:"output_path"`
	SubtitlePath string `json:"subtitle_path,omitempty"`
	Language     string `json:"language,omitempty"`
	Segments     int    `json:"segments"`
	Annotated    bool   `json:"annotated"`
	Published    bool   `json:"published"`
}

// Record is one job's ledger entry.
type Record struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	Platform        string    `json:"platform"`
	SourceLanguage  string    `json:"sourceLanguage,omitempty"`
	TargetLanguages []string  `json:"targetLanguages,omitempty"`
	Template        string    `json:"template,omitempty"`
	MediaURL        string    `json:"mediaUrl,omitempty"`
	Mode            string    `json:"mode"`
	Status          Status    `json:"status"`
	Detail          string    `json:"detail"`
	Progress        int       `json:"progress"`
	ResultURL       string    `json:"result_url"`
	Result          *Result   `json:"result"`
	Error           string    `json:"error"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Partial lists the fields a MergeUpdate overlays. Nil fields are left untouched.
type Partial struct {
	Status    *Status
	Progress  *int
	Detail    *string
	ResultURL *string
	Result    *Result
	Error     *string
}

// Processing marks a stage start: PROCESSING at progress with detail.
func Processing(progress int, detail string) Partial {
	status := StatusProcessing
	return Partial{Status: &status, Progress: &progress, Detail: &detail}
}

// Advance raises progress and replaces the detail without touching status.
func Advance(progress int, detail string) Partial {
	return Partial{Progress: &progress, Detail: &detail}
}

// Completed is the terminal success delta.
func Completed(result Result, resultURL string) Partial {
	status := StatusCompleted
	progress := 100
	detail := "Completed"
	return Partial{Status: &status, Progress: &progress, Detail: &detail, Result: &result, ResultURL: &resultURL}
}

// Failed is the terminal failure delta; progress resets to zero.
func Failed(message string) Partial {
	status := StatusFailed
	progress := 0
	detail := "Failed"
	return Partial{Status: &status, Progress: &progress, Detail: &detail, Error: &message}
}

// Apply overlays p onto rec.
func (p Partial) Apply(rec *Record) {
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.Progress != nil {
		rec.Progress = clampProgress(*p.Progress)
	}
	if p.Detail != nil {
		rec.Detail = *p.Detail
	}
	if p.ResultURL != nil {
		rec.ResultURL = *p.ResultURL
	}
	if p.Result != nil {
		result := *p.Result
		rec.Result = &result
	}
	if p.Error != nil {
		rec.Error = *p.Error
	}
}

func clampProgress(value int) int {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}
