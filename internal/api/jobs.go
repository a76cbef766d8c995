package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"karaoke/internal/language"
	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
	"karaoke/internal/services"
)

// JobLedger is the ledger surface the service needs.
type JobLedger interface {
	Create(ctx context.Context, rec ledger.Record) (ledger.Record, error)
	MergeUpdate(ctx context.Context, id string, p ledger.Partial) (ledger.Record, error)
	Get(ctx context.Context, id string) (ledger.Record, error)
	List(ctx context.Context, statuses ...ledger.Status) ([]ledger.Record, error)
}

// JobQueue accepts tickets for the worker pool.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string, payload queue.Payload) (*queue.Ticket, error)
}

// JobService exposes submit, status and list operations.
type JobService struct {
	ledger        JobLedger
	queue         JobQueue
	logger        *slog.Logger
	defaultTarget string
	newID         func() string
}

// Option configures a JobService.
type Option func(*JobService)

// WithIDGenerator replaces uuid job ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *JobService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithDefaultTarget sets the annotation language used when a request names none.
func WithDefaultTarget(tag string) Option {
	return func(s *JobService) {
		if tag = strings.TrimSpace(tag); tag != "" {
			s.defaultTarget = tag
		}
	}
}

// NewJobService wires the ledger and queue.
func NewJobService(jobs JobLedger, tickets JobQueue, logger *slog.Logger, opts ...Option) *JobService {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &JobService{
		ledger:        jobs,
		queue:         tickets,
		logger:        logging.NewComponentLogger(logger, "api"),
		defaultTarget: "ko",
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates req, records a PENDING job and queues it. Validation
// failures wrap services.ErrValidation.
func (s *JobService) Submit(ctx context.Context, req CreateJobRequest) (ledger.Record, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return ledger.Record{}, services.Wrap(services.ErrValidation, "api", "submit", "invalid job request", err)
	}

	targets := req.TargetLanguages
	if len(targets) == 0 {
		targets = []string{s.defaultTarget}
	}
	targets, err := language.NormalizeList(targets)
	if err != nil {
		return ledger.Record{}, services.Wrap(services.ErrValidation, "api", "submit", "invalid target language", err)
	}
	mode := req.Mode()

	rec, err := s.ledger.Create(ctx, ledger.Record{
		ID:              s.newID(),
		Title:           req.Title,
		Artist:          req.Artist,
		Platform:        req.Platform,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguages: targets,
		Template:        req.Template,
		MediaURL:        req.MediaURL,
		Mode:            string(mode),
		Detail:          "Queued",
	})
	if err != nil {
		return ledger.Record{}, fmt.Errorf("create job: %w", err)
	}

	ctx = services.WithJobID(ctx, rec.ID)
	mediaURL := req.MediaURL
	if req.UseMockData {
		mediaURL = ""
	}
	payload := queue.Payload{
		Title:          req.Title,
		Artist:         req.Artist,
		Platform:       req.Platform,
		MediaURL:       mediaURL,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: targets[0],
		Template:       req.Template,
		Mode:           string(mode),
	}
	if _, err := s.queue.Enqueue(ctx, rec.ID, payload); err != nil {
		if _, markErr := s.ledger.MergeUpdate(context.WithoutCancel(ctx), rec.ID, ledger.Failed("enqueue failed: "+err.Error())); markErr != nil {
			err = errors.Join(err, markErr)
		}
		return ledger.Record{}, fmt.Errorf("enqueue job: %w", err)
	}

	logging.WithContext(ctx, s.logger).Info("job submitted",
		logging.String(logging.FieldEventType, "job_submitted"),
		logging.String("mode", string(mode)),
		logging.String("target_language", targets[0]),
	)
	return rec, nil
}

// Get returns the record for id; ledger.ErrNotFound when absent.
func (s *JobService) Get(ctx context.Context, id string) (ledger.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ledger.Record{}, ledger.ErrNotFound
	}
	return s.ledger.Get(ctx, id)
}

// List returns records newest first, optionally filtered by status names.
func (s *JobService) List(ctx context.Context, statusFilters ...string) ([]ledger.Record, error) {
	statuses, err := ParseStatuses(statusFilters)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []ledger.Record{}
	}
	return records, nil
}

// ParseStatuses converts comma-separated or repeated status names into
// distinct ledger statuses.
func ParseStatuses(values []string) ([]ledger.Status, error) {
	var statuses []ledger.Status
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, ok := ledger.ParseStatus(part)
			if !ok {
				return nil, services.Wrap(services.ErrValidation, "api", "list", fmt.Sprintf("unknown status %q", strings.TrimSpace(part)), nil)
			}
			if !funk.Contains(statuses, status) {
				statuses = append(statuses, status)
			}
		}
	}
	return statuses, nil
}
