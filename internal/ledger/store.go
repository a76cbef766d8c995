package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"karaoke/internal/database"
)

const recordColumns = `id, title, artist, platform, source_language, target_languages, template, media_url,
	mode, status, progress, detail, result_json, result_url, error_message, created_at, updated_at`

// Store is the SQLite-backed ledger.
type Store struct {
	db    *database.DB
	now   func() time.Time
	locks keyedMutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore wraps an opened database.
func NewStore(db *database.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create writes a new PENDING record at progress 0 and returns it.
func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return Record{}, errors.New("ledger: job id is required")
	}
	now := s.now().UTC()
	rec.Status = StatusPending
	rec.Progress = 0
	rec.Result = nil
	rec.ResultURL = ""
	rec.Error = ""
	if rec.Detail == "" {
		rec.Detail = "Queued"
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM jobs WHERE id = ?", rec.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check job id: %w", err)
		}
		if exists > 0 {
			return ErrDuplicateID
		}
		return insertRecord(ctx, tx, rec)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// MergeUpdate overlays p onto the stored record and writes the full merged
// record back, always refreshing UpdatedAt.
func (s *Store) MergeUpdate(ctx context.Context, id string, p Partial) (Record, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	var merged Record
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := scanRecord(tx.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM jobs WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read job: %w", err)
		}
		if current.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrTerminal, id, current.Status)
		}
		p.Apply(&current)
		current.UpdatedAt = s.now().UTC()
		if err := updateRecord(ctx, tx, current); err != nil {
			return err
		}
		merged = current
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return merged, nil
}

// Get returns the record for id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.db.Conn().QueryRowContext(ctx, "SELECT "+recordColumns+" FROM jobs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get job: %w", err)
	}
	return rec, nil
}

// List returns records newest first, optionally restricted to statuses.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (" + database.MakePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Counts returns the number of records per status.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.Conn().QueryContext(ctx, "SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int, len(allStatuses))
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan job count: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec Record) error {
	targets, resultJSON, err := encodeColumns(rec)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO jobs (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		database.NullableString(rec.Title),
		database.NullableString(rec.Artist),
		database.NullableString(rec.Platform),
		database.NullableString(rec.SourceLanguage),
		targets,
		database.NullableString(rec.Template),
		database.NullableString(rec.MediaURL),
		rec.Mode,
		string(rec.Status),
		rec.Progress,
		database.NullableString(rec.Detail),
		resultJSON,
		database.NullableString(rec.ResultURL),
		database.NullableString(rec.Error),
		database.FormatTime(rec.CreatedAt),
		database.FormatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func updateRecord(ctx context.Context, tx *sql.Tx, rec Record) error {
	targets, resultJSON, err := encodeColumns(rec)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE jobs SET
		title = ?, artist = ?, platform = ?, source_language = ?, target_languages = ?, template = ?,
		media_url = ?, mode = ?, status = ?, progress = ?, detail = ?, result_json = ?, result_url = ?,
		error_message = ?, updated_at = ?
		WHERE id = ?`,
		database.NullableString(rec.Title),
		database.NullableString(rec.Artist),
		database.NullableString(rec.Platform),
		database.NullableString(rec.SourceLanguage),
		targets,
		database.NullableString(rec.Template),
		database.NullableString(rec.MediaURL),
		rec.Mode,
		string(rec.Status),
		rec.Progress,
		database.NullableString(rec.Detail),
		resultJSON,
		database.NullableString(rec.ResultURL),
		database.NullableString(rec.Error),
		database.FormatTime(rec.UpdatedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func encodeColumns(rec Record) (any, any, error) {
	var targets any
	if len(rec.TargetLanguages) > 0 {
		data, err := json.Marshal(rec.TargetLanguages)
		if err != nil {
			return nil, nil, fmt.Errorf("encode target languages: %w", err)
		}
		targets = string(data)
	}
	var result any
	if rec.Result != nil {
		data, err := json.Marshal(rec.Result)
		if err != nil {
			return nil, nil, fmt.Errorf("encode result: %w", err)
		}
		result = string(data)
	}
	return targets, result, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		rec             Record
		title           sql.NullString
		artist          sql.NullString
		platform        sql.NullString
		sourceLanguage  sql.NullString
		targetLanguages sql.NullString
		template        sql.NullString
		mediaURL        sql.NullString
		status          string
		detail          sql.NullString
		resultJSON      sql.NullString
		resultURL       sql.NullString
		errorMessage    sql.NullString
		createdAt       string
		updatedAt       string
	)
	if err := scanner.Scan(
		&rec.ID,
		&title,
		&artist,
		&platform,
		&sourceLanguage,
		&targetLanguages,
		&template,
		&mediaURL,
		&rec.Mode,
		&status,
		&rec.Progress,
		&detail,
		&resultJSON,
		&resultURL,
		&errorMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Record{}, err
	}
	rec.Title = title.String
	rec.Artist = artist.String
	rec.Platform = platform.String
	rec.SourceLanguage = sourceLanguage.String
	rec.Template = template.String
	rec.MediaURL = mediaURL.String
	rec.Status = Status(status)
	rec.Detail = detail.String
	rec.ResultURL = resultURL.String
	rec.Error = errorMessage.String
	if targetLanguages.Valid && targetLanguages.String != "" {
		if err := json.Unmarshal([]byte(targetLanguages.String), &rec.TargetLanguages); err != nil {
			return Record{}, fmt.Errorf("decode target languages: %w", err)
		}
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result Result
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return Record{}, fmt.Errorf("decode result: %w", err)
		}
		rec.Result = &result
	}
	var err error
	if rec.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return Record{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return rec, nil
}
