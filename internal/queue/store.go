package queue

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

const ticketColumns = `id, job_id, payload_json, state, worker, created_at, claimed_at, last_heartbeat, finished_at`

// Store is the SQLite-backed work queue.
type Store struct {
	db  *database.DB
	now func() time.Time
}

// NewStore wraps an opened database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Enqueue adds a queued ticket for jobID.
func (s *Store) Enqueue(ctx context.Context, jobID string, payload Payload) (*Ticket, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.New("queue: job id is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	now := s.now().UTC()

	var id int64
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM queue_items WHERE job_id = ?", jobID).Scan(&exists); err != nil {
			return fmt.Errorf("check job id: %w", err)
		}
		if exists > 0 {
			return ErrDuplicateJob
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO queue_items (job_id, payload_json, state, created_at) VALUES (?, ?, ?, ?)`,
			jobID, string(data), string(StateQueued), database.FormatTime(now),
		)
		if err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Ticket{ID: id, JobID: jobID, Payload: payload, State: StateQueued, CreatedAt: now}, nil
}

// Claim hands the oldest queued ticket to worker. It returns nil when the
// queue is empty.
func (s *Store) Claim(ctx context.Context, worker string) (*Ticket, error) {
	var claimed *Ticket
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		ticket, err := scanTicket(tx.QueryRowContext(ctx,
			"SELECT "+ticketColumns+" FROM queue_items WHERE state = ? ORDER BY id LIMIT 1",
			string(StateQueued),
		))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("select queued ticket: %w", err)
		}
		now := s.now().UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE queue_items SET state = ?, worker = ?, claimed_at = ?, last_heartbeat = ? WHERE id = ?`,
			string(StateClaimed), worker, database.FormatTime(now), database.FormatTime(now), ticket.ID,
		); err != nil {
			return fmt.Errorf("claim ticket: %w", err)
		}
		ticket.State = StateClaimed
		ticket.Worker = worker
		ticket.ClaimedAt = &now
		ticket.LastHeartbeat = &now
		claimed = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Heartbeat refreshes the liveness timestamp of a claimed ticket.
func (s *Store) Heartbeat(ctx context.Context, id int64, worker string) error {
	res, err := s.db.Exec(ctx,
		`UPDATE queue_items SET last_heartbeat = ? WHERE id = ? AND state = ? AND worker = ?`,
		database.FormatTime(s.now().UTC()), id, string(StateClaimed), worker,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return requireRow(res)
}

// Finish marks a claimed ticket done.
func (s *Store) Finish(ctx context.Context, id int64, worker string) error {
	res, err := s.db.Exec(ctx,
		`UPDATE queue_items SET state = ?, finished_at = ? WHERE id = ? AND state = ? AND worker = ?`,
		string(StateDone), database.FormatTime(s.now().UTC()), id, string(StateClaimed), worker,
	)
	if err != nil {
		return fmt.Errorf("finish ticket: %w", err)
	}
	return requireRow(res)
}

// ReclaimStale closes claimed tickets whose heartbeat is older than cutoff and
// returns their job ids.
func (s *Store) ReclaimStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	var jobIDs []string
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		jobIDs = nil
		rows, err := tx.QueryContext(ctx,
			`SELECT job_id FROM queue_items WHERE state = ? AND (last_heartbeat IS NULL OR last_heartbeat < ?) ORDER BY id`,
			string(StateClaimed), database.FormatTime(cutoff),
		)
		if err != nil {
			return fmt.Errorf("select stale tickets: %w", err)
		}
		for rows.Next() {
			var jobID string
			if err := rows.Scan(&jobID); err != nil {
				rows.Close()
				return fmt.Errorf("scan stale ticket: %w", err)
			}
			jobIDs = append(jobIDs, jobID)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if len(jobIDs) == 0 {
			return nil
		}
		args := make([]any, 0, len(jobIDs)+2)
		args = append(args, string(StateDone), database.FormatTime(s.now().UTC()))
		for _, jobID := range jobIDs {
			args = append(args, jobID)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE queue_items SET state = ?, finished_at = ? WHERE job_id IN (`+database.MakePlaceholders(len(jobIDs))+`)`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("close stale tickets: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobIDs, nil
}

// Get returns the ticket for jobID.
func (s *Store) Get(ctx context.Context, jobID string) (*Ticket, error) {
	ticket, err := scanTicket(s.db.Conn().QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM queue_items WHERE job_id = ?", jobID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// Stats counts tickets per state.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.Conn().QueryContext(ctx, "SELECT state, COUNT(*) FROM queue_items GROUP BY state")
	if err != nil {
		return Stats{}, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			state string
			count int
		)
		if err := rows.Scan(&state, &count); err != nil {
			return Stats{}, fmt.Errorf("scan queue stats: %w", err)
		}
		switch State(state) {
		case StateQueued:
			stats.Queued = count
		case StateClaimed:
			stats.Claimed = count
		case StateDone:
			stats.Done = count
		}
	}
	return stats, rows.Err()
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotClaimed
	}
	return nil
}

func scanTicket(scanner interface{ Scan(dest ...any) error }) (*Ticket, error) {
	var (
		ticket        Ticket
		payload       string
		state         string
		worker        sql.NullString
		createdAt     string
		claimedAt     sql.NullString
		lastHeartbeat sql.NullString
		finishedAt    sql.NullString
	)
	if err := scanner.Scan(
		&ticket.ID,
		&ticket.JobID,
		&payload,
		&state,
		&worker,
		&createdAt,
		&claimedAt,
		&lastHeartbeat,
		&finishedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &ticket.Payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	ticket.State = State(state)
	ticket.Worker = worker.String
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	ticket.CreatedAt = created
	ticket.ClaimedAt = database.TimeFromNull(claimedAt)
	ticket.LastHeartbeat = database.TimeFromNull(lastHeartbeat)
	ticket.FinishedAt = database.TimeFromNull(finishedAt)
	return &ticket, nil
}
