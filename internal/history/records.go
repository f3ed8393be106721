package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"offlinetube/internal/downloads"
)

// Record is one persisted download job.
type Record struct {
	ID              int64     `json:"id"`
	JobID           string    `json:"job_id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Phase           string    `json:"phase"`
	FormatSpec      string    `json:"format_spec,omitempty"`
	DownloadedBytes int64     `json:"downloaded_bytes"`
	TotalBytes      int64     `json:"total_bytes"`
	ErrorMessage    string    `json:"error,omitempty"`
	OutputPath      string    `json:"filepath,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// JobStarted inserts a fresh record for a new job.
func (s *Store) JobStarted(st downloads.JobState) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(
		context.Background(),
		`INSERT INTO download_history (
            job_id, url, title, phase, format_spec, downloaded_bytes, total_bytes,
            started_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID,
		st.URL,
		st.Title,
		string(st.Phase),
		st.FormatSpec,
		st.DownloadedBytes,
		st.TotalBytes,
		st.StartedAt.UTC().Format(time.RFC3339Nano),
		now,
	)
}

// JobUpdated refreshes the progress columns of a running job.
func (s *Store) JobUpdated(st downloads.JobState) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(
		context.Background(),
		`UPDATE download_history
         SET title = ?, phase = ?, format_spec = ?, downloaded_bytes = ?, total_bytes = ?,
             updated_at = ?
         WHERE job_id = ?`,
		st.Title,
		string(st.Phase),
		st.FormatSpec,
		st.DownloadedBytes,
		st.TotalBytes,
		now,
		st.ID,
	)
}

// JobFinished records the terminal state of a job.
func (s *Store) JobFinished(st downloads.JobState) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(
		context.Background(),
		`UPDATE download_history
         SET title = ?, phase = ?, format_spec = ?, downloaded_bytes = ?, total_bytes = ?,
             error_message = ?, output_path = ?, updated_at = ?
         WHERE job_id = ?`,
		st.Title,
		string(st.Phase),
		st.FormatSpec,
		st.DownloadedBytes,
		st.TotalBytes,
		nullableString(st.ErrorMessage),
		nullableString(st.OutputPath),
		now,
		st.ID,
	)
}

// List returns the most recently updated records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, url, title, phase, format_spec, downloaded_bytes, total_bytes,
                error_message, output_path, started_at, updated_at
         FROM download_history
         ORDER BY updated_at DESC
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// GetByJobID fetches a single record; ok is false when it does not exist.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (Record, bool, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, job_id, url, title, phase, format_spec, downloaded_bytes, total_bytes,
                error_message, output_path, started_at, updated_at
         FROM download_history
         WHERE job_id = ?`, jobID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Counts aggregates record totals per phase.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT phase, COUNT(1) FROM download_history GROUP BY phase")
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var phase string
		var n int
		if err := rows.Scan(&phase, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[phase] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// Prune removes terminal records older than the cutoff.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	return s.execWithRetry(ensureContext(ctx),
		`DELETE FROM download_history
         WHERE phase IN (?, ?) AND updated_at < ?`,
		string(downloads.PhaseComplete),
		string(downloads.PhaseFailed),
		cutoff,
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec        Record
		errMsg     sql.NullString
		outputPath sql.NullString
		startedAt  string
		updatedAt  string
	)
	if err := row.Scan(
		&rec.ID, &rec.JobID, &rec.URL, &rec.Title, &rec.Phase, &rec.FormatSpec,
		&rec.DownloadedBytes, &rec.TotalBytes,
		&errMsg, &outputPath, &startedAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	rec.ErrorMessage = errMsg.String
	rec.OutputPath = outputPath.String
	rec.StartedAt = parseTimestamp(startedAt)
	rec.UpdatedAt = parseTimestamp(updatedAt)
	return rec, nil
}

func parseTimestamp(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
