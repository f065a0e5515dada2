package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediabatch/internal/batch"
	"mediabatch/internal/media"
)

// BeginRun inserts a run in the running (or planned, for dry runs) state.
func (s *Store) BeginRun(ctx context.Context, info RunInfo) error {
	if strings.TrimSpace(info.ID) == "" {
		return errors.New("begin run: empty run id")
	}
	started := info.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	status := RunRunning
	if info.DryRun {
		status = RunPlanned
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, source, destination, status, dry_run, batch_size, chunk_size, started_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID,
		info.Source,
		info.Destination,
		status,
		boolToInt(info.DryRun),
		info.BatchSize,
		info.ChunkSize,
		started.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordCatalog stores every planned file of a run in one transaction.
func (s *Store) RecordCatalog(ctx context.Context, runID string, plan batch.Plan) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO files (run_id, seq, source_path, destination_name, size_bytes, fingerprint, batch, status)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		seq := 0
		for _, b := range plan.Batches {
			for _, rec := range b.Records {
				seq++
				if _, err := stmt.ExecContext(ctx,
					runID,
					seq,
					rec.SourcePath,
					rec.DestinationName,
					int64(rec.SizeBytes),
					string(rec.Fingerprint),
					b.Number,
					FilePending,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record catalog: %w", err)
	}
	return nil
}

// RecordOutcomes marks catalogued files as copied or failed.
func (s *Store) RecordOutcomes(ctx context.Context, runID string, outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`UPDATE files SET status = ?, attempts = ?, error_message = ?
            WHERE run_id = ? AND source_path = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range outcomes {
			status := FileCopied
			if o.Err != nil {
				status = FileFailed
			}
			if _, err := stmt.ExecContext(ctx, status, o.Attempts, nullableString(errorText(o.Err)), runID, o.SourcePath); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record outcomes: %w", err)
	}
	return nil
}

// FinishRun writes the run summary.
func (s *Store) FinishRun(ctx context.Context, runID string, summary Summary) error {
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	status := summary.Status
	if status == "" {
		status = RunCompleted
		if summary.Err != nil || summary.Failed > 0 {
			status = RunFailed
		}
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET
            status = ?, finished_at = ?, entries_seen = ?, unique_files = ?, duplicates = ?,
            fingerprint_failures = ?, skipped_dirs = ?, batches = ?, copied = ?, failed = ?,
            bytes_copied = ?, error_message = ?
        WHERE id = ?`,
		status,
		finished.UTC().Format(time.RFC3339Nano),
		summary.EntriesSeen,
		summary.Unique,
		summary.Duplicates,
		summary.FingerprintFailures,
		summary.SkippedDirs,
		summary.Batches,
		summary.Copied,
		summary.Failed,
		int64(summary.BytesCopied),
		nullableString(errorText(summary.Err)),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, source, destination, status, dry_run, batch_size, chunk_size, started_at, finished_at,
    entries_seen, unique_files, duplicates, fingerprint_failures, skipped_dirs, batches, copied, failed,
    bytes_copied, error_message`

// ListRuns returns runs newest first. A limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by id, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return run, err
}

// RunFiles returns the catalogued files of a run in catalog order.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]File, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, source_path, destination_name, size_bytes, fingerprint, batch, status, attempts, error_message
        FROM files WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var (
			f           File
			size        int64
			fingerprint string
			errMsg      sql.NullString
		)
		if err := rows.Scan(&f.Seq, &f.SourcePath, &f.DestinationName, &size, &fingerprint, &f.Batch, &f.Status, &f.Attempts, &errMsg); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.SizeBytes = uint64(size)
		f.Fingerprint = media.Fingerprint(fingerprint)
		f.ErrorMessage = errMsg.String
		files = append(files, f)
	}
	return files, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run      Run
		dryRun   int
		started  string
		finished sql.NullString
		bytes    int64
		errMsg   sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.Source, &run.Destination, &run.Status, &dryRun, &run.BatchSize, &run.ChunkSize,
		&started, &finished, &run.EntriesSeen, &run.Unique, &run.Duplicates, &run.FingerprintFailures,
		&run.SkippedDirs, &run.Batches, &run.Copied, &run.Failed, &bytes, &errMsg,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.DryRun = dryRun != 0
	run.BytesCopied = uint64(bytes)
	run.ErrorMessage = errMsg.String
	if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}
