// Package history persists calibration runs in SQLite. Runs and their phase
// results are append-only records keyed by run ID.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/metrics"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for calibration history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			device_name TEXT NOT NULL,
			sources_opposite INTEGER NOT NULL,
			mains_hz REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS phase_results (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			phase TEXT NOT NULL,
			rms_dbfs REAL NOT NULL,
			peak_dbfs REAL NOT NULL,
			snr_db REAL,
			dominance_ratio REAL,
			music_ratio REAL,
			hum_ratio REAL,
			speech_band_ratio REAL NOT NULL,
			band_name TEXT NOT NULL,
			band_low_hz REAL NOT NULL,
			band_high_hz REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			inferred INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_phase_results_run ON phase_results(run_id, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// NextRunID returns one more than the highest stored run ID.
func (s *Store) NextRunID(ctx context.Context) (int, error) {
	var maxID sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM runs`).Scan(&maxID); err != nil {
		return 0, err
	}
	return int(maxID.Int64) + 1, nil
}

// InsertRun stores a new run together with any results it already holds.
func (s *Store) InsertRun(ctx context.Context, run *calibration.Run, mainsHz float64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, device_name, sources_opposite, mains_hz) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Setup.DeviceName,
		boolInt(run.Setup.SourcesOpposite),
		mainsHz,
	)
	if err != nil {
		return fmt.Errorf("insert run %d: %w", run.ID, err)
	}
	if err = insertResults(ctx, tx, run.ID, run.Results()); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendResults adds results to a stored run. Existing results are never
// changed.
func (s *Store) AppendResults(ctx context.Context, runID int, results ...calibration.PhaseResult) (err error) {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		err = fmt.Errorf("append to run %d: %w", runID, ErrRunNotFound)
		return err
	}
	if err = insertResults(ctx, tx, runID, results); err != nil {
		return err
	}
	return tx.Commit()
}

func insertResults(ctx context.Context, tx *sql.Tx, runID int, results []calibration.PhaseResult) error {
	if len(results) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO phase_results (run_id, phase, rms_dbfs, peak_dbfs, snr_db, dominance_ratio, music_ratio, hum_ratio,
			speech_band_ratio, band_name, band_low_hz, band_high_hz, duration_ms, inferred, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, r := range results {
		_, err := stmt.ExecContext(ctx,
			runID,
			r.Phase.String(),
			r.RMSDBFS,
			r.PeakDBFS,
			r.SNRDB.Ptr(),
			r.Dominance.Ptr(),
			r.MusicRatio.Ptr(),
			r.HumRatio.Ptr(),
			r.SpeechBandRatio,
			r.DominantBand.Name,
			r.DominantBand.LowHz,
			r.DominantBand.HighHz,
			r.Duration.Milliseconds(),
			boolInt(r.Inferred),
			r.RecordedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert %s result for run %d: %w", r.Phase, runID, err)
		}
	}
	return nil
}

// LoadRun reads a run and its results in insertion order.
func (s *Store) LoadRun(ctx context.Context, id int) (*calibration.Run, error) {
	var (
		createdAt string
		device    string
		opposite  int
		mainsHz   float64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, device_name, sources_opposite, mains_hz FROM runs WHERE id = ?`, id,
	).Scan(&createdAt, &device, &opposite, &mainsHz)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %d created_at: %w", id, err)
	}

	run := calibration.NewRun(id, created, calibration.Setup{DeviceName: device, SourcesOpposite: opposite != 0})
	results, err := s.loadResults(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Append(results...)
	return run, nil
}

func (s *Store) loadResults(ctx context.Context, runID int) ([]calibration.PhaseResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phase, rms_dbfs, peak_dbfs, snr_db, dominance_ratio, music_ratio, hum_ratio, speech_band_ratio,
			band_name, band_low_hz, band_high_hz, duration_ms, inferred, recorded_at
		 FROM phase_results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []calibration.PhaseResult
	for rows.Next() {
		var (
			r                          calibration.PhaseResult
			phase, recordedAt          string
			snr, dominance, music, hum *float64
			band                       metrics.Band
			durationMs                 int64
			inferred                   int
		)
		if err := rows.Scan(&phase, &r.RMSDBFS, &r.PeakDBFS, &snr, &dominance, &music, &hum, &r.SpeechBandRatio,
			&band.Name, &band.LowHz, &band.HighHz, &durationMs, &inferred, &recordedAt); err != nil {
			return nil, err
		}
		if r.Phase, err = calibration.ParsePhase(phase); err != nil {
			return nil, fmt.Errorf("run %d: %w", runID, err)
		}
		if r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("run %d recorded_at: %w", runID, err)
		}
		r.SNRDB = calibration.FromPtr(snr)
		r.Dominance = calibration.FromPtr(dominance)
		r.MusicRatio = calibration.FromPtr(music)
		r.HumRatio = calibration.FromPtr(hum)
		r.DominantBand = band
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Inferred = inferred != 0
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// MainsHz returns the mains frequency recorded with a run, 0 when hum
// was not measured.
func (s *Store) MainsHz(ctx context.Context, id int) (float64, error) {
	var hz float64
	err := s.db.QueryRowContext(ctx, `SELECT mains_hz FROM runs WHERE id = ?`, id).Scan(&hz)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return hz, err
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID         int
	CreatedAt  time.Time
	DeviceName string
	MainsHz    float64
	Results    int
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// lists every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT r.id, r.created_at, r.device_name, r.mains_hz, COUNT(p.seq)
		FROM runs r LEFT JOIN phase_results p ON p.run_id = r.id
		GROUP BY r.id ORDER BY r.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []RunSummary
	for rows.Next() {
		var (
			sum       RunSummary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.DeviceName, &sum.MainsHz, &sum.Results); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("run %d created_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PriorRuns loads up to n runs stored before runID, oldest first.
func (s *Store) PriorRuns(ctx context.Context, runID, n int) ([]*calibration.Run, error) {
	ids, err := s.priorRunIDs(ctx, runID, n)
	if err != nil {
		return nil, err
	}
	runs := make([]*calibration.Run, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		run, err := s.LoadRun(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// priorRunIDs returns newest first. The rows are closed before any run is
// loaded.
func (s *Store) priorRunIDs(ctx context.Context, runID, n int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE id < ? ORDER BY id DESC LIMIT ?`, runID, n)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
