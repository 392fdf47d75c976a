package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/nmarks/creditctl/internal/errors"
	"codeberg.org/nmarks/creditctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()
	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS ticks (
            timestamp INTEGER PRIMARY KEY,
            scenario TEXT,
            setpoint REAL,
            process_variable REAL,
            filtered_variable REAL,
            error REAL,
            p_term REAL,
            i_term REAL,
            d_term REAL,
            output REAL,
            saturated INTEGER
        )
    `)
	return err
}

func (r *sqliteRepository) Store(ctx context.Context, snapshot *TickSnapshot) error {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO ticks (
            timestamp, scenario, setpoint,
            process_variable, filtered_variable, error,
            p_term, i_term, d_term, output, saturated
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            scenario = excluded.scenario,
            setpoint = excluded.setpoint,
            process_variable = excluded.process_variable,
            filtered_variable = excluded.filtered_variable,
            error = excluded.error,
            p_term = excluded.p_term,
            i_term = excluded.i_term,
            d_term = excluded.d_term,
            output = excluded.output,
            saturated = excluded.saturated
    `,
		snapshot.Timestamp.Unix(),
		snapshot.Scenario,
		snapshot.Setpoint,
		snapshot.ProcessVariable,
		snapshot.FilteredVariable,
		snapshot.Error,
		snapshot.PTerm,
		snapshot.ITerm,
		snapshot.DTerm,
		snapshot.Output,
		boolToInt(snapshot.Saturated),
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Last(ctx context.Context) (*TickSnapshot, error) {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.db.QueryRowContext(ctx, `
        SELECT timestamp, scenario, setpoint,
               process_variable, filtered_variable, error,
               p_term, i_term, d_term, output, saturated
        FROM ticks ORDER BY timestamp DESC LIMIT 1
    `)

	var (
		snapshot TickSnapshot
		unix     int64
		sat      int
	)
	err := row.Scan(
		&unix,
		&snapshot.Scenario,
		&snapshot.Setpoint,
		&snapshot.ProcessVariable,
		&snapshot.FilteredVariable,
		&snapshot.Error,
		&snapshot.PTerm,
		&snapshot.ITerm,
		&snapshot.DTerm,
		&snapshot.Output,
		&sat,
	)
	if err == sql.ErrNoRows {
		return nil, errFactory.New(ErrNoSnapshots)
	}
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	snapshot.Timestamp = time.Unix(unix, 0)
	snapshot.Saturated = sat != 0

	return &snapshot, nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}
