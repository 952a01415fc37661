// Package history persists one summary row per measured invocation to
// a local SQLite database. It stores finished results, not the sample
// stream.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sevki/carbonara/internal/errors"
	"github.com/sevki/carbonara/internal/measure"
)

const (
	ErrStorageInit  = errors.ErrorCode("history_storage_init_failed")
	ErrRecordFailed = errors.ErrorCode("history_record_failed")
	ErrQueryFailed  = errors.ErrorCode("history_query_failed")
	ErrStorageClose = errors.ErrorCode("history_storage_close_failed")
)

func init() {
	errors.Register(ErrStorageInit, "Failed to open history database")
	errors.Register(ErrRecordFailed, "Failed to record measurement")
	errors.Register(ErrQueryFailed, "Failed to query measurement history")
	errors.Register(ErrStorageClose, "Failed to close history database")
}

const defaultDirPerm = 0o755

const schema = `
CREATE TABLE IF NOT EXISTS measurements (
    taken_at            INTEGER NOT NULL,
    command             TEXT NOT NULL,
    energy_joules       REAL NOT NULL,
    average_power_watts REAL NOT NULL,
    peak_power_watts    REAL NOT NULL,
    duration_seconds    REAL NOT NULL,
    co2e_grams          REAL NOT NULL,
    method              TEXT NOT NULL
)`

// Entry is one stored measurement row.
type Entry struct {
	TakenAt           time.Time
	Command           string
	EnergyJoules      float64
	AveragePowerWatts float64
	PeakPowerWatts    float64
	DurationSeconds   float64
	CO2eGrams         float64
	Method            string
}

// Store is an append-only measurement log.
type Store struct {
	db *sql.DB
}

// Open creates the database, and its directory, if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return nil, errors.Wrap(ErrStorageInit, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL")
	if err != nil {
		return nil, errors.Wrap(ErrStorageInit, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(ErrStorageInit, err)
	}

	return &Store{db: db}, nil
}

// Record appends one measurement summary for the given command line.
func (s *Store) Record(command string, m *measure.Measurement, co2eGrams float64) error {
	_, err := s.db.Exec(
		`INSERT INTO measurements
		 (taken_at, command, energy_joules, average_power_watts, peak_power_watts, duration_seconds, co2e_grams, method)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(),
		command,
		m.EnergyJoules,
		m.AveragePowerWatts,
		m.PeakPowerWatts,
		m.Duration.Seconds(),
		co2eGrams,
		m.Method.String(),
	)
	if err != nil {
		return errors.Wrap(ErrRecordFailed, err)
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT taken_at, command, energy_joules, average_power_watts, peak_power_watts, duration_seconds, co2e_grams, method
		 FROM measurements ORDER BY taken_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(ErrQueryFailed, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var takenAt int64
		if err := rows.Scan(&takenAt, &e.Command, &e.EnergyJoules, &e.AveragePowerWatts,
			&e.PeakPowerWatts, &e.DurationSeconds, &e.CO2eGrams, &e.Method); err != nil {
			return nil, errors.Wrap(ErrQueryFailed, err)
		}
		e.TakenAt = time.Unix(takenAt, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(ErrQueryFailed, err)
	}

	return entries, nil
}

// Close checkpoints and closes the database.
func (s *Store) Close() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.db.Close()
		return errors.Wrap(ErrStorageClose, err)
	}
	if err := s.db.Close(); err != nil {
		return errors.Wrap(ErrStorageClose, err)
	}

	return nil
}
