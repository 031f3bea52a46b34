package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// EntryKind tells what happened to the reminder timer.
type EntryKind string

const (
	KindArmed EntryKind = "armed"
	KindFired EntryKind = "fired"
	KindIdle  EntryKind = "idle"
)

// timeLayout keeps stored timestamps in UTC so they sort as text.
const timeLayout = "2006-01-02T15:04:05Z"

type Entry struct {
	ID           string     `json:"id"`
	Kind         EntryKind  `json:"kind"`
	At           time.Time  `json:"at"`
	FireAt       *time.Time `json:"fire_at,omitempty"`
	DelayMinutes int        `json:"delay_minutes"`
	Reason       string     `json:"reason,omitempty"`
	Message      string     `json:"message,omitempty"`
}

type Database struct {
	db *sql.DB
}

func New(path string) (*Database, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Single writer; also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return database, nil
}

func (d *Database) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reminder_log (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			at TEXT NOT NULL,
			fire_at TEXT,
			delay_minutes INTEGER DEFAULT 0,
			reason TEXT,
			message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminder_log_at ON reminder_log(at)`,
		`CREATE INDEX IF NOT EXISTS idx_reminder_log_kind ON reminder_log(kind, at)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// InsertEntry stores e, assigning an ID if it has none.
func (d *Database) InsertEntry(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	var fireAt sql.NullString
	if e.FireAt != nil {
		fireAt = sql.NullString{String: formatTime(*e.FireAt), Valid: true}
	}

	_, err := d.db.Exec(
		`INSERT INTO reminder_log (id, kind, at, fire_at, delay_minutes, reason, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		string(e.Kind),
		formatTime(e.At),
		fireAt,
		e.DelayMinutes,
		e.Reason,
		e.Message,
	)
	return err
}

// EntriesInRange returns entries recorded in [start, end], oldest first.
func (d *Database) EntriesInRange(start, end time.Time) ([]Entry, error) {
	rows, err := d.db.Query(
		`SELECT id, kind, at, fire_at, delay_minutes, reason, message
		 FROM reminder_log WHERE at >= ? AND at <= ?
		 ORDER BY at ASC, rowid ASC`,
		formatTime(start),
		formatTime(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// LastEntry returns the most recent entry of the given kind, or nil.
func (d *Database) LastEntry(kind EntryKind) (*Entry, error) {
	row := d.db.QueryRow(
		`SELECT id, kind, at, fire_at, delay_minutes, reason, message
		 FROM reminder_log WHERE kind = ? ORDER BY at DESC, rowid DESC LIMIT 1`,
		string(kind),
	)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CountInRange counts entries of kind recorded in [start, end].
func (d *Database) CountInRange(kind EntryKind, start, end time.Time) (int, error) {
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM reminder_log WHERE kind = ? AND at >= ? AND at <= ?`,
		string(kind),
		formatTime(start),
		formatTime(end),
	).Scan(&n)
	return n, err
}

// DeleteBefore removes entries older than t and returns how many were removed.
func (d *Database) DeleteBefore(t time.Time) (int64, error) {
	result, err := d.db.Exec("DELETE FROM reminder_log WHERE at < ?", formatTime(t))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteInRange removes entries recorded in [start, end].
func (d *Database) DeleteInRange(start, end time.Time) (int64, error) {
	result, err := d.db.Exec(
		"DELETE FROM reminder_log WHERE at >= ? AND at <= ?",
		formatTime(start),
		formatTime(end),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// OldestEntryTime returns the timestamp of the first entry, or nil when the
// log is empty.
func (d *Database) OldestEntryTime() (*time.Time, error) {
	var at sql.NullString
	if err := d.db.QueryRow("SELECT MIN(at) FROM reminder_log").Scan(&at); err != nil {
		return nil, err
	}
	if !at.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, at.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e      Entry
		kind   string
		at     string
		fireAt sql.NullString
		reason sql.NullString
		msg    sql.NullString
	)

	if err := s.Scan(&e.ID, &kind, &at, &fireAt, &e.DelayMinutes, &reason, &msg); err != nil {
		return nil, err
	}

	e.Kind = EntryKind(kind)
	e.Reason = reason.String
	e.Message = msg.String

	parsed, err := time.Parse(timeLayout, at)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad timestamp %q: %w", e.ID, at, err)
	}
	e.At = parsed

	if fireAt.Valid {
		t, err := time.Parse(timeLayout, fireAt.String)
		if err != nil {
			return nil, fmt.Errorf("entry %s: bad fire_at %q: %w", e.ID, fireAt.String, err)
		}
		e.FireAt = &t
	}

	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
