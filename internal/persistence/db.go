// Package persistence provides SQLite-backed storage for match
// results and the event stream.
package persistence

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"hoop-club/internal/game"
)

// DB wraps a SQLite connection for match and event storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed INTEGER NOT NULL,
		level_id TEXT NOT NULL,
		ticks INTEGER NOT NULL,
		score_left INTEGER NOT NULL,
		score_right INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// InsertEvents appends a batch of events. It has the signature of a
// game.BatchSink so it can be attached directly to the event log.
func (db *DB) InsertEvents(batch []game.Event) {
	if len(batch) == 0 {
		return
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		log.Printf("⚠️ event batch insert failed: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events
		(seq, tick, type, agent_id, timestamp, payload)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("⚠️ event batch insert failed: %v", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		_, err := stmt.Exec(
			e.Sequence, e.TickNum, e.Type.String(), e.AgentID,
			e.Timestamp, string(e.Payload),
		)
		if err != nil {
			log.Printf("⚠️ event insert (seq %d): %v", e.Sequence, err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("⚠️ event batch commit failed: %v", err)
	}
}

// MatchRecord is a single finished match.
type MatchRecord struct {
	ID         int64  `db:"id"`
	Seed       int64  `db:"seed"`
	LevelID    string `db:"level_id"`
	Ticks      int64  `db:"ticks"`
	ScoreLeft  int    `db:"score_left"`
	ScoreRight int    `db:"score_right"`
	FinishedAt int64  `db:"finished_at"`
}

// SaveMatch records a finished match.
func (db *DB) SaveMatch(rec MatchRecord) error {
	if rec.FinishedAt == 0 {
		rec.FinishedAt = time.Now().Unix()
	}
	_, err := db.conn.Exec(`INSERT INTO matches
		(seed, level_id, ticks, score_left, score_right, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Seed, rec.LevelID, rec.Ticks, rec.ScoreLeft, rec.ScoreRight,
		rec.FinishedAt,
	)
	return err
}

// RecentMatches returns the most recent N finished matches.
func (db *DB) RecentMatches(limit int) ([]MatchRecord, error) {
	var recs []MatchRecord
	err := db.conn.Select(&recs,
		"SELECT * FROM matches ORDER BY id DESC LIMIT ?", limit)
	return recs, err
}

// EventRecord is a stored event row.
type EventRecord struct {
	Sequence int64  `db:"seq"`
	Tick     int64  `db:"tick"`
	Type     string `db:"type"`
	AgentID  string `db:"agent_id"`
	Payload  string `db:"payload"`
}

// RecentEvents returns the most recent N events, optionally filtered
// by event type.
func (db *DB) RecentEvents(eventType string, limit int) ([]EventRecord, error) {
	var events []EventRecord
	var err error
	if eventType == "" {
		err = db.conn.Select(&events,
			"SELECT seq, tick, type, agent_id, payload FROM events ORDER BY id DESC LIMIT ?",
			limit)
	} else {
		err = db.conn.Select(&events,
			"SELECT seq, tick, type, agent_id, payload FROM events WHERE type = ? ORDER BY id DESC LIMIT ?",
			eventType, limit)
	}
	return events, err
}
