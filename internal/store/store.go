// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package store is the durable layer (C1, §4.4): a single SQLite
// database holding connections, rules, alerts, node summaries, and the
// five frequency-counter tables the UI's "top talkers" views read from.
// The state actor (C2) is the only caller inside the mediator.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	mediatorerrors "github.com/flowmediator/mediator/internal/errors"
	"github.com/flowmediator/mediator/internal/logging"
)

// Store wraps the SQLite connection pool.
type Store struct {
	db  *sql.DB
	log *logging.Logger
}

// Open opens or creates the database at path. Passing ":memory:" gives
// an in-process database suitable for tests; WAL mode is still
// requested but silently ignored by SQLite for memory databases.
func Open(path string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Default()
	}
	log = log.WithComponent("store")

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, mediatorerrors.Wrap(err, mediatorerrors.KindStore, "open database")
	}
	db.SetMaxOpenConns(1) // single-writer actor; avoid SQLITE_BUSY from concurrent writers

	s := &Store{db: db, log: log}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return mediatorerrors.Wrap(err, mediatorerrors.KindStore, "create schema")
	}
	var current int
	row := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`)
	switch err := row.Scan(&current); err {
	case sql.ErrNoRows:
		if _, err := s.db.Exec(`INSERT INTO schema_version(version) VALUES (?)`, schemaVersion); err != nil {
			return mediatorerrors.Wrap(err, mediatorerrors.KindStore, "stamp schema version")
		}
	case nil:
		if current != schemaVersion {
			s.log.Warn("schema version mismatch, proceeding without migration",
				"on_disk", current, "expected", schemaVersion)
		}
	default:
		return mediatorerrors.Wrap(err, mediatorerrors.KindStore, "read schema version")
	}
	return nil
}

// nowRFC3339 is the store's canonical timestamp format, matching the
// daemon's own wire representation (model.Event.Time).
func nowRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseBoolString(s string) bool {
	return s == "true"
}

func storeErrf(op string, err error) error {
	return mediatorerrors.Wrap(err, mediatorerrors.KindStore, fmt.Sprintf("store: %s", op))
}
