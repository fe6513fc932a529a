// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

import (
	"database/sql"
	"strconv"
)

// CounterEntry is one row of a "top N" frequency query, ordered by Hits
// descending by the issuing select_stats_by_* query.
type CounterEntry struct {
	What string
	Hits int64
}

func bumpCounter(tx *sql.Tx, table, what string) error {
	query := "INSERT INTO " + table + " (what, hits) VALUES (?, 1) " +
		"ON CONFLICT(what) DO UPDATE SET hits = hits + 1"
	if _, err := tx.Exec(query, what); err != nil {
		return storeErrf("bump_counter:"+table, err)
	}
	return nil
}

func portKey(port int) string {
	return strconv.Itoa(port)
}

func userKey(uid int) string {
	return strconv.Itoa(uid)
}

// selectTop returns the top limit (what, hits) pairs from table ordered
// by hits descending, breaking ties by what ascending for determinism.
func (s *Store) selectTop(table string, limit int) ([]CounterEntry, error) {
	rows, err := s.db.Query(
		"SELECT what, hits FROM "+table+" ORDER BY hits DESC, what ASC LIMIT ?", limit)
	if err != nil {
		return nil, storeErrf("select_stats_by:"+table, err)
	}
	defer rows.Close()

	var out []CounterEntry
	for rows.Next() {
		var e CounterEntry
		if err := rows.Scan(&e.What, &e.Hits); err != nil {
			return nil, storeErrf("select_stats_by scan:"+table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SelectStatsByHost returns the top limit destination hosts by hit count.
func (s *Store) SelectStatsByHost(limit int) ([]CounterEntry, error) { return s.selectTop("hosts", limit) }

// SelectStatsByProcess returns the top limit process paths by hit count.
func (s *Store) SelectStatsByProcess(limit int) ([]CounterEntry, error) { return s.selectTop("procs", limit) }

// SelectStatsByAddress returns the top limit destination addresses by hit count.
func (s *Store) SelectStatsByAddress(limit int) ([]CounterEntry, error) { return s.selectTop("addrs", limit) }

// SelectStatsByPort returns the top limit destination ports by hit count.
func (s *Store) SelectStatsByPort(limit int) ([]CounterEntry, error) { return s.selectTop("ports", limit) }

// SelectStatsByUser returns the top limit user IDs by hit count.
func (s *Store) SelectStatsByUser(limit int) ([]CounterEntry, error) { return s.selectTop("users", limit) }
