// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

import (
	"strings"

	"github.com/flowmediator/mediator/internal/model"
)

// ConnectionRecord is a connections row as read back from the store.
type ConnectionRecord struct {
	ID          int64
	Time        string
	Node        string
	Action      model.RuleAction
	Protocol    string
	SrcIP       string
	SrcPort     int
	DstIP       string
	DstHost     string
	DstPort     int
	UserID      int
	ProcessID   int
	ProcessPath string
	ProcessArgs string
	ProcessCwd  string
	Rule        string
}

// InsertConnection persists a decided Event for node, and bumps the
// five frequency-counter tables (hosts/procs/addrs/ports/users) in the
// same transaction. A duplicate connection (matching the UNIQUE key)
// collapses into the existing row per §8's testable property and does
// not double-count the counters.
func (s *Store) InsertConnection(node string, ev model.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storeErrf("begin insert_connection", err)
	}
	defer tx.Rollback()

	c := ev.Connection
	ruleName := ""
	if ev.Rule != nil {
		ruleName = ev.Rule.Name
	}

	res, err := tx.Exec(`
		INSERT INTO connections
			(time, node, action, protocol, src_ip, src_port, dst_ip, dst_host, dst_port,
			 uid, pid, process, process_args, process_cwd, rule)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(node, action, protocol, src_ip, src_port, dst_ip, dst_port, uid, pid, process, process_args)
		DO NOTHING
	`,
		ev.Time, node, string(c.Action), c.Protocol, c.SrcIP, c.SrcPort, c.DstIP, c.DstHost, c.DstPort,
		c.UserID, c.ProcessID, c.ProcessPath, strings.Join(c.ProcessArgs, " "), c.ProcessCwd, ruleName,
	)
	if err != nil {
		return storeErrf("insert_connection", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return storeErrf("insert_connection rows_affected", err)
	}
	if inserted == 0 {
		if _, err := tx.Exec(`
			UPDATE connections SET time = ?, rule = ?
			WHERE node = ? AND action = ? AND protocol = ? AND src_ip = ? AND src_port = ? AND dst_ip = ?
			  AND dst_port = ? AND uid = ? AND pid = ? AND process = ? AND process_args = ?
		`, ev.Time, ruleName, node, string(c.Action), c.Protocol, c.SrcIP, c.SrcPort, c.DstIP,
			c.DstPort, c.UserID, c.ProcessID, c.ProcessPath, strings.Join(c.ProcessArgs, " ")); err != nil {
			return storeErrf("insert_connection update", err)
		}
	}

	if inserted > 0 {
		if c.DstHost != "" {
			if err := bumpCounter(tx, "hosts", c.DstHost); err != nil {
				return err
			}
		}
		if err := bumpCounter(tx, "procs", c.ProcessPath); err != nil {
			return err
		}
		if c.DstIP != "" {
			if err := bumpCounter(tx, "addrs", c.DstIP); err != nil {
				return err
			}
		}
		if err := bumpCounter(tx, "ports", portKey(c.DstPort)); err != nil {
			return err
		}
		if err := bumpCounter(tx, "users", userKey(c.UserID)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SelectConnections returns up to limit connections, most recent first.
func (s *Store) SelectConnections(limit int) ([]ConnectionRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, time, node, action, protocol, src_ip, src_port, dst_ip, dst_host, dst_port,
		       uid, pid, process, process_args, process_cwd, rule
		FROM connections
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, storeErrf("select_connections", err)
	}
	defer rows.Close()

	var out []ConnectionRecord
	for rows.Next() {
		var r ConnectionRecord
		var action string
		if err := rows.Scan(&r.ID, &r.Time, &r.Node, &action, &r.Protocol, &r.SrcIP, &r.SrcPort,
			&r.DstIP, &r.DstHost, &r.DstPort, &r.UserID, &r.ProcessID, &r.ProcessPath,
			&r.ProcessArgs, &r.ProcessCwd, &r.Rule); err != nil {
			return nil, storeErrf("select_connections scan", err)
		}
		r.Action = model.ParseRuleAction(action)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountConnections returns the total number of stored connections.
func (s *Store) CountConnections() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM connections`).Scan(&n); err != nil {
		return 0, storeErrf("count_connections", err)
	}
	return n, nil
}

// PurgeConnectionsBefore deletes connections with time < cutoff
// (RFC3339Nano, UTC) and returns the number of rows removed.
func (s *Store) PurgeConnectionsBefore(cutoff string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM connections WHERE time < ?`, cutoff)
	if err != nil {
		return 0, storeErrf("purge_connections_before", err)
	}
	return res.RowsAffected()
}
