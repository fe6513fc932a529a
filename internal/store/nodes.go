// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

import "time"

// NodeSummary is the durable projection of a model.Node, retained
// across restarts so the UI can show last-known state for a node that
// is currently disconnected.
type NodeSummary struct {
	Address        string
	Hostname       string
	DaemonVersion  string
	DaemonUptime   int64
	DaemonRules    int64
	Connections    int64
	Dropped        int64
	Status         string
	LastConnection string
}

// UpsertNode replaces the stored summary for addr.
func (s *Store) UpsertNode(n NodeSummary, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO nodes (addr, hostname, daemon_version, daemon_uptime, daemon_rules,
		                    cons, cons_dropped, version, status, last_connection)
		VALUES (?, ?, ?, ?, ?, ?, ?, '1', ?, ?)
		ON CONFLICT(addr) DO UPDATE SET
			hostname = excluded.hostname, daemon_version = excluded.daemon_version,
			daemon_uptime = excluded.daemon_uptime, daemon_rules = excluded.daemon_rules,
			cons = excluded.cons, cons_dropped = excluded.cons_dropped,
			status = excluded.status, last_connection = excluded.last_connection
	`, n.Address, n.Hostname, n.DaemonVersion, n.DaemonUptime, n.DaemonRules,
		n.Connections, n.Dropped, n.Status, nowRFC3339(at))
	if err != nil {
		return storeErrf("upsert_node", err)
	}
	return nil
}

// SelectNodes returns every stored node summary.
func (s *Store) SelectNodes() ([]NodeSummary, error) {
	rows, err := s.db.Query(`
		SELECT addr, hostname, daemon_version, daemon_uptime, daemon_rules,
		       cons, cons_dropped, status, last_connection
		FROM nodes
		ORDER BY addr ASC
	`)
	if err != nil {
		return nil, storeErrf("select_nodes", err)
	}
	defer rows.Close()

	var out []NodeSummary
	for rows.Next() {
		var n NodeSummary
		if err := rows.Scan(&n.Address, &n.Hostname, &n.DaemonVersion, &n.DaemonUptime, &n.DaemonRules,
			&n.Connections, &n.Dropped, &n.Status, &n.LastConnection); err != nil {
			return nil, storeErrf("select_nodes scan", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
