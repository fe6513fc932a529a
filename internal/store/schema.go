// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

// schemaVersion is the authoritative schema version (§4.4).
const schemaVersion = 4

// schemaDDL creates every table and index named in §4.4. Statements
// are idempotent (IF NOT EXISTS) so Open can run them unconditionally
// against an existing database.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS connections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time TEXT NOT NULL,
	node TEXT,
	action TEXT,
	protocol TEXT,
	src_ip TEXT,
	src_port INTEGER,
	dst_ip TEXT,
	dst_host TEXT,
	dst_port INTEGER,
	uid INTEGER,
	pid INTEGER,
	process TEXT,
	process_args TEXT,
	process_cwd TEXT,
	rule TEXT,
	UNIQUE(node, action, protocol, src_ip, src_port, dst_ip, dst_port, uid, pid, process, process_args)
);

CREATE TABLE IF NOT EXISTS rules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time TEXT NOT NULL,
	node TEXT,
	name TEXT,
	enabled TEXT,
	precedence TEXT,
	action TEXT,
	duration TEXT,
	operator_type TEXT,
	operator_sensitive TEXT,
	operator_operand TEXT,
	operator_data TEXT,
	description TEXT,
	nolog TEXT,
	created TEXT,
	UNIQUE(node, name)
);

CREATE TABLE IF NOT EXISTS alerts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time TEXT NOT NULL,
	node TEXT,
	type TEXT,
	action TEXT,
	priority TEXT,
	what TEXT,
	payload_kind TEXT,
	body TEXT,
	status INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS nodes (
	addr TEXT PRIMARY KEY,
	hostname TEXT,
	daemon_version TEXT,
	daemon_uptime INTEGER,
	daemon_rules INTEGER,
	cons INTEGER,
	cons_dropped INTEGER,
	version TEXT,
	status TEXT,
	last_connection TEXT
);

CREATE TABLE IF NOT EXISTS hosts (what TEXT PRIMARY KEY, hits INTEGER DEFAULT 0);
CREATE TABLE IF NOT EXISTS procs (what TEXT PRIMARY KEY, hits INTEGER DEFAULT 0);
CREATE TABLE IF NOT EXISTS addrs (what TEXT PRIMARY KEY, hits INTEGER DEFAULT 0);
CREATE TABLE IF NOT EXISTS ports (what TEXT PRIMARY KEY, hits INTEGER DEFAULT 0);
CREATE TABLE IF NOT EXISTS users (what TEXT PRIMARY KEY, hits INTEGER DEFAULT 0);

CREATE INDEX IF NOT EXISTS idx_connections_time ON connections(time);
CREATE INDEX IF NOT EXISTS idx_connections_action ON connections(action);
CREATE INDEX IF NOT EXISTS idx_connections_process ON connections(process);
CREATE INDEX IF NOT EXISTS idx_connections_rule ON connections(rule);
CREATE INDEX IF NOT EXISTS idx_connections_node ON connections(node);
CREATE INDEX IF NOT EXISTS idx_rules_time ON rules(time);
CREATE INDEX IF NOT EXISTS idx_rules_node ON rules(node);
CREATE INDEX IF NOT EXISTS idx_alerts_time ON alerts(time);
CREATE INDEX IF NOT EXISTS idx_alerts_node ON alerts(node);
`
