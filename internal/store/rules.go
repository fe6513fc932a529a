// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

import (
	"database/sql"
	"time"

	"github.com/flowmediator/mediator/internal/model"
)

// InsertRule persists a new Rule for node. A rule with the same
// (node, name) already present has every column except created
// overwritten (RuleAdded and RuleModified share this path; see §4.2).
func (s *Store) InsertRule(node string, r model.Rule) error {
	_, err := s.db.Exec(`
		INSERT INTO rules
			(time, node, name, enabled, precedence, action, duration,
			 operator_type, operator_sensitive, operator_operand, operator_data,
			 description, nolog, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(node, name) DO UPDATE SET
			time = excluded.time, enabled = excluded.enabled, precedence = excluded.precedence,
			action = excluded.action, duration = excluded.duration,
			operator_type = excluded.operator_type, operator_sensitive = excluded.operator_sensitive,
			operator_operand = excluded.operator_operand, operator_data = excluded.operator_data,
			description = excluded.description, nolog = excluded.nolog
	`,
		nowRFC3339(r.Updated), node, r.Name, boolString(r.Enabled), boolString(r.Precedence),
		string(r.Action), string(r.Duration),
		string(r.Operator.Type), boolString(r.Operator.Sensitive), string(r.Operator.Operand), r.Operator.Data,
		r.Description, boolString(r.NoLog), nowRFC3339(r.Created),
	)
	if err != nil {
		return storeErrf("insert_rule", err)
	}
	return nil
}

// UpdateRule is an alias of InsertRule: both RuleAdded and RuleModified
// upsert against the (node, name) key (§4.2's "rule identity is name").
func (s *Store) UpdateRule(node string, r model.Rule) error {
	return s.InsertRule(node, r)
}

// ToggleRule flips a rule's enabled flag without touching its other fields.
func (s *Store) ToggleRule(node, name string, enabled bool) error {
	res, err := s.db.Exec(`UPDATE rules SET enabled = ? WHERE node = ? AND name = ?`,
		boolString(enabled), node, name)
	if err != nil {
		return storeErrf("toggle_rule", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErrf("toggle_rule rows_affected", err)
	}
	if n == 0 {
		return storeErrf("toggle_rule", sql.ErrNoRows)
	}
	return nil
}

// DeleteRule removes a node's rule by name.
func (s *Store) DeleteRule(node, name string) error {
	if _, err := s.db.Exec(`DELETE FROM rules WHERE node = ? AND name = ?`, node, name); err != nil {
		return storeErrf("delete_rule", err)
	}
	return nil
}

// SelectRules returns every rule for node, ordered by name.
func (s *Store) SelectRules(node string) ([]model.Rule, error) {
	rows, err := s.db.Query(`
		SELECT name, enabled, precedence, action, duration,
		       operator_type, operator_sensitive, operator_operand, operator_data,
		       description, nolog, time, created
		FROM rules
		WHERE node = ?
		ORDER BY name ASC
	`, node)
	if err != nil {
		return nil, storeErrf("select_rules", err)
	}
	defer rows.Close()

	var out []model.Rule
	for rows.Next() {
		var r model.Rule
		var enabled, precedence, sensitive, nolog, action, duration, opType, operand, updated, created string
		if err := rows.Scan(&r.Name, &enabled, &precedence, &action, &duration,
			&opType, &sensitive, &operand, &r.Operator.Data, &r.Description, &nolog,
			&updated, &created); err != nil {
			return nil, storeErrf("select_rules scan", err)
		}
		r.Enabled = parseBoolString(enabled)
		r.Precedence = parseBoolString(precedence)
		r.NoLog = parseBoolString(nolog)
		r.Action = model.ParseRuleAction(action)
		r.Duration = model.ParseDuration(duration)
		r.Operator.Type = model.ParseOperatorType(opType)
		r.Operator.Sensitive = parseBoolString(sensitive)
		r.Operator.Operand = model.ParseOperand(operand)
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			r.Updated = t
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.Created = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRules returns the number of rules stored for node.
func (s *Store) CountRules(node string) (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM rules WHERE node = ?`, node).Scan(&n); err != nil {
		return 0, storeErrf("count_rules", err)
	}
	return n, nil
}
