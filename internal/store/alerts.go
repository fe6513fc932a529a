// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

import (
	"strconv"
	"time"

	"github.com/flowmediator/mediator/internal/model"
)

// InsertAlert persists an Alert. Acknowledged is encoded as status 0/1
// per §4.4's wire-compatible boolean convention for this column.
func (s *Store) InsertAlert(a model.Alert) error {
	status := 0
	if a.Acknowledged {
		status = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO alerts (time, node, type, action, priority, what, payload_kind, body, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nowRFC3339(a.Timestamp), a.Node, string(a.Type), string(a.Action), string(a.Priority),
		string(a.Category), string(a.Payload.Kind), a.Payload.Text, status,
	)
	if err != nil {
		return storeErrf("insert_alert", err)
	}
	return nil
}

// SelectAlerts returns up to limit alerts, most recent first.
func (s *Store) SelectAlerts(limit int) ([]model.Alert, error) {
	rows, err := s.db.Query(`
		SELECT id, time, node, type, action, priority, what, payload_kind, body, status
		FROM alerts
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, storeErrf("select_alerts", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		var id int64
		var ts, typ, action, priority, what, payloadKind, body string
		var status int
		if err := rows.Scan(&id, &ts, &a.Node, &typ, &action, &priority, &what, &payloadKind, &body, &status); err != nil {
			return nil, storeErrf("select_alerts scan", err)
		}
		a.ID = strconv.FormatInt(id, 10)
		a.Type = model.ParseAlertType(typ)
		a.Action = model.ParseAlertAction(action)
		a.Priority = model.ParseAlertPriority(priority)
		a.Category = model.ParseAlertCategory(what)
		a.Payload = model.AlertPayload{Kind: model.AlertPayloadKind(payloadKind), Text: body}
		a.Acknowledged = status != 0
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			a.Timestamp = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountAlerts returns the total number of stored alerts.
func (s *Store) CountAlerts() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, storeErrf("count_alerts", err)
	}
	return n, nil
}

// PurgeAlertsBefore deletes alerts with time < cutoff (RFC3339Nano,
// UTC) and returns the number of rows removed.
func (s *Store) PurgeAlertsBefore(cutoff string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM alerts WHERE time < ?`, cutoff)
	if err != nil {
		return 0, storeErrf("purge_alerts_before", err)
	}
	return res.RowsAffected()
}

