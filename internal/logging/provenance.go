package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/multimodal-planner/internal/planner"
)

const planLogSchema = `
CREATE TABLE IF NOT EXISTS plan_log (
	plan_id     TEXT PRIMARY KEY,
	predicate   TEXT NOT NULL,
	text        TEXT,
	decision    TEXT NOT NULL,
	reason      TEXT,
	hard        INTEGER NOT NULL,
	soft        REAL NOT NULL,
	feasible    INTEGER NOT NULL,
	record_json TEXT,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plan_log_created ON plan_log(created_at);
`

// #region log-plan
// LogPlan writes a provenance entry to the plan_log table.
func LogPlan(db *sql.DB, entry PlanEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO plan_log (plan_id, predicate, text, decision, reason, hard, soft, feasible, record_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.PlanID,
		entry.Predicate,
		nullIfEmpty(entry.Text),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.Hard,
		entry.Soft,
		boolToInt(entry.Feasible),
		nullIfEmpty(entry.RecordJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log plan: %w", err)
	}
	return nil
}

// #endregion log-plan

// #region plan-log

// PlanLog records planner results in SQLite. It implements planner.Recorder.
type PlanLog struct {
	db *sql.DB
}

// NewPlanLog creates the plan_log table if needed.
func NewPlanLog(db *sql.DB) (*PlanLog, error) {
	if _, err := db.Exec(planLogSchema); err != nil {
		return nil, fmt.Errorf("plan log schema: %w", err)
	}
	return &PlanLog{db: db}, nil
}

// RecordPlan stores r with its full record as JSON.
func (l *PlanLog) RecordPlan(_ context.Context, r *planner.Result) error {
	rec := PlanRecord{
		PlanID:      r.ID,
		Sentence:    r.Sentence,
		TalkingTo:   r.TalkingTo,
		Candidate:   r.Candidate.String(),
		Breakdown:   r.Breakdown,
		DeviceHard:  r.DeviceHard,
		DeviceSoft:  r.DeviceSoft,
		Decision:    r.Decision,
		Exhaustive:  r.Search.Exhaustive,
		Evaluations: r.Search.Evaluations,
		RoundID:     r.RoundID,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal plan record: %w", err)
	}
	return LogPlan(l.db, PlanEntry{
		PlanID:     r.ID,
		Predicate:  r.Sentence.Name,
		Text:       r.Text(),
		Decision:   r.Decision.Action,
		Reason:     r.Decision.Reason,
		Hard:       r.Breakdown.Hard + r.DeviceHard,
		Soft:       r.Breakdown.Soft,
		Feasible:   r.Feasible,
		RecordJSON: string(data),
		CreatedAt:  r.CreatedAt,
	})
}

// Recent returns up to limit entries, newest first.
func (l *PlanLog) Recent(limit int) ([]PlanEntry, error) {
	rows, err := l.db.Query(
		`SELECT plan_id, predicate, COALESCE(text, ''), decision, COALESCE(reason, ''), hard, soft, feasible,
		        COALESCE(record_json, ''), created_at
		 FROM plan_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query plan log: %w", err)
	}
	defer rows.Close()

	var out []PlanEntry
	for rows.Next() {
		var (
			e        PlanEntry
			feasible int
			created  string
		)
		if err := rows.Scan(&e.PlanID, &e.Predicate, &e.Text, &e.Decision, &e.Reason, &e.Hard, &e.Soft, &feasible, &e.RecordJSON, &created); err != nil {
			return nil, fmt.Errorf("scan plan log: %w", err)
		}
		e.Feasible = feasible != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Record decodes the JSON record of e.
func (e PlanEntry) Record() (PlanRecord, error) {
	var rec PlanRecord
	if err := json.Unmarshal([]byte(e.RecordJSON), &rec); err != nil {
		return PlanRecord{}, fmt.Errorf("decode plan record %s: %w", e.PlanID, err)
	}
	return rec, nil
}

// #endregion plan-log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
