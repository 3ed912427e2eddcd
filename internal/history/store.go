package history

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// #endregion

// #region schema

const historySchema = `
CREATE TABLE IF NOT EXISTS output_rounds (
    round_id    TEXT PRIMARY KEY,
    seq         INTEGER NOT NULL,
    is_current  INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS output_steps (
    round_id    TEXT NOT NULL REFERENCES output_rounds(round_id) ON DELETE CASCADE,
    object_id   TEXT NOT NULL,
    object_type TEXT NOT NULL DEFAULT '',
    step_json   TEXT NOT NULL,
    PRIMARY KEY (round_id, object_id)
);

CREATE TABLE IF NOT EXISTS object_types (
    object_id   TEXT PRIMARY KEY,
    object_type TEXT NOT NULL
);
`

// #endregion

// #region store

// Store persists the output history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates the history tables on db and returns a Store.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRound writes r as the current round together with new id types.
func (s *Store) SaveRound(r Round, types map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE output_rounds SET is_current = 0`); err != nil {
		return fmt.Errorf("reset current: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO output_rounds (round_id, seq, is_current, created_at)
		 VALUES (?, COALESCE((SELECT MAX(seq) FROM output_rounds), 0) + 1, 1, ?)`,
		r.ID, r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	for id, step := range r.Steps {
		raw, err := json.Marshal(step)
		if err != nil {
			return fmt.Errorf("marshal step %s: %w", id, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO output_steps (round_id, object_id, object_type, step_json) VALUES (?, ?, ?, ?)`,
			r.ID, id, step.ObjectType, string(raw),
		); err != nil {
			return fmt.Errorf("insert step %s: %w", id, err)
		}
	}
	for id, typ := range types {
		if _, err := tx.Exec(
			`INSERT INTO object_types (object_id, object_type) VALUES (?, ?)
			 ON CONFLICT(object_id) DO UPDATE SET object_type = excluded.object_type`,
			id, typ,
		); err != nil {
			return fmt.Errorf("upsert type %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// DeleteRound removes one round and its steps in one transaction.
func (s *Store) DeleteRound(id string) error {
	return s.inTx("delete round", []string{
		`DELETE FROM output_steps WHERE round_id = ?`,
		`DELETE FROM output_rounds WHERE round_id = ?`,
	}, id)
}

// Clear removes every round and type.
func (s *Store) Clear() error {
	return s.inTx("clear history", []string{
		`DELETE FROM output_steps`,
		`DELETE FROM output_rounds`,
		`DELETE FROM object_types`,
	})
}

// inTx runs stmts with the same args and commits only if all succeed.
func (s *Store) inTx(op string, stmts []string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, args...); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return tx.Commit()
}

// #endregion store

// #region load

// Load rebuilds a History from the store and attaches the store as its sink.
func (s *Store) Load() (*History, error) {
	h := New()

	rows, err := s.db.Query(`SELECT round_id, is_current, created_at FROM output_rounds ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, created string
			current     int
		)
		if err := rows.Scan(&id, &current, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan round: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, created)
		index[id] = len(h.rounds)
		if current == 1 {
			h.last = len(h.rounds)
		}
		h.rounds = append(h.rounds, Round{ID: id, CreatedAt: ts, Steps: make(map[string]plan.Step)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	steps, err := s.db.Query(`SELECT round_id, object_id, step_json FROM output_steps`)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer steps.Close()
	for steps.Next() {
		var roundID, objectID, raw string
		if err := steps.Scan(&roundID, &objectID, &raw); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		i, ok := index[roundID]
		if !ok {
			continue
		}
		var st plan.Step
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("decode step %s/%s: %w", roundID, objectID, err)
		}
		h.rounds[i].Steps[objectID] = st
	}
	if err := steps.Err(); err != nil {
		return nil, err
	}

	types, err := s.db.Query(`SELECT object_id, object_type FROM object_types`)
	if err != nil {
		return nil, fmt.Errorf("query types: %w", err)
	}
	defer types.Close()
	for types.Next() {
		var id, typ string
		if err := types.Scan(&id, &typ); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		h.types[id] = typ
	}
	if err := types.Err(); err != nil {
		return nil, err
	}

	h.sink = s
	return h, nil
}

// #endregion load
