package world

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS world_objects (
	object_id     TEXT PRIMARY KEY,
	object_type   TEXT NOT NULL,
	attrs_json    TEXT NOT NULL,
	is_invisible  INTEGER,
	position      INTEGER NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS saliency (
	attribute     TEXT PRIMARY KEY,
	weight        REAL NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists the world object table and the saliency annotation in SQLite.
// It is the world object source consumed by the planner.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	return NewStoreWithDB(db)
}

// NewStoreWithDB runs migrations on an already opened database.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate world: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (history, logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region replace-objects

// ReplaceObjects swaps the whole object table for a fresh ingestion result.
// A stored is_invisible flag survives for every id present in both the old
// and the new table.
func (s *Store) ReplaceObjects(objects []Object) error {
	normalized, err := NewModel(objects, nil, nil)
	if err != nil {
		return fmt.Errorf("replace objects: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	flags := map[string]bool{}
	rows, err := tx.Query(`SELECT object_id, is_invisible FROM world_objects WHERE is_invisible IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}
	for rows.Next() {
		var id string
		var flag int
		if err := rows.Scan(&id, &flag); err != nil {
			rows.Close()
			return fmt.Errorf("scan flag: %w", err)
		}
		flags[id] = flag != 0
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read flags: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM world_objects`); err != nil {
		return fmt.Errorf("clear objects: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, obj := range normalized.Objects() {
		if v, ok := flags[obj.ID()]; ok {
			obj[KeyInvisible] = v
		}
		attrs, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", obj.ID(), err)
		}
		var invisible interface{}
		if v, present := obj.Bool(KeyInvisible); present {
			invisible = boolToInt(v)
		}
		_, err = tx.Exec(
			`INSERT INTO world_objects (object_id, object_type, attrs_json, is_invisible, position, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			obj.ID(), obj.Type(), string(attrs), invisible, i, now,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", obj.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion replace-objects

// #region set-invisible

// SetInvisible toggles the runtime visibility flag of one object.
func (s *Store) SetInvisible(id string, invisible bool) error {
	var attrsJSON string
	err := s.db.QueryRow(`SELECT attrs_json FROM world_objects WHERE object_id = ?`, id).Scan(&attrsJSON)
	if err == sql.ErrNoRows {
		return fmt.Errorf("set invisible %q: %w", id, ErrUnknownObject)
	}
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}
	var obj Object
	if err := json.Unmarshal([]byte(attrsJSON), &obj); err != nil {
		return fmt.Errorf("unmarshal %s: %w", id, err)
	}
	obj[KeyInvisible] = invisible
	attrs, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", id, err)
	}
	_, err = s.db.Exec(
		`UPDATE world_objects SET attrs_json = ?, is_invisible = ?, updated_at = ? WHERE object_id = ?`,
		string(attrs), boolToInt(invisible), time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("update object: %w", err)
	}
	return nil
}

// #endregion set-invisible

// #region load

// LoadObjects returns the stored objects in ingestion order.
func (s *Store) LoadObjects() ([]Object, error) {
	rows, err := s.db.Query(`SELECT object_id, attrs_json FROM world_objects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	var out []Object
	for rows.Next() {
		var id, attrsJSON string
		if err := rows.Scan(&id, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		var obj Object
		if err := json.Unmarshal([]byte(attrsJSON), &obj); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", id, err)
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

// LoadModel builds a snapshot from the stored objects and saliency.
func (s *Store) LoadModel() (*Model, error) {
	objects, err := s.LoadObjects()
	if err != nil {
		return nil, err
	}
	sal, err := s.LoadSaliency()
	if err != nil {
		return nil, err
	}
	return NewModel(objects, sal, nil)
}

// #endregion load

// #region saliency

// ReplaceSaliency overwrites the whole saliency annotation.
func (s *Store) ReplaceSaliency(sal Saliency) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM saliency`); err != nil {
		return fmt.Errorf("clear saliency: %w", err)
	}
	for attr, w := range normalizeSaliency(sal) {
		if _, err := tx.Exec(`INSERT INTO saliency (attribute, weight) VALUES (?, ?)`, attr, w); err != nil {
			return fmt.Errorf("insert saliency %s: %w", attr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSaliency returns the stored annotation, or nil when none is stored.
func (s *Store) LoadSaliency() (Saliency, error) {
	rows, err := s.db.Query(`SELECT attribute, weight FROM saliency`)
	if err != nil {
		return nil, fmt.Errorf("query saliency: %w", err)
	}
	defer rows.Close()

	var sal Saliency
	for rows.Next() {
		var attr string
		var w float64
		if err := rows.Scan(&attr, &w); err != nil {
			return nil, fmt.Errorf("scan saliency: %w", err)
		}
		if sal == nil {
			sal = Saliency{}
		}
		sal[attr] = w
	}
	return sal, rows.Err()
}

// #endregion saliency

// #region helpers
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
