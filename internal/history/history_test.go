package history

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func vaseSteps() []plan.Step {
	return []plan.Step{
		{ElementIndex: 0, ObjectID: "robot1", ObjectType: "robot", Outputs: []plan.Output{{Modality: modality.Speech, DeviceName: "tts", Content: "I"}}},
		{ElementIndex: 1, Outputs: []plan.Output{{Modality: modality.Speech, DeviceName: "tts", Content: "offer"}}},
		{ElementIndex: 2, ObjectID: "vase1", ObjectType: "vase", Outputs: []plan.Output{
			{Modality: modality.Speech, DeviceName: "tts", Content: "this vase"},
			{Modality: modality.Pointing, DeviceName: "arm", Content: "here"},
		}},
	}
}

func TestRecord(t *testing.T) {
	h := New()
	r, err := h.Record(vaseSteps())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if r.ID == "" {
		t.Error("round id must be set")
	}
	if len(r.Steps) != 2 {
		t.Fatalf("expected 2 object steps, got %d", len(r.Steps))
	}
	if _, ok := h.Last().Steps["vase1"]; !ok {
		t.Error("vase1 missing from last round")
	}
	if typ, _ := h.TypeOf("vase1"); typ != "vase" {
		t.Errorf("TypeOf(vase1) = %q", typ)
	}
}

func TestClearLast(t *testing.T) {
	h := New()
	h.Record(vaseSteps())
	h.Record([]plan.Step{{ObjectID: "vase2", ObjectType: "vase"}})

	if err := h.ClearLast(); err != nil {
		t.Fatalf("clear last: %v", err)
	}
	if h.Len() != 1 {
		t.Fatalf("expected 1 round, got %d", h.Len())
	}
	if len(h.Last().Steps) != 0 {
		t.Error("last round must be empty after ClearLast")
	}
	if err := h.ClearLast(); err != nil || h.Len() != 1 {
		t.Errorf("second ClearLast must be a no-op, len=%d err=%v", h.Len(), err)
	}
	if _, ok := h.TypeOf("vase2"); !ok {
		t.Error("types survive ClearLast")
	}
}

func TestClearAll(t *testing.T) {
	h := New()
	h.Record(vaseSteps())
	if err := h.ClearAll(); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if h.Len() != 0 || len(h.Last().Steps) != 0 {
		t.Error("history not empty after ClearAll")
	}
	if _, ok := h.TypeOf("vase1"); ok {
		t.Error("types must be cleared")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store, err := NewStore(openTestDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	h := New().WithSink(store)
	h.Record(vaseSteps())
	h.Record([]plan.Step{{ObjectID: "vase2", ObjectType: "vase", Outputs: []plan.Output{{Modality: modality.Image, DeviceName: "screen", Content: "file:///v.png"}}}})

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 rounds, got %d", loaded.Len())
	}
	last := loaded.Last()
	step, ok := last.Steps["vase2"]
	if !ok {
		t.Fatal("vase2 missing from reloaded last round")
	}
	if step.Outputs[0].DeviceName != "screen" || step.Outputs[0].Content != "file:///v.png" {
		t.Errorf("unexpected step %+v", step)
	}
	if typ, _ := loaded.TypeOf("robot1"); typ != "robot" {
		t.Errorf("TypeOf(robot1) = %q", typ)
	}

	if err := loaded.ClearLast(); err != nil {
		t.Fatalf("clear last: %v", err)
	}
	again, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Len() != 1 || len(again.Last().Steps) != 0 {
		t.Errorf("cleared last round must stay cleared after reload: len=%d last=%v", again.Len(), again.Last().Steps)
	}
}

func TestStore_DeleteRoundIsAtomic(t *testing.T) {
	db := openTestDB(t)
	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	r, err := New().WithSink(store).Record(vaseSteps())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := db.Exec(`CREATE TRIGGER keep_rounds BEFORE DELETE ON output_rounds
		BEGIN SELECT RAISE(ABORT, 'rounds are read-only'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if err := store.DeleteRound(r.ID); err == nil {
		t.Fatal("expected delete to fail")
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 1 || len(loaded.Last().Steps) != 2 {
		t.Errorf("failed delete must leave the round intact: len=%d steps=%v", loaded.Len(), loaded.Last().Steps)
	}

	if _, err := db.Exec(`DROP TRIGGER keep_rounds`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	if err := store.DeleteRound(r.ID); err != nil {
		t.Fatalf("delete round: %v", err)
	}
	var steps int
	if err := db.QueryRow(`SELECT COUNT(*) FROM output_steps`).Scan(&steps); err != nil {
		t.Fatalf("count steps: %v", err)
	}
	if steps != 0 {
		t.Errorf("expected no steps after delete, got %d", steps)
	}
}

type failingSink struct{}

func (failingSink) SaveRound(Round, map[string]string) error { return errors.New("disk full") }
func (failingSink) DeleteRound(string) error { return nil }
func (failingSink) Clear() error { return nil }

func TestRecord_SinkFailureLeavesHistoryUnchanged(t *testing.T) {
	h := New().WithSink(failingSink{})
	if _, err := h.Record(vaseSteps()); err == nil {
		t.Fatal("expected error")
	}
	if h.Len() != 0 {
		t.Error("failed record must not append")
	}
	if _, ok := h.TypeOf("vase1"); ok {
		t.Error("failed record must not add types")
	}
}
