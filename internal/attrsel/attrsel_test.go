package attrsel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region helpers
func obj(id string, kv ...any) world.Object {
	o := world.Object{world.KeyID: id, world.KeyType: "vase"}
	for i := 0; i+1 < len(kv); i += 2 {
		o[kv[i].(string)] = kv[i+1]
	}
	return o
}

func keysOf(sets []world.Object) [][]string {
	out := make([][]string, len(sets))
	for i, s := range sets {
		out[i] = sortedKeys(s)
	}
	return out
}

func mustModel(t *testing.T, objects []world.Object, sal world.Saliency) *world.Model {
	t.Helper()
	m, err := world.NewModel(objects, sal, nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

// #endregion helpers

// #region discrimination-tests
func TestDiscriminators_SingleDifference(t *testing.T) {
	target := obj("t", "color", "red", "size", "big")
	d := obj("d", "color", "blue", "size", "big")

	per := Discriminators(target, []world.Object{d}, world.Saliency{"color": 1, "size": 1}, DefaultPrune)

	want := []world.Object{{"color": "red"}}
	if diff := cmp.Diff(want, per); diff != "" {
		t.Errorf("discriminators mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscriminators_ListsAndScalars(t *testing.T) {
	target := obj("t",
		"tags", []any{"a", "b"},
		"parts", []any{"x"},
		"origin", []any{"china"},
		"material", "clay",
	)
	d := obj("d",
		"tags", []any{"b", "a"},
		"parts", []any{"x", "y"},
		"origin", "china",
	)

	per := Discriminators(target, []world.Object{d}, nil, DefaultPrune)

	got := sortedKeys(per[0])
	// tags only differ in order; worldobjecttype is equal on both sides
	want := []string{"material", "origin", "parts"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("discriminating keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscriminators_SaliencyPruning(t *testing.T) {
	target := obj("t", "color", "red", "origin", "china", "weight", "2kg")
	d := obj("d", "color", "blue", "origin", "japan", "weight", "3kg")
	sal := world.Saliency{"color": 1.0, "origin": 0.4}

	per := Discriminators(target, []world.Object{d}, sal, DefaultPrune)

	if diff := cmp.Diff([]string{"color"}, sortedKeys(per[0])); diff != "" {
		t.Errorf("pruned keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscriminators_IdentifierNeverDiscriminates(t *testing.T) {
	per := Discriminators(obj("t", "color", "red"), []world.Object{obj("d", "color", "red")}, nil, DefaultPrune)
	if len(per[0]) != 0 {
		t.Errorf("expected empty discriminator, got %v", per[0])
	}
}

// #endregion discrimination-tests

// #region enumeration-tests
func TestPowerSet_CanonicalOrder(t *testing.T) {
	sets := PowerSet(world.Object{"b": 1, "a": 2, "c": 3})
	want := [][]string{{}, {"a"}, {"b"}, {"c"}, {"a", "b"}, {"a", "c"}, {"b", "c"}, {"a", "b", "c"}}
	if diff := cmp.Diff(want, keysOf(sets)); diff != "" {
		t.Errorf("power set order mismatch (-want +got):\n%s", diff)
	}
}

func TestPowerSet_Empty(t *testing.T) {
	sets := PowerSet(world.Object{})
	if len(sets) != 1 || len(sets[0]) != 0 {
		t.Fatalf("expected {{}}, got %v", sets)
	}
}

func TestCompute_TwoDistractorsNeedBoth(t *testing.T) {
	target := obj("t", "color", "red", "size", "big")
	d1 := obj("d1", "color", "blue", "size", "big")
	d2 := obj("d2", "color", "red", "size", "small")
	sal := world.Saliency{"color": 1, "size": 1}

	cands, err := Compute(target, []world.Object{d1, d2}, sal, DefaultConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if cands.Partial {
		t.Fatal("expected full candidates")
	}
	if diff := cmp.Diff([][]string{{"color", "size"}}, keysOf(cands.Sets)); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	for _, s := range []Strategy{StrategyShortest, StrategyMostSalient, StrategyShortestSalientThreshold, StrategyMaxSaliencyAndShortness} {
		got, err := Select(s, cands.Sets, sal, -1)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if diff := cmp.Diff(world.Object{"color": "red", "size": "big"}, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", s, diff)
		}
	}
}

func TestCompute_PartialFallback(t *testing.T) {
	target := obj("t", "color", "red", "size", "big")
	twin := obj("twin", "color", "red", "size", "big")
	other := obj("other", "color", "blue", "size", "big")

	cands, err := Compute(target, []world.Object{twin, other}, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !cands.Partial {
		t.Fatal("expected partial result when a distractor is indistinguishable")
	}
	if diff := cmp.Diff([]world.Object{{"color": "red"}}, cands.Sets); diff != "" {
		t.Errorf("partial sets mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_NothingDiscriminates(t *testing.T) {
	target := obj("t", "color", "red")
	cands, err := Compute(target, []world.Object{obj("d", "color", "red")}, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(cands.Sets) != 0 {
		t.Errorf("expected no candidates, got %v", cands.Sets)
	}
}

func TestCompute_TooManyAttributes(t *testing.T) {
	target := obj("t")
	d := obj("d")
	for i := 0; i < 5; i++ {
		target[fmt.Sprintf("a%d", i)] = i
	}
	cfg := DefaultConfig()
	cfg.MaxAttributes = 4

	_, err := Compute(target, []world.Object{d}, nil, cfg)
	if !errors.Is(err, ErrTooManyAttributes) {
		t.Fatalf("expected ErrTooManyAttributes, got %v", err)
	}
}

// #endregion enumeration-tests

// #region property-tests
func propertyInputs() []struct {
	target      world.Object
	distractors []world.Object
	sal         world.Saliency
} {
	return []struct {
		target      world.Object
		distractors []world.Object
		sal         world.Saliency
	}{
		{
			obj("t", "color", "red", "size", "big", "origin", "china"),
			[]world.Object{obj("a", "color", "blue", "size", "big"), obj("b", "color", "red", "size", "small", "origin", "china")},
			world.Saliency{"color": 1, "size": 0.8, "origin": 0.6},
		},
		{
			obj("t", "color", "red", "material", "clay", "tags", []any{"old", "rare"}),
			[]world.Object{obj("a", "color", "red", "material", "glass"), obj("b", "tags", []any{"old"}), obj("c", "color", "green", "material", "clay")},
			nil,
		},
		{
			obj("t", "name", "ming", "color", "white"),
			[]world.Object{obj("a", "name", "tang", "color", "white"), obj("b", "name", "song", "color", "blue"), obj("c", "name", "qing")},
			world.Saliency{"name": 1, "color": 1},
		},
	}
}

func TestProperty_CoverageInvariant(t *testing.T) {
	for i, in := range propertyInputs() {
		cands, err := Compute(in.target, in.distractors, in.sal, DefaultConfig())
		if err != nil {
			t.Fatalf("input %d: %v", i, err)
		}
		if cands.Partial {
			continue
		}
		for _, c := range cands.Sets {
			for j, disc := range cands.PerDistractor {
				hit := false
				for k := range c {
					if _, ok := disc[k]; ok {
						hit = true
					}
				}
				if !hit {
					t.Errorf("input %d: candidate %v misses distractor %d (%v)", i, sortedKeys(c), j, disc)
				}
			}
		}
	}
}

func TestProperty_ShortestIsMinimal(t *testing.T) {
	for i, in := range propertyInputs() {
		cands, err := Compute(in.target, in.distractors, in.sal, DefaultConfig())
		if err != nil {
			t.Fatalf("input %d: %v", i, err)
		}
		got, _ := Select(StrategyShortest, cands.Sets, in.sal, -1)
		for _, c := range cands.Sets {
			if len(c) < len(got) {
				t.Errorf("input %d: shortest %v longer than candidate %v", i, sortedKeys(got), sortedKeys(c))
			}
		}
	}
}

func TestProperty_Idempotent(t *testing.T) {
	for i, in := range propertyInputs() {
		a, err := Compute(in.target, in.distractors, in.sal, DefaultConfig())
		if err != nil {
			t.Fatalf("input %d: %v", i, err)
		}
		b, _ := Compute(in.target, in.distractors, in.sal, DefaultConfig())
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("input %d: repeated compute differs (-first +second):\n%s", i, diff)
		}
	}
}

// #endregion property-tests

// #region identify-tests
func TestIdentify_NoDistractors(t *testing.T) {
	m := mustModel(t, []world.Object{
		{"worldobjectid": "vase1", "worldobjecttype": "vase", "color": "red"},
		{"worldobjectid": "cup1", "worldobjecttype": "cup", "color": "red"},
	}, nil)
	target, _ := m.Object("vase1")

	id, err := Identify(m, target, "vase1", DefaultConfig())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if !id.Success || id.Selected != nil || id.Partial {
		t.Errorf("expected success with nil selection, got %+v", id)
	}
	if id.Type != "vase" || id.WorldID != "vase1" {
		t.Errorf("unexpected identity fields %+v", id)
	}
}

func TestIdentify_InvisibleObjectsAreNotDistractors(t *testing.T) {
	m := mustModel(t, []world.Object{
		{"worldobjectid": "vase1", "worldobjecttype": "vase", "color": "red"},
		{"worldobjectid": "vase2", "worldobjecttype": "vase", "color": "blue", "isinvisible": true},
	}, nil)
	target, _ := m.Object("vase1")

	id, err := Identify(m, target, "vase1", DefaultConfig())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if id.Selected != nil {
		t.Errorf("invisible object must not force attributes, got %v", id.Selected)
	}
}

func TestIdentify_Failure(t *testing.T) {
	m := mustModel(t, []world.Object{
		{"worldobjectid": "vase1", "worldobjecttype": "vase", "color": "red"},
		{"worldobjectid": "vase2", "worldobjecttype": "vase", "color": "red"},
	}, world.Saliency{"color": 1})
	target, _ := m.Object("vase1")

	id, err := Identify(m, target, "vase1", DefaultConfig())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if id.Success {
		t.Errorf("expected failure, got %+v", id)
	}
}

func TestIdentify_PartialMergesMaps(t *testing.T) {
	m := mustModel(t, []world.Object{
		{"worldobjectid": "vase1", "worldobjecttype": "vase", "color": "red", "size": "big"},
		{"worldobjectid": "vase2", "worldobjecttype": "vase", "color": "red", "size": "big"},
		{"worldobjectid": "vase3", "worldobjecttype": "vase", "color": "blue", "size": "big"},
		{"worldobjectid": "vase4", "worldobjecttype": "vase", "color": "red", "size": "small"},
	}, world.Saliency{"color": 1, "size": 1})
	target, _ := m.Object("vase1")

	id, err := Identify(m, target, "vase1", DefaultConfig())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if !id.Success || !id.Partial {
		t.Fatalf("expected partial success, got %+v", id)
	}
	if diff := cmp.Diff(world.Object{"color": "red", "size": "big"}, id.Selected); diff != "" {
		t.Errorf("merged partial mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentify_MissingID(t *testing.T) {
	m := mustModel(t, nil, nil)
	_, err := Identify(m, world.Object{"worldobjecttype": "vase"}, "x", DefaultConfig())
	if !errors.Is(err, world.ErrMissingObjectID) {
		t.Fatalf("expected ErrMissingObjectID, got %v", err)
	}
}

// #endregion identify-tests
