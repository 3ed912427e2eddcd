package attrsel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// Attributes that never take part in discrimination.
var ignored = map[string]bool{
	world.KeyID:        true,
	world.KeyInvisible: true,
}

// #region discriminators

// Discriminators returns one map per distractor holding the target
// attributes that tell the target apart from that distractor. A nil
// saliency disables pruning; otherwise attributes that are unannotated or
// weighted below prune are skipped.
func Discriminators(target world.Object, distractors []world.Object, sal world.Saliency, prune float64) []world.Object {
	out := make([]world.Object, len(distractors))
	keys := sortedKeys(target)
	for i, d := range distractors {
		disc := world.Object{}
		for _, k := range keys {
			if ignored[k] {
				continue
			}
			if sal != nil {
				w, ok := sal.Weight(k)
				if !ok || w < prune {
					continue
				}
			}
			if discriminates(target[k], d, k) {
				disc[k] = target[k]
			}
		}
		out[i] = disc
	}
	return out
}

func discriminates(tv any, distractor world.Object, key string) bool {
	dv, ok := distractor[key]
	if !ok {
		return true
	}
	tl, tIsList := tv.([]any)
	dl, dIsList := dv.([]any)
	switch {
	case tIsList != dIsList:
		return true
	case tIsList:
		return !sameElements(tl, dl)
	default:
		return repr(tv) != repr(dv)
	}
}

// sameElements compares two lists as sets, in both directions.
func sameElements(a, b []any) bool {
	as := make(map[string]bool, len(a))
	for _, e := range a {
		as[repr(e)] = true
	}
	bs := make(map[string]bool, len(b))
	for _, e := range b {
		bs[repr(e)] = true
		if !as[repr(e)] {
			return false
		}
	}
	for k := range as {
		if !bs[k] {
			return false
		}
	}
	return true
}

// repr is the comparison form of a value. Maps marshal with sorted keys.
func repr(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case map[string]any, world.Object, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// #endregion discriminators

// #region union

// Union merges the discriminator maps; the first occurrence of a key wins.
func Union(maps []world.Object) world.Object {
	out := world.Object{}
	for _, m := range maps {
		for _, k := range sortedKeys(m) {
			if _, ok := out[k]; !ok {
				out[k] = m[k]
			}
		}
	}
	return out
}

// #endregion union

// #region power-set

// PowerSet enumerates every subset of m, including the empty one, in
// canonical order.
func PowerSet(m world.Object) []world.Object {
	keys := sortedKeys(m)
	sets := []world.Object{{}}
	for _, k := range keys {
		n := len(sets)
		for i := 0; i < n; i++ {
			next := make(world.Object, len(sets[i])+1)
			for kk, vv := range sets[i] {
				next[kk] = vv
			}
			next[k] = m[k]
			sets = append(sets, next)
		}
	}
	SortCanonical(sets)
	return sets
}

// #endregion power-set

// #region validity

// Valid reports whether candidate shares at least one attribute name with
// every per-distractor discriminator map. An empty discriminator map can
// never be covered.
func Valid(candidate world.Object, perDistractor []world.Object) bool {
	for _, disc := range perDistractor {
		covered := false
		for k := range candidate {
			if _, ok := disc[k]; ok {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// #endregion validity

// #region compute

// Compute runs discrimination, union, enumeration and validity filtering.
// When no candidate is valid the non-empty per-distractor maps are returned
// with Partial set.
func Compute(target world.Object, distractors []world.Object, sal world.Saliency, cfg Config) (Candidates, error) {
	per := Discriminators(target, distractors, sal, cfg.Prune)
	union := Union(per)

	limit := cfg.MaxAttributes
	if limit <= 0 {
		limit = DefaultMaxAttributes
	}
	if len(union) > limit {
		return Candidates{PerDistractor: per}, fmt.Errorf("%d attributes (limit %d): %w", len(union), limit, ErrTooManyAttributes)
	}

	var valid []world.Object
	for _, c := range PowerSet(union) {
		if Valid(c, per) {
			valid = append(valid, c)
		}
	}
	if len(valid) > 0 {
		return Candidates{Sets: valid, PerDistractor: per}, nil
	}

	var partial []world.Object
	for _, p := range per {
		if len(p) > 0 {
			partial = append(partial, p)
		}
	}
	SortCanonical(partial)
	return Candidates{Sets: partial, Partial: true, PerDistractor: per}, nil
}

// #endregion compute

// #region ordering

// SortCanonical orders candidates by size, then by their sorted attribute
// names compared lexicographically. This is the tie-break for every strategy.
func SortCanonical(sets []world.Object) {
	sort.SliceStable(sets, func(i, j int) bool {
		if len(sets[i]) != len(sets[j]) {
			return len(sets[i]) < len(sets[j])
		}
		return nameKey(sets[i]) < nameKey(sets[j])
	})
}

func nameKey(m world.Object) string {
	return strings.Join(sortedKeys(m), "\x00")
}

func sortedKeys(m world.Object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion ordering
