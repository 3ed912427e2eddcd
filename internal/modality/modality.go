package modality

import (
	"fmt"
	"sort"
	"strings"
)

// #region parse

// Parse resolves a modality name case-insensitively. "nodding" and
// "headshaking" are accepted as aliases.
func Parse(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "speech":
		return Speech, nil
	case "pointing":
		return Pointing, nil
	case "gaze":
		return Gaze, nil
	case "nodding_headshaking", "nodding", "headshaking":
		return NoddingHeadshaking, nil
	case "waving":
		return Waving, nil
	case "image":
		return Image, nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

// ParseStyle resolves a presentation style name.
func ParseStyle(s string) (Style, error) {
	for _, st := range Styles {
		if string(st) == strings.ToLower(s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}

func rank(id ID) int {
	for i, a := range All {
		if a == id {
			return i
		}
	}
	return len(All)
}

// #endregion parse

// #region set-ops

// NewSet builds a canonical set from ids.
func NewSet(ids ...ID) Set {
	seen := make(map[ID]bool, len(ids))
	out := make(Set, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

// Contains reports membership.
func (s Set) Contains(id ID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

// Empty reports whether no modality is chosen.
func (s Set) Empty() bool {
	return len(s) == 0
}

// Only reports whether s is exactly {id}.
func (s Set) Only(id ID) bool {
	return len(s) == 1 && s[0] == id
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = string(id)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// PowerSet returns every subset of ids ordered by size, then by canonical
// modality order. The empty set comes first.
func PowerSet(ids []ID) []Set {
	base := NewSet(ids...)
	sets := []Set{{}}
	for _, id := range base {
		n := len(sets)
		for i := 0; i < n; i++ {
			next := make(Set, len(sets[i]), len(sets[i])+1)
			copy(next, sets[i])
			sets = append(sets, append(next, id))
		}
	}
	sort.SliceStable(sets, func(i, j int) bool {
		if len(sets[i]) != len(sets[j]) {
			return len(sets[i]) < len(sets[j])
		}
		for k := range sets[i] {
			if sets[i][k] != sets[j][k] {
				return rank(sets[i][k]) < rank(sets[j][k])
			}
		}
		return false
	})
	return sets
}

// #endregion set-ops
