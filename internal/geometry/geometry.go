package geometry

import (
	"fmt"
	"math"
	"strconv"
)

// #region vector-math

// Sub returns p - o.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Norm is the euclidean length of p.
func (p Position) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Distance returns the euclidean distance between p and o.
func (p Position) Distance(o Position) float64 {
	return p.Sub(o).Norm()
}

// Dot returns the scalar product.
func (p Position) Dot(o Position) float64 {
	return p.X*o.X + p.Y*o.Y + p.Z*o.Z
}

// Unit returns p scaled to length 1. The zero vector stays zero.
func (p Position) Unit() Position {
	n := p.Norm()
	if n == 0 {
		return Position{}
	}
	return Position{X: p.X / n, Y: p.Y / n, Z: p.Z / n}
}

func (p Position) String() string {
	return fmt.Sprintf("Pos(%.3f,%.3f,%.3f)", p.X, p.Y, p.Z)
}

// #endregion vector-math

// #region position-of

// PositionOf extracts a position from an attribute map. Accepted shapes are
// top-level xposition/yposition/zposition, or a nested "position" map with
// either the same keys or x/y/z. Returns false when no complete triple exists.
func PositionOf(attrs map[string]any) (Position, bool) {
	if p, ok := triple(attrs, "xposition", "yposition", "zposition"); ok {
		return p, true
	}
	nested, ok := attrs["position"].(map[string]any)
	if !ok {
		return Position{}, false
	}
	if p, ok := triple(nested, "xposition", "yposition", "zposition"); ok {
		return p, true
	}
	return triple(nested, "x", "y", "z")
}

func triple(m map[string]any, kx, ky, kz string) (Position, bool) {
	x, okx := toFloat(m[kx])
	y, oky := toFloat(m[ky])
	z, okz := toFloat(m[kz])
	if !okx || !oky || !okz {
		return Position{}, false
	}
	return Position{X: x, Y: y, Z: z}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// #endregion position-of

// #region cones

// ConeRadius returns the proximity radius of an object seen from distance d.
// An explicit "proximityradius" attribute wins over the size category.
func ConeRadius(attrs map[string]any, d float64) float64 {
	if r, ok := toFloat(attrs["proximityradius"]); ok {
		return r
	}
	size, _ := attrs["worldobjectsizecategory"].(string)
	switch SizeCategory(size) {
	case SizeBig:
		return 0.075 + 0.15*d
	case SizeMedium:
		return 0.05 + 0.1*d
	default:
		return 0.025 + 0.05*d
	}
}

// NewCone builds the cone from origin to an object at pos.
func NewCone(id string, origin, pos Position, radius float64) Cone {
	dir := pos.Sub(origin)
	return Cone{
		ObjectID:  id,
		Direction: dir,
		Radius:    radius,
		HalfAngle: math.Atan(radius / dir.Norm()),
	}
}

// ConesIntersect reports whether two cones sharing an origin overlap: the
// directions must point into the same half-space and the half angles must
// together reach the angle between the directions.
func ConesIntersect(a, b Cone) bool {
	dot := a.Direction.Unit().Dot(b.Direction.Unit())
	if dot <= 0 {
		return false
	}
	between := math.Acos(math.Min(1, dot))
	return a.HalfAngle+b.HalfAngle >= between
}

// Intersections computes, for every positioned object, the ids of other
// objects whose cone (seen from origin) intersects its own. Objects without
// a position or located at the origin are skipped. ids[i] names objects[i].
func Intersections(origin Position, ids []string, objects []map[string]any) map[string][]string {
	cones := make([]*Cone, len(objects))
	for i, obj := range objects {
		pos, ok := PositionOf(obj)
		if !ok {
			continue
		}
		d := origin.Distance(pos)
		if d == 0 {
			continue
		}
		c := NewCone(ids[i], origin, pos, ConeRadius(obj, d))
		cones[i] = &c
	}

	out := make(map[string][]string)
	for i, ci := range cones {
		if ci == nil {
			continue
		}
		hits := []string{}
		for j, cj := range cones {
			if i == j || cj == nil {
				continue
			}
			if ConesIntersect(*ci, *cj) {
				hits = append(hits, ids[j])
			}
		}
		out[ids[i]] = hits
	}
	return out
}

// #endregion cones
