package world

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
)

// #region new-model

// NewModel validates and normalizes raw objects into a snapshot. Keys and
// string values are lower-cased recursively. When previous is non-nil, the
// isinvisible flag of every object it knows wins over the incoming data,
// since visibility is toggled at runtime (e.g. an image being displayed).
func NewModel(objects []Object, saliency Saliency, previous *Model) (*Model, error) {
	m := &Model{
		objects:  make([]Object, 0, len(objects)),
		byID:     make(map[string]Object, len(objects)),
		saliency: normalizeSaliency(saliency),
	}

	for i, raw := range objects {
		obj := Object(lowerMap(raw))
		id := obj.ID()
		if id == "" {
			return nil, fmt.Errorf("object %d: %w", i, ErrMissingObjectID)
		}
		if obj.Type() == "" {
			return nil, fmt.Errorf("object %q: %w", id, ErrMissingObjectType)
		}
		if _, dup := m.byID[id]; dup {
			return nil, fmt.Errorf("object %q: %w", id, ErrDuplicateObjectID)
		}
		if previous != nil {
			if old, ok := previous.byID[id]; ok {
				if v, present := old.Bool(KeyInvisible); present {
					obj[KeyInvisible] = v
				}
			}
		}
		m.objects = append(m.objects, obj)
		m.byID[id] = obj
	}

	m.indexAgents()
	m.computeCones()
	return m, nil
}

// #endregion new-model

// #region accessors

// Objects returns all objects in ingestion order.
func (m *Model) Objects() []Object {
	return m.objects
}

// Object looks up an object by id.
func (m *Model) Object(id string) (Object, bool) {
	o, ok := m.byID[strings.ToLower(id)]
	return o, ok
}

// Saliency returns the saliency annotation (may be nil).
func (m *Model) Saliency() Saliency {
	return m.saliency
}

// Robot returns the robot model, or nil if no robot object exists.
func (m *Model) Robot() *RobotModel {
	return m.robot
}

// Users returns all user models.
func (m *Model) Users() []UserModel {
	return m.users
}

// User finds a user model by id, case-insensitively.
func (m *Model) User(id string) (UserModel, bool) {
	for _, u := range m.users {
		if strings.EqualFold(u.ID, id) {
			return u, true
		}
	}
	return UserModel{}, false
}

// Distractors returns the objects sharing target's type, excluding target
// itself and objects currently flagged invisible.
func (m *Model) Distractors(target Object) []Object {
	var out []Object
	for _, o := range m.objects {
		if o.Type() != target.Type() || o.ID() == target.ID() {
			continue
		}
		if o.Invisible() {
			continue
		}
		out = append(out, o)
	}
	return out
}

// ConeNeighbors returns the objects whose attention cone intersects the
// cone of the object with the given id.
func (m *Model) ConeNeighbors(id string) []Object {
	ids := m.cones[strings.ToLower(id)]
	out := make([]Object, 0, len(ids))
	for _, nid := range ids {
		if o, ok := m.byID[nid]; ok {
			out = append(out, o)
		}
	}
	return out
}

// #endregion accessors

// #region mutations

// SetInvisible returns a copy of the model with the isinvisible flag of id set.
func (m *Model) SetInvisible(id string, invisible bool) (*Model, error) {
	id = strings.ToLower(id)
	if _, ok := m.byID[id]; !ok {
		return nil, fmt.Errorf("set invisible %q: %w", id, ErrUnknownObject)
	}
	objects := make([]Object, len(m.objects))
	for i, o := range m.objects {
		c := o.Clone()
		if c.ID() == id {
			c[KeyInvisible] = invisible
		}
		objects[i] = c
	}
	return NewModel(objects, m.saliency, nil)
}

// WithSaliency returns a copy of the model with the saliency annotation
// replaced as a whole.
func (m *Model) WithSaliency(s Saliency) *Model {
	c := *m
	c.saliency = normalizeSaliency(s)
	return &c
}

// #endregion mutations

// #region indexing

func (m *Model) indexAgents() {
	for _, o := range m.objects {
		var pos *geometry.Position
		if p, ok := o.Position(); ok {
			pos = &p
		}
		switch o.Type() {
		case TypeRobot:
			if m.robot == nil {
				m.robot = &RobotModel{ID: o.ID(), Position: pos, Properties: o}
			}
		case TypeUser:
			m.users = append(m.users, UserModel{ID: o.ID(), Position: pos, Properties: o})
		}
	}
}

// computeCones fills the cone-intersection index. Cones originate at the
// robot; without a positioned robot the index stays empty.
func (m *Model) computeCones() {
	m.cones = map[string][]string{}
	if m.robot == nil || m.robot.Position == nil {
		return
	}
	ids := make([]string, len(m.objects))
	raw := make([]map[string]any, len(m.objects))
	for i, o := range m.objects {
		ids[i] = o.ID()
		raw[i] = o
	}
	m.cones = geometry.Intersections(*m.robot.Position, ids, raw)
}

// #endregion indexing

// #region normalize

func normalizeSaliency(s Saliency) Saliency {
	if s == nil {
		return nil
	}
	out := make(Saliency, len(s))
	for k, v := range s {
		out[strings.ToLower(k)] = v
	}
	return out
}

func lowerMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = lowerValue(v)
	}
	return out
}

func lowerValue(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ToLower(t)
	case map[string]any:
		return lowerMap(t)
	case Object:
		return lowerMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = lowerValue(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = strings.ToLower(e)
		}
		return out
	}
	return v
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Object:
		return Object(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// #endregion normalize
