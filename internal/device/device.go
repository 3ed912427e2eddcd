package device

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
)

// #region static

// Static is a device with a fixed position and a linear duration model.
type Static struct {
	spec   Spec
	mod    modality.ID
	bridge Bridge
}

// NewStatic builds a device from its configuration. bridge may be nil.
func NewStatic(spec Spec, bridge Bridge) (*Static, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("device: empty name")
	}
	mod, err := modality.Parse(spec.Modality)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", spec.Name, err)
	}
	return &Static{spec: spec, mod: mod, bridge: bridge}, nil
}

func (d *Static) Name() string { return d.spec.Name }
func (d *Static) Modality() modality.ID { return d.mod }

func (d *Static) Position() (geometry.Position, bool) {
	if d.spec.Position == nil {
		return geometry.Position{}, false
	}
	return *d.spec.Position, true
}

// EstimateDuration counts words for textual content when SecondsPerWord is
// set, otherwise returns the fixed Duration.
func (d *Static) EstimateDuration(content any) float64 {
	if s, ok := content.(string); ok && d.spec.SecondsPerWord > 0 {
		return float64(len(strings.Fields(s))) * d.spec.SecondsPerWord
	}
	return d.spec.Duration
}

func (d *Static) Execute(ctx context.Context, content any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.bridge == nil {
		return nil
	}
	return d.bridge.Send(ctx, Command{Device: d.spec.Name, Modality: d.mod, Content: content})
}

// #endregion static

// #region image-display

// ImageDisplay is an image device that remembers which image is on screen.
// It shows one image at a time; a new image replaces the previous one.
type ImageDisplay struct {
	*Static

	mu      sync.Mutex
	showing string
}

// NewImageDisplay wraps a static image device.
func NewImageDisplay(spec Spec, bridge Bridge) (*ImageDisplay, error) {
	if spec.Modality == "" {
		spec.Modality = string(modality.Image)
	}
	st, err := NewStatic(spec, bridge)
	if err != nil {
		return nil, err
	}
	if st.Modality() != modality.Image {
		return nil, fmt.Errorf("device %s: image display with modality %s", spec.Name, st.Modality())
	}
	return &ImageDisplay{Static: st}, nil
}

// Execute shows the image resource named by content.
func (d *ImageDisplay) Execute(ctx context.Context, content any) error {
	if err := d.Static.Execute(ctx, content); err != nil {
		return err
	}
	d.mu.Lock()
	d.showing = fmt.Sprint(content)
	d.mu.Unlock()
	return nil
}

// IsDisplaying reports whether resource is the image on screen.
func (d *ImageDisplay) IsDisplaying(resource string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return resource != "" && d.showing == resource
}

// #endregion image-display

// #region displaying

// Displayer is implemented by devices that keep visual output on screen.
type Displayer interface {
	IsDisplaying(resource string) bool
}

// #endregion displaying

// #region pool

// Pools groups devices by modality, preserving configuration order.
type Pools map[modality.ID][]Device

// NewPools builds pools from configured specs. Image devices become
// ImageDisplays.
func NewPools(specs []Spec, bridge Bridge) (Pools, error) {
	pools := make(Pools)
	for _, spec := range specs {
		var (
			d   Device
			err error
		)
		if m, perr := modality.Parse(spec.Modality); perr == nil && m == modality.Image {
			d, err = NewImageDisplay(spec, bridge)
		} else {
			d, err = NewStatic(spec, bridge)
		}
		if err != nil {
			return nil, err
		}
		pools[d.Modality()] = append(pools[d.Modality()], d)
	}
	return pools, nil
}

// Find returns the device with the given name.
func (p Pools) Find(name string) (Device, bool) {
	for _, pool := range p {
		for _, d := range pool {
			if d.Name() == name {
				return d, true
			}
		}
	}
	return nil, false
}

// #endregion pool

// #region assign

// Assign picks the device of pool closest to the request's reference point:
// the interlocutor for speech, the object otherwise. Ties and missing
// positions keep pool order.
func Assign(req Request, pool []Device) (Assignment, error) {
	if len(pool) == 0 {
		return Assignment{Request: req}, fmt.Errorf("assign %s: %w", req.Modality, ErrNoDevice)
	}
	ref := reference(req)
	best := pool[0]
	bestDist := distance(best, ref)
	for _, d := range pool[1:] {
		if dist := distance(d, ref); dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return Assignment{Request: req, Device: best, Pool: pool}, nil
}

func reference(req Request) *geometry.Position {
	if req.Modality == modality.Speech {
		return req.Interlocutor
	}
	return req.Object
}

// distance is +Inf when either side has no position, so such devices never
// displace a positioned one.
func distance(d Device, ref *geometry.Position) float64 {
	if ref == nil {
		return math.Inf(1)
	}
	p, ok := d.Position()
	if !ok {
		return math.Inf(1)
	}
	return p.Distance(*ref)
}

// Score reports the device constraints for a set of assignments: one hard
// violation per missing device with a non-empty pool, and one soft penalty
// per strictly closer alternative.
func Score(assignments []Assignment) (hard, soft int) {
	for _, a := range assignments {
		if a.Device == nil {
			if len(a.Pool) > 0 {
				hard--
			}
			continue
		}
		ref := reference(a.Request)
		chosen := distance(a.Device, ref)
		for _, alt := range a.Pool {
			if alt != a.Device && distance(alt, ref) < chosen {
				soft--
			}
		}
	}
	return hard, soft
}

// #endregion assign
