package presenter

import (
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region presenter
// Presentation is what one modality can do for one element.
type Presentation struct {
	Score  float64
	Output any
}

// Presenter scores how well its modality can present each element.
type Presenter interface {
	Modality() modality.ID
	Present(p plan.Predicate, i int, model *world.Model) Presentation
}

// #endregion presenter

// #region speech

// Speech can present every element with non-blank text.
type Speech struct{}

func (Speech) Modality() modality.ID { return modality.Speech }

func (Speech) Present(p plan.Predicate, i int, _ *world.Model) Presentation {
	text := p.Elements[i].Text
	if strings.TrimSpace(text) == "" {
		return Presentation{}
	}
	return Presentation{Score: 1, Output: text}
}

// #endregion speech

// #region spatial

// Spatial presents a referenced object by its position. Gaze and pointing
// share it; the robot never targets itself.
type Spatial struct {
	ID modality.ID
}

// Gaze returns the gaze presenter.
func Gaze() Spatial { return Spatial{ID: modality.Gaze} }

// Pointing returns the pointing presenter.
func Pointing() Spatial { return Spatial{ID: modality.Pointing} }

func (s Spatial) Modality() modality.ID { return s.ID }

func (s Spatial) Present(p plan.Predicate, i int, model *world.Model) Presentation {
	el := p.Elements[i]
	if !el.References() || model == nil {
		return Presentation{}
	}
	if r := model.Robot(); r != nil && strings.EqualFold(r.ID, el.ObjectID) {
		return Presentation{}
	}
	obj, ok := model.Object(el.ObjectID)
	if !ok {
		return Presentation{}
	}
	pos, ok := obj.Position()
	if !ok {
		return Presentation{}
	}
	return Presentation{Score: 1, Output: pos}
}

// #endregion spatial

// #region predicate-gestures

// Gesture presents every element of a predicate whose name is listed,
// with the output named after the matching list.
type Gesture struct {
	ID modality.ID
	// Lists maps output content to predicate names, checked in order.
	Lists []GestureList
}

// GestureList pairs a gesture output with the predicates it highlights.
type GestureList struct {
	Output     string
	Predicates []string
}

// Nodding returns the nodding/headshaking presenter.
func Nodding(nod, shake []string) Gesture {
	return Gesture{ID: modality.NoddingHeadshaking, Lists: []GestureList{
		{Output: "nodding", Predicates: nod},
		{Output: "headshaking", Predicates: shake},
	}}
}

// Waving returns the waving presenter.
func Waving(predicates []string) Gesture {
	return Gesture{ID: modality.Waving, Lists: []GestureList{{Output: "waving", Predicates: predicates}}}
}

func (g Gesture) Modality() modality.ID { return g.ID }

func (g Gesture) Present(p plan.Predicate, _ int, _ *world.Model) Presentation {
	for _, l := range g.Lists {
		if slices.Contains(l.Predicates, p.Name) {
			return Presentation{Score: 1, Output: l.Output}
		}
	}
	return Presentation{}
}

// #endregion predicate-gestures

// #region image

// Image presents image objects by resource URL. Objects name their resource
// with resourceurl, resourcepath or resourcename (resolved under Dir).
type Image struct {
	Dir    string
	Logger *zap.Logger
}

func (im Image) Modality() modality.ID { return modality.Image }

func (im Image) Present(p plan.Predicate, i int, model *world.Model) Presentation {
	el := p.Elements[i]
	if !el.References() || model == nil {
		return Presentation{}
	}
	obj, ok := model.Object(el.ObjectID)
	if !ok || obj.Type() != world.TypeImage {
		return Presentation{}
	}
	u, err := im.resolve(obj)
	if err != nil {
		im.logger().Warn("image not displayable",
			zap.String("object", el.ObjectID), zap.Error(err))
		return Presentation{}
	}
	if u == "" {
		return Presentation{}
	}
	return Presentation{Score: 1, Output: u}
}

func (im Image) resolve(obj world.Object) (string, error) {
	switch {
	case obj.String("resourceurl") != "":
		raw := obj.String("resourceurl")
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("malformed url %q: %w", raw, err)
		}
		if u.Scheme == "" {
			return "", fmt.Errorf("malformed url %q: missing scheme", raw)
		}
		return u.String(), nil
	case obj.String("resourcepath") != "":
		return fileURL(obj.String("resourcepath"))
	case obj.String("resourcename") != "":
		return fileURL(filepath.Join(im.Dir, obj.String("resourcename")))
	}
	return "", nil
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

func (im Image) logger() *zap.Logger {
	if im.Logger == nil {
		return zap.NewNop()
	}
	return im.Logger
}

// #endregion image

// #region table

// Table evaluates every presenter on every element. Modalities without a
// presenter score 0.
func Table(p plan.Predicate, model *world.Model, presenters []Presenter) ([]map[modality.ID]float64, []map[modality.ID]any) {
	scores := make([]map[modality.ID]float64, len(p.Elements))
	outputs := make([]map[modality.ID]any, len(p.Elements))
	for i := range p.Elements {
		scores[i] = make(map[modality.ID]float64, len(modality.All))
		outputs[i] = make(map[modality.ID]any)
		for _, m := range modality.All {
			scores[i][m] = 0
		}
		for _, pr := range presenters {
			pres := pr.Present(p, i, model)
			scores[i][pr.Modality()] = clamp(pres.Score)
			if pres.Output != nil {
				outputs[i][pr.Modality()] = pres.Output
			}
		}
	}
	return scores, outputs
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Defaults returns presenters for all modalities.
func Defaults(nod, shake, wave []string, imageDir string, logger *zap.Logger) []Presenter {
	return []Presenter{
		Speech{},
		Pointing(),
		Gaze(),
		Nodding(nod, shake),
		Waving(wave),
		Image{Dir: imageDir, Logger: logger},
	}
}

// #endregion table
