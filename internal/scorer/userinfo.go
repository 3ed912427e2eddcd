package scorer

import (
	"strings"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// User model properties read by UserInfo.
const (
	PropPreferredModality = "preferredmodality"
	PropImpairment        = "impairment"
	PropLanguageSkills    = "languageskills"
	PropVerbose           = "verbose"
)

// UserInfo adapts output to the users being addressed: their preferred
// modality, sensory impairments, language skills and verbosity.
type UserInfo struct {
	W float64
}

func (UserInfo) Name() string { return NameUserInfo }
func (s UserInfo) Weight() float64 { return weightOr1(s.W) }

func (UserInfo) Score(c *plan.Candidate, ctx *Context) Result {
	if ctx == nil || ctx.Model == nil {
		return Result{}
	}
	var specific, avoid, speechOnly, verbose penalty
	for _, u := range ctx.Model.Users() {
		if !addressed(u, ctx.TalkingTo) {
			continue
		}
		props := u.Properties
		if pref := props.String(PropPreferredModality); pref != "" {
			if m, err := modality.Parse(pref); err == nil {
				useSpecific(c, m, &specific)
			}
		}
		switch props.String(PropImpairment) {
		case "seeing":
			avoidModalities(c, []modality.ID{modality.Pointing, modality.Gaze}, &avoid)
		case "hearing":
			avoidModalities(c, []modality.ID{modality.Speech}, &avoid)
		}
		if props.String(PropLanguageSkills) != "" {
			if props.String(PropLanguageSkills) == "low" {
				avoidSpeechOnly(c, &speechOnly)
			}
		} else if v, _ := props.Bool(PropVerbose); v {
			useSpecific(c, modality.Speech, &specific)
			preferAttributive(c, &verbose)
		}
	}
	return Result{
		Soft:       specific.soft + avoid.soft + 2*speechOnly.soft + 2*verbose.soft,
		MaxReduced: specific.max + avoid.max + 2*speechOnly.max + 2*verbose.max,
	}
}

func addressed(u world.UserModel, talkingTo []string) bool {
	for _, id := range talkingTo {
		if strings.EqualFold(id, u.ID) {
			return true
		}
	}
	return false
}

// useSpecific penalizes every presenting element that leaves out m, unless
// m is known to be unable to present it.
func useSpecific(c *plan.Candidate, m modality.ID, p *penalty) {
	for _, comp := range active(c) {
		if v, ok := comp.Presentability[m]; ok && v < plan.EligibleThreshold {
			continue
		}
		p.check(!comp.Modalities.Contains(m), 1)
	}
}

// avoidModalities penalizes each avoided modality in use once per eligible
// alternative the element could have used instead.
func avoidModalities(c *plan.Candidate, avoided []modality.ID, p *penalty) {
	isAvoided := func(m modality.ID) bool {
		for _, a := range avoided {
			if a == m {
				return true
			}
		}
		return false
	}
	for _, comp := range active(c) {
		for _, m := range comp.Modalities {
			if !isAvoided(m) {
				continue
			}
			for _, alt := range comp.EligibleModalities() {
				if !isAvoided(alt) {
					p.soft--
				}
			}
		}
		p.max -= len(avoided)
	}
}

// avoidSpeechOnly penalizes speech-only elements that had other options,
// and any object reference not given as "this <type>".
func avoidSpeechOnly(c *plan.Candidate, p *penalty) {
	for _, comp := range active(c) {
		others := 0
		for _, m := range comp.EligibleModalities() {
			if m != modality.Speech {
				others++
			}
		}
		if comp.Modalities.Only(modality.Speech) {
			p.soft -= others
		}
		p.max -= others
		if comp.Identifier != nil {
			p.check(comp.Style != modality.StyleThisType, 1)
		}
	}
}

func preferAttributive(c *plan.Candidate, p *penalty) {
	for _, comp := range active(c) {
		if comp.Identifier != nil {
			p.check(comp.Style != modality.StyleAttributive, 1)
		}
	}
}
