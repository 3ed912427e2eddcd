package gate

import (
	"fmt"

	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

// #region gate
// Gate decides whether a searched plan is handed to execution.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then the soft quality floor.
// deviceHard is the hard score of the device assignment (<= 0).
func (g *Gate) Evaluate(b scorer.Breakdown, deviceHard int) GateDecision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	for _, v := range b.Violations {
		vetoes = append(vetoes, VetoSignal{
			Type:         vetoType(v.Kind),
			ElementIndex: v.ElementIndex,
			Reason:       v.Reason,
		})
	}
	if deviceHard < 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:         VetoDevice,
			ElementIndex: -1,
			Reason:       fmt.Sprintf("%d output(s) without a device", -deviceHard),
		})
	}

	quality := Quality(b)

	if len(vetoes) > 0 && !g.config.AllowInfeasible {
		return GateDecision{
			Action:      ActionReject,
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			Quality:     quality,
		}
	}

	// --- Soft pass ---

	if len(vetoes) == 0 && g.config.MinQuality > 0 && quality < g.config.MinQuality {
		floor := VetoSignal{
			Type:         VetoSoftFloor,
			ElementIndex: -1,
			Reason:       "soft score below configured floor",
		}
		return GateDecision{
			Action:      ActionReject,
			Reason:      fmt.Sprintf("quality %.4f below floor %.4f", quality, g.config.MinQuality),
			Vetoed:      true,
			VetoSignals: []VetoSignal{floor},
			Quality:     quality,
		}
	}

	reason := "no hard violations"
	if len(vetoes) > 0 {
		reason = fmt.Sprintf("accepted infeasible plan with %d violation(s)", len(vetoes))
	}
	return GateDecision{
		Action:      ActionAccept,
		Reason:      reason,
		Vetoed:      len(vetoes) > 0,
		VetoSignals: vetoes,
		Quality:     quality,
	}
}

// #endregion gate

// #region helpers

// Quality is 1 minus the weighted mean of the scorers' normalized penalties.
// Scorers that could not penalize anything are left out.
func Quality(b scorer.Breakdown) float64 {
	var sum, weights float64
	for _, r := range b.Scorers {
		if r.MaxReduced == 0 {
			continue
		}
		sum += r.Weight * r.Normalized()
		weights += r.Weight
	}
	if weights == 0 {
		return 1
	}
	return 1 - sum/weights
}

func vetoType(kind string) VetoType {
	switch kind {
	case scorer.KindSilent:
		return VetoSilent
	case scorer.KindDeixis:
		return VetoDeixis
	default:
		return VetoIneligible
	}
}

// #endregion helpers
