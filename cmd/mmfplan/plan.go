package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/planner"
)

// #region plan-cmd

// sentenceFlags are shared by plan and execute.
type sentenceFlags struct {
	predicate string
	modifiers []string
	talkingTo []string
	dryRun    bool
}

func (sf *sentenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sf.predicate, "predicate", "p", "", "predicate name, drives gesture presenters (e.g. greet, agree)")
	cmd.Flags().StringSliceVar(&sf.modifiers, "modifier", nil, "predicate modifiers")
	cmd.Flags().StringSliceVar(&sf.talkingTo, "to", nil, "users the robot is talking to")
	cmd.Flags().BoolVar(&sf.dryRun, "dry-run", false, "do not record the plan in the output history")
}

func (sf *sentenceFlags) sentence(args []string) plan.Predicate {
	p := plan.Predicate{Name: sf.predicate, Modifiers: sf.modifiers, Elements: make([]plan.Element, len(args))}
	for i, a := range args {
		p.Elements[i] = plan.Element{Text: a}
	}
	return p
}

func newPlanCmd(a *app) *cobra.Command {
	var sf sentenceFlags
	cmd := &cobra.Command{
		Use:   "plan ELEMENT...",
		Short: "Plan output for a sentence given as one argument per element",
		Example: `  mmfplan plan -p offer --to user1 robot1 "can show" user1 vase1
  mmfplan plan -p greet --to user1 hello user1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.planSentence(cmd.Context(), sf, args, nil)
			if res != nil {
				if perr := a.printResult(cmd.OutOrStdout(), res); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	sf.register(cmd)
	return cmd
}

// planSentence plans against the persisted world and history. A rejected
// plan is returned together with its error.
func (a *app) planSentence(ctx context.Context, sf sentenceFlags, args []string, bridge device.Bridge) (*planner.Result, error) {
	st, err := a.openStores()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	model, err := st.world.LoadModel()
	if err != nil {
		return nil, err
	}
	hist, err := st.history.Load()
	if err != nil {
		return nil, err
	}
	cfg, err := a.plannerConfig(bridge, st.plans)
	if err != nil {
		return nil, err
	}
	return planner.New(cfg).Plan(ctx, planner.Request{
		Sentence:  sf.sentence(args),
		TalkingTo: sf.talkingTo,
		Model:     model,
		History:   hist,
		DryRun:    sf.dryRun,
	})
}

// #endregion plan-cmd

// #region output

func (a *app) printResult(w io.Writer, res *planner.Result) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintf(w, "plan      %s\n", res.ID)
	fmt.Fprintf(w, "decision  %s (%s)\n", res.Decision.Action, res.Decision.Reason)
	fmt.Fprintf(w, "text      %s\n", res.Text())
	fmt.Fprintf(w, "candidate %s\n", res.Candidate.String())
	fmt.Fprintf(w, "score     hard=%d soft=%.2f devices=%d/%d quality=%.3f\n",
		res.Breakdown.Hard, res.Breakdown.Soft, res.DeviceHard, res.DeviceSoft, res.Decision.Quality)
	fmt.Fprintf(w, "search    exhaustive=%t evaluations=%d sweeps=%d\n",
		res.Search.Exhaustive, res.Search.Evaluations, res.Search.Sweeps)
	for _, s := range res.Breakdown.Scorers {
		fmt.Fprintf(w, "  %-24s %4d / %4d  w=%.2f\n", s.Name, s.Soft, s.MaxReduced, s.Weight)
	}
	for _, v := range res.Breakdown.Violations {
		fmt.Fprintf(w, "  ! element %d: %s\n", v.ElementIndex, v.Reason)
	}
	fmt.Fprintln(w, "steps:")
	for _, s := range res.Steps {
		outs := make([]string, len(s.Outputs))
		for i, o := range s.Outputs {
			outs[i] = fmt.Sprintf("%s@%s=%v", o.Modality, o.DeviceName, o.Content)
		}
		fmt.Fprintf(w, "  %d %-10s %s\n", s.ElementIndex, s.ObjectID, strings.Join(outs, "  "))
	}
	return nil
}

// #endregion output
