package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/multimodal-planner/internal/eval"
	"github.com/danielpatrickdp/multimodal-planner/internal/replay"
)

// #region replay-cmd

func newReplayCmd(a *app) *cobra.Command {
	var (
		parallel    int
		showMetrics bool
		strict      bool
		evalConfig  = eval.DefaultEvalConfig()
	)
	cmd := &cobra.Command{
		Use:   "replay [SCENARIO.yaml...]",
		Short: "Replay scripted conversations (the built-in ones when no file is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var scenarios []*replay.Scenario
			if len(args) == 0 {
				builtin, err := replay.Builtin()
				if err != nil {
					return err
				}
				scenarios = builtin
			}
			for _, p := range args {
				sc, err := replay.LoadScenario(p)
				if err != nil {
					return err
				}
				scenarios = append(scenarios, sc)
			}

			// Replays keep their own history; nothing is recorded.
			base, err := a.plannerConfig(nil, nil)
			if err != nil {
				return err
			}
			h := replay.NewHarness(base, evalConfig, a.log)
			results, err := h.ReplayAll(cmd.Context(), scenarios, parallel)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.jsonOut {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					printScenario(w, r)
				}
			}
			if showMetrics {
				if err := printMetrics(w, a); err != nil {
					return err
				}
			}

			if strict {
				for _, r := range results {
					if r.Summary.Mismatches > 0 {
						return fmt.Errorf("scenario %s: %d expectation mismatch(es)", r.Scenario, r.Summary.Mismatches)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", 4, "scenarios replayed at once")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print planner metrics after the run")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a turn misses its expectation")
	cmd.Flags().Float64Var(&evalConfig.MaxNormalizedPenalty, "max-penalty", evalConfig.MaxNormalizedPenalty, "roll back plans a scorer rates above this share of its worst case")
	cmd.Flags().Float64Var(&evalConfig.MinQuality, "min-quality", evalConfig.MinQuality, "roll back plans below this quality")
	cmd.Flags().Float64Var(&evalConfig.MaxAverageDuration, "max-duration", evalConfig.MaxAverageDuration, "roll back plans slower than this many seconds per element (0 disables)")
	return cmd
}

func printScenario(w io.Writer, r *replay.ScenarioResult) {
	fmt.Fprintf(w, "== %s\n", r.Scenario)
	for _, t := range r.Turns {
		fmt.Fprintf(w, "%-16s %-13s soft=%6.2f q=%.3f  %s\n", t.TurnID, t.Action, t.Soft, t.Quality, t.Text)
		fmt.Fprintf(w, "%16s %s\n", "", t.Candidate)
		if t.Action != replay.ActionCommit {
			fmt.Fprintf(w, "%16s reason: %s\n", "", t.Reason)
		}
		for _, m := range t.Mismatches {
			fmt.Fprintf(w, "%16s MISMATCH %s\n", "", m)
		}
	}
	s := r.Summary
	fmt.Fprintf(w, "turns=%d commits=%d gate_rejects=%d eval_rollbacks=%d mismatches=%d\n\n",
		s.TotalTurns, s.Commits, s.GateRejects, s.EvalRollbacks, s.Mismatches)
}

func printMetrics(w io.Writer, a *app) error {
	samples, err := a.metrics.Snapshot()
	if err != nil {
		return err
	}
	for _, s := range samples {
		fmt.Fprintf(w, "%-60s %g\n", s.Name, s.Value)
	}
	return nil
}

// #endregion replay-cmd
