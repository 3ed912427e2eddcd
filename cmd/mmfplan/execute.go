package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/multimodal-planner/internal/executor"
)

// #region execute-cmd

func newExecuteCmd(a *app) *cobra.Command {
	var sf sentenceFlags
	cmd := &cobra.Command{
		Use:   "execute ELEMENT...",
		Short: "Plan a sentence and send the outputs to the executor bridge",
		Long: `Plans like "plan", then runs the steps in order through the gRPC
executor bridge (executor.addr), the outputs of one step in parallel.
Images that were shown are marked invisible in the world store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := executor.NewClient(a.cfg.Executor, a.log)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := a.planSentence(cmd.Context(), sf, args, client)
			if res != nil {
				if perr := a.printResult(cmd.OutOrStdout(), res); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}

			st, err := a.openStores()
			if err != nil {
				return err
			}
			defer st.Close()

			runner := &executor.Runner{
				Logger:  a.log,
				Metrics: a.metrics,
				OnImageShown: func(objectID string) {
					if err := st.world.SetInvisible(objectID, true); err != nil {
						a.log.Warn("mark image shown", zap.String("object", objectID), zap.Error(err))
					}
				},
			}
			report, runErr := runner.Run(cmd.Context(), res.Steps)
			printReport(cmd.OutOrStdout(), report)
			return runErr
		},
	}
	sf.register(cmd)
	return cmd
}

func printReport(w io.Writer, r executor.Report) {
	fmt.Fprintln(w, "executed:")
	for _, s := range r.Steps {
		for _, o := range s.Outputs {
			status := "ok"
			if o.Error != "" {
				status = o.Error
			}
			fmt.Fprintf(w, "  %d %-20s %-12s %8s  %s\n", s.ElementIndex, o.Modality, o.Device, o.Took.Round(time.Millisecond), status)
		}
	}
}

// #endregion execute-cmd
