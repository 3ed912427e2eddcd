package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// #region inspect-cmd

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the stored world, output history or plan log",
	}
	cmd.AddCommand(newInspectWorldCmd(a), newInspectHistoryCmd(a), newInspectPlansCmd(a))
	return cmd
}

func newInspectWorldCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "world",
		Short: "List world objects and the saliency annotation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStores()
			if err != nil {
				return err
			}
			defer st.Close()

			model, err := st.world.LoadModel()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(w, map[string]any{"saliency": model.Saliency(), "objects": model.Objects()})
			}
			for _, o := range model.Objects() {
				vis := ""
				if o.Invisible() {
					vis = " (invisible)"
				}
				fmt.Fprintf(w, "%-16s %-12s%s %s\n", o.ID(), o.Type(), vis, attrs(o))
			}
			fmt.Fprintf(w, "saliency: %s\n", attrs(model.Saliency()))
			return nil
		},
	}
}

func newInspectHistoryCmd(a *app) *cobra.Command {
	var clear string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List output rounds, optionally clearing the last or all of them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStores()
			if err != nil {
				return err
			}
			defer st.Close()

			h, err := st.history.Load()
			if err != nil {
				return err
			}
			switch clear {
			case "":
			case "last":
				err = h.ClearLast()
			case "all":
				err = h.ClearAll()
			default:
				return fmt.Errorf("--clear: want last or all, got %q", clear)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			rounds := h.Rounds()
			if a.jsonOut {
				return writeJSON(w, rounds)
			}
			if len(rounds) == 0 {
				fmt.Fprintln(w, "no rounds")
				return nil
			}
			last := h.Last().ID
			for _, r := range rounds {
				mark := " "
				if r.ID == last {
					mark = "*"
				}
				ids := make([]string, 0, len(r.Steps))
				for id := range r.Steps {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				fmt.Fprintf(w, "%s %s %s  %s\n", mark, r.ID, r.CreatedAt.Format(time.RFC3339), strings.Join(ids, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&clear, "clear", "", `clear "last" or "all" rounds first`)
	return cmd
}

func newInspectPlansCmd(a *app) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Show the most recent planning calls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStores()
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.plans.Recent(last)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(w, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(w, "no plans found")
				return nil
			}
			fmt.Fprintf(w, "%-36s  %-8s  %-6s  %4s  %7s  %s\n", "PLAN", "DECISION", "PRED", "HARD", "SOFT", "TEXT")
			for _, e := range entries {
				fmt.Fprintf(w, "%-36s  %-8s  %-6s  %4d  %7.2f  %s\n", e.PlanID, e.Decision, e.Predicate, e.Hard, e.Soft, e.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent plans")
	return cmd
}

// #endregion inspect-cmd

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// attrs renders a map as sorted key=value pairs.
func attrs[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}
