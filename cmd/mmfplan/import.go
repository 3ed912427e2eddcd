package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region import-cmd

// worldFile is the document accepted by import, as JSON or YAML.
type worldFile struct {
	Saliency world.Saliency `json:"saliency" yaml:"saliency"`
	Objects  []world.Object `json:"objects" yaml:"objects"`
}

func newImportCmd(a *app) *cobra.Command {
	var keepSaliency bool
	cmd := &cobra.Command{
		Use:   "import WORLD.(json|yaml)",
		Short: "Replace the world objects (and saliency) in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := readWorldFile(args[0])
			if err != nil {
				return err
			}
			// Fail before touching the store.
			if _, err := world.NewModel(wf.Objects, wf.Saliency, nil); err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			st, err := a.openStores()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.world.ReplaceObjects(wf.Objects); err != nil {
				return err
			}
			if !keepSaliency {
				if err := st.world.ReplaceSaliency(wf.Saliency); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d objects, %d saliency weights\n", len(wf.Objects), len(wf.Saliency))
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepSaliency, "keep-saliency", false, "leave the stored saliency annotation untouched")
	return cmd
}

func readWorldFile(p string) (*worldFile, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	var wf worldFile
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		err = json.Unmarshal(data, &wf)
	default:
		err = yaml.Unmarshal(data, &wf)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return &wf, nil
}

// #endregion import-cmd
