package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"modelhostd/internal/common/fsutil"
	"modelhostd/internal/registry"
)

// buildModelsCmd groups the local inspection commands: which model artifacts
// are on disk and what the preset aliases resolve to. Both run without a
// daemon; they read the same directory and presets file serve does.
func buildModelsCmd() *cobra.Command {
	var (
		modelsDir   string
		presetsFile string
	)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect local model artifacts and presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("models requires a subcommand: list|presets")
		},
	}
	modelsCmd.PersistentFlags().StringVar(&modelsDir, "models-dir",
		envOr("MODELHOSTD_MODELS_DIR", "~/models"), "Directory holding *.gguf model files")
	modelsCmd.PersistentFlags().StringVar(&presetsFile, "presets",
		os.Getenv("MODELHOSTD_PRESETS"), "YAML file of preset aliases merged over the built-ins")

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List *.gguf model files in the models directory",
		Example: "  modelhostd models list --models-dir ~/models",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := listModelFiles(modelsDir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", f.Name, f.SizeBytes)
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:     "presets",
		Short:   "Show the preset alias table (built-ins plus the presets file)",
		Example: "  modelhostd models presets --presets ~/presets.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := registry.Load(presetsFile)
			if err != nil {
				return err
			}
			aliases := p.List()
			keys := make([]string, 0, len(aliases))
			for k := range aliases {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", k, aliases[k])
			}
			return nil
		},
	}

	modelsCmd.AddCommand(listCmd, presetsCmd)
	return modelsCmd
}

type modelFileInfo struct {
	Name      string
	SizeBytes int64
}

// listModelFiles returns the *.gguf artifacts in dir, sorted by name.
func listModelFiles(dir string) ([]modelFileInfo, error) {
	abs, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read models dir: %w", err)
	}
	var out []modelFileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".gguf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, modelFileInfo{Name: e.Name(), SizeBytes: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
