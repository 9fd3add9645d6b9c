package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kspace-tools/kspace/internal/acq"
	"github.com/kspace-tools/kspace/internal/cfl"
	"github.com/kspace-tools/kspace/internal/jcamp"
	"github.com/kspace-tools/kspace/internal/mrd"
)

// infoCmd represents the info command.
var infoCmd = &cobra.Command{
	Use:   "info <file> [acqp-file]",
	Short: "Print array shape or acquisition geometry as YAML",
	Long: `Inspect an input without converting it. With a single argument the
file is identified by extension: an .mrd archive prints its header counts
and shape, anything else is treated as a cfl base name and prints its
shape. With a second acqp argument the first file is treated as a Bruker
fid and the derived chunking geometry is printed.

Examples:
  kspace info out/kspace
  kspace info scan.mrd
  kspace info scan/fid scan/acqp --oversample 2`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 {
			return printFidInfo(cmd, args[1])
		}
		if strings.EqualFold(filepath.Ext(args[0]), ".mrd") {
			return printMrdInfo(cmd, args[0])
		}
		return printCflInfo(cmd, args[0])
	},
}

func printFidInfo(cmd *cobra.Command, acqpFile string) error {
	oversample := GetConfig().Oversample
	if cmd.Flags().Changed("oversample") {
		oversample, _ = cmd.Flags().GetInt("oversample")
	}
	params, err := jcamp.ParseFile(acqpFile)
	if err != nil {
		return err
	}
	geom, err := acq.Plan(params, acq.Options{Oversample: oversample})
	if err != nil {
		return err
	}
	printGeometry(cmd, geom)
	return nil
}

func printMrdInfo(cmd *cobra.Command, path string) error {
	_, d, h, err := mrd.Read(path)
	if err != nil {
		return err
	}
	return emitYAML(cmd, map[string]any{
		"samples":     h.Samples,
		"views":       h.Views,
		"views2":      h.Views2,
		"slices":      h.Slices,
		"echoes":      h.Echoes,
		"experiments": h.Experiments,
		"complex":     h.Complex(),
		"shape":       d.ShapeTrimmed(),
	})
}

func printCflInfo(cmd *cobra.Command, base string) error {
	base = strings.TrimSuffix(base, filepath.Ext(base))
	d, err := cfl.ReadHeader(base)
	if err != nil {
		return err
	}
	return emitYAML(cmd, map[string]any{
		"shape": d.ShapeTrimmed(),
		"numel": d.Numel(),
	})
}

func printGeometry(cmd *cobra.Command, geom acq.Geometry) {
	out, err := yaml.Marshal(struct {
		acq.Geometry `yaml:",inline"`
		Shape        []int `yaml:"shape"`
	}{geom, geom.Shape()})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "marshaling geometry: %v\n", err)
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
}

func emitYAML(cmd *cobra.Command, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().IntP("oversample", "f", 1, "oversampling factor for fid geometry")
}
