package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kspace-tools/kspace/internal/acq"
	"github.com/kspace-tools/kspace/internal/cfl"
	"github.com/kspace-tools/kspace/internal/jcamp"
)

// fidCmd represents the fid command.
var fidCmd = &cobra.Command{
	Use:   "fid <fid-file> <acqp-file> <out-base>",
	Short: "Decode a Bruker fid file into a cfl array",
	Long: `Decode the block-aligned sample stream of a Bruker fid file into a
complex k-space array, using the acqp parameter file to derive the chunking
geometry, and write the result as <out-base>.cfl/<out-base>.hdr.

The oversampling factor divides the first acquisition axis when ACQ_size
reports more physical samples than the logical readout (usually 2 for
radial scans).

Examples:
  kspace fid scan/fid scan/acqp out/kspace
  kspace fid scan/fid scan/acqp out/kspace --oversample 2 --debug`,
	Args:         cobra.ExactArgs(3),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fidFile, acqpFile, outBase := args[0], args[1], args[2]
		cfg := GetConfig()
		debug, _ := cmd.Flags().GetBool("debug")
		oversample := cfg.Oversample
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
		if debug {
			printGeometry(cmd, geom)
		}

		raw, err := os.ReadFile(fidFile) //nolint:gosec // path comes from the CLI
		if err != nil {
			return fmt.Errorf("reading fid file: %w", err)
		}
		slog.Debug("decoding fid", "bytes", len(raw), "chunks", geom.NChunks, "workers", cfg.EffectiveWorkers())

		data, err := acq.Decode(raw, geom, cfg.EffectiveWorkers())
		if err != nil {
			return err
		}
		if err := cfl.Write(outBase, data, geom.Dims); err != nil {
			return err
		}
		slog.Info("wrote cfl", "base", outBase, "shape", geom.Shape())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fidCmd)

	fidCmd.Flags().IntP("oversample", "f", 1, "oversampling factor applied to the first acquisition axis")
	fidCmd.Flags().Bool("debug", false, "print the derived acquisition geometry")
}
