package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kspace-tools/kspace/internal/acq"
	"github.com/kspace-tools/kspace/internal/cfl"
)

// trajCmd represents the traj command.
var trajCmd = &cobra.Command{
	Use:   "traj <traj-file> <out-base>",
	Short: "Convert a Bruker trajectory file into a cfl array",
	Long: `Reinterpret a raw trajectory file (little-endian float64 triples of
spatial coordinates per readout sample) as a [3, readout, points] complex
array with zero imaginary part, and write it as a cfl pair.

Example:
  kspace traj scan/traj out/traj --readout 96`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		trajFile, outBase := args[0], args[1]
		readout, _ := cmd.Flags().GetInt("readout")
		if readout <= 0 {
			return fmt.Errorf("--readout must be a positive sample count")
		}

		raw, err := os.ReadFile(trajFile) //nolint:gosec // path comes from the CLI
		if err != nil {
			return fmt.Errorf("reading trajectory file: %w", err)
		}

		data, d, err := acq.DecodeTrajectory(raw, readout)
		if err != nil {
			return err
		}
		if err := cfl.Write(outBase, data, d); err != nil {
			return err
		}
		slog.Info("wrote cfl", "base", outBase, "shape", d.ShapeTrimmed())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trajCmd)
	trajCmd.Flags().Int("readout", 0, "readout size in samples (required)")
	_ = trajCmd.MarkFlagRequired("readout")
}
