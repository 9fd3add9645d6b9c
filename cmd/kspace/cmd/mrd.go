package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kspace-tools/kspace/internal/cfl"
	"github.com/kspace-tools/kspace/internal/mrd"
)

// mrdCmd represents the mrd command.
var mrdCmd = &cobra.Command{
	Use:   "mrd <mrd-file> <out-base>",
	Short: "Convert an MR Solutions .mrd scan archive into a cfl array",
	Long: `Read an MR Solutions .mrd scan archive, which carries its own shape
in a binary header, and write the sample buffer as a cfl pair.

Example:
  kspace mrd scan.mrd out/kspace`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mrdFile, outBase := args[0], args[1]

		data, d, h, err := mrd.Read(mrdFile)
		if err != nil {
			return err
		}
		if !h.Complex() {
			slog.Warn("mrd payload is real-valued, imaginary part set to zero", "file", mrdFile)
		}
		if err := cfl.Write(outBase, data, d); err != nil {
			return err
		}
		slog.Info("wrote cfl", "base", outBase, "shape", d.ShapeTrimmed())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mrdCmd)
}
