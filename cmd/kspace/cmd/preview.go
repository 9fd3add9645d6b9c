package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kspace-tools/kspace/internal/cfl"
	"github.com/kspace-tools/kspace/internal/preview"
)

// previewCmd represents the preview command.
var previewCmd = &cobra.Command{
	Use:   "preview <cfl-base> <out-png>",
	Short: "Render a magnitude slice of a cfl array as PNG",
	Long: `Render the central axis-0 x axis-1 plane of a cfl array as a
normalized grayscale PNG for a quick look at the data.

Example:
  kspace preview out/kspace look.png --width 512`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, outFile := args[0], args[1]
		width, _ := cmd.Flags().GetInt("width")

		data, d, err := cfl.Read(base)
		if err != nil {
			return err
		}
		img, err := preview.RenderSlice(data, d, preview.Options{Width: width})
		if err != nil {
			return err
		}
		if err := preview.WritePNG(outFile, img); err != nil {
			return err
		}
		slog.Info("wrote preview", "out", outFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().Int("width", 0, "resize output to this width (0 = native)")
}
