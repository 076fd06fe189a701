package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"maxcdc/pkg/index"
	"maxcdc/pkg/meta"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Stop tracking files",
	Long: `Remove path entries from the local index (and the metadata database when
configured). Stored chunks and manifests are kept; other paths may share them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		removed := 0
		for _, path := range args {
			key := index.CleanPath(path)
			if _, ok := MC.Index.Get(key); !ok {
				fmt.Fprintf(out, "Not tracked: %s\n", key)
				continue
			}
			MC.Index.Remove(key)
			removed++
			fmt.Fprintf(out, "Removed: %s\n", key)

			if MC.Meta == nil {
				continue
			}
			if err := MC.Meta.RemoveFile(ctx, key); err != nil && !errors.Is(err, meta.ErrFileNotFound) {
				slog.Warn("failed to remove file from metadata", slog.String("path", key), slog.Any("err", err))
			}
		}

		if removed == 0 {
			return nil
		}
		if err := MC.Index.Save(); err != nil {
			return fmt.Errorf("failed to save index: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
