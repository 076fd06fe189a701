package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var catOutput string

var catCmd = &cobra.Command{
	Use:   "cat <path|hash>",
	Short: "Reassemble stored content",
	Long: `Fetch every chunk listed by the manifest, verify it, and write the
reassembled data to stdout (or to --output).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hash, err := resolveTarget(ctx, args[0])
		if err != nil {
			return err
		}

		if catOutput != "" {
			n, err := MC.Exporter.RestoreFile(ctx, hash, catOutput)
			if err != nil {
				return fmt.Errorf("cat failed: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", n, catOutput)
			return nil
		}

		// 直接写 stdout，二进制内容可以用 > file 重定向
		n, err := MC.Exporter.Restore(ctx, hash, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		slog.Debug("restored", slog.String("manifest", hash.Short()), slog.Int64("bytes", n))
		return nil
	},
}

func init() {
	catCmd.Flags().StringVarP(&catOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(catCmd)
}
