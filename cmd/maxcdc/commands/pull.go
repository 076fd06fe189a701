package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pullOutput string

var pullCmd = &cobra.Command{
	Use:         "pull <hash>",
	Short:       "Download reassembled content from the server at --remote",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newRemoteClient()
		if err != nil {
			return err
		}
		defer cli.Close()

		if pullOutput == "" {
			_, err := cli.Download(cmd.Context(), args[0], cmd.OutOrStdout())
			return err
		}

		f, err := os.Create(pullOutput)
		if err != nil {
			return err
		}
		n, err := cli.Download(cmd.Context(), args[0], f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(pullOutput)
			return fmt.Errorf("pull failed: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", n, pullOutput)
		return nil
	},
}

func init() {
	pullCmd.Flags().StringVarP(&pullOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(pullCmd)
}
