package commands

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <path|hash>",
	Short: "Describe a stored object",
	Long:  `Print the chunk layout of a manifest, or the size of a raw chunk.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := resolveTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return MC.Exporter.Describe(cmd.Context(), hash, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
