package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"maxcdc/pkg/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Initialize a maxcdc repository",
	Long:        `Create an empty maxcdc repository (.maxcdc/objects) in the current directory.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		repoPath := filepath.Join(wd, config.RepoDir)
		if _, err := os.Stat(repoPath); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "maxcdc repository already exists in %s\n", repoPath)
			return nil
		}

		if err := os.MkdirAll(filepath.Join(repoPath, "objects"), 0755); err != nil {
			return fmt.Errorf("failed to create repo directory: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty maxcdc repository in %s\n", repoPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
