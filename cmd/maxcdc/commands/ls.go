package commands

import (
	"fmt"
	"text/tabwriter"

	"maxcdc/pkg/exporter"

	"github.com/spf13/cobra"
)

var (
	lsFromDB bool
	lsLimit  int
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tracked files",
	Long:  `List path -> manifest entries from the local index, or from the metadata database with --db.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

		if lsFromDB {
			if MC.Meta == nil {
				return fmt.Errorf("no metadata database configured (set database.driver)")
			}
			files, err := MC.Meta.ListFiles(cmd.Context(), lsLimit)
			if err != nil {
				return fmt.Errorf("failed to list files: %w", err)
			}
			fmt.Fprintln(w, "HASH\tSIZE\tUPDATED\tPATH")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					f.ManifestHash.Short(), exporter.FormatSize(f.Size),
					f.UpdatedAt.Format("2006-01-02 15:04"), f.Path)
			}
			return w.Flush()
		}

		entries := MC.Index.Sorted()
		if lsLimit > 0 && len(entries) > lsLimit {
			entries = entries[:lsLimit]
		}
		fmt.Fprintln(w, "HASH\tSIZE\tCHUNKS\tWINDOW\tPATH")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				e.Hash.Short(), exporter.FormatSize(e.Size), e.Chunks, e.Window, e.Path)
		}
		return w.Flush()
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsFromDB, "db", false, "list from the metadata database")
	lsCmd.Flags().IntVarP(&lsLimit, "limit", "n", 0, "maximum number of entries (0 = all)")
	rootCmd.AddCommand(lsCmd)
}
