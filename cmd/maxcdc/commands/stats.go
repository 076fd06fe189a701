package commands

import (
	"context"
	"fmt"
	"io"

	"maxcdc/pkg/exporter"
	"maxcdc/pkg/meta"
	"maxcdc/pkg/types"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show deduplication statistics",
	Long: `Summarize logical vs. unique stored bytes. Uses the metadata database when
configured, otherwise walks every manifest in the local index.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			s   meta.Stats
			err error
		)
		if MC.Meta != nil {
			s, err = MC.Meta.Stats(cmd.Context())
		} else {
			s, err = localStats(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}
		return printStats(cmd.OutOrStdout(), s)
	},
}

// localStats 遍历目录中的 Manifest 统计唯一切块
func localStats(ctx context.Context) (meta.Stats, error) {
	var s meta.Stats
	manifests := make(map[types.Hash]struct{})
	chunks := make(map[types.Hash]int)

	for _, e := range MC.Index.Sorted() {
		s.Files++
		if _, seen := manifests[e.Hash]; seen {
			continue
		}
		manifests[e.Hash] = struct{}{}

		m, err := MC.Exporter.LoadManifest(ctx, e.Hash)
		if err != nil {
			return s, fmt.Errorf("%s: %w", e.Path, err)
		}
		s.LogicalBytes += m.TotalSize
		for _, c := range m.Chunks {
			chunks[c.Cid.Hash] = c.Size
		}
	}

	s.Manifests = int64(len(manifests))
	s.Chunks = int64(len(chunks))
	for _, size := range chunks {
		s.UniqueBytes += int64(size)
	}
	return s, nil
}

func printStats(w io.Writer, s meta.Stats) error {
	_, err := fmt.Fprintf(w,
		"Files:      %d\nManifests:  %d\nChunks:     %d\nLogical:    %s\nStored:     %s\nDedup:      %.2fx\n",
		s.Files, s.Manifests, s.Chunks,
		exporter.FormatSize(s.LogicalBytes), exporter.FormatSize(s.UniqueBytes), s.DedupRatio())
	return err
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
