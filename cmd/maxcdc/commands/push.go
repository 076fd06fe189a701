package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"maxcdc/pkg/client"

	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push [file]",
	Short: "Upload files to the server at --remote",
	Long: `With a file argument, stream that file to the server. Without arguments,
upload every file tracked by the local index.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newRemoteClient()
		if err != nil {
			return err
		}
		defer cli.Close()

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			return pushFile(cmd.Context(), cli, args[0], filepath.ToSlash(filepath.Clean(args[0])), out)
		}

		// 批量模式需要本地目录
		if err := openApp(cmd.Context()); err != nil {
			return err
		}
		return pushIndexed(cmd.Context(), cli, out)
	},
}

func pushIndexed(ctx context.Context, cli *client.Client, out io.Writer) error {
	entries := MC.Index.Sorted()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Nothing to push (index is empty). Run 'maxcdc add <path>' first.")
		return nil
	}

	root := filepath.Dir(MC.RepoPath)
	failures := 0
	for _, e := range entries {
		local := filepath.FromSlash(e.Path)
		if !filepath.IsAbs(local) {
			local = filepath.Join(root, local)
		}
		if _, err := os.Stat(local); err != nil {
			fmt.Fprintf(out, "%s: skipped (%v)\n", e.Path, err)
			failures++
			continue
		}
		if err := pushFile(ctx, cli, local, e.Path, out); err != nil {
			fmt.Fprintf(out, "%s: failed: %v\n", e.Path, err)
			failures++
		}
	}

	fmt.Fprintf(out, "\nSummary: %d succeeded, %d failed.\n", len(entries)-failures, failures)
	if failures > 0 {
		return fmt.Errorf("%d files failed to upload", failures)
	}
	return nil
}

func pushFile(ctx context.Context, cli *client.Client, local, remotePath string, out io.Writer) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()

	resp, err := cli.Upload(ctx, remotePath, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s (%d chunks, %d new)\n",
		remotePath, resp.ManifestHash, resp.Chunks, resp.NewChunks)
	return nil
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
