package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"maxcdc/pkg/ignore"
	"maxcdc/pkg/ingester"

	"github.com/spf13/cobra"
)

var addExcludes []string

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Chunk files and store them in the repository",
	Long: `Walk every path, split each file into content-defined chunks, store the
chunks and a manifest, and record path -> manifest in the local index.
Paths matching .maxcdcignore or --exclude are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if MC == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()
		root := filepath.Dir(MC.RepoPath)

		matcher, err := ignore.NewMatcher(root, addExcludes...)
		if err != nil {
			return fmt.Errorf("failed to load ignore rules: %w", err)
		}

		var sum addSummary
		start := time.Now()
		errOut := cmd.ErrOrStderr()

		for _, target := range args {
			walkFn := func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}

				rel, err := relToRoot(root, path)
				if err != nil {
					return err
				}
				if matcher.Matches(rel) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if !d.Type().IsRegular() {
					return nil
				}

				res, err := addFile(ctx, path, rel)
				if err != nil {
					return fmt.Errorf("failed to ingest %s: %w", path, err)
				}
				sum.add(res)
				fmt.Fprintf(errOut, "\rAdding: %s (%d bytes)", rel, res.Manifest.TotalSize)
				return nil
			}

			if err := filepath.WalkDir(target, walkFn); err != nil {
				return fmt.Errorf("walk failed: %w", err)
			}
		}
		fmt.Fprintln(errOut)

		if sum.files == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No files added.")
			return nil
		}
		if err := MC.Index.Save(); err != nil {
			return fmt.Errorf("failed to save index: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Added %d files (%d bytes) in %s: %d new chunks (%d bytes), %d duplicate chunks\n",
			sum.files, sum.bytes, time.Since(start).Round(time.Millisecond),
			sum.newChunks, sum.newBytes, sum.dupChunks)
		return nil
	},
}

type addSummary struct {
	files     int
	bytes     int64
	newChunks int
	dupChunks int
	newBytes  int64
}

func (s *addSummary) add(res *ingester.Result) {
	s.files++
	s.bytes += res.Manifest.TotalSize
	s.newChunks += res.NewChunks
	s.dupChunks += res.DuplicateChunks
	s.newBytes += res.NewBytes
}

// addFile 切分并存储单个文件，然后更新目录与 SQL 索引
func addFile(ctx context.Context, path, rel string) (*ingester.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := MC.Ingester.Ingest(ctx, f)
	if err != nil {
		return nil, err
	}

	MC.Index.Add(rel, res.Manifest)

	// SQL 索引只是加速查询，失败不影响对象本身
	if MC.Meta != nil {
		if err := MC.Meta.IndexManifest(ctx, rel, res.Manifest); err != nil {
			slog.Warn("failed to index manifest", slog.String("path", rel), slog.Any("err", err))
		}
	}
	return res, nil
}

// relToRoot 返回相对于仓库根目录的 slash 路径；仓库外的路径无法在 push/pull 时还原，直接拒绝
func relToRoot(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

func init() {
	addCmd.Flags().StringSliceVar(&addExcludes, "exclude", nil, "extra gitignore-style patterns to skip")
	rootCmd.AddCommand(addCmd)
}
