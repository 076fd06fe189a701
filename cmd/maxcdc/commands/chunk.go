package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"
	"maxcdc/pkg/chunker"
	"maxcdc/pkg/core"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	chunkWithHashes bool
	chunkOnRemote   bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file|-]",
	Short: "Print chunk boundaries of a file without storing it",
	Long: `Split the file (or stdin when the argument is "-") with the local-maximum
content-defined chunker and print one line per chunk.
With --on-remote the chunking is done by the server at --remote.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		var spans []chunkrpc.Span
		var window int
		if chunkOnRemote {
			window, spans, err = chunkRemote(cmd, data)
		} else {
			window, spans, err = chunkLocal(data)
		}
		if err != nil {
			return err
		}
		return printSpans(cmd.OutOrStdout(), window, len(data), spans)
	},
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func chunkLocal(data []byte) (int, []chunkrpc.Span, error) {
	c, err := chunker.NewChunker(viper.GetInt("chunker.window"))
	if err != nil {
		return 0, nil, err
	}

	var spans []chunkrpc.Span
	seq := c.Sequencer(data)
	for {
		span, ok := seq.Next()
		if !ok {
			break
		}
		s := chunkrpc.Span{Offset: int64(span.Offset), Length: int64(span.Length)}
		if chunkWithHashes {
			s.Hash = core.CalculateBlobHash(span.Bytes(data)).String()
		}
		spans = append(spans, s)
	}
	return c.Window(), spans, nil
}

func chunkRemote(cmd *cobra.Command, data []byte) (int, []chunkrpc.Span, error) {
	cli, err := newRemoteClient()
	if err != nil {
		return 0, nil, err
	}
	defer cli.Close()

	// 服务端用自己的默认窗口，除非命令行显式指定
	var window int
	if cmd.Flags().Changed("window") {
		window = viper.GetInt("chunker.window")
	}
	resp, err := cli.Chunk.Chunk(cmd.Context(), &chunkrpc.ChunkRequest{
		Data:       data,
		Window:     window,
		WithHashes: chunkWithHashes,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("remote chunk failed: %w", err)
	}
	return resp.Window, resp.Spans, nil
}

func printSpans(out io.Writer, window, total int, spans []chunkrpc.Span) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tOFFSET\tLENGTH\tHASH")
	for i, s := range spans {
		hash := s.Hash
		if hash == "" {
			hash = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", i, s.Offset, s.Length, hash)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "%d chunks, %d bytes, window %d\n", len(spans), total, window)
	return err
}

func init() {
	chunkCmd.Flags().BoolVar(&chunkWithHashes, "hashes", false, "print the SHA-256 of every chunk")
	chunkCmd.Flags().BoolVar(&chunkOnRemote, "on-remote", false, "ask the server at --remote to do the chunking")
	rootCmd.AddCommand(chunkCmd)
}
