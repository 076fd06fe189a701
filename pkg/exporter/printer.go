package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"maxcdc/pkg/core"
	"maxcdc/pkg/storage"
	"maxcdc/pkg/types"
)

// Describe 打印对象的摘要：Manifest 打印切块表，原始切块只打印大小
func (e *Exporter) Describe(ctx context.Context, hash types.Hash, w io.Writer) error {
	data, err := storage.ReadAll(ctx, e.store, hash)
	if err != nil {
		return err
	}

	ok, err := PrintStructure(data, w)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(w, "Type: Chunk (Raw Data)\n")
		fmt.Fprintf(w, "Hash: %s\n", hash)
		fmt.Fprintf(w, "Size: %s\n", FormatSize(int64(len(data))))
	}
	return nil
}

// PrintStructure 解析并打印 Manifest
// 如果是原始数据 (Chunk)，返回 false，由调用者决定如何展示
func PrintStructure(data []byte, w io.Writer) (bool, error) {
	m, err := core.DecodeManifest(data)
	if errors.Is(err, core.ErrNotManifest) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, printManifest(m, w)
}

func printManifest(m *core.Manifest, w io.Writer) error {
	fmt.Fprintf(w, "Type:      Manifest\n")
	fmt.Fprintf(w, "Hash:      %s\n", m.ID())
	fmt.Fprintf(w, "Window:    %d\n", m.Window)
	fmt.Fprintf(w, "TotalSize: %s\n", FormatSize(m.TotalSize))
	fmt.Fprintf(w, "Chunks:    %d\n", len(m.Chunks))
	if len(m.Chunks) > 0 {
		fmt.Fprintf(w, "AvgChunk:  %s\n\n", FormatSize(m.TotalSize/int64(len(m.Chunks))))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "#\tOFFSET\tSIZE\tHASH\n")
	for i, c := range m.Chunks {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", i, c.Offset, c.Size, c.Cid.Hash.Short())
	}
	return tw.Flush()
}

// FormatSize 以 B / KB / MB 显示字节数
func FormatSize(s int64) string {
	if s < 1024 {
		return fmt.Sprintf("%dB", s)
	} else if s < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(s)/1024)
	}
	return fmt.Sprintf("%.2fMB", float64(s)/1024/1024)
}
