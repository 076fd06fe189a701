package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"maxcdc/pkg/core"
	"maxcdc/pkg/storage"
	"maxcdc/pkg/types"
)

// ErrIntegrity 表示存储中的切块与 Manifest 记录不一致
var ErrIntegrity = errors.New("chunk integrity check failed")

type Exporter struct {
	store storage.Store
}

func NewExporter(store storage.Store) *Exporter {
	return &Exporter{store: store}
}

// LoadManifest 读取并解码 Manifest
func (e *Exporter) LoadManifest(ctx context.Context, hash types.Hash) (*core.Manifest, error) {
	data, err := storage.ReadAll(ctx, e.store, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest %s: %w", hash.Short(), err)
	}
	m, err := core.DecodeManifest(data)
	if err != nil {
		return nil, err
	}
	if m.ID() != hash {
		return nil, fmt.Errorf("%w: manifest %s hashes to %s", ErrIntegrity, hash.Short(), m.ID().Short())
	}
	return m, nil
}

// Restore 根据 Manifest Hash 按顺序拼接所有切块写入 w，返回写入的字节数。
// 每个切块在写出前都会校验 Hash 和长度。
func (e *Exporter) Restore(ctx context.Context, hash types.Hash, w io.Writer) (int64, error) {
	m, err := e.LoadManifest(ctx, hash)
	if err != nil {
		return 0, err
	}

	var written int64
	for i, link := range m.Chunks {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		data, err := storage.ReadAll(ctx, e.store, link.Cid.Hash)
		if err != nil {
			return written, fmt.Errorf("failed to get chunk %d (%s): %w", i, link.Cid.Hash.Short(), err)
		}
		if len(data) != link.Size {
			return written, fmt.Errorf("%w: chunk %d is %d bytes, manifest says %d", ErrIntegrity, i, len(data), link.Size)
		}
		if got := core.CalculateBlobHash(data); got != link.Cid.Hash {
			return written, fmt.Errorf("%w: chunk %d hashes to %s, want %s", ErrIntegrity, i, got.Short(), link.Cid.Hash.Short())
		}

		n, err := w.Write(data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
	}

	if written != m.TotalSize {
		return written, fmt.Errorf("%w: restored %d bytes, manifest says %d", ErrIntegrity, written, m.TotalSize)
	}
	return written, nil
}

// RestoreFile 还原到 path；先写临时文件，全部校验通过后再 Rename
func (e *Exporter) RestoreFile(ctx context.Context, hash types.Hash, path string) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".restore-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := e.Restore(ctx, hash, tmp)
	if err != nil {
		tmp.Close()
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	return n, os.Rename(tmp.Name(), path)
}
