package ingester

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"maxcdc/pkg/chunker"
	"maxcdc/pkg/core"
	"maxcdc/pkg/metrics"
	"maxcdc/pkg/storage"
	"maxcdc/pkg/types"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Ingester 将一个 buffer 切块、去重后写入 Store，并生成 Manifest
type Ingester struct {
	store       storage.Store
	chunker     *chunker.Chunker
	concurrency int
	metrics     *metrics.Collector
}

type Option func(*Ingester)

// WithConcurrency 限制同时进行的 Hash/存储 操作数
func WithConcurrency(n int) Option {
	return func(ing *Ingester) {
		if n > 0 {
			ing.concurrency = n
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(ing *Ingester) {
		ing.metrics = c
	}
}

func NewIngester(store storage.Store, c *chunker.Chunker, opts ...Option) *Ingester {
	ing := &Ingester{
		store:       store,
		chunker:     c,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Result 描述一次 Ingest 的结果
type Result struct {
	Manifest        *core.Manifest
	NewChunks       int   // 本次新写入 Store 的切块数
	DuplicateChunks int   // 在 buffer 内重复或 Store 中已存在的切块数
	NewBytes        int64 // 新写入的切块字节数
}

// Ingest 读取 r 的全部内容后调用 IngestBytes
func (ing *Ingester) Ingest(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ing.IngestBytes(ctx, data)
}

// IngestBytes 切分 data 并持久化所有切块，最后写入 Manifest。
// Manifest 只在所有切块写入成功后才写入，已存储的 Manifest 不会引用缺失的切块。
func (ing *Ingester) IngestBytes(ctx context.Context, data []byte) (*Result, error) {
	start := time.Now()

	// 1. 切分：顺序扫描，只产生视图
	spans := ing.chunker.Spans(data)

	// 2. 并发计算 Hash，结果按下标放回，顺序不变
	chunks := make([]*core.Chunk, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.concurrency)
	for i, span := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks[i] = core.NewChunk(span.Bytes(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 3. 按顺序构建 Manifest，同时剔除 buffer 内重复的切块
	builder := core.NewManifestBuilder(ing.chunker.Window())
	seen := make(map[types.Hash]struct{}, len(chunks))
	var unique []*core.Chunk
	res := &Result{}
	for _, c := range chunks {
		builder.Add(c)
		if _, ok := seen[c.ID()]; ok {
			res.DuplicateChunks++
			ing.metrics.ObserveChunk(c.Size(), true)
			continue
		}
		seen[c.ID()] = struct{}{}
		unique = append(unique, c)
	}

	manifest, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest: %w", err)
	}

	// 4. 并发去重 + 写入
	stored := make([]bool, len(unique))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(ing.concurrency)
	for i, c := range unique {
		g.Go(func() error {
			exists, err := ing.store.Has(gctx, c.ID())
			if err != nil {
				return fmt.Errorf("failed to check chunk %s: %w", c.ID().Short(), err)
			}
			if exists {
				return nil
			}
			if err := ing.store.Put(gctx, c); err != nil {
				return fmt.Errorf("failed to store chunk %s: %w", c.ID().Short(), err)
			}
			stored[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range unique {
		if stored[i] {
			res.NewChunks++
			res.NewBytes += int64(c.Size())
		} else {
			res.DuplicateChunks++
		}
		ing.metrics.ObserveChunk(c.Size(), !stored[i])
	}

	// 5. 最后写入 Manifest
	if err := ing.store.Put(ctx, manifest); err != nil {
		return nil, fmt.Errorf("failed to store manifest: %w", err)
	}
	res.Manifest = manifest

	elapsed := time.Since(start)
	ing.metrics.ObserveIngest(elapsed)
	slog.Debug("ingested buffer",
		slog.String("manifest", manifest.ID().Short()),
		slog.Int64("size", manifest.TotalSize),
		slog.Int("chunks", len(chunks)),
		slog.Int("new", res.NewChunks),
		slog.Int("duplicate", res.DuplicateChunks),
		slog.Duration("elapsed", elapsed),
	)
	return res, nil
}
