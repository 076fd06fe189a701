package service

import (
	"context"
	"errors"
	"log/slog"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"
	"maxcdc/pkg/app"
	"maxcdc/pkg/chunker"
	"maxcdc/pkg/core"
	"maxcdc/pkg/exporter"
	"maxcdc/pkg/storage"
	"maxcdc/pkg/types"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ChunkService struct {
	chunkrpc.UnimplementedChunkServiceServer
	app *app.App
}

func NewChunkService(application *app.App) *ChunkService {
	return &ChunkService{app: application}
}

// Chunk 只切分，不存储；Window 为 0 时使用服务端配置
func (s *ChunkService) Chunk(ctx context.Context, req *chunkrpc.ChunkRequest) (*chunkrpc.ChunkResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	c := s.app.Chunker
	if req.Window != 0 {
		var err error
		if c, err = chunker.NewChunker(req.Window); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	spans := c.Spans(req.Data)
	resp := &chunkrpc.ChunkResponse{
		Window: c.Window(),
		Spans:  make([]chunkrpc.Span, len(spans)),
	}
	for i, span := range spans {
		resp.Spans[i] = chunkrpc.Span{Offset: int64(span.Offset), Length: int64(span.Length)}
		if req.WithHashes {
			resp.Spans[i].Hash = core.CalculateBlobHash(span.Bytes(req.Data)).String()
		}
	}
	return resp, nil
}

// Ingest 切分并存储 Data，记录 Path -> Manifest
func (s *ChunkService) Ingest(ctx context.Context, req *chunkrpc.IngestRequest) (*chunkrpc.IngestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.app.Ingester.IngestBytes(ctx, req.Data)
	if err != nil {
		return nil, toStatus(err, "ingestion failed")
	}
	s.record(ctx, req.Path, res.Manifest)
	return ingestResponse(res.Manifest, res.NewChunks, res.DuplicateChunks, res.NewBytes), nil
}

// Stat 返回 Manifest 的切块布局，Hash 可以是前缀
func (s *ChunkService) Stat(ctx context.Context, req *chunkrpc.StatRequest) (*chunkrpc.StatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	hash, err := s.resolveHash(ctx, req.Hash)
	if err != nil {
		return nil, err
	}

	m, err := s.app.Exporter.LoadManifest(ctx, hash)
	if err != nil {
		return nil, toStatus(err, "failed to load manifest")
	}

	resp := &chunkrpc.StatResponse{
		Hash:      m.ID().String(),
		Window:    m.Window,
		TotalSize: m.TotalSize,
		Chunks:    make([]chunkrpc.Span, len(m.Chunks)),
	}
	for i, c := range m.Chunks {
		resp.Chunks[i] = chunkrpc.Span{Offset: c.Offset, Length: int64(c.Size), Hash: c.Cid.Hash.String()}
	}
	return resp, nil
}

// record 更新本地目录和 SQL 索引
// 索引失败不影响本次写入的结果，数据已经安全落盘
func (s *ChunkService) record(ctx context.Context, path string, m *core.Manifest) {
	s.app.Index.Add(path, m)
	if err := s.app.Index.Save(); err != nil {
		slog.Warn("failed to save index", slog.String("path", path), slog.Any("err", err))
	}

	if s.app.Meta == nil {
		return
	}
	if err := s.app.Meta.IndexManifest(ctx, path, m); err != nil {
		slog.Warn("failed to index manifest",
			slog.String("path", path),
			slog.String("manifest", m.ID().Short()),
			slog.Any("err", err),
		)
	}
}

// resolveHash 支持完整哈希和短哈希
func (s *ChunkService) resolveHash(ctx context.Context, input string) (types.Hash, error) {
	if h := types.Hash(input); h.IsValid() {
		return h, nil
	}

	full, err := s.app.Store.ExpandHash(ctx, types.HashPrefix(input))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return "", status.Errorf(codes.NotFound, "hash prefix %s not found", input)
		case errors.Is(err, storage.ErrAmbiguousHash), errors.Is(err, storage.ErrPrefixTooShort):
			return "", status.Errorf(codes.InvalidArgument, "hash prefix %s: %v", input, err)
		default:
			return "", status.Errorf(codes.Internal, "hash expansion failed: %v", err)
		}
	}
	return full, nil
}

func ingestResponse(m *core.Manifest, newChunks, dupChunks int, newBytes int64) *chunkrpc.IngestResponse {
	return &chunkrpc.IngestResponse{
		ManifestHash:    m.ID().String(),
		TotalSize:       m.TotalSize,
		Chunks:          len(m.Chunks),
		NewChunks:       newChunks,
		DuplicateChunks: dupChunks,
		NewBytes:        newBytes,
	}
}

// toStatus 将核心层错误映射为 gRPC 状态码
func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, storage.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: %v", msg, err)
	case errors.Is(err, core.ErrNotManifest), errors.Is(err, chunker.ErrInvalidWindow):
		return status.Errorf(codes.InvalidArgument, "%s: %v", msg, err)
	case errors.Is(err, exporter.ErrIntegrity):
		return status.Errorf(codes.DataLoss, "%s: %v", msg, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", msg, err)
	}
}
