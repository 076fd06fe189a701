package service

import (
	"io"
	"log/slog"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// =============================================================================
// 1. Upload (Client-Side Streaming)
// =============================================================================

// Upload 接收客户端的流式上传
// 协议约定：第一帧必须带 Path，可以同时带第一段数据
func (s *ChunkService) Upload(stream grpc.ClientStreamingServer[chunkrpc.UploadRequest, chunkrpc.IngestResponse]) error {
	// --- Step 1: 握手 ---
	first, err := stream.Recv()
	if err == io.EOF {
		return status.Error(codes.InvalidArgument, "empty stream: expected path frame")
	}
	if err != nil {
		return status.Errorf(codes.Internal, "failed to receive first frame: %v", err)
	}
	if err := (&chunkrpc.IngestRequest{Path: first.Path}).Validate(); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	slog.Debug("receiving upload", slog.String("path", first.Path))

	// --- Step 2: gRPC Stream -> io.Reader -> Ingester ---
	ctx := stream.Context()
	reader := NewGrpcStreamReader(stream, first.Data)
	res, err := s.app.Ingester.Ingest(ctx, reader)
	if err != nil {
		return toStatus(err, "ingestion failed")
	}

	// --- Step 3: 建立索引并响应 ---
	s.record(ctx, first.Path, res.Manifest)
	return stream.SendAndClose(ingestResponse(res.Manifest, res.NewChunks, res.DuplicateChunks, res.NewBytes))
}

// =============================================================================
// 2. Download (Server-Side Streaming)
// =============================================================================

// Download 按顺序流式返回还原后的数据，每个切块一帧
func (s *ChunkService) Download(req *chunkrpc.DownloadRequest, stream grpc.ServerStreamingServer[chunkrpc.DownloadResponse]) error {
	if err := req.Validate(); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	ctx := stream.Context()
	hash, err := s.resolveHash(ctx, req.Hash)
	if err != nil {
		return err
	}

	if _, err := s.app.Exporter.Restore(ctx, hash, NewGrpcStreamWriter(stream)); err != nil {
		return toStatus(err, "export failed")
	}
	return nil
}
