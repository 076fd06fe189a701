package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"
	"maxcdc/pkg/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// =============================================================================
// 1. Logging Interceptor (结构化日志)
// =============================================================================

// UnaryLoggingInterceptor 记录每个 Chunk / Ingest / Stat 调用，附带负载摘要
func UnaryLoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	attrs := append(requestAttrs(req), responseAttrs(resp)...)
	logRPC(ctx, "unary", info.FullMethod, time.Since(start), err, attrs...)
	return resp, err
}

// StreamLoggingInterceptor 记录 Upload / Download；流内消息的大小由 countingStream 累计
func StreamLoggingInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	cs := &countingStream{ServerStream: ss}
	err := handler(srv, cs)

	logRPC(ss.Context(), "stream", info.FullMethod, time.Since(start), err,
		slog.Int("frames_in", cs.framesIn),
		slog.Int64("bytes_in", cs.bytesIn),
		slog.Int("frames_out", cs.framesOut),
		slog.Int64("bytes_out", cs.bytesOut),
	)
	return err
}

// countingStream 统计流经的帧数和数据字节数
type countingStream struct {
	grpc.ServerStream
	framesIn, framesOut int
	bytesIn, bytesOut   int64
}

func (s *countingStream) RecvMsg(m any) error {
	if err := s.ServerStream.RecvMsg(m); err != nil {
		return err
	}
	s.framesIn++
	s.bytesIn += payloadSize(m)
	return nil
}

func (s *countingStream) SendMsg(m any) error {
	if err := s.ServerStream.SendMsg(m); err != nil {
		return err
	}
	s.framesOut++
	s.bytesOut += payloadSize(m)
	return nil
}

func payloadSize(m any) int64 {
	switch v := m.(type) {
	case *chunkrpc.UploadRequest:
		return int64(len(v.Data))
	case *chunkrpc.DownloadResponse:
		return int64(len(v.Data))
	}
	return 0
}

// requestAttrs 只记录大小和标识，不记录数据本身
func requestAttrs(req any) []slog.Attr {
	switch r := req.(type) {
	case *chunkrpc.ChunkRequest:
		return []slog.Attr{slog.Int("window", r.Window), slog.Int("bytes", len(r.Data))}
	case *chunkrpc.IngestRequest:
		return []slog.Attr{slog.String("path", r.Path), slog.Int("bytes", len(r.Data))}
	case *chunkrpc.StatRequest:
		return []slog.Attr{slog.String("hash", r.Hash)}
	}
	return nil
}

func responseAttrs(resp any) []slog.Attr {
	switch r := resp.(type) {
	case *chunkrpc.ChunkResponse:
		if r == nil {
			return nil
		}
		return []slog.Attr{slog.Int("spans", len(r.Spans))}
	case *chunkrpc.IngestResponse:
		if r == nil {
			return nil
		}
		return []slog.Attr{
			slog.String("manifest", types.Hash(r.ManifestHash).Short()),
			slog.Int("chunks", r.Chunks),
			slog.Int("new_chunks", r.NewChunks),
		}
	}
	return nil
}

// logRPC 按状态码选择级别：OK 记 Info，Internal/Unknown/DataLoss 记 Error，其余记 Warn
func logRPC(ctx context.Context, kind, method string, dur time.Duration, err error, extra ...slog.Attr) {
	code := status.Code(err)

	level := slog.LevelWarn
	switch code {
	case codes.OK:
		level = slog.LevelInfo
	case codes.Internal, codes.Unknown, codes.DataLoss:
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("kind", kind),
		slog.String("method", method),
		slog.String("code", code.String()),
		slog.Duration("dur", dur),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", status.Convert(err).Message()))
	}
	attrs = append(attrs, extra...)
	slog.LogAttrs(ctx, level, "grpc request", attrs...)
}

// =============================================================================
// 2. Recovery Interceptor
// =============================================================================

// UnaryRecoveryInterceptor 捕获 Panic
func UnaryRecoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverFromPanic(r)
		}
	}()
	return handler(ctx, req)
}

// StreamRecoveryInterceptor 捕获 Panic
func StreamRecoveryInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverFromPanic(r)
		}
	}()
	return handler(srv, ss)
}

func recoverFromPanic(p any) error {
	slog.Error("panic recovered",
		slog.Any("panic", p),
		slog.String("stack", string(debug.Stack())),
	)
	// 返回 Internal 而不是直接断开连接
	return status.Errorf(codes.Internal, "internal server error: panic recovered")
}
