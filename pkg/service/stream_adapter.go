package service

import (
	"fmt"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"
)

// =============================================================================
// 1. Upload Adapter: gRPC Stream -> io.Reader
// =============================================================================

// UploadStream 是 Upload 所需的最小接口，方便测试 Mock
type UploadStream interface {
	Recv() (*chunkrpc.UploadRequest, error)
}

// GrpcStreamReader 将 gRPC Upload 流包装为 io.Reader，供 Ingester 使用
type GrpcStreamReader struct {
	stream UploadStream
	buf    []byte // 从 Recv 拿到、还没被 Read 读走的数据
	err    error  // 流的终止状态 (如 io.EOF)
}

// NewGrpcStreamReader 创建 reader；initial 是握手帧里携带的数据
func NewGrpcStreamReader(stream UploadStream, initial []byte) *GrpcStreamReader {
	return &GrpcStreamReader{stream: stream, buf: initial}
}

func (r *GrpcStreamReader) Read(p []byte) (int, error) {
	// 空帧直接跳过，直到拿到数据或出错
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		req, err := r.stream.Recv()
		if err != nil {
			r.err = err
			return 0, err
		}
		r.buf = req.Data
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// =============================================================================
// 2. Download Adapter: io.Writer -> gRPC Stream
// =============================================================================

// DownloadStream 是 Download 所需的最小接口
type DownloadStream interface {
	Send(*chunkrpc.DownloadResponse) error
}

// GrpcStreamWriter 将 gRPC Download 流包装为 io.Writer，供 Exporter 使用
// Exporter 每写一个切块，这里就发一帧
type GrpcStreamWriter struct {
	stream DownloadStream
}

func NewGrpcStreamWriter(stream DownloadStream) *GrpcStreamWriter {
	return &GrpcStreamWriter{stream: stream}
}

func (w *GrpcStreamWriter) Write(p []byte) (int, error) {
	// Send 会立即序列化，p 之后被复用也是安全的
	if err := w.stream.Send(&chunkrpc.DownloadResponse{Data: p}); err != nil {
		return 0, fmt.Errorf("grpc send failed: %w", err)
	}
	return len(p), nil
}
