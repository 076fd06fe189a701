package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// uploadFrameSize 是 Upload 每帧携带的数据量
const uploadFrameSize = 1 << 20

// Client 封装了与 maxcdc 服务端的连接
type Client struct {
	conn  *grpc.ClientConn
	Chunk chunkrpc.ChunkServiceClient
}

// New 创建客户端；NewClient 立即返回，连接在后台建立
// extra 用于测试注入 (如 bufconn 的 ContextDialer)
func New(addr string, extra ...grpc.DialOption) (*Client, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(chunkrpc.MaxMessageSize),
			grpc.MaxCallSendMsgSize(chunkrpc.MaxMessageSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		// 这里通常只是配置错误 (如地址格式不对)，网络不通不会在这里报错
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}

	return &Client{
		conn:  conn,
		Chunk: chunkrpc.NewChunkServiceClient(conn),
	}, nil
}

// Upload 以流的方式上传 r 的全部内容
func (c *Client) Upload(ctx context.Context, path string, r io.Reader) (*chunkrpc.IngestResponse, error) {
	stream, err := c.Chunk.Upload(ctx)
	if err != nil {
		return nil, err
	}
	// 服务端提前结束流时 Send 返回 io.EOF，真正的状态要从 CloseAndRecv 拿
	if err := stream.Send(&chunkrpc.UploadRequest{Path: path}); err != nil {
		if errors.Is(err, io.EOF) {
			return stream.CloseAndRecv()
		}
		return nil, err
	}

	buf := make([]byte, uploadFrameSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			// Send 会立即序列化，buf 可以复用
			if serr := stream.Send(&chunkrpc.UploadRequest{Data: buf[:n]}); serr != nil {
				if errors.Is(serr, io.EOF) {
					break
				}
				return nil, serr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read upload source: %w", err)
		}
	}
	return stream.CloseAndRecv()
}

// Download 将 hash 对应的数据写入 w，返回写入的字节数
func (c *Client) Download(ctx context.Context, hash string, w io.Writer) (int64, error) {
	stream, err := c.Chunk.Download(ctx, &chunkrpc.DownloadRequest{Hash: hash})
	if err != nil {
		return 0, err
	}

	var written int64
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := w.Write(resp.Data)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}

// Conn 返回底层连接，用于健康检查等其他服务
func (c *Client) Conn() *grpc.ClientConn { return c.conn }

// Close 关闭底层连接
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
