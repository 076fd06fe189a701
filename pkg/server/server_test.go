package server

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"net"
	"path/filepath"
	"testing"
	"time"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"
	"maxcdc/pkg/app"
	"maxcdc/pkg/client"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

// startServer 在 bufconn 上启动完整的服务，返回连上它的客户端
func startServer(t *testing.T) (*client.Client, *app.App) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("storage.path", filepath.Join(t.TempDir(), "objects"))
	viper.Set("chunker.window", 1024)

	a, err := app.NewApp(context.Background(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	lis := bufconn.Listen(bufSize)
	srv := New(a, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	c, err := client.New("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, a
}

func randomBytes(size int) []byte {
	r := rand.New(rand.NewPCG(11, 13))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(r.Uint32())
	}
	return data
}

func TestServer_ChunkOverCBOR(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	resp, err := c.Chunk.Chunk(ctx, &chunkrpc.ChunkRequest{
		Data:   []byte{3, 1, 1, 7, 2, 2, 2, 9, 1, 1, 1, 1},
		Window: 2,
	})
	require.NoError(t, err)

	require.Len(t, resp.Spans, 3)
	assert.Equal(t, int64(6), resp.Spans[0].Length)
	assert.Equal(t, int64(4), resp.Spans[1].Length)
	assert.Equal(t, int64(2), resp.Spans[2].Length)

	_, err = c.Chunk.Chunk(ctx, &chunkrpc.ChunkRequest{Window: -5})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_IngestStatDownload(t *testing.T) {
	c, a := startServer(t)
	ctx := context.Background()
	data := randomBytes(200 * 1024)

	resp, err := c.Chunk.Ingest(ctx, &chunkrpc.IngestRequest{Path: "blob.bin", Data: data})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), resp.TotalSize)

	st, err := c.Chunk.Stat(ctx, &chunkrpc.StatRequest{Hash: resp.ManifestHash[:8]})
	require.NoError(t, err)
	assert.Equal(t, resp.ManifestHash, st.Hash)
	assert.Equal(t, 1024, st.Window)
	assert.Len(t, st.Chunks, resp.Chunks)

	var out bytes.Buffer
	n, err := c.Download(ctx, resp.ManifestHash, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.True(t, bytes.Equal(data, out.Bytes()))

	_, ok := a.Index.Get("blob.bin")
	assert.True(t, ok)
}

func TestServer_Upload(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	// 大于一帧，触发多次 Send
	data := randomBytes(3*1024*1024 + 17)
	resp, err := c.Upload(ctx, "big.bin", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), resp.TotalSize)
	assert.Equal(t, resp.Chunks, resp.NewChunks+resp.DuplicateChunks)

	// 再次上传全部去重
	again, err := c.Upload(ctx, "big-copy.bin", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, resp.ManifestHash, again.ManifestHash)
	assert.Equal(t, 0, again.NewChunks)
}

func TestServer_Upload_RejectedReturnsStatus(t *testing.T) {
	c, _ := startServer(t)

	// 缺少 path，服务端读完第一帧就结束流；后续 Send 会遇到 io.EOF
	data := randomBytes(8 * 1024 * 1024)
	_, err := c.Upload(context.Background(), "", bytes.NewReader(data))
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_Download_NotFound(t *testing.T) {
	c, _ := startServer(t)

	_, err := c.Download(context.Background(), "ffffffff", &bytes.Buffer{})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_Health(t *testing.T) {
	c, _ := startServer(t)

	hc := healthpb.NewHealthClient(c.Conn())
	resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: chunkrpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
