// Package chunkrpc 定义 maxcdc.chunkrpc.v1.ChunkService 的消息、CBOR 编解码器和 gRPC 服务描述。
package chunkrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "maxcdc.chunkrpc.v1.ChunkService"

const (
	ChunkService_Chunk_FullMethodName    = "/" + ServiceName + "/Chunk"
	ChunkService_Ingest_FullMethodName   = "/" + ServiceName + "/Ingest"
	ChunkService_Stat_FullMethodName     = "/" + ServiceName + "/Stat"
	ChunkService_Upload_FullMethodName   = "/" + ServiceName + "/Upload"
	ChunkService_Download_FullMethodName = "/" + ServiceName + "/Download"
)

// =============================================================================
// Server
// =============================================================================

type ChunkServiceServer interface {
	Chunk(context.Context, *ChunkRequest) (*ChunkResponse, error)
	Ingest(context.Context, *IngestRequest) (*IngestResponse, error)
	Stat(context.Context, *StatRequest) (*StatResponse, error)
	Upload(grpc.ClientStreamingServer[UploadRequest, IngestResponse]) error
	Download(*DownloadRequest, grpc.ServerStreamingServer[DownloadResponse]) error
	mustEmbedUnimplementedChunkServiceServer()
}

// UnimplementedChunkServiceServer 必须被嵌入以保持向前兼容
type UnimplementedChunkServiceServer struct{}

func (UnimplementedChunkServiceServer) Chunk(context.Context, *ChunkRequest) (*ChunkResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Chunk not implemented")
}
func (UnimplementedChunkServiceServer) Ingest(context.Context, *IngestRequest) (*IngestResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ingest not implemented")
}
func (UnimplementedChunkServiceServer) Stat(context.Context, *StatRequest) (*StatResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Stat not implemented")
}
func (UnimplementedChunkServiceServer) Upload(grpc.ClientStreamingServer[UploadRequest, IngestResponse]) error {
	return status.Error(codes.Unimplemented, "method Upload not implemented")
}
func (UnimplementedChunkServiceServer) Download(*DownloadRequest, grpc.ServerStreamingServer[DownloadResponse]) error {
	return status.Error(codes.Unimplemented, "method Download not implemented")
}
func (UnimplementedChunkServiceServer) mustEmbedUnimplementedChunkServiceServer() {}

func RegisterChunkServiceServer(s grpc.ServiceRegistrar, srv ChunkServiceServer) {
	s.RegisterService(&ChunkService_ServiceDesc, srv)
}

func _ChunkService_Chunk_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ChunkRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChunkServiceServer).Chunk(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChunkService_Chunk_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChunkServiceServer).Chunk(ctx, req.(*ChunkRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChunkService_Ingest_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(IngestRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChunkServiceServer).Ingest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChunkService_Ingest_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChunkServiceServer).Ingest(ctx, req.(*IngestRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChunkService_Stat_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StatRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChunkServiceServer).Stat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChunkService_Stat_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChunkServiceServer).Stat(ctx, req.(*StatRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChunkService_Upload_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(ChunkServiceServer).Upload(&grpc.GenericServerStream[UploadRequest, IngestResponse]{ServerStream: stream})
}

func _ChunkService_Download_Handler(srv any, stream grpc.ServerStream) error {
	m := new(DownloadRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChunkServiceServer).Download(m, &grpc.GenericServerStream[DownloadRequest, DownloadResponse]{ServerStream: stream})
}

// ChunkService_ServiceDesc 是 ChunkService 的 grpc.ServiceDesc
var ChunkService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChunkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Chunk", Handler: _ChunkService_Chunk_Handler},
		{MethodName: "Ingest", Handler: _ChunkService_Ingest_Handler},
		{MethodName: "Stat", Handler: _ChunkService_Stat_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Upload", Handler: _ChunkService_Upload_Handler, ClientStreams: true},
		{StreamName: "Download", Handler: _ChunkService_Download_Handler, ServerStreams: true},
	},
	Metadata: "maxcdc/chunkrpc/v1/chunk.cbor",
}

// =============================================================================
// Client
// =============================================================================

type ChunkServiceClient interface {
	Chunk(ctx context.Context, in *ChunkRequest, opts ...grpc.CallOption) (*ChunkResponse, error)
	Ingest(ctx context.Context, in *IngestRequest, opts ...grpc.CallOption) (*IngestResponse, error)
	Stat(ctx context.Context, in *StatRequest, opts ...grpc.CallOption) (*StatResponse, error)
	Upload(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[UploadRequest, IngestResponse], error)
	Download(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[DownloadResponse], error)
}

type chunkServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewChunkServiceClient 创建客户端；所有调用默认使用 CBOR 编解码
func NewChunkServiceClient(cc grpc.ClientConnInterface) ChunkServiceClient {
	return &chunkServiceClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *chunkServiceClient) Chunk(ctx context.Context, in *ChunkRequest, opts ...grpc.CallOption) (*ChunkResponse, error) {
	out := new(ChunkResponse)
	if err := c.cc.Invoke(ctx, ChunkService_Chunk_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServiceClient) Ingest(ctx context.Context, in *IngestRequest, opts ...grpc.CallOption) (*IngestResponse, error) {
	out := new(IngestResponse)
	if err := c.cc.Invoke(ctx, ChunkService_Ingest_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServiceClient) Stat(ctx context.Context, in *StatRequest, opts ...grpc.CallOption) (*StatResponse, error) {
	out := new(StatResponse)
	if err := c.cc.Invoke(ctx, ChunkService_Stat_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServiceClient) Upload(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[UploadRequest, IngestResponse], error) {
	stream, err := c.cc.NewStream(ctx, &ChunkService_ServiceDesc.Streams[0], ChunkService_Upload_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[UploadRequest, IngestResponse]{ClientStream: stream}, nil
}

func (c *chunkServiceClient) Download(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[DownloadResponse], error) {
	stream, err := c.cc.NewStream(ctx, &ChunkService_ServiceDesc.Streams[1], ChunkService_Download_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[DownloadRequest, DownloadResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
