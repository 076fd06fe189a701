package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	chunkrpc "maxcdc/pkg/api/chunkrpc/v1"
	"maxcdc/pkg/app"
	"maxcdc/pkg/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server 组合 gRPC 服务和 /metrics HTTP 端点
type Server struct {
	GRPC    *grpc.Server
	Health  *health.Server
	metrics *http.Server
}

// NewGRPCServer 创建带拦截器、健康检查的 gRPC 服务并注册 ChunkService
func NewGRPCServer(a *app.App) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryRecoveryInterceptor, UnaryLoggingInterceptor),
		grpc.ChainStreamInterceptor(StreamRecoveryInterceptor, StreamLoggingInterceptor),
		grpc.MaxRecvMsgSize(chunkrpc.MaxMessageSize),
		grpc.MaxSendMsgSize(chunkrpc.MaxMessageSize),
	)

	chunkrpc.RegisterChunkServiceServer(s, service.NewChunkService(a))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(chunkrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// 调试工具 (grpcurl list)
	reflection.Register(s)
	return s, hs
}

// New 组装完整的服务；gatherer 为 nil 时不暴露 /metrics
func New(a *app.App, gatherer prometheus.Gatherer, metricsAddr string) *Server {
	s := &Server{}
	s.GRPC, s.Health = NewGRPCServer(a)

	if gatherer != nil && metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		s.metrics = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s
}

// Serve 在 lis 上提供服务，直到 ctx 被取消后优雅退出
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("grpc server listening", slog.String("addr", lis.Addr().String()))
		if err := s.GRPC.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	if s.metrics != nil {
		g.Go(func() error {
			slog.Info("metrics server listening", slog.String("addr", s.metrics.Addr))
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics serve: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")
		s.Health.Shutdown()
		if s.metrics != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.metrics.Shutdown(shutdownCtx)
		}
		s.GRPC.GracefulStop()
		return nil
	})

	return g.Wait()
}
