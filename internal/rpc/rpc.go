package rpc

import (
	"context"
	"log/slog"

	"github.com/gowvp/vtime/protos"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// 1080p BGR24 单帧约 6MB,放宽到 32MB
const maxFrameMessageSize = 32 << 20

var _ protos.DetectorServiceClient = (*DetectorClient)(nil)

// DetectorClient 封装 gRPC 检测服务客户端，提供统一的推理调用入口
type DetectorClient struct {
	cli protos.DetectorServiceClient
}

// NewDetectorClient 创建检测服务客户端实例
func NewDetectorClient(addr string) *DetectorClient {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxFrameMessageSize),
			grpc.MaxCallSendMsgSize(maxFrameMessageSize),
		),
	)
	if err != nil {
		slog.Error("NewDetectorClient", "err", err)
		return nil
	}

	go func() {
		p := grpc_health_v1.NewHealthClient(conn)
		resp, err := p.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
		if err != nil {
			slog.Error("HealthCheck", "err", err)
			return
		}
		if resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			slog.Info("HealthCheck OK", "resp", resp)
		} else {
			slog.Error("HealthCheck", "resp", resp)
		}
	}()

	cli := protos.NewDetectorServiceClient(conn)
	return &DetectorClient{cli: cli}
}

// Detect implements [protos.DetectorServiceClient].
func (d *DetectorClient) Detect(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[protos.DetectRequest, protos.DetectResponse], error) {
	return d.cli.Detect(ctx, opts...)
}

// StartAnalysis implements [protos.DetectorServiceClient].
func (d *DetectorClient) StartAnalysis(ctx context.Context, in *protos.StartAnalysisRequest, opts ...grpc.CallOption) (*protos.StartAnalysisResponse, error) {
	if in.GetThreshold() == 0 {
		in.Threshold = 0.5
	}
	return d.cli.StartAnalysis(ctx, in, opts...)
}

// StopAnalysis implements [protos.DetectorServiceClient].
func (d *DetectorClient) StopAnalysis(ctx context.Context, in *protos.StopAnalysisRequest, opts ...grpc.CallOption) (*protos.StopAnalysisResponse, error) {
	return d.cli.StopAnalysis(ctx, in, opts...)
}

// GetModelInfo implements [protos.DetectorServiceClient].
func (d *DetectorClient) GetModelInfo(ctx context.Context, in *protos.ModelInfoRequest, opts ...grpc.CallOption) (*protos.ModelInfoResponse, error) {
	return d.cli.GetModelInfo(ctx, in, opts...)
}
