package interceptor

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rentacar-backend/internal/logger"
)

// Logging tags each call with a request id, logs it on completion and turns
// handler panics into codes.Internal
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		ctx = context.WithValue(ctx, logger.RequestIDKey, requestID(ctx))

		defer func() {
			if p := recover(); p != nil {
				logger.ErrorContext(ctx, "RPC handler panicked", "method", info.FullMethod, "panic", p, "stack", string(debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
			logCall(ctx, info.FullMethod, start, err)
		}()

		return handler(ctx, req)
	}
}

// StreamLogging is Logging for streaming RPCs
func StreamLogging() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		start := time.Now()
		ctx := context.WithValue(ss.Context(), logger.RequestIDKey, requestID(ss.Context()))

		defer func() {
			if p := recover(); p != nil {
				logger.ErrorContext(ctx, "RPC handler panicked", "method", info.FullMethod, "panic", p, "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal server error")
			}
			logCall(ctx, info.FullMethod, start, err)
		}()

		return handler(srv, &serverStream{ServerStream: ss, ctx: ctx})
	}
}

func logCall(ctx context.Context, method string, start time.Time, err error) {
	code := status.Code(err)
	args := []any{"method", method, "code", code.String(), "latency", time.Since(start)}
	switch code {
	case codes.OK:
		logger.InfoContext(ctx, "gRPC request", args...)
	case codes.Internal, codes.Unknown, codes.Unavailable:
		logger.ErrorContext(ctx, "gRPC request", append(args, "error", err)...)
	default:
		logger.WarnContext(ctx, "gRPC request", append(args, "error", err)...)
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" && len(ids[0]) <= 64 {
			return ids[0]
		}
	}
	return uuid.NewString()
}
