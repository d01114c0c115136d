package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Varun5711/shortlinks/internal/logger"
)

// LoggingInterceptor logs every unary call with its outcome and latency.
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		switch code {
		case codes.OK:
			log.Debug("%s OK (%v)", info.FullMethod, time.Since(start))
		case codes.Internal, codes.Unknown:
			log.Error("%s %s (%v): %v", info.FullMethod, code, time.Since(start), err)
		default:
			log.Info("%s %s (%v)", info.FullMethod, code, time.Since(start))
		}
		return resp, err
	}
}

// RecoveryInterceptor turns a handler panic into codes.Internal.
func RecoveryInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in %s: %v\n%s", info.FullMethod, r, debug.Stack())
				err = status.Error(codes.Internal, internalErrorMessage)
			}
		}()
		return handler(ctx, req)
	}
}
