package rpc

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/censudex/clients-service/internal/pkg/token"
)

// caller is filled by authInterceptor and read back by loggingInterceptor,
// which runs outside it.
type caller struct {
	subject  string
	username string
}

type callerKey struct{}

// recoveryInterceptor turns handler panics into codes.Internal.
func recoveryInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Str("method", info.FullMethod).
					Msg("panic recovered in gRPC handler")
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func loggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		who := &caller{}
		resp, err := handler(context.WithValue(ctx, callerKey{}, who), req)

		code := status.Code(err)
		ev := log.Info()
		if err != nil {
			ev = log.Warn()
		}
		if who.subject != "" {
			ev = ev.Str("subject", who.subject).Str("username", who.username)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("latency", time.Since(start)).
			Msg("rpc")
		return resp, err
	}
}

// authInterceptor requires a valid bearer token in the "authorization"
// metadata for every clients.ClientService method.
func authInterceptor(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				header = vals[0]
			}
		}
		claims, err := token.FromHeader(header, secret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		if who, ok := ctx.Value(callerKey{}).(*caller); ok {
			who.subject = claims.Subject
			who.username = claims.Username
		}
		return handler(ctx, req)
	}
}
