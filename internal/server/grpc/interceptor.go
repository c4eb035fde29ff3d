package grpc

import (
	"context"
	"strings"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/server/auth"
	"github.com/vivamos/vivamos/internal/server/gate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// serviceOf returns "/pkg.Service" for a full method "/pkg.Service/Method".
func serviceOf(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i > 0 {
		return fullMethod[:i]
	}
	return fullMethod
}

func authorization(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// admit runs the gate for a call and returns the context to continue with.
func (s *GRPCServer) admit(ctx context.Context, fullMethod string) (context.Context, error) {
	d, err := s.gate.Admit(fullMethod, serviceOf(fullMethod), authorization(ctx))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	if d.Outcome == gate.Authenticated {
		ctx = auth.WithClaims(ctx, d.Claims)
	}
	return ctx, nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.admit(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type admittedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *admittedStream) Context() context.Context { return a.ctx }

func (s *GRPCServer) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.admit(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &admittedStream{ServerStream: ss, ctx: ctx})
}
