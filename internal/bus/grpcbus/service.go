// Package grpcbus implements a network ports.MessageBus over gRPC. There
// is no .proto file: the wire payload is an opaque gob-encoded
// wire.Envelope carried inside a wrapperspb.BytesValue, so the service
// descriptor and client stub below are hand-written in the shape
// protoc-gen-go-grpc would otherwise generate.
package grpcbus

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const raftTransportServiceName = "raftkit.RaftTransport"

// transportServer is the interface a gRPC handler invokes server-side.
type transportServer interface {
	Send(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
}

var transportServiceDesc = grpc.ServiceDesc{
	ServiceName: raftTransportServiceName,
	HandlerType: (*transportServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Send", Handler: transportSendHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "raftkit/internal/bus/grpcbus/service.go",
}

func transportSendHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(transportServer).Send(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + raftTransportServiceName + "/Send"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(transportServer).Send(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// transportClient is the hand-written counterpart to a generated
// RaftTransportClient.
type transportClient struct {
	cc grpc.ClientConnInterface
}

func newTransportClient(cc grpc.ClientConnInterface) *transportClient {
	return &transportClient{cc: cc}
}

func (c *transportClient) Send(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+raftTransportServiceName+"/Send", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
