package grpcbus

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"raftkit/internal/metrics"
	"raftkit/internal/ports"
)

// Server exposes one node's ports.Receiver over gRPC. Each node in a
// networked cluster runs its own Server bound to its own listen address.
type Server struct {
	receiver ports.Receiver
	grpc     *grpc.Server
}

// NewServer wraps receiver for gRPC delivery.
func NewServer(receiver ports.Receiver) *Server {
	return &Server{receiver: receiver}
}

// Listen starts serving on addr in its own goroutine and returns
// immediately; call Stop to shut it down.
func (s *Server) Listen(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpcbus: listen %s: %w", addr, err)
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor()))
	s.grpc.RegisterService(&transportServiceDesc, s)
	go func() {
		if err := s.grpc.Serve(lis); err != nil {
			slog.Error("grpcbus: serve exited", "addr", addr, "error", err)
		}
	}()
	slog.Info("grpcbus: listening", "addr", addr)
	return nil
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
}

// Send implements transportServer: it decodes the envelope and hands it
// to the wrapped Receiver.
func (s *Server) Send(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	msg, err := decodeEnvelope(in.GetValue())
	if err != nil {
		return nil, err
	}
	s.receiver.Receive(msg.From, msg)
	return &emptypb.Empty{}, nil
}
