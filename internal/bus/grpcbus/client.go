package grpcbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"raftkit/internal/raft/wire"
)

// Bus is the client half: a ports.MessageBus that dials each peer's
// Server lazily and reuses the connection for subsequent sends.
type Bus struct {
	mu      sync.Mutex
	addrs   map[string]string
	clients map[string]*transportClient
	timeout time.Duration
}

// New returns a Bus that resolves member ids to addresses using addrs.
func New(addrs map[string]string, timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Bus{
		addrs:   addrs,
		clients: make(map[string]*transportClient),
		timeout: timeout,
	}
}

// Send implements ports.MessageBus.
func (b *Bus) Send(to string, msg wire.Envelope) error {
	client, err := b.clientFor(to)
	if err != nil {
		return err
	}

	data, err := encodeEnvelope(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	_, err = client.Send(ctx, wrapperspb.Bytes(data))
	return err
}

func (b *Bus) clientFor(to string) (*transportClient, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if client, ok := b.clients[to]; ok {
		return client, nil
	}
	addr, ok := b.addrs[to]
	if !ok {
		return nil, fmt.Errorf("grpcbus: no address configured for %q", to)
	}
	conn, err := dialPeer(addr)
	if err != nil {
		return nil, fmt.Errorf("grpcbus: dial %s: %w", addr, err)
	}
	client := newTransportClient(conn)
	b.clients[to] = client
	return client, nil
}

func dialPeer(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)
}
