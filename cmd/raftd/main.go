// Command raftd runs a single Raft cluster member as its own process: it
// loads configuration, wires the node's bus, state machine, and
// persistence, and serves until a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"raftkit/internal/bus/grpcbus"
	"raftkit/internal/configuration"
	"raftkit/internal/logging"
	"raftkit/internal/metrics"
	"raftkit/internal/ports"
	"raftkit/internal/raft"
	"raftkit/internal/statemachine/kvapp"
	"raftkit/internal/storage"
	"raftkit/internal/testevents"
)

func main() {
	configDir := flag.String("config-dir", "configs", "directory containing application.yml and profile overlays")
	metricsAddr := flag.String("metrics-addr", ":9100", "address the Prometheus /metrics endpoint binds to")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	props, err := configuration.Load(*configDir)
	if err != nil {
		slog.Error("raftd: failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(props.App.LogLevel)
	provider := configuration.NewProvider(props)

	raftCfg := provider.GetRaft()
	app := kvapp.New()

	persistence, closePersistence, err := openPersistence(raftCfg)
	if err != nil {
		slog.Error("raftd: failed to open persistence", "error", err)
		os.Exit(1)
	}
	defer closePersistence()

	bootstrap := make([]string, 0, len(raftCfg.Peers))
	for id := range raftCfg.Peers {
		bootstrap = append(bootstrap, id)
	}

	var publisher testevents.Publisher
	if raftCfg.PublishTestingEvents {
		publisher = testevents.NewLoggingPublisher(raftCfg.NodeID)
	}

	clientBus := grpcbus.New(raftCfg.Peers, 0)
	node, err := raft.NewNode(raftCfg.NodeID, bootstrap, clientBus, app, persistence, raftCfg.ToRaftConfig(), publisher)
	if err != nil {
		slog.Error("raftd: failed to construct node", "id", raftCfg.NodeID, "error", err)
		os.Exit(1)
	}

	server := grpcbus.NewServer(node)
	transport := provider.GetTransport()
	if err := server.Listen(transport.RaftAddr()); err != nil {
		slog.Error("raftd: failed to start transport listener", "addr", transport.RaftAddr(), "error", err)
		os.Exit(1)
	}

	metricsSrv := metrics.NewServer(*metricsAddr)
	if err := metricsSrv.Start(); err != nil {
		slog.Error("raftd: failed to start metrics server", "error", err)
		os.Exit(1)
	}

	node.Start()
	slog.Info("raftd: ready", "id", raftCfg.NodeID, "raft-addr", transport.RaftAddr(), "members", bootstrap)

	<-ctx.Done()
	slog.Info("raftd: shutting down")
	node.Stop()
	server.Stop()
	metricsSrv.Stop()
}

// openPersistence returns the WAL-backed adapter when durability is
// enabled, otherwise an in-memory store with a no-op close.
func openPersistence(raftCfg configuration.RaftProperties) (ports.Persistence, func(), error) {
	if !raftCfg.Wal.Enabled {
		return storage.NewMemory(), func() {}, nil
	}
	wal, err := storage.OpenWALStorage(raftCfg.Wal.Dir)
	if err != nil {
		return nil, nil, err
	}
	return wal, func() {
		if err := wal.Close(); err != nil {
			slog.Error("raftd: error closing WAL", "error", err)
		}
	}, nil
}
