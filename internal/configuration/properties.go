// Package configuration loads raftkit's YAML configuration: a base
// application.yml merged with an application-<profile>.yml overlay,
// both passed through strict ${VAR} environment expansion before
// parsing.
package configuration

import (
	"time"

	"raftkit/internal/raft"
)

// AppProperties controls process-wide behavior not specific to any one
// node.
type AppProperties struct {
	Profile  string `yaml:"profile"`
	LogLevel string `yaml:"log-level"`
}

// TransportProperties configures the gRPC listener a node's bus server
// binds to. ClientPort only feeds ClientAddr; raftd starts no client-facing
// listener.
type TransportProperties struct {
	Network    string `yaml:"network"`
	Address    string `yaml:"address"`
	RaftPort   string `yaml:"raft-port"`
	ClientPort string `yaml:"client-port"`
	Timeout    uint64 `yaml:"timeout"`
}

// RaftAddr returns the address this node's grpcbus Server should listen
// on for peer traffic.
func (t TransportProperties) RaftAddr() string {
	return t.Address + ":" + t.RaftPort
}

// ClientAddr returns the address this node's client-facing listener
// should bind to.
func (t TransportProperties) ClientAddr() string {
	return t.Address + ":" + t.ClientPort
}

// WriteAheadLogProperties configures the durable persistence adapter.
type WriteAheadLogProperties struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// RaftProperties configures one node's Raft engine: its identity, its
// peer table (member id -> gRPC address), and the engine tunables that
// mirror raft.Config.
type RaftProperties struct {
	NodeID                        string            `yaml:"node-id"`
	Peers                         map[string]string `yaml:"peers"`
	ElectionTimeoutMinMillis      uint64            `yaml:"election-timeout-min-millis"`
	ElectionTimeoutMaxMillis      uint64            `yaml:"election-timeout-max-millis"`
	HeartbeatIntervalMillis       uint64            `yaml:"heartbeat-interval-millis"`
	DefaultAppendEntriesBatchSize int               `yaml:"default-append-entries-batch-size"`
	PublishTestingEvents          bool              `yaml:"publish-testing-events"`
	Wal                           WriteAheadLogProperties `yaml:"wal"`
}

func (r RaftProperties) electionTimeoutMin() time.Duration {
	return time.Duration(r.ElectionTimeoutMinMillis) * time.Millisecond
}

func (r RaftProperties) electionTimeoutMax() time.Duration {
	return time.Duration(r.ElectionTimeoutMaxMillis) * time.Millisecond
}

func (r RaftProperties) heartbeatInterval() time.Duration {
	return time.Duration(r.HeartbeatIntervalMillis) * time.Millisecond
}

// ToRaftConfig translates the YAML tunables into a raft.Config, letting
// zero values fall through to raft.DefaultConfig via Config.withDefaults.
func (r RaftProperties) ToRaftConfig() raft.Config {
	return raft.Config{
		ElectionTimeoutMin:            r.electionTimeoutMin(),
		ElectionTimeoutMax:            r.electionTimeoutMax(),
		HeartbeatInterval:             r.heartbeatInterval(),
		DefaultAppendEntriesBatchSize: r.DefaultAppendEntriesBatchSize,
		PublishTestingEvents:          r.PublishTestingEvents,
	}
}

// Properties is the full decoded configuration tree.
type Properties struct {
	App       AppProperties       `yaml:"app"`
	Transport TransportProperties `yaml:"transport"`
	Raft      RaftProperties      `yaml:"raft"`
}
