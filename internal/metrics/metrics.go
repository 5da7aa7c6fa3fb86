package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RaftRole = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "role",
		Help:      "Current role of this node (0=Follower, 1=Candidate, 2=Leader)",
	})

	RaftTerm = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "term",
		Help:      "Current Raft term",
	})

	RaftCommitIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "commit_index",
		Help:      "Current committed log index",
	})

	RaftLastIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "last_index",
		Help:      "Index of the last log entry",
	})

	RaftPeersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "peers_total",
		Help:      "Number of members in the effective configuration",
	})

	RaftElectionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "elections_started_total",
		Help:      "Total elections this node has started as candidate",
	})

	RaftElectionsWon = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "elections_won_total",
		Help:      "Total elections this node has won",
	})

	RaftVotesGranted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "votes_granted_total",
		Help:      "Total votes this node has granted to candidates",
	})

	RaftVotesDenied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "votes_denied_total",
		Help:      "Total votes this node has denied to candidates",
	})

	RaftAppendRejects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "append_rejects_total",
		Help:      "Total AppendEntries rejected by this node as follower",
	})

	RaftEntriesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "entries_committed_total",
		Help:      "Total committed log entries applied by this node",
	})

	RaftMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "raft",
		Name:      "messages_total",
		Help:      "Total Raft messages sent/received",
	}, []string{"direction", "type"})

	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "Total gRPC requests",
	}, []string{"service", "method", "code"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "raftkit",
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "gRPC request duration",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
	}, []string{"service", "method"})

	WALWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "raftkit",
		Subsystem: "wal",
		Name:      "writes_total",
		Help:      "Total persistence adapter writes",
	})

	WALWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "raftkit",
		Subsystem: "wal",
		Name:      "write_duration_seconds",
		Help:      "Persistence adapter write duration",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 20),
	})
)
