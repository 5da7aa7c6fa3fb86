// Package wire defines the RPC messages RaftNodes exchange over a
// MessageBus and the persisted-entry shape a Persistence
// adapter stores. Every RequestVote/AppendEntries message and its reply
// carries a Term so the uniform higher-term precondition can be applied to
// all of them alike; the client, configuration and diagnostic messages
// carry no Term, except IAmInState.
package wire

// RequestVote is sent by a candidate soliciting votes.
type RequestVote struct {
	Term         uint64
	CandidateId  string
	LastLogIndex uint64
	LastLogTerm  uint64
}

// VoteGranted is a RequestVote reply granting the vote.
type VoteGranted struct {
	Term uint64
}

// VoteDenied is a RequestVote reply withholding the vote.
type VoteDenied struct {
	Term uint64
}

// AppendEntries is sent by a leader to replicate entries or, with an empty
// Entries slice, as a heartbeat.
type AppendEntries struct {
	Term         uint64
	LeaderId     string
	PrevLogIndex uint64
	PrevLogTerm  uint64
	Entries      []Entry
	LeaderCommit uint64
}

// Entry is the wire shape of a replicated log entry. Command is an opaque
// value: ordinary application commands pass through unexamined; the two
// distinguished configuration-change kinds are detected structurally by
// the raft package.
type Entry struct {
	Index   uint64
	Term    uint64
	Command any
	Client  string
}

// AppendSuccessful is an AppendEntries reply acknowledging replication up
// to MatchIndex.
type AppendSuccessful struct {
	Term       uint64
	MatchIndex uint64
}

// AppendRejected is an AppendEntries reply reporting a consistency-check
// failure (stale term or log mismatch); LastIndex lets the leader retarget
// nextIndex without a full linear search.
type AppendRejected struct {
	Term      uint64
	LastIndex uint64
}

// ClientMessage carries a client command to be appended to the log once
// this node is leader. Client is the reply address: where the apply
// result (or a redirect hint) should be sent.
type ClientMessage struct {
	Client  string
	Command any
}

// ClientRedirect is the reply a non-leader sends in response to a
// ClientMessage.
type ClientRedirect struct {
	LeaderHint string // last known leader, or "" if unknown
}

// CommandApplied is sent to an entry's Client once the entry commits and
// its apply result is known. Err is the error's message, if
// the application's apply returned one; apply failures do not halt the
// log, they are just surfaced this way.
type CommandApplied struct {
	Index uint64
	Reply any
	Err   string
}

// ChangeConfiguration injects a bootstrap (or externally driven) cluster
// configuration into a node.
type ChangeConfiguration struct {
	Members []string // Stable membership; joint changes are driven internally
}

// RequestConfiguration asks a node to report its effective configuration.
type RequestConfiguration struct{}

// AskForState is a diagnostic probe.
type AskForState struct{}

// IAmInState is the AskForState reply.
type IAmInState struct {
	Role string
	Term uint64
}

// Envelope is the transport-level wrapper a MessageBus carries: exactly
// one payload field is populated per envelope. From/To are MemberIds.
type Envelope struct {
	From string
	To   string

	RequestVote         *RequestVote
	VoteGranted         *VoteGranted
	VoteDenied          *VoteDenied
	AppendEntries       *AppendEntries
	AppendSuccessful    *AppendSuccessful
	AppendRejected      *AppendRejected
	ClientMessage       *ClientMessage
	ClientRedirect      *ClientRedirect
	CommandApplied      *CommandApplied
	ChangeConfiguration *ChangeConfiguration
	RequestConfig       *RequestConfiguration
	AskForState         *AskForState
	IAmInState          *IAmInState
}

// Kind returns a short discriminator string for the populated payload,
// used for logging and metrics labels.
func (e Envelope) Kind() string {
	switch {
	case e.RequestVote != nil:
		return "RequestVote"
	case e.VoteGranted != nil:
		return "VoteGranted"
	case e.VoteDenied != nil:
		return "VoteDenied"
	case e.AppendEntries != nil:
		return "AppendEntries"
	case e.AppendSuccessful != nil:
		return "AppendSuccessful"
	case e.AppendRejected != nil:
		return "AppendRejected"
	case e.ClientMessage != nil:
		return "ClientMessage"
	case e.ClientRedirect != nil:
		return "ClientRedirect"
	case e.CommandApplied != nil:
		return "CommandApplied"
	case e.ChangeConfiguration != nil:
		return "ChangeConfiguration"
	case e.RequestConfig != nil:
		return "RequestConfiguration"
	case e.AskForState != nil:
		return "AskForState"
	case e.IAmInState != nil:
		return "IAmInState"
	default:
		return "Unknown"
	}
}

// Term returns the term carried by the populated payload, or 0 for
// payloads that carry none (ChangeConfiguration, RequestConfiguration,
// AskForState).
func (e Envelope) Term() uint64 {
	switch {
	case e.RequestVote != nil:
		return e.RequestVote.Term
	case e.VoteGranted != nil:
		return e.VoteGranted.Term
	case e.VoteDenied != nil:
		return e.VoteDenied.Term
	case e.AppendEntries != nil:
		return e.AppendEntries.Term
	case e.AppendSuccessful != nil:
		return e.AppendSuccessful.Term
	case e.AppendRejected != nil:
		return e.AppendRejected.Term
	case e.IAmInState != nil:
		return e.IAmInState.Term
	default:
		return 0
	}
}

// PersistedEntry is the shape a Persistence adapter stores per entry —
// identical to Entry, named separately so storage can evolve (e.g. adding
// a checksum) without perturbing the wire format.
type PersistedEntry struct {
	Index   uint64
	Term    uint64
	Command any
	Client  string
}
