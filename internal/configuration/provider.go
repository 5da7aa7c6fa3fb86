package configuration

// Provider is the narrow read interface the rest of the application
// depends on, rather than the concrete *Properties, so callers can be
// tested against a literal without going through Load.
type Provider interface {
	GetApp() AppProperties
	GetTransport() TransportProperties
	GetRaft() RaftProperties
}

// StaticProvider wraps an already-loaded Properties value.
type StaticProvider struct {
	props *Properties
}

// NewProvider wraps props for read access.
func NewProvider(props *Properties) *StaticProvider {
	return &StaticProvider{props: props}
}

func (p *StaticProvider) GetApp() AppProperties             { return p.props.App }
func (p *StaticProvider) GetTransport() TransportProperties { return p.props.Transport }
func (p *StaticProvider) GetRaft() RaftProperties           { return p.props.Raft }
