package memstore

// Kind classifies a memory entry. The categories mirror the feedback
// variants agents emit, plus Observation for general notes.
type Kind int

const (
	// KindSpark holds ideas and insights from agents.
	KindSpark Kind = iota
	// KindConnection holds links between concepts.
	KindConnection
	// KindResource holds useful references.
	KindResource
	// KindFeeling holds agent state snapshots.
	KindFeeling
	// KindObservation holds general notes.
	KindObservation
)

// String returns the serialization tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindSpark:
		return "spark"
	case KindConnection:
		return "connection"
	case KindResource:
		return "resource"
	case KindFeeling:
		return "feeling"
	case KindObservation:
		return "observation"
	default:
		return "unknown"
	}
}

// ParseKind parses a serialization tag back into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "spark":
		return KindSpark, true
	case "connection":
		return KindConnection, true
	case "resource":
		return KindResource, true
	case "feeling":
		return KindFeeling, true
	case "observation":
		return KindObservation, true
	default:
		return KindObservation, false
	}
}
