package agent

// WriteTier is the governance level at which an agent may change things
// on its own. Lower numbers demand more ceremony before a change.
type WriteTier int

const (
	// TierCore changes need discussion and risk assessment first.
	TierCore WriteTier = 1
	// TierGuarded changes need the approach talked through first.
	TierGuarded WriteTier = 2
	// TierMaintained changes are built and verified autonomously.
	TierMaintained WriteTier = 3
	// TierPlayground is full autonomy; experiment freely.
	TierPlayground WriteTier = 4
	// TierSandbox holds secrets. Never read, never modify, never log.
	TierSandbox WriteTier = 5
)

func (t WriteTier) String() string {
	switch t {
	case TierCore:
		return "Core"
	case TierGuarded:
		return "Guarded"
	case TierMaintained:
		return "Maintained"
	case TierPlayground:
		return "Playground"
	case TierSandbox:
		return "Sandbox"
	default:
		return "unknown"
	}
}

// AllowsAutonomousChange reports whether an agent may modify things at
// this tier without discussion.
func (t WriteTier) AllowsAutonomousChange() bool {
	return t == TierMaintained || t == TierPlayground
}

// Restricted reports whether agents must avoid this tier entirely.
func (t WriteTier) Restricted() bool { return t == TierSandbox }
