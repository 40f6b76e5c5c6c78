// Package agent defines the capability contract every agent implements
// and the per-tick context the supervisor hands to it.
package agent

import "github.com/genesisos/genesis/internal/message"

// State is an agent's lifecycle state. Each agent owns its state
// exclusively; the supervisor only reads it.
type State int

const (
	StateInitializing State = iota
	StateReady
	StateRunning
	StateWaiting
	StateCompleted
	StateError
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Context is what an agent sees during one tick: the messages routed to
// it this tick, the current tick number, and an outbox. Anything sent is
// timestamped by the supervisor and delivered no earlier than the next
// tick; an agent must never assume same-tick delivery.
type Context struct {
	// Inbox holds this tick's messages addressed to the agent (or to
	// everyone). Read-only: agents must not grow or reorder it.
	Inbox []message.Message
	// Tick is the current supervisor tick number.
	Tick uint64

	outbox []message.Message
}

// NewContext builds a tick context. Used by the supervisor and by tests.
func NewContext(inbox []message.Message, tick uint64) *Context {
	return &Context{Inbox: inbox, Tick: tick}
}

// Send queues a message for delivery starting next tick.
func (c *Context) Send(msg message.Message) {
	c.outbox = append(c.outbox, msg)
}

// Outbox returns everything the agent sent during this tick.
func (c *Context) Outbox() []message.Message { return c.outbox }

// Agent is the capability contract for an autonomous unit driven by the
// supervisor. Tick is the only place work happens and must never block:
// no I/O waits, no sleeps. Waiting on an external answer is modeled by
// sending a request and polling the inbox on a later tick.
//
// Agents are expected to contain their own failures: Tick and Receive
// return no error, and a panicking agent is recovered and logged at the
// supervisor boundary rather than crashing the loop.
type Agent interface {
	// ID returns the agent's identity, assigned at registration.
	ID() message.AgentID
	// Name returns the display name used in logs and status output.
	Name() string
	// State returns the agent's current lifecycle state.
	State() State
	// Init runs one-time setup. Called exactly once, at registration.
	Init()
	// Tick performs one unit of cooperative work and reports the
	// resulting state.
	Tick(ctx *Context) State
	// Receive is a side-channel notification hook, called once for each
	// inbox message before Tick sees the same messages. Intended for
	// logging and lightweight reactions, not the main work.
	Receive(msg message.Message)
	// Shutdown releases whatever the agent holds.
	Shutdown()

	// Daily rhythm hooks. All have safe no-op defaults via Base.

	// DailyAmbition returns the agent's goals for the day.
	DailyAmbition() []string
	// Checkpoint reports mid-day progress. Must not mutate state.
	Checkpoint() []string
	// EODReport summarizes the day's accomplishments. Must not mutate state.
	EODReport() []string
	// Reflect lets the agent learn from the day.
	Reflect()

	// Genesis protocol hooks.

	// Imprint hands the agent the living ambition.
	Imprint(ambition string)
	// ClarifyRole returns the agent's self-declared role for the
	// current ambition ("Guardian", "Co-Creator", ...).
	ClarifyRole() string
	// HandleEnvironmentSetup lets the agent organize its domain before
	// the system becomes interactive.
	HandleEnvironmentSetup(ctx *Context)

	// MaxWriteTier returns the highest tier at which the agent makes
	// changes without discussion. Lower-numbered tiers need ceremony.
	MaxWriteTier() WriteTier

	// JournalEntry returns a first-person reflection for the given
	// tick, or ok=false when the agent has nothing to say.
	JournalEntry(tick uint64) (entry string, ok bool)
}

// Base provides no-op defaults for the optional Agent hooks so concrete
// agents only implement what they care about.
type Base struct{}

func (Base) DailyAmbition() []string            { return nil }
func (Base) Checkpoint() []string               { return nil }
func (Base) EODReport() []string                { return nil }
func (Base) Reflect()                           {}
func (Base) Imprint(string)                     {}
func (Base) ClarifyRole() string                { return "Worker" }
func (Base) HandleEnvironmentSetup(*Context)    {}
func (Base) MaxWriteTier() WriteTier            { return TierPlayground }
func (Base) JournalEntry(uint64) (string, bool) { return "", false }
