// Package message defines the value types agents exchange through the
// supervisor. Agents communicate only via messages, never shared memory;
// every recipient sees its own copy and treats payloads as immutable.
//
// Message IDs and timestamps are assigned by the supervisor at enqueue
// time, never by the sender. Constructors leave both fields zero.
package message

import "fmt"

// AgentID uniquely identifies a registered agent. ID 0 is reserved for
// the supervisor itself.
type AgentID uint64

// SupervisorID is the sender ID used for system-originated messages.
const SupervisorID AgentID = 0

// Priority orders messages by urgency. Routing currently preserves FIFO
// order regardless of priority; the field exists for observability and
// future scheduling policies.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Kind identifies what a message carries. The set is closed: the
// supervisor's partition step depends on recognizing every kind.
type Kind int

const (
	// KindText is a simple text message.
	KindText Kind = iota
	// KindRequest asks another agent to perform an action.
	KindRequest
	// KindResponse answers a request.
	KindResponse
	// KindStatusUpdate reports ambitions and progress for the daily rhythm.
	KindStatusUpdate
	// KindSystemEvent carries a supervisor-originated system event.
	KindSystemEvent
	// KindKeyboardInput forwards a single input character.
	KindKeyboardInput
	// KindPing tests connectivity.
	KindPing
	// KindPong answers a ping.
	KindPong
	// KindHeartbeat is the periodic broadcast of the living ambition.
	KindHeartbeat
	// KindFeedback carries an emergent observation back to the core.
	KindFeedback
	// KindFirstBreath announces a newly registered agent.
	KindFirstBreath
	// KindMemoryStore asks the supervisor to archive content.
	KindMemoryStore
	// KindMemorySearch asks the supervisor to search archived memory.
	KindMemorySearch
	// KindMemoryResults returns search or store results to the requester.
	KindMemoryResults
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindStatusUpdate:
		return "status_update"
	case KindSystemEvent:
		return "system_event"
	case KindKeyboardInput:
		return "keyboard_input"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindHeartbeat:
		return "heartbeat"
	case KindFeedback:
		return "feedback"
	case KindFirstBreath:
		return "first_breath"
	case KindMemoryStore:
		return "memory_store"
	case KindMemorySearch:
		return "memory_search"
	case KindMemoryResults:
		return "memory_results"
	default:
		return "unknown"
	}
}

// SystemEvent enumerates supervisor-originated lifecycle events.
type SystemEvent int

const (
	EventMorningAmbition SystemEvent = iota
	EventMiddayCheckpoint
	EventEndOfDay
	EventNightReflection
	EventShutdown
	EventGenesisProtocol
	EventEnvironmentSetup
)

func (e SystemEvent) String() string {
	switch e {
	case EventMorningAmbition:
		return "morning_ambition"
	case EventMiddayCheckpoint:
		return "midday_checkpoint"
	case EventEndOfDay:
		return "end_of_day"
	case EventNightReflection:
		return "night_reflection"
	case EventShutdown:
		return "shutdown"
	case EventGenesisProtocol:
		return "genesis_protocol"
	case EventEnvironmentSetup:
		return "environment_setup"
	default:
		return "unknown"
	}
}

// FeedbackKind classifies feedback sent by agents back to the core.
type FeedbackKind int

const (
	// FeedbackSpark is a new idea or insight that emerged during work.
	FeedbackSpark FeedbackKind = iota
	// FeedbackConnection links two concepts or past insights.
	FeedbackConnection
	// FeedbackResource points at a useful article, tool or data source.
	FeedbackResource
	// FeedbackFeeling is a tagged snapshot of the agent's state.
	FeedbackFeeling
)

func (k FeedbackKind) String() string {
	switch k {
	case FeedbackSpark:
		return "spark"
	case FeedbackConnection:
		return "connection"
	case FeedbackResource:
		return "resource"
	case FeedbackFeeling:
		return "feeling"
	default:
		return "unknown"
	}
}

// Feedback is the payload of a KindFeedback message. Only the fields
// matching Kind are meaningful.
type Feedback struct {
	Kind FeedbackKind

	// Spark
	Content string
	Context string

	// Connection
	From    string
	To      string
	Pattern string

	// Resource
	Description string
	Location    string

	// Feeling
	Tag       string
	Intensity uint8 // 0-100
}

// Describe renders the feedback as a single archivable line.
func (f Feedback) Describe() string {
	switch f.Kind {
	case FeedbackSpark:
		return fmt.Sprintf("Spark: %s (context: %s)", f.Content, f.Context)
	case FeedbackConnection:
		return fmt.Sprintf("Connection: %s -> %s (%s)", f.From, f.To, f.Pattern)
	case FeedbackResource:
		return fmt.Sprintf("Resource: %s at %s", f.Description, f.Location)
	case FeedbackFeeling:
		return fmt.Sprintf("Feeling: %s (intensity %d)", f.Tag, f.Intensity)
	default:
		return "Feedback: unknown"
	}
}

// MemoryResult is one (id, preview) pair inside a KindMemoryResults payload.
type MemoryResult struct {
	ID      uint64
	Preview string
}

// Message is one unit of inter-agent communication. To == nil means
// broadcast: every registered agent, including the sender, receives it.
type Message struct {
	// ID is a process-lifetime-unique monotonic sequence number,
	// assigned by the supervisor when the message enters the queue.
	ID uint64
	// From is the sending agent (SupervisorID for system messages).
	From AgentID
	// To is the recipient; nil broadcasts to all registered agents.
	To       *AgentID
	Priority Priority
	Kind     Kind
	// Timestamp is the tick on which the supervisor queued the message.
	Timestamp uint64

	// Payload fields. Which fields carry data depends on Kind; all are
	// treated as immutable once the message is queued.
	Text      string         // KindText
	Action    string         // KindRequest
	Params    []string       // KindRequest
	Success   bool           // KindResponse
	Data      string         // KindResponse
	Ambitions []string       // KindStatusUpdate
	Progress  []string       // KindStatusUpdate
	Event     SystemEvent    // KindSystemEvent
	Input     rune           // KindKeyboardInput
	Ambition  string         // KindHeartbeat
	Feedback  Feedback       // KindFeedback
	AgentName string         // KindFirstBreath
	Role      string         // KindFirstBreath
	Content   string         // KindMemoryStore
	MemKind   string         // KindMemoryStore ("spark", "observation", ...)
	Query     string         // KindMemorySearch
	Results   []MemoryResult // KindMemoryResults
}

// IsBroadcast reports whether the message is addressed to all agents.
func (m Message) IsBroadcast() bool { return m.To == nil }

// AddressedTo reports whether the agent with the given id should
// receive this message.
func (m Message) AddressedTo(id AgentID) bool {
	return m.To == nil || *m.To == id
}

// New creates a directed message of the given kind with normal priority.
func New(from AgentID, to AgentID, kind Kind) Message {
	recipient := to
	return Message{From: from, To: &recipient, Priority: PriorityNormal, Kind: kind}
}

// NewBroadcast creates a broadcast message of the given kind.
func NewBroadcast(from AgentID, kind Kind) Message {
	return Message{From: from, To: nil, Priority: PriorityNormal, Kind: kind}
}

// Text creates a directed plain-text message.
func Text(from AgentID, to AgentID, text string) Message {
	m := New(from, to, KindText)
	m.Text = text
	return m
}

// BroadcastText creates a broadcast plain-text message.
func BroadcastText(from AgentID, text string) Message {
	m := NewBroadcast(from, KindText)
	m.Text = text
	return m
}

// Request creates a directed action request.
func Request(from AgentID, to AgentID, action string, params ...string) Message {
	m := New(from, to, KindRequest)
	m.Action = action
	m.Params = params
	return m
}

// BroadcastRequest creates an action request addressed to all agents.
func BroadcastRequest(from AgentID, action string, params ...string) Message {
	m := NewBroadcast(from, KindRequest)
	m.Action = action
	m.Params = params
	return m
}

// Response answers a request.
func Response(from AgentID, to AgentID, success bool, data string) Message {
	m := New(from, to, KindResponse)
	m.Success = success
	m.Data = data
	return m
}

// Ping creates a connectivity probe.
func Ping(from AgentID, to AgentID) Message { return New(from, to, KindPing) }

// BroadcastPing probes every registered agent.
func BroadcastPing(from AgentID) Message { return NewBroadcast(from, KindPing) }

// Pong answers a ping.
func Pong(from AgentID, to AgentID) Message { return New(from, to, KindPong) }

// Heartbeat broadcasts the living ambition.
func Heartbeat(from AgentID, ambition string) Message {
	m := NewBroadcast(from, KindHeartbeat)
	m.Ambition = ambition
	return m
}

// SendFeedback creates a broadcast feedback message.
func SendFeedback(from AgentID, fb Feedback) Message {
	m := NewBroadcast(from, KindFeedback)
	m.Feedback = fb
	return m
}

// FirstBreath announces a newly registered agent to the system.
func FirstBreath(from AgentID, agentName, role string) Message {
	m := NewBroadcast(from, KindFirstBreath)
	m.AgentName = agentName
	m.Role = role
	return m
}

// SystemBroadcast creates a broadcast system event.
func SystemBroadcast(from AgentID, event SystemEvent) Message {
	m := NewBroadcast(from, KindSystemEvent)
	m.Event = event
	return m
}

// MemoryStoreRequest asks the supervisor to archive content under the
// given kind tag ("spark", "observation", ...).
func MemoryStoreRequest(from AgentID, content, kindTag string) Message {
	m := NewBroadcast(from, KindMemoryStore)
	m.Content = content
	m.MemKind = kindTag
	return m
}

// MemorySearchRequest asks the supervisor to search archived memory.
func MemorySearchRequest(from AgentID, query string) Message {
	m := NewBroadcast(from, KindMemorySearch)
	m.Query = query
	return m
}

// MemoryResultsReply builds the supervisor's reply to a memory request.
func MemoryResultsReply(from AgentID, to AgentID, results []MemoryResult) Message {
	m := New(from, to, KindMemoryResults)
	m.Results = results
	return m
}

// Urgent returns a copy of the message raised to high priority.
func (m Message) Urgent() Message {
	m.Priority = PriorityHigh
	return m
}
