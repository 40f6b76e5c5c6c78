// Package supervisor implements the cooperative scheduler at the center
// of the coordination core. The Supervisor owns every registered agent,
// the global message queue and the memory store; all cross-agent
// communication and all memory access flows through its tick loop.
//
// The model is single-threaded and cooperative: one Tick call drains the
// queue, routes messages, gives every agent exactly one Tick invocation,
// and collects outboxes for delivery on the next tick. Messages
// therefore always travel with a minimum latency of one tick per hop.
package supervisor

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/agent"
	"github.com/genesisos/genesis/internal/memstore"
	"github.com/genesisos/genesis/internal/message"
)

// Config tunes the supervisor's periodic behaviors. Zero values fall
// back to the defaults below.
type Config struct {
	// HeartbeatInterval is how many ticks between ambition heartbeats.
	HeartbeatInterval uint64
	// SerendipityInterval is how many ticks between shared-theme scans.
	SerendipityInterval uint64
	// CheckpointInterval is how many ticks between rhythm checkpoints.
	CheckpointInterval uint64
	// EODInterval is how many ticks between end-of-day reports.
	EODInterval uint64
	// MaxInsights caps the constellation ring; oldest entries drop first.
	MaxInsights int
	// SearchResultCap bounds memory-protocol search replies.
	SearchResultCap int
	// PreviewRunes is the rune length of content previews in replies.
	PreviewRunes int
}

func (c *Config) applyDefaults() {
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 100
	}
	if c.SerendipityInterval == 0 {
		c.SerendipityInterval = 500
	}
	if c.CheckpointInterval == 0 {
		c.CheckpointInterval = 10_000
	}
	if c.EODInterval == 0 {
		c.EODInterval = 20_000
	}
	if c.MaxInsights == 0 {
		c.MaxInsights = 50
	}
	if c.SearchResultCap == 0 {
		c.SearchResultCap = 10
	}
	if c.PreviewRunes == 0 {
		c.PreviewRunes = 60
	}
}

// AgentStatus is one row of the status report.
type AgentStatus struct {
	ID    message.AgentID
	Name  string
	State agent.State
	Tier  agent.WriteTier
}

// JournalLine pairs an agent name with its journal entry.
type JournalLine struct {
	Agent string
	Entry string
}

// Supervisor orchestrates all agents. It is not safe for concurrent
// use; callers serialize access (the run loop and shell share one
// goroutine-confined instance).
type Supervisor struct {
	cfg    Config
	logger *zap.Logger

	// sessionID labels one boot of the core in logs and journals.
	sessionID string

	agents      []agent.Agent
	queue       []message.Message
	tick        uint64
	nextAgentID uint64
	nextMsgID   uint64

	// livingAmbition is the shared purpose string; empty means unset.
	livingAmbition string

	heartbeatGate   agent.Gate
	serendipityGate agent.Gate
	checkpointGate  agent.Gate
	eodGate         agent.Gate

	// insights is the bounded constellation of feedback collected from
	// agents, newest last.
	insights []message.Feedback

	store *memstore.Store
}

// New creates a Supervisor owning the given memory store.
func New(cfg Config, store *memstore.Store, logger *zap.Logger) *Supervisor {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionID := uuid.NewString()

	s := &Supervisor{
		cfg:             cfg,
		logger:          logger.Named("supervisor"),
		sessionID:       sessionID,
		nextAgentID:     1, // 0 is reserved for the supervisor
		heartbeatGate:   agent.NewGate(cfg.HeartbeatInterval),
		serendipityGate: agent.NewGate(cfg.SerendipityInterval),
		checkpointGate:  agent.NewGate(cfg.CheckpointInterval),
		eodGate:         agent.NewGate(cfg.EODInterval),
		store:           store,
	}
	s.logger.Info("supervisor initialized", zap.String("session_id", sessionID))
	return s
}

// SessionID returns the identifier of this boot session.
func (s *Supervisor) SessionID() string { return s.sessionID }

// NextAgentID hands out the next unique agent id.
func (s *Supervisor) NextAgentID() message.AgentID {
	id := message.AgentID(s.nextAgentID)
	s.nextAgentID++
	return id
}

// Register runs the genesis protocol for a new agent: Init, Imprint
// with the living ambition if one is set, ClarifyRole, then a
// FirstBreath broadcast. Agents must be registered before the first
// tick of interest; a broadcast mid-session still reaches them from the
// next tick onward.
func (s *Supervisor) Register(a agent.Agent) {
	name := a.Name()
	s.logger.Info("registering agent",
		zap.String("agent", name),
		zap.Uint64("id", uint64(a.ID())))

	s.guard(name, "init", func() { a.Init() })

	if s.livingAmbition != "" {
		s.logger.Info("imprinting agent with living ambition", zap.String("agent", name))
		s.guard(name, "imprint", func() { a.Imprint(s.livingAmbition) })
	} else {
		s.logger.Debug("no living ambition set; agent waits for imprint", zap.String("agent", name))
	}

	role := "Worker"
	s.guard(name, "clarify_role", func() { role = a.ClarifyRole() })
	s.logger.Info("agent clarified role", zap.String("agent", name), zap.String("role", role))

	s.Send(message.FirstBreath(message.SupervisorID, name, role))

	s.agents = append(s.agents, a)
	s.logger.Info("agent online", zap.String("agent", name), zap.String("role", role))
}

// Send stamps the message with a unique id and the current tick, then
// queues it for delivery starting next tick.
func (s *Supervisor) Send(msg message.Message) {
	s.nextMsgID++
	msg.ID = s.nextMsgID
	msg.Timestamp = s.tick
	s.queue = append(s.queue, msg)
}

// Broadcast queues a broadcast message of the given kind from the
// supervisor itself.
func (s *Supervisor) Broadcast(msg message.Message) {
	msg.To = nil
	s.Send(msg)
}

// Breathe sets the living ambition, imprints every registered agent and
// pulses an immediate heartbeat.
func (s *Supervisor) Breathe(ambition string) {
	s.logger.Info("setting living ambition", zap.String("ambition", ambition))
	s.livingAmbition = ambition
	for _, a := range s.agents {
		a := a
		s.guard(a.Name(), "imprint", func() { a.Imprint(ambition) })
	}
	s.pulse()
}

// Ambition returns the living ambition, or ok=false when none is set.
func (s *Supervisor) Ambition() (string, bool) {
	return s.livingAmbition, s.livingAmbition != ""
}

// Insights returns a snapshot of the constellation, oldest first.
func (s *Supervisor) Insights() []message.Feedback {
	out := make([]message.Feedback, len(s.insights))
	copy(out, s.insights)
	return out
}

// AgentCount returns the number of registered agents.
func (s *Supervisor) AgentCount() int { return len(s.agents) }

// CurrentTick returns the tick counter.
func (s *Supervisor) CurrentTick() uint64 { return s.tick }

// Memory exposes the owned store for the shell's read-mostly commands.
// Agents never see this; they go through the message protocol.
func (s *Supervisor) Memory() *memstore.Store { return s.store }

// Status reports every agent's id, name, state and write tier in
// registration order.
func (s *Supervisor) Status() []AgentStatus {
	out := make([]AgentStatus, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, AgentStatus{ID: a.ID(), Name: a.Name(), State: a.State(), Tier: a.MaxWriteTier()})
	}
	return out
}

// Tick runs one scheduling step. See the package comment for the
// ordering guarantees; the step sequence is:
//
//  1. advance the tick counter
//  2. heartbeat gate: broadcast the ambition every N ticks
//  3. drain the queue into a local batch
//  4. partition into feedback / memory protocol / routable
//  5. archive feedback into the constellation and the memory store
//  6. serve memory-protocol requests, queueing replies for next tick
//  7. route the remaining batch into per-agent inboxes
//  8. tick every agent in registration order, collecting outboxes
//  9. serendipity gate: scan the index for shared themes
//  10. rhythm gates: checkpoint / end-of-day reports
func (s *Supervisor) Tick() {
	s.tick++

	if s.heartbeatGate.Tick() {
		s.pulse()
	}

	// Drain: sends that happen during this tick land in a fresh queue
	// and are delivered next tick.
	batch := s.queue
	s.queue = nil

	var feedback, memoryOps, routable []message.Message
	for _, msg := range batch {
		switch msg.Kind {
		case message.KindFeedback:
			feedback = append(feedback, msg)
		case message.KindMemoryStore, message.KindMemorySearch:
			memoryOps = append(memoryOps, msg)
		default:
			routable = append(routable, msg)
		}
	}

	for _, msg := range feedback {
		s.collectInsight(msg)
	}
	for _, msg := range memoryOps {
		s.serveMemoryOp(msg)
	}

	for _, a := range s.agents {
		inbox := make([]message.Message, 0)
		for _, msg := range routable {
			if msg.AddressedTo(a.ID()) {
				inbox = append(inbox, msg)
			}
		}

		a := a
		for _, msg := range inbox {
			msg := msg
			s.guard(a.Name(), "receive", func() { a.Receive(msg) })
		}

		ctx := agent.NewContext(inbox, s.tick)
		s.guard(a.Name(), "tick", func() { a.Tick(ctx) })

		for _, out := range ctx.Outbox() {
			s.Send(out)
		}
	}

	if s.serendipityGate.Tick() {
		s.checkSerendipity()
	}
	if s.checkpointGate.Tick() {
		s.reportRhythm("checkpoint", func(a agent.Agent) []string { return a.Checkpoint() })
	}
	if s.eodGate.Tick() {
		s.reportRhythm("eod", func(a agent.Agent) []string { return a.EODReport() })
	}
}

// pulse broadcasts the living ambition heartbeat, if one is set.
func (s *Supervisor) pulse() {
	if s.livingAmbition == "" {
		return
	}
	s.logger.Debug("heartbeat pulse", zap.Uint64("tick", s.tick))
	s.Send(message.Heartbeat(message.SupervisorID, s.livingAmbition))
}

// collectInsight appends feedback to the bounded constellation and
// auto-archives a text rendering of it into the memory store, so every
// piece of feedback becomes searchable memory.
func (s *Supervisor) collectInsight(msg message.Message) {
	s.insights = append(s.insights, msg.Feedback)
	if len(s.insights) > s.cfg.MaxInsights {
		s.insights = s.insights[len(s.insights)-s.cfg.MaxInsights:]
	}

	kind := feedbackToMemoryKind(msg.Feedback.Kind)
	source := fmt.Sprintf("agent-%d", msg.From)
	id := s.store.StoreWithTimestamp(msg.Feedback.Describe(), kind, source, s.tick)

	s.logger.Debug("archived feedback",
		zap.Uint64("entry_id", id),
		zap.String("kind", kind.String()),
		zap.String("source", source))
}

func feedbackToMemoryKind(k message.FeedbackKind) memstore.Kind {
	switch k {
	case message.FeedbackSpark:
		return memstore.KindSpark
	case message.FeedbackConnection:
		return memstore.KindConnection
	case message.FeedbackResource:
		return memstore.KindResource
	case message.FeedbackFeeling:
		return memstore.KindFeeling
	default:
		return memstore.KindObservation
	}
}

// serveMemoryOp executes a memory-protocol request against the store
// and queues a MemoryResults reply back to the sender. The reply enters
// the ordinary queue, so the requester sees it on the next tick.
func (s *Supervisor) serveMemoryOp(msg message.Message) {
	switch msg.Kind {
	case message.KindMemoryStore:
		kind, ok := memstore.ParseKind(msg.MemKind)
		if !ok {
			kind = memstore.KindObservation
		}
		source := fmt.Sprintf("agent-%d", msg.From)
		id := s.store.StoreWithTimestamp(msg.Content, kind, source, s.tick)
		reply := message.MemoryResultsReply(message.SupervisorID, msg.From, []message.MemoryResult{
			{ID: id, Preview: s.preview(msg.Content)},
		})
		s.Send(reply)

	case message.KindMemorySearch:
		hits := s.store.Search(msg.Query)
		if len(hits) > s.cfg.SearchResultCap {
			hits = hits[:s.cfg.SearchResultCap]
		}
		results := make([]message.MemoryResult, 0, len(hits))
		for _, hit := range hits {
			if entry, ok := s.store.Peek(hit.ID); ok {
				results = append(results, message.MemoryResult{
					ID:      entry.ID,
					Preview: s.preview(entry.Content),
				})
			}
		}
		s.Send(message.MemoryResultsReply(message.SupervisorID, msg.From, results))
	}
}

// checkSerendipity scans the index for keywords shared by at least two
// memories, searches the top few, and broadcasts a Connection linking
// the first two hits of each. Best-effort discovery, not exhaustive.
func (s *Supervisor) checkSerendipity() {
	themes := s.store.FrequentKeywords(2, 3)
	if len(themes) == 0 {
		return
	}

	for _, theme := range themes {
		hits := s.store.Search(theme.Keyword)
		if len(hits) < 2 {
			continue
		}
		first, ok1 := s.store.Peek(hits[0].ID)
		second, ok2 := s.store.Peek(hits[1].ID)
		if !ok1 || !ok2 {
			continue
		}

		s.logger.Info("serendipity: shared theme found",
			zap.String("keyword", theme.Keyword),
			zap.Int("memories", theme.Count))

		s.Send(message.SendFeedback(message.SupervisorID, message.Feedback{
			Kind:    message.FeedbackConnection,
			From:    s.preview(first.Content),
			To:      s.preview(second.Content),
			Pattern: fmt.Sprintf("shared theme %q across %d memories", theme.Keyword, theme.Count),
		}))
	}
}

// reportRhythm logs read-only reports from every agent. No state
// mutation happens here.
func (s *Supervisor) reportRhythm(phase string, report func(agent.Agent) []string) {
	for _, a := range s.agents {
		a := a
		var lines []string
		s.guard(a.Name(), phase, func() { lines = report(a) })
		for _, line := range lines {
			s.logger.Info("rhythm report",
				zap.String("phase", phase),
				zap.String("agent", a.Name()),
				zap.String("line", line))
		}
	}
}

// preview truncates content to the configured rune length at a UTF-8
// boundary, appending an ellipsis marker when text was cut.
func (s *Supervisor) preview(content string) string {
	runes := []rune(content)
	if len(runes) <= s.cfg.PreviewRunes {
		return content
	}
	return string(runes[:s.cfg.PreviewRunes]) + "..."
}

// guard runs one agent callback and recovers panics so a faulty agent
// cannot halt the tick loop. Failures surface only as log lines.
func (s *Supervisor) guard(agentName, op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("agent panicked; continuing",
				zap.String("agent", agentName),
				zap.String("op", op),
				zap.Any("panic", r))
		}
	}()
	fn()
}
