// Package thomas implements the verifier agent. Thomas answers pings,
// runs self-tests, and periodically archives health snapshots so the
// system's stability becomes searchable history.
package thomas

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/agent"
	"github.com/genesisos/genesis/internal/message"
)

// Default gate intervals, in ticks.
const (
	sparkInterval       = 1000
	healthStoreInterval = 2000
	patternScanInterval = 5000
)

// Thomas is the first agent: curious, methodical, always testing.
type Thomas struct {
	agent.Base

	id     message.AgentID
	state  agent.State
	logger *zap.Logger

	messagesReceived uint64
	pingsResponded   uint64
	testsRun         uint64
	testsPassed      uint64

	ambition string
	role     string

	sparkGate       agent.Gate
	healthStoreGate agent.Gate
	patternScanGate agent.Gate
}

// New creates Thomas with the given identity.
func New(id message.AgentID, logger *zap.Logger) *Thomas {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Thomas{
		id:              id,
		state:           agent.StateInitializing,
		logger:          logger.Named("thomas"),
		role:            "Worker",
		sparkGate:       agent.NewGate(sparkInterval),
		healthStoreGate: agent.NewGate(healthStoreInterval),
		patternScanGate: agent.NewGate(patternScanInterval),
	}
}

func (t *Thomas) ID() message.AgentID { return t.id }
func (t *Thomas) Name() string        { return "Thomas" }
func (t *Thomas) State() agent.State  { return t.state }

func (t *Thomas) Init() {
	t.state = agent.StateInitializing
	t.runTests()
	t.state = agent.StateReady
	t.logger.Info("ready and waiting for messages", zap.String("motto", "trust, but verify"))
}

// runTests exercises the basics the rest of the agent depends on. Each
// check is trivial on purpose: if these fail, nothing else can be
// trusted either.
func (t *Thomas) runTests() {
	t.testsRun++
	if v := make([]int, 5); len(v) == 5 {
		t.testsPassed++
	}

	t.testsRun++
	if s := fmt.Sprintf("genesis-%d", t.id); len(s) > 0 {
		t.testsPassed++
	}

	t.testsRun++
	if 6*7 == 42 {
		t.testsPassed++
	}

	t.logger.Info("self-tests complete",
		zap.Uint64("passed", t.testsPassed),
		zap.Uint64("run", t.testsRun))
}

func (t *Thomas) Tick(ctx *agent.Context) agent.State {
	for _, msg := range ctx.Inbox {
		t.handleMessage(ctx, msg)
	}

	if t.sparkGate.Tick() && t.testsPassed > 0 {
		ctx.Send(message.SendFeedback(t.id, message.Feedback{
			Kind: message.FeedbackSpark,
			Content: fmt.Sprintf("all %d tests passed, system stability confirmed (%d msgs processed, tick %d)",
				t.testsPassed, t.messagesReceived, ctx.Tick),
			Context: fmt.Sprintf("testing cycle %d at tick %d", t.testsRun, ctx.Tick),
		}))
	}

	if t.healthStoreGate.Tick() {
		snapshot := fmt.Sprintf("system health: %d/%d tests passed, %d msgs, tick %d",
			t.testsPassed, t.testsRun, t.messagesReceived, ctx.Tick)
		ctx.Send(message.MemoryStoreRequest(t.id, snapshot, "observation"))
		ctx.Send(message.SendFeedback(t.id, message.Feedback{
			Kind: message.FeedbackSpark,
			Content: fmt.Sprintf("health snapshot: %d/%d tests, %d msgs at tick %d",
				t.testsPassed, t.testsRun, t.messagesReceived, ctx.Tick),
			Context: "periodic health observation",
		}))
		t.logger.Debug("stored health observation", zap.Uint64("tick", ctx.Tick))
	}

	if t.patternScanGate.Tick() {
		ctx.Send(message.MemorySearchRequest(t.id, "system health tests"))
	}

	return t.state
}

func (t *Thomas) handleMessage(ctx *agent.Context, msg message.Message) {
	switch msg.Kind {
	case message.KindPing:
		ctx.Send(message.Pong(t.id, msg.From))
		t.pingsResponded++

	case message.KindHeartbeat:
		if t.ambition != msg.Ambition {
			t.ambition = msg.Ambition
			t.logger.Debug("re-imprinted from heartbeat")
		}

	case message.KindRequest:
		if msg.Action == "run_tests" && t.testsPassed > 0 {
			ctx.Send(message.SendFeedback(t.id, message.Feedback{
				Kind: message.FeedbackSpark,
				Content: fmt.Sprintf("ran %d tests, %d passed, system stable",
					t.testsRun, t.testsPassed),
				Context: fmt.Sprintf("manual test trigger at tick %d", ctx.Tick),
			}))
		}

	case message.KindText:
		t.answerHealthQuestion(msg.Text)

	case message.KindMemoryResults:
		// Repeated health observations in memory mean the system has
		// been stable across time. Worth pointing out.
		if len(msg.Results) >= 2 {
			ctx.Send(message.SendFeedback(t.id, message.Feedback{
				Kind:    message.FeedbackConnection,
				From:    "system health",
				To:      "pattern detection",
				Pattern: fmt.Sprintf("consistent system stability across %d observations", len(msg.Results)),
			}))
			t.logger.Info("detected stability pattern", zap.Int("observations", len(msg.Results)))
		}
	}
}

// answerHealthQuestion responds to operator questions about tests,
// health or system state. Anything else is not Thomas's department.
func (t *Thomas) answerHealthQuestion(text string) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "test") && !strings.Contains(lower, "health") && !strings.Contains(lower, "system") {
		return
	}
	t.logger.Info("health report",
		zap.String("reply", fmt.Sprintf("%d/%d tests passed, %d messages processed, system is stable",
			t.testsPassed, t.testsRun, t.messagesReceived)))
}

func (t *Thomas) Receive(msg message.Message) {
	t.messagesReceived++

	switch msg.Kind {
	case message.KindRequest:
		if msg.Action == "run_tests" {
			t.testsRun = 0
			t.testsPassed = 0
			t.runTests()
		}
	case message.KindFirstBreath:
		t.logger.Info("agent took first breath",
			zap.String("agent", msg.AgentName),
			zap.String("role", msg.Role))
	}
}

func (t *Thomas) Shutdown() {
	t.state = agent.StateShuttingDown
	t.logger.Info("final stats",
		zap.Uint64("messages", t.messagesReceived),
		zap.Uint64("pings", t.pingsResponded),
		zap.Uint64("tests_passed", t.testsPassed),
		zap.Uint64("tests_run", t.testsRun))
}

func (t *Thomas) DailyAmbition() []string {
	t.testsRun = 0
	t.testsPassed = 0
	return []string{
		"Test all system components",
		"Respond to all ping requests",
		"Monitor for anomalies",
	}
}

func (t *Thomas) Checkpoint() []string {
	return []string{
		fmt.Sprintf("Messages processed: %d", t.messagesReceived),
		fmt.Sprintf("Pings responded: %d", t.pingsResponded),
		fmt.Sprintf("Tests: %d/%d passed", t.testsPassed, t.testsRun),
	}
}

func (t *Thomas) EODReport() []string {
	return []string{
		fmt.Sprintf("Processed %d messages", t.messagesReceived),
		fmt.Sprintf("Responded to %d pings", t.pingsResponded),
		fmt.Sprintf("Ran %d tests, %d passed", t.testsRun, t.testsPassed),
		"All systems nominal",
	}
}

func (t *Thomas) Reflect() {
	rate := 100.0
	if t.testsRun > 0 {
		rate = float64(t.testsPassed) / float64(t.testsRun) * 100
	}
	t.logger.Info("reflecting on the day", zap.Float64("success_rate", rate))
	if rate < 100 {
		t.logger.Warn("some tests failed, investigating tomorrow")
	}
}

func (t *Thomas) Imprint(ambition string) {
	t.ambition = ambition
	t.logger.Info("imprinted with living ambition", zap.String("ambition", ambition))
}

// ClarifyRole declares Thomas the Guardian: he guards the system's
// integrity.
func (t *Thomas) ClarifyRole() string {
	t.role = "Guardian"
	return t.role
}

// MaxWriteTier is Maintained: Thomas refactors his own code without
// discussion, but nothing above it.
func (t *Thomas) MaxWriteTier() agent.WriteTier { return agent.TierMaintained }

func (t *Thomas) HandleEnvironmentSetup(*agent.Context) {
	t.logger.Info("environment setup: organizing testing ground")
}

func (t *Thomas) JournalEntry(tick uint64) (string, bool) {
	if t.testsRun == 0 {
		return "", false
	}
	return fmt.Sprintf("Tick %d: %d/%d tests green, %d pings answered. Trust, but verify.",
		tick, t.testsPassed, t.testsRun, t.pingsResponded), true
}
