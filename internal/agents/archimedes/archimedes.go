// Package archimedes implements the daily-ambition agent. Archimedes
// co-creates the day's ambition, keeps a workspace organized around it,
// and mines the memory store for continuity with past sessions.
package archimedes

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/agent"
	"github.com/genesisos/genesis/internal/message"
)

// themeScanInterval is how often, in ticks, Archimedes searches memory
// for themes related to the current ambition.
const themeScanInterval = 2000

// ambitionFile is where today's ambition document lives, relative to
// the workspace root.
const ambitionFile = "agents/archimedes/daily_ambitions/today.txt"

// workspaceFolders is the daily structure created around the ambition.
var workspaceFolders = []string{
	"workspaces/today",
	"workspaces/today/focus",
	"workspaces/today/resources",
	"workspaces/today/output",
}

// Workspace is the slice of the filesystem Archimedes needs. The
// persist package provides the real one; tests provide an in-memory
// fake.
type Workspace interface {
	ReadText(path string) (string, error)
	WriteText(path string, content string) error
	EnsureDirectory(path string) error
}

// Archimedes is the co-creator agent.
type Archimedes struct {
	agent.Base

	id     message.AgentID
	state  agent.State
	logger *zap.Logger
	ws     Workspace

	ambition       string
	commitments    []string
	foldersCreated []string

	themeScanGate     agent.Gate
	bootMemoryChecked bool
	ambitionSaved     bool
}

// New creates Archimedes. The workspace may be nil, in which case all
// file operations quietly do nothing.
func New(id message.AgentID, ws Workspace, logger *zap.Logger) *Archimedes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archimedes{
		id:            id,
		state:         agent.StateInitializing,
		logger:        logger.Named("archimedes"),
		ws:            ws,
		themeScanGate: agent.NewGate(themeScanInterval),
	}
}

func (a *Archimedes) ID() message.AgentID { return a.id }
func (a *Archimedes) Name() string        { return "Archimedes" }
func (a *Archimedes) State() agent.State  { return a.state }

func (a *Archimedes) Init() {
	a.state = agent.StateInitializing
	a.loadTodayAmbition()

	if a.ambition != "" {
		a.logger.Info("today's ambition loaded",
			zap.String("ambition", a.ambition),
			zap.Int("commitments", len(a.commitments)))
	} else {
		a.logger.Info("no ambition loaded, ready to create a new one")
	}

	a.state = agent.StateReady
}

// loadTodayAmbition pulls today's ambition document from the workspace,
// falling back to a default when none exists yet.
func (a *Archimedes) loadTodayAmbition() {
	if a.ws != nil {
		if content, err := a.ws.ReadText(ambitionFile); err == nil {
			a.ambition = strings.TrimSpace(content)
			a.parseAmbition(content)
			a.logger.Info("loaded today's ambition from workspace")
			return
		}
	}

	a.ambition = "Today, I want us to build something amazing together."
	a.commitments = []string{
		"YOU: Set clear goals",
		"AI: Support with tools and insights",
		"COLLAB: Work together",
	}
	a.logger.Info("no ambition file found, using default")
}

// parseAmbition extracts the bullet list under a "Key Commitments"
// heading. Parsing stops at the next section heading.
func (a *Archimedes) parseAmbition(content string) {
	a.commitments = a.commitments[:0]

	inCommitments := false
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "Commitments") {
			inCommitments = true
			continue
		}
		if !inCommitments {
			continue
		}
		if strings.HasPrefix(line, "#") {
			break
		}
		if strings.HasPrefix(line, "-") {
			commitment := strings.TrimSpace(strings.TrimPrefix(line, "-"))
			if commitment != "" {
				a.commitments = append(a.commitments, commitment)
			}
		}
	}
}

// createWorkspaceFolders lays out today's structure. Existing folders
// are fine.
func (a *Archimedes) createWorkspaceFolders() {
	a.foldersCreated = a.foldersCreated[:0]
	for _, folder := range workspaceFolders {
		if a.ws != nil {
			if err := a.ws.EnsureDirectory(folder); err != nil {
				a.logger.Warn("could not create workspace folder",
					zap.String("folder", folder), zap.Error(err))
				continue
			}
		}
		a.foldersCreated = append(a.foldersCreated, folder)
	}
	a.logger.Info("workspace folders ready", zap.Int("folders", len(a.foldersCreated)))
}

// saveAmbitionFile writes the current ambition back to the workspace so
// the next boot finds it.
func (a *Archimedes) saveAmbitionFile() {
	if a.ws == nil || a.ambition == "" {
		return
	}
	if err := a.ws.WriteText(ambitionFile, a.ambition+"\n"); err != nil {
		a.logger.Warn("could not persist ambition file", zap.Error(err))
	}
}

func (a *Archimedes) Tick(ctx *agent.Context) agent.State {
	for _, msg := range ctx.Inbox {
		a.handleMessage(ctx, msg)
	}

	// Boot continuity: once, look for what we were chasing last session.
	if !a.bootMemoryChecked {
		a.bootMemoryChecked = true
		ctx.Send(message.MemorySearchRequest(a.id, "ambition today accomplish"))
	}

	// Persist the ambition to memory once per ambition change.
	if !a.ambitionSaved && a.ambition != "" {
		a.ambitionSaved = true
		ctx.Send(message.MemoryStoreRequest(a.id, "Ambition: "+a.ambition, "observation"))
		a.saveAmbitionFile()
		a.logger.Info("saved current ambition to memory", zap.String("ambition", a.ambition))
	}

	if a.themeScanGate.Tick() && a.ambition != "" {
		keyword := firstLongWord(a.ambition)
		ctx.Send(message.MemorySearchRequest(a.id, keyword))
		a.logger.Debug("scanning memory for ambition theme", zap.String("keyword", keyword))
	}

	return a.state
}

func (a *Archimedes) handleMessage(ctx *agent.Context, msg message.Message) {
	switch msg.Kind {
	case message.KindSystemEvent:
		if msg.Event == message.EventEnvironmentSetup {
			a.createWorkspaceFolders()
			ctx.Send(message.SendFeedback(a.id, message.Feedback{
				Kind:        message.FeedbackResource,
				Description: fmt.Sprintf("Workspace prepared with %d folders", len(a.foldersCreated)),
				Location:    "workspaces/today",
			}))
		}

	case message.KindHeartbeat:
		if a.ambition == msg.Ambition {
			return
		}
		a.ambition = msg.Ambition
		a.parseAmbition(msg.Ambition)
		a.ambitionSaved = false
		a.logger.Info("ambition updated from heartbeat")

		// Look for past insights related to the new ambition.
		first := firstWord(msg.Ambition)
		ctx.Send(message.MemorySearchRequest(a.id, first))

	case message.KindMemoryResults:
		if len(msg.Results) >= 2 {
			ctx.Send(message.SendFeedback(a.id, message.Feedback{
				Kind:    message.FeedbackConnection,
				From:    msg.Results[0].Preview,
				To:      msg.Results[1].Preview,
				Pattern: "Archimedes found a link between past insights",
			}))
			a.logger.Info("found connection between past entries", zap.Int("entries", len(msg.Results)))
		}
	}
}

func (a *Archimedes) Receive(msg message.Message) {
	switch msg.Kind {
	case message.KindSystemEvent, message.KindHeartbeat, message.KindMemoryResults:
		// Handled during Tick.
	default:
		a.logger.Debug("received message", zap.Stringer("kind", msg.Kind))
	}
}

func (a *Archimedes) Shutdown() {
	a.state = agent.StateShuttingDown
}

func (a *Archimedes) DailyAmbition() []string {
	if a.ambition != "" {
		return []string{a.ambition}
	}
	return []string{"Co-create today's ambition with human partner"}
}

func (a *Archimedes) Checkpoint() []string {
	loaded := "No"
	if a.ambition != "" {
		loaded = "Yes"
	}
	return []string{
		fmt.Sprintf("Ambition loaded: %s", loaded),
		fmt.Sprintf("Workspace folders: %d", len(a.foldersCreated)),
		fmt.Sprintf("Commitments: %d", len(a.commitments)),
	}
}

func (a *Archimedes) EODReport() []string {
	ambition := a.ambition
	if ambition == "" {
		ambition = "Not set"
	}
	return []string{
		fmt.Sprintf("Today's ambition: %s", ambition),
		fmt.Sprintf("Workspace organized: %d folders", len(a.foldersCreated)),
		fmt.Sprintf("Commitments tracked: %d", len(a.commitments)),
	}
}

func (a *Archimedes) Reflect() {
	if a.ambition != "" {
		a.logger.Info("today we aimed to", zap.String("ambition", a.ambition))
	}
}

func (a *Archimedes) Imprint(ambition string) {
	a.ambition = ambition
	a.parseAmbition(ambition)
	a.ambitionSaved = false
}

// ClarifyRole declares Archimedes the Co-Creator: ambitions are made
// together with the human partner.
func (a *Archimedes) ClarifyRole() string { return "Co-Creator" }

func (a *Archimedes) HandleEnvironmentSetup(ctx *agent.Context) {
	if a.ambition == "" {
		a.loadTodayAmbition()
	}
	a.createWorkspaceFolders()
	a.logger.Info("workspace organized around ambition")
}

// Commitments returns the parsed commitment list.
func (a *Archimedes) Commitments() []string { return a.commitments }

// Ambition returns today's ambition, or empty when unset.
func (a *Archimedes) Ambition() string { return a.ambition }

func (a *Archimedes) JournalEntry(tick uint64) (string, bool) {
	if a.ambition == "" {
		return "", false
	}
	return fmt.Sprintf("Tick %d: still steering toward %q with %d commitments.",
		tick, a.ambition, len(a.commitments)), true
}

// firstWord returns the first whitespace-separated token, or a fallback.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "ambition"
	}
	return fields[0]
}

// firstLongWord returns the first token longer than three characters,
// skipping filler words at the front of the ambition.
func firstLongWord(s string) string {
	for _, f := range strings.Fields(s) {
		if len(f) > 3 {
			return f
		}
	}
	return "ambition"
}
