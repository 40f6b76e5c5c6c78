// Package shell implements the interactive command surface. The
// dispatcher parses one line at a time and drives the supervisor and
// memory store; it also ingests memory snapshots pushed by the serial
// bridge over the same input stream.
package shell

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/memstore"
	"github.com/genesisos/genesis/internal/message"
	"github.com/genesisos/genesis/internal/persist"
	"github.com/genesisos/genesis/internal/supervisor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dispatcher executes shell commands against a running supervisor.
type Dispatcher struct {
	sup    *supervisor.Supervisor
	fs     *persist.Filesystem
	out    io.Writer
	logger *zap.Logger
	loader *persist.BridgeLoader
}

// New creates a dispatcher writing human output to out. The filesystem
// may be nil, which disables the save command.
func New(sup *supervisor.Supervisor, fs *persist.Filesystem, out io.Writer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sup:    sup,
		fs:     fs,
		out:    out,
		logger: logger.Named("shell"),
		loader: persist.NewBridgeLoader(),
	}
}

// Execute runs one input line. Bridge protocol lines are consumed
// silently; everything else is treated as a command.
func (d *Dispatcher) Execute(line string) {
	if d.loader.Offer(line) {
		if d.loader.Done() {
			snapshot := d.loader.Snapshot()
			if strings.TrimSpace(snapshot) == "" {
				d.printf("No persisted memories from bridge (fresh start)")
				return
			}
			skipped := d.sup.Memory().Deserialize(snapshot)
			d.printf("Loaded %d entries from serial bridge (%d skipped)", d.sup.Memory().Len(), skipped)
		}
		return
	}

	cmd := strings.TrimSpace(line)
	if cmd == "" {
		return
	}
	d.logger.Debug("executing command", zap.String("cmd", cmd))

	switch {
	case cmd == "help":
		d.printHelp()
	case cmd == "status":
		d.printStatus()
	case cmd == "ping":
		d.sup.Broadcast(message.BroadcastPing(message.SupervisorID))
		d.printf("Pinging all agents... (responses arrive as agents process messages)")
	case cmd == "test":
		d.sup.Broadcast(message.BroadcastRequest(message.SupervisorID, "run_tests"))
		d.printf("Test request sent. Run 'insights' to see the Spark!")
	case cmd == "breathe":
		d.printf("Usage: breathe <ambition text>")
	case strings.HasPrefix(cmd, "breathe "):
		ambition := strings.TrimSpace(strings.TrimPrefix(cmd, "breathe "))
		d.sup.Breathe(ambition)
		d.printf("The living ambition is set. Heartbeat will carry it to every agent.")
	case cmd == "heartbeat":
		if ambition, ok := d.sup.Ambition(); ok {
			d.printf("Current living ambition:")
			d.printf("  %q", ambition)
		} else {
			d.printf("No living ambition set yet. Use 'breathe <text>' to set one.")
		}
	case cmd == "ambition":
		d.printJournal(d.sup.MorningAmbition(), "MORNING AMBITIONS")
	case cmd == "checkpoint":
		d.printJournal(d.sup.MiddayCheckpoint(), "MIDDAY CHECKPOINT")
	case cmd == "report":
		d.printJournal(d.sup.EODReport(), "END OF DAY REPORT")
	case cmd == "reflect":
		d.sup.NightReflection()
		d.printf("Night reflection complete.")
	case cmd == "journal":
		d.printJournal(d.sup.JournalEntries(), "JOURNAL")
	case cmd == "insights":
		d.printInsights(false)
	case cmd == "insights --json":
		d.printInsights(true)
	case cmd == "tick":
		d.sup.Tick()
		d.printf("Tick %d complete.", d.sup.CurrentTick())
	case strings.HasPrefix(cmd, "tick "):
		d.runTicks(strings.TrimSpace(strings.TrimPrefix(cmd, "tick ")))
	case strings.HasPrefix(cmd, "memory"):
		d.memoryCommand(strings.TrimSpace(strings.TrimPrefix(cmd, "memory")))
	default:
		d.printf("Unknown command: %s (try 'help')", cmd)
	}
}

func (d *Dispatcher) printHelp() {
	d.printf("Available commands:")
	d.printf("  help                 - Show this help message")
	d.printf("  status               - Show agent status")
	d.printf("  ping                 - Ping all agents")
	d.printf("  test                 - Ask Thomas to run tests and send a Spark")
	d.printf("  breathe <text>       - Set the living ambition")
	d.printf("  heartbeat            - View the current ambition pulse")
	d.printf("  ambition             - Trigger morning ambitions")
	d.printf("  checkpoint           - Trigger midday checkpoint")
	d.printf("  report               - Trigger end-of-day report")
	d.printf("  reflect              - Trigger night reflection")
	d.printf("  journal              - Collect agent journal entries")
	d.printf("  insights [--json]    - View collected Sparks and Connections")
	d.printf("  tick [n]             - Advance the scheduler manually")
	d.printf("  memory search <q>    - Search memory for matching entries")
	d.printf("  memory list          - Show recent memory entries")
	d.printf("  memory stats [--json]- Show memory store statistics")
	d.printf("  memory get <id>      - Show full details of an entry")
	d.printf("  memory store <text>  - Store an observation")
	d.printf("  memory save          - Persist memory to the workspace")
	d.printf("  memory dump          - Emit memory as bridge persist lines")
}

func (d *Dispatcher) printStatus() {
	d.printf("=== AGENT STATUS (tick %d) ===", d.sup.CurrentTick())
	d.printf("Session: %s", d.sup.SessionID())
	for _, st := range d.sup.Status() {
		d.printf("  [%d] %-12s %-10s tier %d (%s)", st.ID, st.Name, st.State, st.Tier, st.Tier)
	}
	d.printf("Agents active: %d", d.sup.AgentCount())
}

func (d *Dispatcher) runTicks(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		d.printf("Usage: tick [n]")
		return
	}
	for i := 0; i < n; i++ {
		d.sup.Tick()
	}
	d.printf("Advanced %d ticks (now at %d).", n, d.sup.CurrentTick())
}

func (d *Dispatcher) printJournal(lines []supervisor.JournalLine, header string) {
	if len(lines) == 0 {
		d.printf("Nothing to report.")
		return
	}
	d.printf("=== %s ===", header)
	for _, line := range lines {
		d.printf("  %s: %s", line.Agent, line.Entry)
	}
}

// insightView is the JSON shape of one constellation entry.
type insightView struct {
	Kind        string `json:"kind"`
	Content     string `json:"content,omitempty"`
	Context     string `json:"context,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Tag         string `json:"tag,omitempty"`
	Intensity   uint8  `json:"intensity,omitempty"`
}

func (d *Dispatcher) printInsights(asJSON bool) {
	insights := d.sup.Insights()
	if len(insights) == 0 {
		d.printf("No insights collected yet.")
		d.printf("Agents will send Sparks and Connections as they work.")
		return
	}

	if asJSON {
		views := make([]insightView, 0, len(insights))
		for _, in := range insights {
			views = append(views, insightView{
				Kind:        in.Kind.String(),
				Content:     in.Content,
				Context:     in.Context,
				From:        in.From,
				To:          in.To,
				Pattern:     in.Pattern,
				Description: in.Description,
				Location:    in.Location,
				Tag:         in.Tag,
				Intensity:   in.Intensity,
			})
		}
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			d.printf("encoding insights: %v", err)
			return
		}
		fmt.Fprintln(d.out, string(data))
		return
	}

	d.printf("Constellation of insights (%d total):", len(insights))
	counts := map[message.FeedbackKind]int{}
	for i, in := range insights {
		counts[in.Kind]++
		switch in.Kind {
		case message.FeedbackSpark:
			d.printf("  [%3d] SPARK", i+1)
			d.printf("       Content: %s", in.Content)
			d.printf("       Context: %s", in.Context)
		case message.FeedbackConnection:
			d.printf("  [%3d] CONNECTION", i+1)
			d.printf("       From: %s", in.From)
			d.printf("       To: %s", in.To)
			d.printf("       Pattern: %s", in.Pattern)
		case message.FeedbackResource:
			d.printf("  [%3d] RESOURCE", i+1)
			d.printf("       Description: %s", in.Description)
			d.printf("       Location: %s", in.Location)
		case message.FeedbackFeeling:
			d.printf("  [%3d] FEELING", i+1)
			d.printf("       Tag: %s", in.Tag)
			d.printf("       Intensity: %d%%", in.Intensity)
		}
	}
	d.printf("Summary: %d sparks, %d connections, %d resources, %d feelings",
		counts[message.FeedbackSpark], counts[message.FeedbackConnection],
		counts[message.FeedbackResource], counts[message.FeedbackFeeling])
}

func (d *Dispatcher) memoryCommand(rest string) {
	store := d.sup.Memory()

	switch {
	case rest == "stats":
		st := store.Stats()
		d.printf("=== MEMORY STORE ===")
		d.printf("  Entries: %d / %d", st.EntryCount, store.MaxEntries())
		d.printf("  Index keywords: %d", st.IndexSize)
		d.printf("  Estimated size: %d bytes", st.EstimatedBytes)
		if len(st.TopKeywords) > 0 {
			d.printf("  Top keywords:")
			for _, kw := range st.TopKeywords[:min(5, len(st.TopKeywords))] {
				d.printf("    %s (%d)", kw.Keyword, kw.Count)
			}
		}

	case rest == "stats --json":
		data, err := json.MarshalIndent(store.Stats(), "", "  ")
		if err != nil {
			d.printf("encoding stats: %v", err)
			return
		}
		fmt.Fprintln(d.out, string(data))

	case rest == "list":
		entries := store.Recent(10)
		if len(entries) == 0 {
			d.printf("No memories stored yet.")
			return
		}
		d.printf("=== RECENT MEMORIES (%d) ===", len(entries))
		for _, entry := range entries {
			d.printf("  [%d] (%s) %s", entry.ID, entry.Kind, preview(entry.Content, 60))
		}

	case rest == "dump":
		// Tagged lines on the console reach the serial log, where the
		// bridge process captures them.
		if err := persist.WriteBridgeDump(d.out, store.Serialize()); err != nil {
			d.printf("Dump failed: %v", err)
			return
		}

	case rest == "save":
		if d.fs == nil {
			d.printf("No workspace configured; nothing saved.")
			return
		}
		if err := d.fs.SaveMemory(store); err != nil {
			d.printf("Save failed: %v", err)
			return
		}
		d.printf("Memory persisted to workspace (%d entries).", store.Len())

	case strings.HasPrefix(rest, "search "):
		query := strings.TrimSpace(strings.TrimPrefix(rest, "search "))
		if query == "" {
			d.printf("Usage: memory search <query>")
			return
		}
		results := store.Search(query)
		if len(results) == 0 {
			d.printf("No results for: %s", query)
			return
		}
		if len(results) > 10 {
			results = results[:10]
		}
		d.printf("=== SEARCH RESULTS (%d) ===", len(results))
		for _, r := range results {
			if entry, ok := store.Peek(r.ID); ok {
				d.printf("  [%d] score=%d (%s) %s", r.ID, r.Score, entry.Kind, preview(entry.Content, 50))
			}
		}

	case strings.HasPrefix(rest, "get "):
		idStr := strings.TrimSpace(strings.TrimPrefix(rest, "get "))
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			d.printf("Usage: memory get <id>")
			return
		}
		entry, ok := store.Get(id)
		if !ok {
			d.printf("No memory with ID %d", id)
			return
		}
		d.printf("=== MEMORY #%d ===", entry.ID)
		d.printf("  Kind: %s", entry.Kind)
		d.printf("  Source: %s", entry.Source)
		d.printf("  Timestamp: %d", entry.Timestamp)
		d.printf("  Accessed: %d times", entry.AccessCount)
		d.printf("  Keywords: %s", strings.Join(entry.Keywords, ", "))
		d.printf("  Content: %s", entry.Content)

	case strings.HasPrefix(rest, "store "):
		text := strings.TrimSpace(strings.TrimPrefix(rest, "store "))
		if text == "" {
			d.printf("Usage: memory store <text>")
			return
		}
		id := store.StoreWithTimestamp(text, memstore.KindObservation, "shell", d.sup.CurrentTick())
		d.printf("Stored as memory #%d", id)

	default:
		d.printf("Usage: memory <command>")
		d.printf("  memory search <query> - Search memories")
		d.printf("  memory list           - Show recent entries")
		d.printf("  memory stats [--json] - Show statistics")
		d.printf("  memory get <id>       - Show full entry")
		d.printf("  memory save           - Persist to the workspace")
		d.printf("  memory dump           - Emit bridge persist lines")
		d.printf("  memory store <text>   - Store an observation")
	}
}

func (d *Dispatcher) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format+"\n", args...)
}

// preview truncates content for list output, keeping rune boundaries.
func preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max-3]) + "..."
}
