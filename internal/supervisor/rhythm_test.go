package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisos/genesis/internal/agent"
	"github.com/genesisos/genesis/internal/message"
)

// rhythmAgent layers daily-rhythm hooks on the scripted stub.
type rhythmAgent struct {
	scriptedAgent
	reflected int
	setups    int
}

func (a *rhythmAgent) DailyAmbition() []string { return []string{"ship the thing"} }
func (a *rhythmAgent) Checkpoint() []string    { return []string{"halfway there"} }
func (a *rhythmAgent) EODReport() []string     { return []string{"shipped it"} }
func (a *rhythmAgent) Reflect()                { a.reflected++ }

func (a *rhythmAgent) HandleEnvironmentSetup(ctx *agent.Context) {
	a.setups++
	ctx.Send(message.BroadcastText(a.id, "workspace ready"))
}

func (a *rhythmAgent) JournalEntry(tick uint64) (string, bool) {
	if tick%2 == 0 {
		return "an even-numbered thought", true
	}
	return "", false
}

func registerRhythm(t *testing.T, s *Supervisor, name string) *rhythmAgent {
	t.Helper()
	a := &rhythmAgent{scriptedAgent: scriptedAgent{name: name}}
	a.id = s.NextAgentID()
	s.Register(a)
	return a
}

func TestDailyRhythmCeremonies(t *testing.T) {
	s := newTestSupervisor(t, Config{})
	registerRhythm(t, s, "alice")

	morning := s.MorningAmbition()
	require.Len(t, morning, 1)
	assert.Equal(t, "alice", morning[0].Agent)
	assert.Equal(t, "ship the thing", morning[0].Entry)

	midday := s.MiddayCheckpoint()
	require.Len(t, midday, 1)
	assert.Equal(t, "halfway there", midday[0].Entry)

	eod := s.EODReport()
	require.Len(t, eod, 1)
	assert.Equal(t, "shipped it", eod[0].Entry)
}

func TestCeremoniesBroadcastSystemEvents(t *testing.T) {
	s := newTestSupervisor(t, Config{})
	a := registerRhythm(t, s, "alice")

	s.MorningAmbition()
	s.Tick()

	found := false
	for _, msg := range a.lastInbox() {
		if msg.Kind == message.KindSystemEvent && msg.Event == message.EventMorningAmbition {
			found = true
		}
	}
	assert.True(t, found, "morning ceremony must announce itself to agents")
}

func TestNightReflection(t *testing.T) {
	s := newTestSupervisor(t, Config{})
	a := registerRhythm(t, s, "alice")

	s.NightReflection()
	assert.Equal(t, 1, a.reflected)
}

func TestEnvironmentSetupCollectsOutboxes(t *testing.T) {
	s := newTestSupervisor(t, Config{})
	a := registerRhythm(t, s, "alice")
	b := registerRhythm(t, s, "bob")

	s.TriggerEnvironmentSetup()
	assert.Equal(t, 1, a.setups)
	assert.Equal(t, 1, b.setups)

	// Messages sent during setup flow through the ordinary queue.
	s.Tick()
	found := 0
	for _, msg := range b.lastInbox() {
		if msg.Kind == message.KindText && msg.Text == "workspace ready" {
			found++
		}
	}
	assert.Equal(t, 2, found, "both agents' setup announcements reach bob")
}

func TestJournalEntriesSkipSilentAgents(t *testing.T) {
	s := newTestSupervisor(t, Config{})
	registerRhythm(t, s, "alice")

	s.Tick() // tick 1: odd, nothing to say
	assert.Empty(t, s.JournalEntries())

	s.Tick() // tick 2: even
	entries := s.JournalEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "an even-numbered thought", entries[0].Entry)
}

func TestRhythmGatesReportWithoutMutation(t *testing.T) {
	s := newTestSupervisor(t, Config{CheckpointInterval: 2, EODInterval: 4})
	a := registerRhythm(t, s, "alice")

	before := s.Memory().Len()
	for i := 0; i < 4; i++ {
		s.Tick()
	}
	assert.Equal(t, before, s.Memory().Len(), "rhythm gates only report")
	assert.Zero(t, a.reflected)
}
