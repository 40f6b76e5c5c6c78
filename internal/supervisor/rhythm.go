package supervisor

import (
	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/agent"
	"github.com/genesisos/genesis/internal/message"
)

// The daily rhythm: operator-triggered ceremonies that bracket a work
// session. Each broadcasts the matching system event and gathers the
// agents' own words.

// MorningAmbition broadcasts the morning event and returns each agent's
// stated intentions for the day.
func (s *Supervisor) MorningAmbition() []JournalLine {
	s.Broadcast(message.SystemBroadcast(message.SupervisorID, message.EventMorningAmbition))
	return s.gather("morning", func(a agent.Agent) []string { return a.DailyAmbition() })
}

// MiddayCheckpoint broadcasts the checkpoint event and returns each
// agent's progress notes.
func (s *Supervisor) MiddayCheckpoint() []JournalLine {
	s.Broadcast(message.SystemBroadcast(message.SupervisorID, message.EventMiddayCheckpoint))
	return s.gather("midday", func(a agent.Agent) []string { return a.Checkpoint() })
}

// EODReport broadcasts the end-of-day event and returns each agent's
// closing report.
func (s *Supervisor) EODReport() []JournalLine {
	s.Broadcast(message.SystemBroadcast(message.SupervisorID, message.EventEndOfDay))
	return s.gather("eod", func(a agent.Agent) []string { return a.EODReport() })
}

// NightReflection broadcasts the reflection event and gives every agent
// a quiet moment to consolidate. No report is collected.
func (s *Supervisor) NightReflection() {
	s.Broadcast(message.SystemBroadcast(message.SupervisorID, message.EventNightReflection))
	for _, a := range s.agents {
		a := a
		s.guard(a.Name(), "reflect", func() { a.Reflect() })
	}
	s.logger.Info("night reflection complete", zap.Int("agents", len(s.agents)))
}

// TriggerEnvironmentSetup asks every agent to prepare its workspace.
// Called once at boot, before the run loop starts.
func (s *Supervisor) TriggerEnvironmentSetup() {
	s.Broadcast(message.SystemBroadcast(message.SupervisorID, message.EventEnvironmentSetup))
	for _, a := range s.agents {
		a := a
		ctx := agent.NewContext(nil, s.tick)
		s.guard(a.Name(), "environment_setup", func() { a.HandleEnvironmentSetup(ctx) })
		for _, out := range ctx.Outbox() {
			s.Send(out)
		}
	}
	s.logger.Info("environment setup triggered", zap.Int("agents", len(s.agents)))
}

// Shutdown broadcasts the shutdown event and runs every agent's
// Shutdown hook in registration order.
func (s *Supervisor) Shutdown() {
	s.Broadcast(message.SystemBroadcast(message.SupervisorID, message.EventShutdown))
	for _, a := range s.agents {
		a := a
		s.guard(a.Name(), "shutdown", func() { a.Shutdown() })
	}
	s.logger.Info("all agents shut down", zap.Uint64("final_tick", s.tick))
}

// JournalEntries collects journal lines from agents that have something
// to say at the current tick.
func (s *Supervisor) JournalEntries() []JournalLine {
	var out []JournalLine
	for _, a := range s.agents {
		a := a
		var entry string
		var ok bool
		s.guard(a.Name(), "journal", func() { entry, ok = a.JournalEntry(s.tick) })
		if ok {
			out = append(out, JournalLine{Agent: a.Name(), Entry: entry})
		}
	}
	return out
}

func (s *Supervisor) gather(phase string, report func(agent.Agent) []string) []JournalLine {
	var out []JournalLine
	for _, a := range s.agents {
		a := a
		var lines []string
		s.guard(a.Name(), phase, func() { lines = report(a) })
		for _, line := range lines {
			out = append(out, JournalLine{Agent: a.Name(), Entry: line})
		}
	}
	return out
}
