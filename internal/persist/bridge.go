package persist

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Serial bridge line protocol. The core dumps memory as tagged lines on
// its output stream; a companion process on the other side of the
// serial link captures them. Loading runs the same protocol in reverse.
const (
	// PersistTag prefixes one serialized entry in a dump.
	PersistTag = "[MEMORY_PERSIST]"
	// PersistDoneTag closes a dump.
	PersistDoneTag = "[MEMORY_DONE]"
	// LoadTag prefixes one serialized entry offered by the bridge.
	LoadTag = "[MEMORY_LOAD]"
	// LoadDoneTag closes the offered snapshot.
	LoadDoneTag = "[MEMORY_LOAD_DONE]"
)

// WriteBridgeDump emits serialized memory as tagged lines followed by
// the done marker. Blank lines in the snapshot are dropped.
func WriteBridgeDump(w io.Writer, serialized string) error {
	for _, line := range strings.Split(serialized, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", PersistTag, line); err != nil {
			return fmt.Errorf("writing bridge dump: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w, PersistDoneTag); err != nil {
		return fmt.Errorf("writing bridge dump: %w", err)
	}
	return nil
}

// ReadBridgeDump scans a stream for tagged persist lines and returns
// the reassembled snapshot. Reading stops at the done marker or EOF;
// untagged lines are ignored.
func ReadBridgeDump(r io.Reader) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, PersistDoneTag) {
			break
		}
		if entry, ok := CutTag(line, PersistTag); ok {
			b.WriteString(entry)
			b.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading bridge dump: %w", err)
	}
	return b.String(), nil
}

// CutTag strips a protocol tag prefix from a line, returning the
// trimmed remainder and whether the tag matched.
func CutTag(line, tag string) (string, bool) {
	if !strings.HasPrefix(line, tag) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, tag)), true
}

// BridgeLoader accumulates tagged load lines until the done marker, the
// way the interactive shell ingests a snapshot pushed by the bridge.
type BridgeLoader struct {
	lines []string
	done  bool
}

// NewBridgeLoader returns an empty loader.
func NewBridgeLoader() *BridgeLoader {
	return &BridgeLoader{}
}

// Offer feeds one input line. It returns true when the line belonged to
// the load protocol and was consumed.
func (l *BridgeLoader) Offer(line string) bool {
	if l.done {
		return false
	}
	if strings.HasPrefix(line, LoadDoneTag) {
		l.done = true
		return true
	}
	if entry, ok := CutTag(line, LoadTag); ok {
		if entry != "" {
			l.lines = append(l.lines, entry)
		}
		return true
	}
	return false
}

// Done reports whether the done marker has been seen.
func (l *BridgeLoader) Done() bool { return l.done }

// Snapshot returns the accumulated serialized data and resets the
// loader for the next transfer.
func (l *BridgeLoader) Snapshot() string {
	data := strings.Join(l.lines, "\n")
	if data != "" {
		data += "\n"
	}
	l.lines = nil
	l.done = false
	return data
}
