package memstore

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Serialization format, one entry per line:
//
//	id|kind|source|timestamp|access_count|content|kw1,kw2,...
//
// Source and content are escaped so arbitrary text, including literal
// pipes and newlines, survives a round trip byte-for-byte. This format
// is the persistence boundary and the wire format of the serial bridge;
// it must stay bit-exact for compatibility with existing memory files.

// escapeField applies the escape scheme: backslash, pipe, LF, CR, in
// that order.
func escapeField(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `|`, `\p`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	return s
}

// unescapeField reverses escapeField with a single left-to-right scan.
// Sequential ReplaceAll passes would misread the second backslash of an
// escaped pair (`\\p` is a literal backslash followed by 'p', not a
// backslash and an escaped pipe).
func unescapeField(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case 'p':
			b.WriteByte('|')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			// Not an escape pair; keep both bytes as-is.
			b.WriteByte(c)
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

// Serialize renders the whole store as pipe-delimited text, entries in
// ascending id order, each line newline-terminated.
func (s *Store) Serialize() string {
	var b strings.Builder
	for _, id := range s.ids {
		entry, ok := s.entries[id]
		if !ok {
			continue
		}
		b.WriteString(strconv.FormatUint(entry.ID, 10))
		b.WriteByte('|')
		b.WriteString(entry.Kind.String())
		b.WriteByte('|')
		b.WriteString(escapeField(entry.Source))
		b.WriteByte('|')
		b.WriteString(strconv.FormatUint(entry.Timestamp, 10))
		b.WriteByte('|')
		b.WriteString(strconv.FormatUint(entry.AccessCount, 10))
		b.WriteByte('|')
		b.WriteString(escapeField(entry.Content))
		b.WriteByte('|')
		b.WriteString(strings.Join(entry.Keywords, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// Deserialize replaces the store's contents with the parsed records and
// resets next_id to max(existing ids)+1. Malformed lines (fewer than 7
// fields, unparseable id, unknown kind) are skipped, not fatal: partial
// recovery beats losing the whole file. After loading, capacity is
// enforced by evicting oldest entries, so the count<=max invariant holds
// even for oversized files. Returns how many lines were skipped.
func (s *Store) Deserialize(data string) int {
	s.entries = make(map[uint64]*Entry)
	s.ids = s.ids[:0]
	s.index = make(map[string]map[uint64]struct{})
	s.nextID = 1

	skipped := 0
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "|", 7)
		if len(parts) < 7 {
			skipped++
			continue
		}

		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			skipped++
			continue
		}
		if _, dup := s.entries[id]; dup {
			skipped++
			continue
		}
		kind, ok := ParseKind(parts[1])
		if !ok {
			skipped++
			continue
		}
		timestamp, err := strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			skipped++
			continue
		}
		accessCount, err := strconv.ParseUint(parts[4], 10, 64)
		if err != nil {
			skipped++
			continue
		}

		var keywords []string
		if parts[6] != "" {
			for _, kw := range strings.Split(parts[6], ",") {
				keywords = append(keywords, strings.TrimSpace(kw))
			}
		}

		entry := &Entry{
			ID:          id,
			Content:     unescapeField(parts[5]),
			Kind:        kind,
			Source:      unescapeField(parts[2]),
			Keywords:    keywords,
			Timestamp:   timestamp,
			AccessCount: accessCount,
		}
		s.insert(entry)

		if id >= s.nextID {
			s.nextID = id + 1
		}
	}

	// Record order in the file may not be sorted; id order drives
	// eviction and Recent.
	sortIDs(s.ids)
	s.enforceCapacity()

	if skipped > 0 {
		s.logger.Warn("skipped malformed records during load", zap.Int("skipped", skipped))
	}
	s.logger.Info("memory store loaded",
		zap.Int("entries", len(s.entries)),
		zap.Uint64("next_id", s.nextID))
	return skipped
}

func sortIDs(ids []uint64) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
