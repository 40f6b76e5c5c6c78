// Package memstore implements the persistent, searchable memory shared
// by all agents: an inverted keyword index with capacity eviction,
// BM25-lite ranked search, and a pipe-delimited serialization format
// that survives round trips byte-for-byte.
//
// The store does no I/O. Persistence lives in internal/persist; the
// store only produces and consumes the serialized text.
package memstore

import (
	"slices"
	"sort"

	"go.uber.org/zap"
)

// accessBonusCap bounds the "recall strengthens memory" boost. Entries
// retrieved more than five times score no higher than five retrievals.
const accessBonusCap = 5

// Entry is one stored memory. Entries are immutable once stored, apart
// from AccessCount which Get increments.
type Entry struct {
	ID      uint64
	Content string
	Kind    Kind
	// Source labels which agent or surface stored this ("agent-3", "shell").
	Source string
	// Keywords are the tokens extracted from Content at store time, in
	// order, duplicates preserved. Never recomputed afterwards.
	Keywords []string
	// Timestamp is the supervisor tick when the entry was stored.
	Timestamp uint64
	// AccessCount tracks read-and-bump retrievals via Get.
	AccessCount uint64
}

// snapshot returns a copy safe to hand out: the Keywords slice is
// cloned so callers cannot alias index state.
func (e *Entry) snapshot() Entry {
	out := *e
	out.Keywords = slices.Clone(e.Keywords)
	return out
}

// SearchResult pairs an entry id with its relevance score.
type SearchResult struct {
	ID    uint64
	Score uint32
}

// KeywordFreq is a keyword and its document frequency in the index.
type KeywordFreq struct {
	Keyword string
	Count   int
}

// Stats summarizes the store for status output.
type Stats struct {
	EntryCount     int
	IndexSize      int
	TopKeywords    []KeywordFreq
	EstimatedBytes int
}

// Store is the inverted-index memory store. It is not safe for
// concurrent use; the supervisor owns it exclusively and all agent
// access goes through the message protocol.
type Store struct {
	entries map[uint64]*Entry
	// ids holds entry ids in ascending order. Ids are assigned
	// monotonically, so appends keep it sorted; eviction pops the front.
	ids        []uint64
	index      map[string]map[uint64]struct{}
	nextID     uint64
	maxEntries int
	logger     *zap.Logger
}

// New creates a store capped at maxEntries.
func New(maxEntries int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries:    make(map[uint64]*Entry),
		index:      make(map[string]map[uint64]struct{}),
		nextID:     1,
		maxEntries: maxEntries,
		logger:     logger.Named("memstore"),
	}
}

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }

// MaxEntries returns the capacity cap.
func (s *Store) MaxEntries() int { return s.maxEntries }

// NextID returns the id the next stored entry will receive.
func (s *Store) NextID() uint64 { return s.nextID }

// Store extracts keywords from content, assigns the next id, inserts
// the entry and its index postings, then evicts oldest entries while
// over capacity. Returns the assigned id.
func (s *Store) Store(content string, kind Kind, source string) uint64 {
	return s.StoreWithTimestamp(content, kind, source, 0)
}

// StoreWithTimestamp is Store with an explicit tick timestamp.
func (s *Store) StoreWithTimestamp(content string, kind Kind, source string, timestamp uint64) uint64 {
	id := s.nextID
	s.nextID++

	entry := &Entry{
		ID:        id,
		Content:   content,
		Kind:      kind,
		Source:    source,
		Keywords:  extractKeywords(content),
		Timestamp: timestamp,
	}

	s.insert(entry)
	s.enforceCapacity()

	s.logger.Debug("stored entry",
		zap.Uint64("id", id),
		zap.String("kind", kind.String()),
		zap.String("source", source),
		zap.Int("keywords", len(entry.Keywords)))
	return id
}

// insert places the entry into the map, id list and inverted index.
func (s *Store) insert(entry *Entry) {
	s.entries[entry.ID] = entry
	s.ids = append(s.ids, entry.ID)
	for _, kw := range entry.Keywords {
		if kw == "" {
			continue
		}
		postings, ok := s.index[kw]
		if !ok {
			postings = make(map[uint64]struct{})
			s.index[kw] = postings
		}
		postings[entry.ID] = struct{}{}
	}
}

// enforceCapacity evicts smallest-id entries until the count is within
// the cap. Evicted ids are never reused.
func (s *Store) enforceCapacity() {
	for len(s.entries) > s.maxEntries && len(s.ids) > 0 {
		oldest := s.ids[0]
		s.remove(oldest)
		s.logger.Debug("evicted oldest entry", zap.Uint64("id", oldest))
	}
}

// remove deletes an entry and prunes its index postings. Empty posting
// sets are removed immediately so no keyword maps to nothing.
func (s *Store) remove(id uint64) {
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.entries, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	for _, kw := range entry.Keywords {
		if postings, ok := s.index[kw]; ok {
			delete(postings, id)
			if len(postings) == 0 {
				delete(s.index, kw)
			}
		}
	}
}

// Search tokenizes the query with the same rules as storage and ranks
// matching entries with BM25-lite scoring:
//
//	score = Σ over query terms of tf * idf * (1 + min(access_count, 5))
//
// where tf is the exact-match count of the term in the entry's keyword
// list and idf is total_entries / doc_frequency in integer math. Results
// sort by score descending, ties by ascending id so output is
// deterministic. Search never mutates access counts.
func (s *Store) Search(query string) []SearchResult {
	terms := extractKeywords(query)
	if len(terms) == 0 || len(s.entries) == 0 {
		return nil
	}

	total := uint32(len(s.entries))
	scores := make(map[uint64]uint32)

	for _, term := range terms {
		postings, ok := s.index[term]
		if !ok {
			continue
		}
		df := uint32(len(postings))
		idf := total / df
		if idf == 0 {
			idf = 1
		}
		for id := range postings {
			entry := s.entries[id]
			if entry == nil {
				continue
			}
			var tf uint32
			for _, kw := range entry.Keywords {
				if kw == term {
					tf++
				}
			}
			bonus := entry.AccessCount
			if bonus > accessBonusCap {
				bonus = accessBonusCap
			}
			scores[id] += tf * idf * (1 + uint32(bonus))
		}
	}

	results := make([]SearchResult, 0, len(scores))
	for id, score := range scores {
		results = append(results, SearchResult{ID: id, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// Get returns a copy of the entry and bumps its access count. Callers
// that only want to display an entry should use Peek; Get mutates
// ranking state on every call.
func (s *Store) Get(id uint64) (Entry, bool) {
	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	entry.AccessCount++
	return entry.snapshot(), true
}

// Peek returns a copy of the entry without touching its access count.
func (s *Store) Peek(id uint64) (Entry, bool) {
	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return entry.snapshot(), true
}

// Recent returns copies of the n entries with the largest ids, newest
// first. Read-only.
func (s *Store) Recent(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(s.ids) {
		n = len(s.ids)
	}
	out := make([]Entry, 0, n)
	for i := len(s.ids) - 1; i >= 0 && len(out) < n; i-- {
		if entry, ok := s.entries[s.ids[i]]; ok {
			out = append(out, entry.snapshot())
		}
	}
	return out
}

// FrequentKeywords returns up to n keywords whose document frequency is
// at least minDF, ordered by frequency descending then keyword
// ascending. The serendipity scan uses this to find shared themes.
func (s *Store) FrequentKeywords(minDF, n int) []KeywordFreq {
	var freqs []KeywordFreq
	for kw, postings := range s.index {
		if len(postings) >= minDF {
			freqs = append(freqs, KeywordFreq{Keyword: kw, Count: len(postings)})
		}
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Keyword < freqs[j].Keyword
	})
	if n > 0 && len(freqs) > n {
		freqs = freqs[:n]
	}
	return freqs
}

// Stats reports entry and index sizes, the ten most frequent keywords,
// and a rough memory estimate. Read-only.
func (s *Store) Stats() Stats {
	top := s.FrequentKeywords(1, 10)

	entryBytes := 0
	for _, entry := range s.entries {
		b := 8 + len(entry.Content) + len(entry.Source) + 64
		for _, kw := range entry.Keywords {
			b += len(kw) + 24
		}
		entryBytes += b
	}
	indexBytes := 0
	for kw, postings := range s.index {
		indexBytes += len(kw) + 24 + len(postings)*8 + 48
	}

	return Stats{
		EntryCount:     len(s.entries),
		IndexSize:      len(s.index),
		TopKeywords:    top,
		EstimatedBytes: entryBytes + indexBytes,
	}
}
