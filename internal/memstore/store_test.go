package memstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, capacity int) *Store {
	t.Helper()
	return New(capacity, zap.NewNop())
}

func TestStoreAssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t, 10)

	id1 := s.Store("first memory about gophers", KindObservation, "test")
	id2 := s.Store("second memory about gophers", KindObservation, "test")
	id3 := s.Store("third memory about gophers", KindObservation, "test")

	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)
	assert.Equal(t, uint64(3), id3)
}

func TestIDsNeverReusedAfterEviction(t *testing.T) {
	s := newTestStore(t, 3)

	for i := 0; i < 5; i++ {
		s.Store(fmt.Sprintf("entry number %d with plenty of words", i), KindObservation, "test")
	}

	// Ids 1 and 2 were evicted; the next id must still advance.
	id := s.Store("one more entry after eviction", KindObservation, "test")
	assert.Equal(t, uint64(6), id)

	_, ok := s.Peek(1)
	assert.False(t, ok, "evicted entry must be gone")
	_, ok = s.Peek(2)
	assert.False(t, ok, "evicted entry must be gone")
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	s := newTestStore(t, 3)

	for i := 1; i <= 5; i++ {
		s.Store(fmt.Sprintf("memory content variant %d", i), KindObservation, "test")
	}

	require.Equal(t, 3, s.Len())

	// Survivors are the newest three.
	for _, id := range []uint64{3, 4, 5} {
		_, ok := s.Peek(id)
		assert.True(t, ok, "entry %d should survive", id)
	}
	for _, id := range []uint64{1, 2} {
		_, ok := s.Peek(id)
		assert.False(t, ok, "entry %d should be evicted", id)
	}
}

func TestEvictionPrunesIndex(t *testing.T) {
	s := newTestStore(t, 1)

	s.Store("unique keyword zephyr appears here", KindObservation, "test")
	s.Store("totally different content about quartz", KindObservation, "test")

	// The first entry's keywords must no longer be searchable.
	assert.Empty(t, s.Search("zephyr"))
	hits := s.Search("quartz")
	require.Len(t, hits, 1)
	assert.Equal(t, uint64(2), hits[0].ID)
}

func TestSearchScoring(t *testing.T) {
	s := newTestStore(t, 10)

	// tf differs: second entry mentions alpha twice.
	idSingle := s.Store("alpha beta", KindObservation, "test")
	idDouble := s.Store("alpha alpha gamma", KindObservation, "test")

	hits := s.Search("alpha")
	require.Len(t, hits, 2)
	assert.Equal(t, idDouble, hits[0].ID, "higher term frequency ranks first")
	assert.Equal(t, idSingle, hits[1].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchTieBreakByID(t *testing.T) {
	s := newTestStore(t, 10)

	id1 := s.Store("delta epsilon", KindObservation, "test")
	id2 := s.Store("delta epsilon", KindObservation, "test")

	hits := s.Search("delta")
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, id1, hits[0].ID, "equal scores order by ascending id")
	assert.Equal(t, id2, hits[1].ID)
}

func TestSearchMultiTermAccumulates(t *testing.T) {
	s := newTestStore(t, 10)

	both := s.Store("kernel scheduler design notes", KindObservation, "test")
	one := s.Store("kernel memory layout", KindObservation, "test")

	hits := s.Search("kernel scheduler")
	require.Len(t, hits, 2)
	assert.Equal(t, both, hits[0].ID, "matching both terms outranks matching one")
	assert.Equal(t, one, hits[1].ID)
}

func TestSearchUnknownTermsEmpty(t *testing.T) {
	s := newTestStore(t, 10)
	s.Store("something entirely ordinary", KindObservation, "test")

	assert.Empty(t, s.Search("nonexistent"))
	assert.Empty(t, s.Search(""))
	assert.Empty(t, s.Search("the and for")) // all stop words
}

func TestGetBumpsAccessCountAndScore(t *testing.T) {
	s := newTestStore(t, 10)

	idCold := s.Store("frequent topic here", KindObservation, "test")
	idHot := s.Store("frequent topic there", KindObservation, "test")

	// Without access the earlier id wins the tie.
	hits := s.Search("frequent")
	require.Len(t, hits, 2)
	assert.Equal(t, idCold, hits[0].ID)

	for i := 0; i < 3; i++ {
		_, ok := s.Get(idHot)
		require.True(t, ok)
	}

	hits = s.Search("frequent")
	require.Len(t, hits, 2)
	assert.Equal(t, idHot, hits[0].ID, "accessed entry ranks first")
}

func TestAccessBonusSaturates(t *testing.T) {
	s := newTestStore(t, 10)

	id := s.Store("saturation check content", KindObservation, "test")
	for i := 0; i < 20; i++ {
		_, ok := s.Get(id)
		require.True(t, ok)
	}

	entry, ok := s.Peek(id)
	require.True(t, ok)
	assert.Equal(t, uint64(20), entry.AccessCount, "raw count keeps growing")

	hits := s.Search("saturation")
	require.Len(t, hits, 1)
	// tf=1, single-entry index: idf = 1/1 = 1, bonus capped at 5.
	assert.Equal(t, uint32(1*1*(1+5)), hits[0].Score)
}

func TestPeekDoesNotBumpAccessCount(t *testing.T) {
	s := newTestStore(t, 10)

	id := s.Store("quiet observation content", KindObservation, "test")

	for i := 0; i < 5; i++ {
		_, ok := s.Peek(id)
		require.True(t, ok)
	}
	s.Search("quiet")
	s.Recent(3)
	s.Stats()

	entry, ok := s.Peek(id)
	require.True(t, ok)
	assert.Equal(t, uint64(0), entry.AccessCount)

	_, ok = s.Get(id)
	require.True(t, ok)
	entry, _ = s.Peek(id)
	assert.Equal(t, uint64(1), entry.AccessCount)
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStore(t, 10)

	id := s.Store("copy semantics check", KindObservation, "test")
	entry, ok := s.Get(id)
	require.True(t, ok)

	entry.Content = "mutated"
	require.NotEmpty(t, entry.Keywords)
	entry.Keywords[0] = "mutated"

	fresh, ok := s.Peek(id)
	require.True(t, ok)
	assert.Equal(t, "copy semantics check", fresh.Content)
	assert.NotEqual(t, "mutated", fresh.Keywords[0])

	recent := s.Recent(1)
	require.Len(t, recent, 1)
	recent[0].Keywords[0] = "scribbled"
	fresh, _ = s.Peek(id)
	assert.NotEqual(t, "scribbled", fresh.Keywords[0])
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t, 10)

	for i := 1; i <= 5; i++ {
		s.Store(fmt.Sprintf("entry batch item %d", i), KindObservation, "test")
	}

	recent := s.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, uint64(5), recent[0].ID)
	assert.Equal(t, uint64(4), recent[1].ID)
	assert.Equal(t, uint64(3), recent[2].ID)

	all := s.Recent(100)
	assert.Len(t, all, 5)
	assert.Empty(t, s.Recent(0))
}

func TestFrequentKeywords(t *testing.T) {
	s := newTestStore(t, 10)

	s.Store("garden borrow checker notes", KindObservation, "a")
	s.Store("garden async runtime notes", KindObservation, "b")
	s.Store("compost scheduler internals", KindObservation, "c")

	themes := s.FrequentKeywords(2, 3)
	require.NotEmpty(t, themes)

	// "garden" and "notes" each appear in two entries.
	kws := map[string]int{}
	for _, th := range themes {
		kws[th.Keyword] = th.Count
	}
	assert.Equal(t, 2, kws["garden"])
	assert.Equal(t, 2, kws["notes"])
	_, hasCompost := kws["compost"]
	assert.False(t, hasCompost, "df=1 keywords excluded at minDF=2")
}

func TestStats(t *testing.T) {
	s := newTestStore(t, 10)

	s.Store("statistics keywords alpha", KindSpark, "agent-1")
	s.Store("statistics keywords beta", KindFeeling, "agent-2")

	st := s.Stats()
	assert.Equal(t, 2, st.EntryCount)
	assert.Greater(t, st.IndexSize, 0)
	assert.Greater(t, st.EstimatedBytes, 0)
	require.NotEmpty(t, st.TopKeywords)
	// "keywords" and "statistics" both appear twice; ties order
	// alphabetically.
	assert.Equal(t, "keywords", st.TopKeywords[0].Keyword)
	assert.Equal(t, 2, st.TopKeywords[0].Count)
}

func TestStoreKindAndSourcePreserved(t *testing.T) {
	s := newTestStore(t, 10)

	id := s.StoreWithTimestamp("a meaningful connection formed", KindConnection, "agent-3", 4242)
	entry, ok := s.Peek(id)
	require.True(t, ok)
	assert.Equal(t, KindConnection, entry.Kind)
	assert.Equal(t, "agent-3", entry.Source)
	assert.Equal(t, uint64(4242), entry.Timestamp)
}
