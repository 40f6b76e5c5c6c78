package memstore

import (
	"strings"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSerializeRoundTrip(t *testing.T) {
	s := newTestStore(t, 10)

	s.StoreWithTimestamp("plain observation text", KindObservation, "agent-1", 10)
	s.StoreWithTimestamp("spark with pipe | inside", KindSpark, "agent-2", 20)
	s.StoreWithTimestamp("backslash \\ and newline\nand carriage\rreturn", KindFeeling, "shell", 30)
	s.StoreWithTimestamp("unicode content: héllo wörld 日本", KindResource, "agent-1", 40)
	s.StoreWithTimestamp(`note with a\path inside`, KindObservation, "shell", 50)

	// Bump one access count so it round-trips too.
	_, ok := s.Get(2)
	require.True(t, ok)

	data := s.Serialize()

	restored := newTestStore(t, 10)
	skipped := restored.Deserialize(data)
	assert.Equal(t, 0, skipped)

	require.Equal(t, s.Len(), restored.Len())
	for _, id := range []uint64{1, 2, 3, 4, 5} {
		want, ok := s.Peek(id)
		require.True(t, ok)
		got, ok := restored.Peek(id)
		require.True(t, ok, "entry %d missing after round trip", id)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("entry %d mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestSerializeFieldEscaping(t *testing.T) {
	s := newTestStore(t, 10)
	s.Store("pipe | char", KindObservation, "src|pipe")

	data := s.Serialize()
	line := strings.TrimSuffix(data, "\n")

	// Exactly seven fields; the literal pipes are escaped away.
	fields := strings.Split(line, "|")
	assert.Len(t, fields, 7)
	assert.Contains(t, line, `\p`)
}

func TestDeserializeSkipsMalformedLines(t *testing.T) {
	data := strings.Join([]string{
		"1|observation|shell|5|0|good entry content|good,entry,content",
		"not a valid line",
		"2|spark|agent-1|7|too|few", // six fields only
		"",
		"3|feeling|agent-2|9|2|another good entry|another,good,entry",
	}, "\n") + "\n"

	s := newTestStore(t, 10)
	skipped := s.Deserialize(data)

	assert.Equal(t, 2, skipped)
	assert.Equal(t, 2, s.Len())

	first, ok := s.Peek(1)
	require.True(t, ok)
	assert.Equal(t, KindObservation, first.Kind)
	assert.Equal(t, "good entry content", first.Content)

	third, ok := s.Peek(3)
	require.True(t, ok)
	assert.Equal(t, KindFeeling, third.Kind)
	assert.Equal(t, uint64(2), third.AccessCount)
}

func TestDeserializeNonNumericFieldsSkipLine(t *testing.T) {
	data := "abc|observation|shell|5|0|content here|content,here\n" +
		"4|observation|shell|x|0|content here|content,here\n" +
		"5|observation|shell|5|y|content here|content,here\n" +
		"6|observation|shell|5|0|valid entry line|valid,entry,line\n"

	s := newTestStore(t, 10)
	skipped := s.Deserialize(data)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, 1, s.Len())
}

func TestDeserializeResumesIDSequence(t *testing.T) {
	data := "3|observation|shell|1|0|first persisted entry|first,persisted,entry\n" +
		"7|observation|shell|2|0|second persisted entry|second,persisted,entry\n"

	s := newTestStore(t, 10)
	s.Deserialize(data)

	id := s.Store("fresh entry after load", KindObservation, "shell")
	assert.Equal(t, uint64(8), id, "next id resumes above the highest loaded id")
}

func TestDeserializeReplacesExistingState(t *testing.T) {
	s := newTestStore(t, 10)
	s.Store("state before loading snapshot", KindObservation, "shell")

	data := "9|observation|shell|1|0|snapshot entry only|snapshot,entry,only\n"
	s.Deserialize(data)

	assert.Equal(t, 1, s.Len())
	_, ok := s.Peek(9)
	assert.True(t, ok)
	assert.Empty(t, s.Search("before"))
}

func TestDeserializeEnforcesCapacity(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		b.WriteString(strings.Join([]string{
			itoa(uint64(i)), "observation", "shell", itoa(uint64(i)), "0",
			"persisted entry content", "persisted,entry,content",
		}, "|"))
		b.WriteByte('\n')
	}

	s := newTestStore(t, 3)
	s.Deserialize(b.String())

	assert.Equal(t, 3, s.Len())
	for _, id := range []uint64{3, 4, 5} {
		_, ok := s.Peek(id)
		assert.True(t, ok, "newest entry %d survives the capacity trim", id)
	}
}

func TestDeserializeEmptyInput(t *testing.T) {
	s := newTestStore(t, 10)
	skipped := s.Deserialize("")
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 0, s.Len())
}

func TestEscapeUnescapeField(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"plain", "hello world"},
		{"pipe", "a|b|c"},
		{"backslash", `a\b`},
		{"newline", "a\nb"},
		{"carriage", "a\rb"},
		{"backslash p", `a\pb`},
		{"everything", "mix|of\\all\nthe\rthings"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			escaped := escapeField(tc.in)
			assert.NotContains(t, escaped, "|")
			assert.NotContains(t, escaped, "\n")
			assert.NotContains(t, escaped, "\r")
			assert.Equal(t, tc.in, unescapeField(escaped))
		})
	}
}

func FuzzDeserialize(f *testing.F) {
	f.Add([]byte("1|observation|shell|5|0|seed entry content|seed,entry,content\n"))
	f.Add([]byte("garbage\n\n|||||\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		fc := fuzz.NewConsumer(data)
		raw, err := fc.GetString()
		if err != nil {
			return
		}

		s := New(50, zap.NewNop())
		s.Deserialize(raw)

		// Whatever survived must re-serialize and load back unchanged.
		again := New(50, zap.NewNop())
		skipped := again.Deserialize(s.Serialize())
		require.Zero(t, skipped)
		require.Equal(t, s.Len(), again.Len())
	})
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var digits []byte
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}
