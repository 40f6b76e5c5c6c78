package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectedAddressing(t *testing.T) {
	m := Text(1, 2, "hello")

	require.NotNil(t, m.To)
	assert.False(t, m.IsBroadcast())
	assert.True(t, m.AddressedTo(2))
	assert.False(t, m.AddressedTo(1))
	assert.False(t, m.AddressedTo(3))
}

func TestBroadcastAddressesEveryone(t *testing.T) {
	m := BroadcastText(1, "to all")

	assert.True(t, m.IsBroadcast())
	for id := AgentID(0); id < 5; id++ {
		assert.True(t, m.AddressedTo(id))
	}
}

func TestConstructorsSetKindAndPayload(t *testing.T) {
	ping := Ping(1, 2)
	assert.Equal(t, KindPing, ping.Kind)

	pong := Pong(2, 1)
	assert.Equal(t, KindPong, pong.Kind)
	require.NotNil(t, pong.To)
	assert.Equal(t, AgentID(1), *pong.To)

	req := Request(1, 2, "run_tests", "verbose")
	assert.Equal(t, "run_tests", req.Action)
	assert.Equal(t, []string{"verbose"}, req.Params)

	resp := Response(2, 1, true, "3/3 passed")
	assert.True(t, resp.Success)
	assert.Equal(t, "3/3 passed", resp.Data)

	hb := Heartbeat(SupervisorID, "build something amazing")
	assert.Equal(t, KindHeartbeat, hb.Kind)
	assert.True(t, hb.IsBroadcast())
	assert.Equal(t, "build something amazing", hb.Ambition)

	fb := SendFeedback(3, Feedback{Kind: FeedbackSpark, Content: "an idea"})
	assert.Equal(t, KindFeedback, fb.Kind)
	assert.Equal(t, "an idea", fb.Feedback.Content)

	breath := FirstBreath(SupervisorID, "Thomas", "Guardian")
	assert.Equal(t, "Thomas", breath.AgentName)
	assert.Equal(t, "Guardian", breath.Role)

	store := MemoryStoreRequest(3, "note to self", "observation")
	assert.Equal(t, KindMemoryStore, store.Kind)
	assert.Equal(t, "observation", store.MemKind)

	search := MemorySearchRequest(3, "system health")
	assert.Equal(t, KindMemorySearch, search.Kind)
	assert.Equal(t, "system health", search.Query)

	reply := MemoryResultsReply(SupervisorID, 3, []MemoryResult{{ID: 9, Preview: "p"}})
	require.NotNil(t, reply.To)
	assert.Equal(t, AgentID(3), *reply.To)
	require.Len(t, reply.Results, 1)
	assert.Equal(t, uint64(9), reply.Results[0].ID)
}

func TestUrgentCopiesWithoutMutating(t *testing.T) {
	m := Text(1, 2, "calm")
	urgent := m.Urgent()

	assert.Equal(t, PriorityHigh, urgent.Priority)
	assert.Equal(t, PriorityNormal, m.Priority)
}

func TestFeedbackDescribe(t *testing.T) {
	cases := []struct {
		fb   Feedback
		want string
	}{
		{Feedback{Kind: FeedbackSpark, Content: "idea", Context: "testing"}, "Spark: idea (context: testing)"},
		{Feedback{Kind: FeedbackConnection, From: "a", To: "b", Pattern: "shared"}, "Connection: a -> b (shared)"},
		{Feedback{Kind: FeedbackResource, Description: "doc", Location: "here"}, "Resource: doc at here"},
		{Feedback{Kind: FeedbackFeeling, Tag: "curious", Intensity: 80}, "Feeling: curious (intensity 80)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.fb.Describe())
	}
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "memory_search", KindMemorySearch.String())
	assert.Equal(t, "first_breath", KindFirstBreath.String())
	assert.Equal(t, "unknown", Kind(-1).String())
	assert.Equal(t, "spark", FeedbackSpark.String())
	assert.Equal(t, "critical", PriorityCritical.String())
}
