package meetingagent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoStatusTerminal(t *testing.T) {
	assert.False(t, TodoPending.Terminal())
	assert.False(t, TodoInProgress.Terminal())
	assert.True(t, TodoDiscussed.Terminal())
	assert.True(t, TodoSkipped.Terminal())
}

func TestMarkDiscussed(t *testing.T) {
	todo := &TodoItem{ID: "todo_0", Topic: "Budget", Status: TodoPending}

	todo.MarkDiscussed([]string{"first"})
	require.Equal(t, TodoDiscussed, todo.Status)
	require.NotNil(t, todo.DiscussedAt)
	first := *todo.DiscussedAt

	time.Sleep(time.Millisecond)
	todo.MarkDiscussed([]string{"second"})
	assert.Equal(t, TodoDiscussed, todo.Status)
	assert.True(t, first.Equal(*todo.DiscussedAt), "timestamp must be set once")
	assert.Equal(t, []string{"first", "second"}, todo.KeyPoints)
}

func TestPendingTodos(t *testing.T) {
	state := &AgentState{Todos: []*TodoItem{
		{ID: "todo_0", Topic: "A", Status: TodoDiscussed},
		{ID: "todo_1", Topic: "B", Status: TodoPending},
		{ID: "todo_2", Topic: "C", Status: TodoSkipped},
		{ID: "todo_3", Topic: "D", Status: TodoPending},
	}}

	pending := state.PendingTodos()
	require.Len(t, pending, 2)
	assert.Equal(t, "B", pending[0].Topic)
	assert.Equal(t, "D", pending[1].Topic)

	// Copies, not aliases.
	pending[0].Topic = "mutated"
	assert.Equal(t, "B", state.Todos[1].Topic)
}

func TestRecentSuggestions(t *testing.T) {
	base := time.Now()
	state := &AgentState{Suggestions: []Suggestion{
		{Content: "oldest", CreatedAt: base},
		{Content: "newest", CreatedAt: base.Add(2 * time.Second)},
		{Content: "middle", CreatedAt: base.Add(time.Second)},
	}}

	recent := state.RecentSuggestions(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "newest", recent[0].Content)
	assert.Equal(t, "middle", recent[1].Content)

	all := state.RecentSuggestions(10)
	assert.Len(t, all, 3)

	assert.Empty(t, state.RecentSuggestions(0))
}

func TestAgentStateClone(t *testing.T) {
	at := time.Now()
	state := &AgentState{
		MeetingID:        "m1",
		Goals:            []string{"g1"},
		TranscriptChunks: []string{"c1"},
		Todos: []*TodoItem{
			{ID: "todo_0", Topic: "A", KeyPoints: []string{"k1"}, DiscussedAt: &at},
		},
		Suggestions: []Suggestion{{Content: "s1"}},
	}

	clone := state.Clone()
	clone.Goals[0] = "changed"
	clone.TranscriptChunks = append(clone.TranscriptChunks, "c2")
	clone.Todos[0].Topic = "changed"
	clone.Todos[0].KeyPoints[0] = "changed"
	*clone.Todos[0].DiscussedAt = at.Add(time.Hour)
	clone.Suggestions[0].Content = "changed"

	assert.Equal(t, "g1", state.Goals[0])
	assert.Len(t, state.TranscriptChunks, 1)
	assert.Equal(t, "A", state.Todos[0].Topic)
	assert.Equal(t, "k1", state.Todos[0].KeyPoints[0])
	assert.True(t, at.Equal(*state.Todos[0].DiscussedAt))
	assert.Equal(t, "s1", state.Suggestions[0].Content)

	var nilState *AgentState
	assert.Nil(t, nilState.Clone())
}
