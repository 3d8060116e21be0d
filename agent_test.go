package meetingagent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/meetingagent/store"
)

// scriptedGenerator replays queued replies and records every prompt it saw.
// The last reply is sticky so background cycles and the closing summary can
// run without exhausting the script.
type scriptedGenerator struct {
	mu      sync.Mutex
	prompts []string
	replies []string
	err     error
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply, nil
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *scriptedGenerator) promptAt(i int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompts[i]
}

func (g *scriptedGenerator) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

const todosReply = `[
	{"topic": "Budget Review", "description": "Walk through Q3 numbers", "priority": 1},
	{"topic": "Hiring Plan", "description": "Two backend openings", "priority": 2}
]`

const emptyAnalysisReply = `{"topics_discussed": [], "suggestions": [], "warnings": []}`

func startTestMeeting(t *testing.T, gen *scriptedGenerator, opts ...Option) *MeetingAgent {
	t.Helper()
	// A long interval keeps the background cycle idle unless a test opts in.
	agent := New(gen, append([]Option{WithAnalysisInterval(time.Hour)}, opts...)...)
	_, err := agent.StartMeeting(context.Background(), "m1", "1. Budget\n2. Hiring", []string{"Approve budget"}, "")
	require.NoError(t, err)
	return agent
}

func TestStartMeeting(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{todosReply, "summary text"}}

	var updates int
	agent := New(gen,
		WithAnalysisInterval(time.Hour),
		WithOnUpdate(func(*AgentState) { updates++ }),
	)
	state, err := agent.StartMeeting(context.Background(), "m1", "1. Budget\n2. Hiring", []string{"Approve budget"}, "prior notes")
	require.NoError(t, err)
	defer agent.EndMeeting(context.Background())

	assert.Equal(t, "m1", state.MeetingID)
	assert.True(t, state.Active)
	assert.False(t, state.StartedAt.IsZero())
	require.Len(t, state.Todos, 2)
	assert.Equal(t, "Budget Review", state.Todos[0].Topic)
	assert.Equal(t, TodoPending, state.Todos[0].Status)
	assert.Equal(t, 1, updates)

	// Agenda, goals and context all reach the backend.
	prompt := gen.promptAt(0)
	assert.Contains(t, prompt, "1. Budget")
	assert.Contains(t, prompt, "- Approve budget")
	assert.Contains(t, prompt, "prior notes")
}

func TestStartMeetingTwice(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{todosReply}}
	agent := startTestMeeting(t, gen)
	defer agent.EndMeeting(context.Background())

	_, err := agent.StartMeeting(context.Background(), "m2", "agenda", nil, "")
	assert.ErrorIs(t, err, ErrMeetingAlreadyStarted)
}

func TestStartMeetingBackendFailure(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{todosReply}}
	gen.setErr(errors.New("backend down"))

	agent := New(gen, WithAnalysisInterval(time.Hour))
	_, err := agent.StartMeeting(context.Background(), "m1", "agenda", nil, "")
	require.Error(t, err)
	assert.Nil(t, agent.GetState())

	// The failed start never became observable, so a retry is allowed.
	gen.setErr(nil)
	state, err := agent.StartMeeting(context.Background(), "m1", "agenda", nil, "")
	require.NoError(t, err)
	assert.True(t, state.Active)
	agent.EndMeeting(context.Background())
}

func TestStartMeetingFallbackTodo(t *testing.T) {
	agenda := strings.Repeat("agenda text ", 30) // well past the excerpt bound
	gen := &scriptedGenerator{replies: []string{"I am unable to produce a list."}}

	agent := New(gen, WithAnalysisInterval(time.Hour))
	state, err := agent.StartMeeting(context.Background(), "m1", agenda, nil, "")
	require.NoError(t, err)
	defer agent.EndMeeting(context.Background())

	require.Len(t, state.Todos, 1)
	todo := state.Todos[0]
	assert.Equal(t, "todo_0", todo.ID)
	assert.Equal(t, "Discuss agenda", todo.Topic)
	assert.Equal(t, TodoPending, todo.Status)
	assert.Len(t, []rune(todo.Description), 200)
	assert.True(t, strings.HasPrefix(agenda, todo.Description))
}

func TestAddTranscriptChunkInactive(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{todosReply}}
	agent := New(gen, WithAnalysisInterval(time.Hour))

	// Before start: dropped silently.
	agent.AddTranscriptChunk("too early")
	assert.Nil(t, agent.GetState())

	_, err := agent.StartMeeting(context.Background(), "m1", "agenda", nil, "")
	require.NoError(t, err)
	_, err = agent.EndMeeting(context.Background())
	require.NoError(t, err)

	// After end: dropped silently.
	agent.AddTranscriptChunk("too late")
	assert.Empty(t, agent.GetState().TranscriptChunks)
}

func TestAnalyzeNowNoActiveMeeting(t *testing.T) {
	agent := New(&scriptedGenerator{})
	_, err := agent.AnalyzeNow(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveMeeting)
}

func TestAnalyzeNowNoNewContent(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{todosReply}}
	agent := startTestMeeting(t, gen)
	defer agent.EndMeeting(context.Background())

	analysis, err := agent.AnalyzeNow(context.Background())
	require.NoError(t, err)
	assert.True(t, analysis.NoNewContent)

	// An empty window never reaches the backend and never moves the cursor.
	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, 0, agent.GetState().AnalysisCursor)
}

func TestAnalyzeCursorAccounting(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{todosReply, emptyAnalysisReply, emptyAnalysisReply}}
	agent := startTestMeeting(t, gen)
	defer agent.EndMeeting(context.Background())

	agent.AddTranscriptChunk("chunk one")
	agent.AddTranscriptChunk("chunk two")
	_, err := agent.AnalyzeNow(context.Background())
	require.NoError(t, err)

	first := gen.promptAt(1)
	assert.Contains(t, first, "chunk one chunk two")
	assert.Equal(t, 2, agent.GetState().AnalysisCursor)

	agent.AddTranscriptChunk("chunk three")
	_, err = agent.AnalyzeNow(context.Background())
	require.NoError(t, err)

	// Each chunk is analyzed exactly once.
	second := gen.promptAt(2)
	assert.Contains(t, second, "chunk three")
	assert.NotContains(t, second, "chunk one")
	assert.Equal(t, 3, agent.GetState().AnalysisCursor)
}

func TestAnalyzeAppliesResult(t *testing.T) {
	analysisReply := `{
		"topics_discussed": [
			{"topic": "budget review", "key_points": ["Q3 on track", "hiring freeze lifted"], "completion": "full"}
		],
		"suggestions": [
			{"type": "followup", "content": "Confirm the backend openings", "priority": "high", "related_todo": "Hiring Plan"},
			{"content": "Anything else on budget?"}
		],
		"warnings": ["Running behind schedule"]
	}`
	gen := &scriptedGenerator{replies: []string{todosReply, analysisReply}}
	agent := startTestMeeting(t, gen)
	defer agent.EndMeeting(context.Background())

	agent.AddTranscriptChunk("we walked through the Q3 numbers")
	analysis, err := agent.AnalyzeNow(context.Background())
	require.NoError(t, err)
	assert.False(t, analysis.NoNewContent)

	state := agent.GetState()
	require.Len(t, state.Todos, 2)
	assert.Equal(t, TodoDiscussed, state.Todos[0].Status)
	require.NotNil(t, state.Todos[0].DiscussedAt)
	assert.Equal(t, []string{"Q3 on track", "hiring freeze lifted"}, state.Todos[0].KeyPoints)
	assert.Equal(t, TodoPending, state.Todos[1].Status)

	require.Len(t, state.Suggestions, 3)
	assert.Equal(t, SuggestionFollowUp, state.Suggestions[0].Kind)
	assert.Equal(t, SeverityHigh, state.Suggestions[0].Severity)
	assert.Equal(t, "todo_1", state.Suggestions[0].RelatedTodoID)

	// Missing type and priority default to question/normal.
	assert.Equal(t, SuggestionQuestion, state.Suggestions[1].Kind)
	assert.Equal(t, SeverityNormal, state.Suggestions[1].Severity)
	assert.Empty(t, state.Suggestions[1].RelatedTodoID)

	// Warnings surface as high-severity warning suggestions.
	assert.Equal(t, SuggestionWarning, state.Suggestions[2].Kind)
	assert.Equal(t, SeverityHigh, state.Suggestions[2].Severity)
	assert.Equal(t, "Running behind schedule", state.Suggestions[2].Content)
}

func TestRepeatedTopicMatchAppendsKeyPoints(t *testing.T) {
	firstReply := `{"topics_discussed": [{"topic": "Budget Review", "key_points": ["point one"]}], "suggestions": [], "warnings": []}`
	secondReply := `{"topics_discussed": [{"topic": "Budget Review", "key_points": ["point two"]}], "suggestions": [], "warnings": []}`
	gen := &scriptedGenerator{replies: []string{todosReply, firstReply, secondReply}}
	agent := startTestMeeting(t, gen)
	defer agent.EndMeeting(context.Background())

	agent.AddTranscriptChunk("budget part one")
	_, err := agent.AnalyzeNow(context.Background())
	require.NoError(t, err)

	discussedAt := *agent.GetState().Todos[0].DiscussedAt

	agent.AddTranscriptChunk("budget part two")
	_, err = agent.AnalyzeNow(context.Background())
	require.NoError(t, err)

	todo := agent.GetState().Todos[0]
	assert.Equal(t, TodoDiscussed, todo.Status)
	assert.Equal(t, []string{"point one", "point two"}, todo.KeyPoints)
	// The discussion timestamp is set once.
	assert.True(t, discussedAt.Equal(*todo.DiscussedAt))
}

func TestEndMeeting(t *testing.T) {
	analysisReply := `{"topics_discussed": [{"topic": "Budget Review", "key_points": ["approved"]}], "suggestions": [{"content": "one suggestion"}], "warnings": []}`
	gen := &scriptedGenerator{replies: []string{todosReply, analysisReply, "## Meeting Summary\nAll good."}}
	agent := startTestMeeting(t, gen)

	agent.AddTranscriptChunk("budget approved, hiring deferred")
	_, err := agent.AnalyzeNow(context.Background())
	require.NoError(t, err)

	summary, err := agent.EndMeeting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "## Meeting Summary\nAll good.", summary.Text)
	require.Len(t, summary.Completed, 1)
	assert.Equal(t, "Budget Review", summary.Completed[0].Topic)
	assert.Equal(t, []string{"approved"}, summary.Completed[0].KeyPoints)
	require.Len(t, summary.Missed, 1)
	assert.Equal(t, "Hiring Plan", summary.Missed[0].Topic)
	assert.Equal(t, 1, summary.TotalSuggestions)
	assert.GreaterOrEqual(t, summary.DurationMinutes, 0.0)

	// The summary prompt carries the full transcript and the topic status.
	final := gen.promptAt(gen.callCount() - 1)
	assert.Contains(t, final, "budget approved, hiring deferred")
	assert.Contains(t, final, "✅ Budget Review")
	assert.Contains(t, final, "❌ Hiring Plan")

	_, err = agent.EndMeeting(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveMeeting)
	_, err = agent.AnalyzeNow(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveMeeting)
}

func TestBackgroundCycleAnalyzes(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{todosReply, emptyAnalysisReply}}
	agent := New(gen, WithAnalysisInterval(10*time.Millisecond))
	_, err := agent.StartMeeting(context.Background(), "m1", "agenda", nil, "")
	require.NoError(t, err)

	agent.AddTranscriptChunk("some discussion")

	require.Eventually(t, func() bool {
		return agent.GetState().AnalysisCursor == 1
	}, 2*time.Second, 5*time.Millisecond, "background cycle never consumed the chunk")

	_, err = agent.EndMeeting(context.Background())
	require.NoError(t, err)
}

func TestSnapshotPersistence(t *testing.T) {
	snapshots := store.NewMemoryStore()
	gen := &scriptedGenerator{replies: []string{todosReply, "summary"}}
	agent := startTestMeeting(t, gen, WithSnapshots(snapshots))

	_, err := agent.EndMeeting(context.Background())
	require.NoError(t, err)

	data, err := snapshots.Get(context.Background(), "m1")
	require.NoError(t, err)

	var snap AgentState
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "m1", snap.MeetingID)
	assert.False(t, snap.Active)
	assert.Len(t, snap.Todos, 2)
}

func TestOnUpdateReceivesIsolatedSnapshot(t *testing.T) {
	var captured *AgentState
	gen := &scriptedGenerator{replies: []string{todosReply}}
	agent := startTestMeeting(t, gen, WithOnUpdate(func(s *AgentState) { captured = s }))
	defer agent.EndMeeting(context.Background())

	require.NotNil(t, captured)
	captured.Todos[0].Topic = "mutated by subscriber"
	assert.Equal(t, "Budget Review", agent.GetState().Todos[0].Topic)
}
