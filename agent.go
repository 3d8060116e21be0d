package meetingagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voocel/meetingagent/llm"
	"github.com/voocel/meetingagent/store"
)

// DefaultAnalysisInterval is how long the background cycle sleeps between
// reconciliation attempts.
const DefaultAnalysisInterval = 45 * time.Second

// UpdateFunc receives a state snapshot after every state-mutating operation.
// It is invoked synchronously and must not call back into the agent.
type UpdateFunc func(state *AgentState)

// MeetingAgent owns one meeting: it generates the todo list at start, runs a
// background reconciliation cycle over incoming transcript chunks, and
// produces the closing summary. Exactly one agent mutates one AgentState.
//
// The state machine is uninitialized -> active -> ended. StartMeeting may be
// called once; ingestion and analysis require an active meeting.
type MeetingAgent struct {
	gen       llm.Generator
	interval  time.Duration
	onUpdate  UpdateFunc
	snapshots store.SnapshotStore
	logger    zerolog.Logger

	mu    sync.RWMutex
	state *AgentState

	// analyzeMu serializes reconciliation steps so the periodic cycle and a
	// forced AnalyzeNow never interleave their cursor-advance-then-process
	// sequences. EndMeeting takes it before generating the summary.
	analyzeMu sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a meeting agent bound to the given generation backend.
func New(gen llm.Generator, opts ...Option) *MeetingAgent {
	a := &MeetingAgent{
		gen:      gen,
		interval: DefaultAnalysisInterval,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StartMeeting initializes the meeting state, generates the initial todo list
// from the agenda, and starts the background reconciliation cycle.
//
// A backend reply that cannot be parsed as a topic list degrades to a single
// catch-all todo, so StartMeeting only fails when the backend call itself
// fails or the agent was already started.
func (a *MeetingAgent) StartMeeting(ctx context.Context, meetingID, agenda string, goals []string, background string) (*AgentState, error) {
	a.mu.Lock()
	if a.state != nil {
		a.mu.Unlock()
		return nil, ErrMeetingAlreadyStarted
	}
	a.state = &AgentState{
		MeetingID: meetingID,
		Agenda:    agenda,
		Goals:     append([]string(nil), goals...),
		Active:    true,
		StartedAt: time.Now(),
	}
	a.mu.Unlock()

	a.logger.Info().Str("meeting_id", meetingID).Msg("starting meeting agent")

	reply, err := a.gen.Generate(ctx, GenerateTodosPrompt(agenda, goals, background))
	if err != nil {
		// The meeting never became observable; allow a retry.
		a.mu.Lock()
		a.state = nil
		a.mu.Unlock()
		return nil, fmt.Errorf("initial todo generation failed: %w", err)
	}
	todos := parseTodoList(reply, agenda)

	loopCtx, cancel := context.WithCancel(context.Background())

	a.mu.Lock()
	a.state.Todos = todos
	a.cancel = cancel
	a.done = make(chan struct{})
	a.mu.Unlock()

	go a.analysisLoop(loopCtx)

	return a.emitUpdate(ctx), nil
}

// AddTranscriptChunk appends a transcript fragment for later analysis.
// Chunks arriving when no meeting is active are dropped: ingestion races
// with meeting end are expected and harmless.
func (a *MeetingAgent) AddTranscriptChunk(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil || !a.state.Active {
		return
	}
	a.state.TranscriptChunks = append(a.state.TranscriptChunks, text)
}

// AnalyzeNow forces an out-of-cycle reconciliation step.
func (a *MeetingAgent) AnalyzeNow(ctx context.Context) (*Analysis, error) {
	if !a.active() {
		return nil, ErrNoActiveMeeting
	}
	return a.analyze(ctx)
}

// EndMeeting deactivates the meeting, waits for the background cycle to stop,
// and asks the backend for the final summary over the full transcript.
func (a *MeetingAgent) EndMeeting(ctx context.Context) (*Summary, error) {
	a.mu.Lock()
	if a.state == nil || !a.state.Active {
		a.mu.Unlock()
		return nil, ErrNoActiveMeeting
	}
	a.state.Active = false
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	// A forced AnalyzeNow may still be in flight; the summary must not be
	// produced while a reconciliation step can mutate state.
	a.analyzeMu.Lock()
	defer a.analyzeMu.Unlock()

	a.mu.RLock()
	meetingID := a.state.MeetingID
	transcript := strings.Join(a.state.TranscriptChunks, " ")
	goals := append([]string(nil), a.state.Goals...)
	todos := a.state.Clone().Todos
	totalSuggestions := len(a.state.Suggestions)
	startedAt := a.state.StartedAt
	a.mu.RUnlock()

	a.logger.Info().Str("meeting_id", meetingID).Msg("ending meeting, generating summary")

	text, err := a.gen.Generate(ctx, FinalSummaryPrompt(transcript, todos, goals))
	if err != nil {
		return nil, fmt.Errorf("final summary generation failed: %w", err)
	}

	summary := &Summary{
		Text:             text,
		Completed:        []TodoOutcome{},
		Missed:           []TodoOutcome{},
		TotalSuggestions: totalSuggestions,
		DurationMinutes:  time.Since(startedAt).Minutes(),
	}
	for _, todo := range todos {
		switch todo.Status {
		case TodoDiscussed:
			summary.Completed = append(summary.Completed, TodoOutcome{
				ID:        todo.ID,
				Topic:     todo.Topic,
				KeyPoints: todo.KeyPoints,
			})
		case TodoPending:
			summary.Missed = append(summary.Missed, TodoOutcome{
				ID:          todo.ID,
				Topic:       todo.Topic,
				Description: todo.Description,
			})
		}
	}

	a.saveSnapshot(ctx)
	return summary, nil
}

// GetState returns a deep copy of the current meeting state, or nil before
// StartMeeting.
func (a *MeetingAgent) GetState() *AgentState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone()
}

// GetPendingTodos returns the topics not yet discussed, in agenda order.
func (a *MeetingAgent) GetPendingTodos() []TodoItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state == nil {
		return nil
	}
	return a.state.PendingTodos()
}

// GetRecentSuggestions returns up to limit suggestions, newest first.
func (a *MeetingAgent) GetRecentSuggestions(limit int) []Suggestion {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state == nil {
		return nil
	}
	return a.state.RecentSuggestions(limit)
}

// analysisLoop is the background reconciliation cycle: sleep, check active,
// reconcile. A failed cycle is logged and the loop continues; only
// cancellation or meeting end stops it.
func (a *MeetingAgent) analysisLoop(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.interval):
		}

		if !a.active() {
			return
		}
		if a.unanalyzedChunks() == 0 {
			continue
		}

		if _, err := a.analyze(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrNoActiveMeeting) {
				return
			}
			a.logger.Error().Err(err).Str("meeting_id", a.meetingID()).Msg("analysis cycle failed")
		}
	}
}

// analyze performs one reconciliation step: consume the transcript window past
// the cursor, ask the backend to reconcile it against the open topics, and
// apply the result. The cursor advances exactly once per step, before the
// backend call, so chunks appended mid-step belong to the next window.
func (a *MeetingAgent) analyze(ctx context.Context) (*Analysis, error) {
	a.analyzeMu.Lock()
	defer a.analyzeMu.Unlock()

	a.mu.Lock()
	if a.state == nil || !a.state.Active {
		a.mu.Unlock()
		return nil, ErrNoActiveMeeting
	}
	window := a.state.TranscriptChunks[a.state.AnalysisCursor:]
	if len(window) == 0 {
		a.mu.Unlock()
		return &Analysis{
			NoNewContent:    true,
			TopicsDiscussed: []TopicReport{},
			Suggestions:     []SuggestionReport{},
			Warnings:        []string{},
		}, nil
	}
	newText := strings.Join(window, " ")
	a.state.AnalysisCursor = len(a.state.TranscriptChunks)

	var pending, discussed []string
	for _, todo := range a.state.Todos {
		switch todo.Status {
		case TodoPending:
			pending = append(pending, todo.Topic)
		case TodoDiscussed:
			discussed = append(discussed, todo.Topic)
		}
	}
	goals := append([]string(nil), a.state.Goals...)
	a.mu.Unlock()

	reply, err := a.gen.Generate(ctx, AnalyzeTranscriptPrompt(newText, pending, discussed, goals))
	if err != nil {
		return nil, fmt.Errorf("transcript analysis failed: %w", err)
	}
	analysis := parseAnalysis(reply)

	a.mu.Lock()
	a.applyAnalysis(analysis)
	a.mu.Unlock()

	a.emitUpdate(ctx)
	return analysis, nil
}

// applyAnalysis folds a parsed reconciliation result into the state.
// Caller holds a.mu.
//
// Each reported topic closes at most the first non-skipped todo it matches;
// an entry matching nothing is dropped, which is lossy but safe.
func (a *MeetingAgent) applyAnalysis(analysis *Analysis) {
	for _, report := range analysis.TopicsDiscussed {
		for _, todo := range a.state.Todos {
			if todo.Status == TodoSkipped {
				continue
			}
			if TopicsMatch(todo.Topic, report.Topic) {
				todo.MarkDiscussed(report.KeyPoints)
				break
			}
		}
	}

	now := time.Now()
	for _, report := range analysis.Suggestions {
		kind := report.Kind
		if kind == "" {
			kind = SuggestionQuestion
		}
		severity := report.Severity
		if severity == "" {
			severity = SeverityNormal
		}
		a.state.Suggestions = append(a.state.Suggestions, Suggestion{
			Kind:          kind,
			Content:       report.Content,
			Severity:      severity,
			RelatedTodoID: a.relatedTodoID(report.RelatedTopic),
			CreatedAt:     now,
		})
	}

	for _, warning := range analysis.Warnings {
		a.state.Suggestions = append(a.state.Suggestions, Suggestion{
			Kind:      SuggestionWarning,
			Content:   warning,
			Severity:  SeverityHigh,
			CreatedAt: now,
		})
	}
}

// relatedTodoID resolves a topic label reported by the backend to a stable
// todo identifier. Caller holds a.mu.
func (a *MeetingAgent) relatedTodoID(topic string) string {
	if topic == "" {
		return ""
	}
	for _, todo := range a.state.Todos {
		if TopicsMatch(todo.Topic, topic) {
			return todo.ID
		}
	}
	return ""
}

// emitUpdate snapshots the state, notifies the update callback, and persists
// the snapshot. Returns the snapshot.
func (a *MeetingAgent) emitUpdate(ctx context.Context) *AgentState {
	a.mu.RLock()
	snap := a.state.Clone()
	a.mu.RUnlock()
	if snap == nil {
		return nil
	}

	if a.onUpdate != nil {
		a.onUpdate(snap)
	}
	a.saveSnapshotState(ctx, snap)
	return snap
}

func (a *MeetingAgent) saveSnapshot(ctx context.Context) {
	a.mu.RLock()
	snap := a.state.Clone()
	a.mu.RUnlock()
	a.saveSnapshotState(ctx, snap)
}

func (a *MeetingAgent) saveSnapshotState(ctx context.Context, snap *AgentState) {
	if a.snapshots == nil || snap == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		a.logger.Warn().Err(err).Str("meeting_id", snap.MeetingID).Msg("failed to encode snapshot")
		return
	}
	if err := a.snapshots.Put(ctx, snap.MeetingID, data); err != nil {
		a.logger.Warn().Err(err).Str("meeting_id", snap.MeetingID).Msg("failed to persist snapshot")
	}
}

func (a *MeetingAgent) active() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state != nil && a.state.Active
}

func (a *MeetingAgent) unanalyzedChunks() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state == nil {
		return 0
	}
	return len(a.state.TranscriptChunks) - a.state.AnalysisCursor
}

func (a *MeetingAgent) meetingID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state == nil {
		return ""
	}
	return a.state.MeetingID
}
