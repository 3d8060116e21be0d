// Package meetingagent implements a real-time meeting assistant: it derives a
// discussion todo list from an agenda, ingests a live transcript, periodically
// reconciles what was said against the open topics, surfaces suggestions, and
// produces a closing summary.
package meetingagent

import (
	"sort"
	"time"
)

// TodoStatus is the lifecycle state of an agenda topic.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoDiscussed  TodoStatus = "discussed"
	TodoSkipped    TodoStatus = "skipped"
)

// Terminal reports whether no further status transitions are allowed.
func (s TodoStatus) Terminal() bool {
	return s == TodoDiscussed || s == TodoSkipped
}

// TodoItem is one agenda topic to cover during the meeting.
type TodoItem struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Description string     `json:"description"`
	Status      TodoStatus `json:"status"`
	Priority    int        `json:"priority"` // 1 = highest
	Notes       []string   `json:"notes,omitempty"`
	KeyPoints   []string   `json:"key_points,omitempty"`
	DiscussedAt *time.Time `json:"discussed_at,omitempty"`
}

// MarkDiscussed moves the item to discussed and records the key points.
// The status and discussion timestamp are set once; repeated matches for an
// already discussed topic only accumulate further key points.
func (t *TodoItem) MarkDiscussed(keyPoints []string) {
	if t.Status != TodoDiscussed {
		t.Status = TodoDiscussed
		now := time.Now()
		t.DiscussedAt = &now
	}
	t.KeyPoints = append(t.KeyPoints, keyPoints...)
}

// SuggestionKind classifies an agent suggestion.
type SuggestionKind string

const (
	SuggestionQuestion SuggestionKind = "question"
	SuggestionFollowUp SuggestionKind = "followup"
	SuggestionReminder SuggestionKind = "reminder"
	SuggestionWarning  SuggestionKind = "warning"
)

// Severity ranks how urgently a suggestion should be surfaced.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityNormal Severity = "normal"
	SeverityHigh   Severity = "high"
	SeverityUrgent Severity = "urgent"
)

// Suggestion is one actionable note surfaced to the user. Immutable once
// created; the meeting accumulates them append-only.
type Suggestion struct {
	Kind          SuggestionKind `json:"kind"`
	Content       string         `json:"content"`
	RelatedTodoID string         `json:"related_todo_id,omitempty"`
	Severity      Severity       `json:"severity"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AgentState is the single source of truth for one meeting.
//
// AnalysisCursor counts how many transcript chunks have already been consumed
// by reconciliation; it never exceeds len(TranscriptChunks).
type AgentState struct {
	MeetingID        string       `json:"meeting_id"`
	Agenda           string       `json:"agenda"`
	Goals            []string     `json:"goals,omitempty"`
	Todos            []*TodoItem  `json:"todos"`
	Suggestions      []Suggestion `json:"suggestions,omitempty"`
	TranscriptChunks []string     `json:"transcript_chunks,omitempty"`
	AnalysisCursor   int          `json:"analysis_cursor"`
	Active           bool         `json:"active"`
	StartedAt        time.Time    `json:"started_at"`
}

// Clone returns a deep copy. Accessors hand copies to callers so the agent's
// own state is never shared across goroutines.
func (s *AgentState) Clone() *AgentState {
	if s == nil {
		return nil
	}
	out := *s
	out.Goals = append([]string(nil), s.Goals...)
	out.Suggestions = append([]Suggestion(nil), s.Suggestions...)
	out.TranscriptChunks = append([]string(nil), s.TranscriptChunks...)
	out.Todos = make([]*TodoItem, len(s.Todos))
	for i, t := range s.Todos {
		c := *t
		c.Notes = append([]string(nil), t.Notes...)
		c.KeyPoints = append([]string(nil), t.KeyPoints...)
		if t.DiscussedAt != nil {
			at := *t.DiscussedAt
			c.DiscussedAt = &at
		}
		out.Todos[i] = &c
	}
	return &out
}

// PendingTodos returns copies of the not-yet-discussed topics in agenda order.
func (s *AgentState) PendingTodos() []TodoItem {
	var pending []TodoItem
	for _, todo := range s.Todos {
		if todo.Status == TodoPending {
			pending = append(pending, *todo)
		}
	}
	return pending
}

// RecentSuggestions returns up to limit suggestions ordered newest first.
// Suggestions accumulate unordered from batched analysis results, so display
// order is by creation time, not insertion order.
func (s *AgentState) RecentSuggestions(limit int) []Suggestion {
	recent := append([]Suggestion(nil), s.Suggestions...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if limit >= 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// TopicReport is one "topic was addressed" entry from a reconciliation reply.
type TopicReport struct {
	Topic      string   `json:"topic"`
	KeyPoints  []string `json:"key_points,omitempty"`
	Completion string   `json:"completion,omitempty"` // "full" or "partial"
}

// SuggestionReport is one suggestion entry from a reconciliation reply.
type SuggestionReport struct {
	Kind         SuggestionKind `json:"type"`
	Content      string         `json:"content"`
	Severity     Severity       `json:"priority,omitempty"`
	RelatedTopic string         `json:"related_todo,omitempty"`
}

// Analysis is the parsed result of one reconciliation step.
type Analysis struct {
	// NoNewContent is set when the step found nothing past the cursor and
	// did not touch the state or the generation backend.
	NoNewContent    bool               `json:"no_new_content,omitempty"`
	TopicsDiscussed []TopicReport      `json:"topics_discussed"`
	Suggestions     []SuggestionReport `json:"suggestions"`
	Warnings        []string           `json:"warnings"`
}

// TodoOutcome is a todo's final standing reported in the meeting summary.
type TodoOutcome struct {
	ID          string   `json:"id"`
	Topic       string   `json:"topic"`
	KeyPoints   []string `json:"key_points,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Summary is the closing report for a meeting.
type Summary struct {
	Text             string        `json:"summary"`
	Completed        []TodoOutcome `json:"todos_completed"`
	Missed           []TodoOutcome `json:"todos_missed"`
	TotalSuggestions int           `json:"total_suggestions"`
	DurationMinutes  float64       `json:"duration_minutes"`
}
