package meetingagent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONSpan returns the widest substring of content delimited by the
// first open bracket and the last close bracket. Generation backends wrap
// JSON in prose or code fences more often than not, so the reply is never
// required to be pure JSON.
func extractJSONSpan(content string, open, close byte) (string, bool) {
	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, close)
	if start == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

type todoPayload struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// parseTodoList turns a topic-generation reply into todo items. When no list
// can be recovered, the meeting still starts: the fallback is a single
// catch-all item covering the whole agenda.
func parseTodoList(content, agenda string) []*TodoItem {
	raw, ok := extractJSONSpan(content, '[', ']')
	if !ok {
		raw = content
	}

	var items []todoPayload
	if err := json.Unmarshal([]byte(raw), &items); err != nil || len(items) == 0 {
		return []*TodoItem{{
			ID:          "todo_0",
			Topic:       "Discuss agenda",
			Description: truncate(agenda, 200),
			Status:      TodoPending,
			Priority:    1,
		}}
	}

	todos := make([]*TodoItem, len(items))
	for i, item := range items {
		priority := item.Priority
		if priority == 0 {
			priority = i + 1
		}
		todos[i] = &TodoItem{
			ID:          fmt.Sprintf("todo_%d", i),
			Topic:       item.Topic,
			Description: item.Description,
			Status:      TodoPending,
			Priority:    priority,
		}
	}
	return todos
}

// parseAnalysis turns a reconciliation reply into an Analysis. A reply with
// no recoverable JSON object degrades to the empty structure rather than
// failing the step.
func parseAnalysis(content string) *Analysis {
	analysis := &Analysis{
		TopicsDiscussed: []TopicReport{},
		Suggestions:     []SuggestionReport{},
		Warnings:        []string{},
	}
	raw, ok := extractJSONSpan(content, '{', '}')
	if !ok {
		return analysis
	}
	var parsed Analysis
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return analysis
	}
	if parsed.TopicsDiscussed != nil {
		analysis.TopicsDiscussed = parsed.TopicsDiscussed
	}
	if parsed.Suggestions != nil {
		analysis.Suggestions = parsed.Suggestions
	}
	if parsed.Warnings != nil {
		analysis.Warnings = parsed.Warnings
	}
	return analysis
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
