package meetingagent

import (
	"fmt"
	"strings"
)

// Prompt builders for the generation backend. These are pure functions: the
// text they produce defines the reply schema the parsing side expects, so the
// section layout and the JSON examples are part of the backend contract.

// GenerateTodosPrompt asks the backend for the initial discussion todo list.
// The expected reply is a JSON array of {topic, description, priority}.
func GenerateTodosPrompt(agenda string, goals []string, background string) string {
	goalsText := ""
	if len(goals) > 0 {
		goalsText = fmt.Sprintf("\n## Goals to achieve:\n%s\n", bulletList(goals))
	}

	contextText := ""
	if background != "" {
		contextText = fmt.Sprintf("\n## Context (previous meetings, background):\n%s\n", background)
	}

	return fmt.Sprintf(`You are a meeting assistant. Based on the agenda, create a list of specific topics/questions to discuss.

## Meeting agenda:
%s
%s%s
## Task:
Analyze the agenda and generate a TODO list - specific items to discuss during the meeting.

For each item, specify:
- topic: Short topic name (max 10 words)
- description: What exactly needs to be discussed/decided
- priority: Priority 1-5 (1 = highest)

## Response format (JSON):
`+"```json"+`
[
  {
    "topic": "Topic name",
    "description": "What to discuss, what questions to ask, what to decide",
    "priority": 1
  },
  ...
]
`+"```"+`

Generate 5-15 specific TODO items. Be practical and specific.
Respond ONLY with JSON, no additional text.`, agenda, goalsText, contextText)
}

// AnalyzeTranscriptPrompt asks the backend to reconcile a transcript window
// against the open topics. The expected reply is a JSON object with
// topics_discussed, suggestions and warnings arrays.
func AnalyzeTranscriptPrompt(transcript string, pendingTopics, discussedTopics, goals []string) string {
	pendingText := "- All topics discussed"
	if len(pendingTopics) > 0 {
		pendingText = bulletList(pendingTopics)
	}
	discussedText := "- None"
	if len(discussedTopics) > 0 {
		discussedText = bulletList(discussedTopics)
	}
	goalsText := "- Not specified"
	if len(goals) > 0 {
		goalsText = bulletList(goals)
	}

	return fmt.Sprintf(`You are an assistant analyzing meeting progress in real-time.

## New transcript fragment:
%s

## Topics NOT YET discussed:
%s

## Topics already discussed:
%s

## Meeting goals:
%s

## Task:
Analyze the fragment and determine:
1. Which pending topics were addressed in this fragment
2. What questions are worth asking (follow-up to the discussion)
3. Are there any warnings (e.g., going off-topic, skipping important issues)

## Response format (JSON):
`+"```json"+`
{
  "topics_discussed": [
    {
      "topic": "Topic name from pending list",
      "key_points": ["Main point 1", "Main point 2"],
      "completion": "full|partial"
    }
  ],
  "suggestions": [
    {
      "type": "question|followup|reminder",
      "content": "Suggestion/question content",
      "priority": "low|normal|high",
      "related_todo": "topic_name or null"
    }
  ],
  "warnings": [
    "Warning if something needs attention"
  ]
}
`+"```"+`

Respond ONLY with JSON. Be concise and practical.`, transcript, pendingText, discussedText, goalsText)
}

// maxSummaryTranscript bounds how much transcript the summary prompt carries,
// keeping the request under backend context limits.
const maxSummaryTranscript = 15000

// FinalSummaryPrompt asks the backend for the closing narrative summary.
// The reply is free-form markdown, not JSON.
func FinalSummaryPrompt(transcript string, todos []*TodoItem, goals []string) string {
	var status []string
	for _, todo := range todos {
		marker := "❌"
		if todo.Status == TodoDiscussed {
			marker = "✅"
		}
		status = append(status, fmt.Sprintf("%s %s", marker, todo.Topic))
	}

	goalsText := "- Not specified"
	if len(goals) > 0 {
		goalsText = bulletList(goals)
	}

	return fmt.Sprintf(`You are an assistant creating professional meeting summaries.

## Full meeting transcript:
%s

## Agenda topics status:
%s

## Meeting goals:
%s

## Task:
Create a professional meeting summary containing:

1. **Summary** (3-5 sentences)
2. **Key decisions** (bullet points)
3. **Action items** (who, what, by when)
4. **Open issues** (what needs further discussion)
5. **Next steps**

Be specific and practical. Use Markdown formatting.`,
		truncate(transcript, maxSummaryTranscript),
		strings.Join(status, "\n"),
		goalsText)
}

// SuggestQuestionsPrompt asks for follow-up questions on the topic currently
// under discussion. The reply is a plain list of questions, one per line.
func SuggestQuestionsPrompt(currentTopic, transcriptExcerpt string, goals []string) string {
	goalsText := "- General discussion"
	if len(goals) > 0 {
		goalsText = bulletList(goals)
	}

	return fmt.Sprintf(`Context: Discussion is ongoing about "%s".

Conversation excerpt:
%s

Meeting goals:
%s

Suggest 2-3 specific questions worth asking to:
- Deepen the topic
- Ensure nothing is missed
- Establish specific next steps

Format: List of questions, each on a new line.`, currentTopic, transcriptExcerpt, goalsText)
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
