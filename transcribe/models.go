// Package transcribe wraps the ElevenLabs speech-to-text API used to feed the
// meeting agent its transcript chunks, and tracks what the transcription
// spend adds up to.
package transcribe

import "time"

// Word is a single recognized word with timing.
type Word struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"` // seconds
	End        float64 `json:"end"`
	Speaker    string  `json:"speaker,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Speaker identifies one diarized voice.
type Speaker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result is a complete transcription of one audio file.
type Result struct {
	Text            string    `json:"text"`
	FormattedText   string    `json:"formatted_text"` // text with speaker labels
	Words           []Word    `json:"words"`
	Speakers        []Speaker `json:"speakers"`
	Language        string    `json:"language,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	CostUSD         float64   `json:"cost_usd"`
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
}

// Request describes one transcription job.
type Request struct {
	AudioPath        string   `json:"audio_path"`
	Language         string   `json:"language,omitempty"` // empty = auto-detect
	NumSpeakers      int      `json:"num_speakers,omitempty"`
	CustomVocabulary []string `json:"custom_vocabulary,omitempty"`
	MeetingID        string   `json:"meeting_id,omitempty"`
}
