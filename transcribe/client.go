package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModel   = "scribe_v2"
	maxSpeakers    = 32
	maxKeyterms    = 100
)

// Config carries ElevenLabs API settings.
type Config struct {
	APIKey            string
	BaseURL           string
	ModelID           string
	DefaultLanguage   string // empty = auto-detect
	EnableDiarization bool
	MaxSpeakers       int
	TagAudioEvents    bool
}

// DefaultConfig returns settings matching a typical meeting recording:
// diarization on, up to ten speakers, audio events tagged.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:            apiKey,
		BaseURL:           defaultBaseURL,
		ModelID:           defaultModel,
		EnableDiarization: true,
		MaxSpeakers:       10,
		TagAudioEvents:    true,
	}
}

// Client calls the ElevenLabs speech-to-text API and prices each job.
type Client struct {
	config     Config
	httpClient *http.Client
	costs      *CostCalculator
}

// NewClient creates a transcription client. costs may be nil, in which case
// jobs are priced at the default rate without history logging.
func NewClient(config Config, costs *CostCalculator) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("transcribe: API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.ModelID == "" {
		config.ModelID = defaultModel
	}
	if costs == nil {
		costs = NewCostCalculator(DefaultPricePerHour, "")
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		costs:      costs,
	}, nil
}

type apiWord struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Type      string  `json:"type"`
	SpeakerID string  `json:"speaker_id"`
}

type apiResponse struct {
	LanguageCode string    `json:"language_code"`
	Text         string    `json:"text"`
	Words        []apiWord `json:"words"`
}

// Transcribe uploads the audio file and returns the diarized transcript with
// its cost. The job is logged to the cost history on success.
func (c *Client) Transcribe(ctx context.Context, req Request) (*Result, error) {
	file, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	fields := map[string]string{
		"model_id":         c.config.ModelID,
		"diarize":          strconv.FormatBool(c.config.EnableDiarization),
		"tag_audio_events": strconv.FormatBool(c.config.TagAudioEvents),
	}
	language := req.Language
	if language == "" {
		language = c.config.DefaultLanguage
	}
	if language != "" {
		fields["language_code"] = language
	}
	speakers := req.NumSpeakers
	if speakers == 0 {
		speakers = c.config.MaxSpeakers
	}
	if speakers > 0 {
		if speakers > maxSpeakers {
			speakers = maxSpeakers
		}
		fields["num_speakers"] = strconv.Itoa(speakers)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	keyterms := req.CustomVocabulary
	if len(keyterms) > maxKeyterms {
		keyterms = keyterms[:maxKeyterms]
	}
	for _, term := range keyterms {
		if err := writer.WriteField("keyterms", term); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("xi-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed with status %d: %s", resp.StatusCode, body)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	result := buildResult(parsed, c.config.ModelID)
	result.CostUSD = c.costs.Calculate(result.DurationSeconds)
	if err := c.costs.Log(result.DurationSeconds, result.CostUSD, req.MeetingID, filepath.Base(req.AudioPath)); err != nil {
		return nil, fmt.Errorf("failed to log transcription cost: %w", err)
	}
	return result, nil
}

// buildResult converts the raw API shape into a Result, deriving the speaker
// list, the labeled transcript, and the audio duration from word timings.
func buildResult(parsed apiResponse, model string) *Result {
	result := &Result{
		Text:      parsed.Text,
		Language:  parsed.LanguageCode,
		Model:     model,
		CreatedAt: time.Now(),
	}

	seen := make(map[string]bool)
	var formatted strings.Builder
	currentSpeaker := ""
	for _, word := range parsed.Words {
		if word.Type == "audio_event" {
			continue
		}
		result.Words = append(result.Words, Word{
			Text:    word.Text,
			Start:   word.Start,
			End:     word.End,
			Speaker: word.SpeakerID,
		})
		if word.End > result.DurationSeconds {
			result.DurationSeconds = word.End
		}
		if word.SpeakerID != "" && !seen[word.SpeakerID] {
			seen[word.SpeakerID] = true
			result.Speakers = append(result.Speakers, Speaker{ID: word.SpeakerID, Name: "Unknown"})
		}
		if word.SpeakerID != currentSpeaker && word.SpeakerID != "" {
			if formatted.Len() > 0 {
				formatted.WriteString("\n")
			}
			formatted.WriteString(word.SpeakerID + ":")
			currentSpeaker = word.SpeakerID
		}
		if word.Type == "word" || word.Type == "" {
			formatted.WriteString(" " + strings.TrimSpace(word.Text))
		}
	}
	result.FormattedText = formatted.String()
	if result.FormattedText == "" {
		result.FormattedText = parsed.Text
	}
	return result
}
