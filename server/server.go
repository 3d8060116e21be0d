// Package server exposes the meeting agent over HTTP: REST endpoints drive
// the meeting lifecycle and a WebSocket stream carries live transcript chunks
// in and state updates out.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	meetingagent "github.com/voocel/meetingagent"
	"github.com/voocel/meetingagent/llm"
	"github.com/voocel/meetingagent/store"
)

const maxRequestBytes = 1 << 20

// Config assembles the server's collaborators.
type Config struct {
	Generator        llm.Generator
	Registry         *meetingagent.Registry
	Snapshots        store.SnapshotStore
	AnalysisInterval time.Duration
	Logger           zerolog.Logger
}

// Server hosts meeting agents for remote callers.
type Server struct {
	gen       llm.Generator
	registry  *meetingagent.Registry
	snapshots store.SnapshotStore
	interval  time.Duration
	logger    zerolog.Logger
	upgrader  websocket.Upgrader

	mu   sync.Mutex
	subs map[string]map[chan *meetingagent.AgentState]struct{}
}

// New creates a server. A nil registry gets a fresh one.
func New(config Config) *Server {
	registry := config.Registry
	if registry == nil {
		registry = meetingagent.NewRegistry()
	}
	return &Server{
		gen:       config.Generator,
		registry:  registry,
		snapshots: config.Snapshots,
		interval:  config.AnalysisInterval,
		logger:    config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		subs: make(map[string]map[chan *meetingagent.AgentState]struct{}),
	}
}

// Handler returns the HTTP handler for all meeting endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("POST /v1/meetings/start", s.handleStart)
	mux.HandleFunc("POST /v1/meetings/{id}/transcript", s.handleTranscript)
	mux.HandleFunc("POST /v1/meetings/{id}/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /v1/meetings/{id}/end", s.handleEnd)
	mux.HandleFunc("GET /v1/meetings/{id}/state", s.handleState)
	mux.HandleFunc("GET /v1/meetings/{id}/todos", s.handleTodos)
	mux.HandleFunc("GET /v1/meetings/{id}/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /v1/meetings/{id}/stream", s.handleStream)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"meetings": s.registry.MeetingIDs(),
	})
}

type startRequest struct {
	MeetingID string   `json:"meeting_id"`
	Agenda    string   `json:"agenda"`
	Goals     []string `json:"goals"`
	Context   string   `json:"context"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Agenda == "" {
		writeError(w, http.StatusBadRequest, "agenda is required")
		return
	}
	meetingID := req.MeetingID
	if meetingID == "" {
		meetingID = uuid.NewString()
	}
	if _, exists := s.registry.Get(meetingID); exists {
		writeError(w, http.StatusConflict, fmt.Sprintf("meeting %s already exists", meetingID))
		return
	}

	opts := []meetingagent.Option{
		meetingagent.WithLogger(s.logger),
		meetingagent.WithOnUpdate(func(state *meetingagent.AgentState) {
			s.broadcast(state)
		}),
	}
	if s.interval > 0 {
		opts = append(opts, meetingagent.WithAnalysisInterval(s.interval))
	}
	if s.snapshots != nil {
		opts = append(opts, meetingagent.WithSnapshots(s.snapshots))
	}

	agent := meetingagent.New(s.gen, opts...)
	state, err := agent.StartMeeting(r.Context(), meetingID, req.Agenda, req.Goals, req.Context)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.registry.Register(meetingID, agent)
	s.logger.Info().Str("meeting_id", meetingID).Int("todos", len(state.Todos)).Msg("meeting started")
	writeJSON(w, state)
}

type transcriptRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req transcriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	agent.AddTranscriptChunk(req.Text)
	writeJSON(w, map[string]string{"status": "accepted"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.lookup(w, r)
	if !ok {
		return
	}
	analysis, err := agent.AnalyzeNow(r.Context())
	if err != nil {
		if errors.Is(err, meetingagent.ErrNoActiveMeeting) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, analysis)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	agent, ok := s.lookup(w, r)
	if !ok {
		return
	}
	summary, err := agent.EndMeeting(r.Context())
	if err != nil {
		if errors.Is(err, meetingagent.ErrNoActiveMeeting) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.registry.Unregister(meetingID)
	s.closeSubscribers(meetingID)
	s.logger.Info().Str("meeting_id", meetingID).Msg("meeting ended")
	writeJSON(w, summary)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, agent.GetState())
}

func (s *Server) handleTodos(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.lookup(w, r)
	if !ok {
		return
	}
	todos := agent.GetPendingTodos()
	if todos == nil {
		todos = []meetingagent.TodoItem{}
	}
	writeJSON(w, todos)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.lookup(w, r)
	if !ok {
		return
	}
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	suggestions := agent.GetRecentSuggestions(limit)
	if suggestions == nil {
		suggestions = []meetingagent.Suggestion{}
	}
	writeJSON(w, suggestions)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*meetingagent.MeetingAgent, bool) {
	meetingID := r.PathValue("id")
	agent, ok := s.registry.Get(meetingID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("meeting %s not found", meetingID))
		return nil, false
	}
	return agent, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
