package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	meetingagent "github.com/voocel/meetingagent"
)

const (
	writeTimeout = 10 * time.Second

	// subscriberBuffer bounds how many state updates queue per client; a
	// consumer that falls further behind skips to newer snapshots, which is
	// fine because every snapshot carries the full state.
	subscriberBuffer = 16
)

// handleStream upgrades to a WebSocket on which inbound text frames are
// transcript chunks and outbound frames are JSON state snapshots, one per
// state-mutating operation.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	agent, ok := s.registry.Get(meetingID)
	if !ok {
		writeError(w, http.StatusNotFound, "meeting not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("meeting_id", meetingID).Msg("websocket upgrade failed")
		return
	}

	updates := s.subscribe(meetingID)
	defer s.unsubscribe(meetingID, updates)
	defer conn.Close()

	// Reader: every text frame is one transcript chunk.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if len(message) > 0 {
				agent.AddTranscriptChunk(string(message))
			}
		}
	}()

	// Writer: forward state snapshots until the meeting ends or the client
	// goes away.
	for {
		select {
		case state, open := <-updates:
			if !open {
				deadline := time.Now().Add(writeTimeout)
				message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "meeting ended")
				_ = conn.WriteControl(websocket.CloseMessage, message, deadline)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}

func (s *Server) subscribe(meetingID string) chan *meetingagent.AgentState {
	ch := make(chan *meetingagent.AgentState, subscriberBuffer)
	s.mu.Lock()
	if s.subs[meetingID] == nil {
		s.subs[meetingID] = make(map[chan *meetingagent.AgentState]struct{})
	}
	s.subs[meetingID][ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(meetingID string, ch chan *meetingagent.AgentState) {
	s.mu.Lock()
	if set, ok := s.subs[meetingID]; ok {
		if _, still := set[ch]; still {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(s.subs, meetingID)
		}
	}
	s.mu.Unlock()
}

// broadcast fans a state snapshot out to every stream subscribed to its
// meeting. Full subscriber queues are drained from the front so clients
// converge on the latest snapshot.
func (s *Server) broadcast(state *meetingagent.AgentState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs[state.MeetingID] {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// closeSubscribers ends all streams for a meeting once it is over.
func (s *Server) closeSubscribers(meetingID string) {
	s.mu.Lock()
	for ch := range s.subs[meetingID] {
		close(ch)
	}
	delete(s.subs, meetingID)
	s.mu.Unlock()
}
