package meetingagent

import (
	"sort"
	"sync"
)

// Registry maps meeting identifiers to their owning agents. It is created and
// owned by the hosting application; entries are added when a meeting starts
// and must be removed by the caller once the meeting concludes. The registry
// performs no lifecycle management of its own.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*MeetingAgent
}

// NewRegistry creates an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]*MeetingAgent),
	}
}

// Register records the agent owning the given meeting.
func (r *Registry) Register(meetingID string, agent *MeetingAgent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[meetingID] = agent
}

// Get retrieves the agent for a meeting.
func (r *Registry) Get(meetingID string) (*MeetingAgent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[meetingID]
	return agent, ok
}

// Unregister removes the agent for a meeting. Removing an unknown meeting is
// a no-op.
func (r *Registry) Unregister(meetingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, meetingID)
}

// MeetingIDs lists the registered meetings, sorted.
func (r *Registry) MeetingIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
