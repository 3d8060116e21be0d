package meetingagent

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/voocel/meetingagent/store"
)

// Option configures a MeetingAgent.
type Option func(*MeetingAgent)

// WithAnalysisInterval sets how often the background cycle looks for new
// transcript content.
func WithAnalysisInterval(interval time.Duration) Option {
	return func(a *MeetingAgent) {
		if interval > 0 {
			a.interval = interval
		}
	}
}

// WithOnUpdate registers a callback invoked synchronously with a state
// snapshot after each state-mutating operation.
func WithOnUpdate(fn UpdateFunc) Option {
	return func(a *MeetingAgent) {
		a.onUpdate = fn
	}
}

// WithSnapshots persists a state snapshot to the given store after each
// update, keyed by meeting ID.
func WithSnapshots(s store.SnapshotStore) Option {
	return func(a *MeetingAgent) {
		a.snapshots = s
	}
}

// WithLogger sets the agent's logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *MeetingAgent) {
		a.logger = logger
	}
}
