package meetingagent

import "errors"

var (
	// ErrNoActiveMeeting is returned when an ingestion-dependent or
	// analysis operation is called before StartMeeting or after EndMeeting.
	ErrNoActiveMeeting = errors.New("no active meeting")

	// ErrMeetingAlreadyStarted is returned when StartMeeting is called a
	// second time on the same agent instance.
	ErrMeetingAlreadyStarted = errors.New("meeting already started")
)
