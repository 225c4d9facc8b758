package observer

import (
	"fmt"

	"github.com/GianlucaGuarini/go-observable"
)

// PollObserver carries every poll state change; the event name is
// derived from the poll id so a listener only wakes up for its poll.
var PollObserver = observable.New()

const (
	EventPollPrefix = "poll-"
)

func PollEvent(pollID string) string {
	return fmt.Sprintf("%s%s", EventPollPrefix, pollID)
}
