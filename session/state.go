package session

import "fmt"

// State of the controller for the currently loaded file.
type State int

const (
	Idle State = iota
	Loaded
	Accepted
	Rejected
	Capturing
	Uploading
	Succeeded
	Failed
)

var stateNames = [...]string{
	Idle:      "idle",
	Loaded:    "loaded",
	Accepted:  "accepted",
	Rejected:  "rejected",
	Capturing: "capturing",
	Uploading: "uploading",
	Succeeded: "succeeded",
	Failed:    "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// CanSubmit reports whether a submission may start from s. After a failed
// upload the controller is back in Accepted, so a retry goes through here too.
func (s State) CanSubmit() bool {
	return s == Accepted
}
