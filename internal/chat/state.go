package chat

import "fmt"

type State int

const (
	StateIdle State = iota
	StateAwaitingResume
	StateSearching
	StateResultsShown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResume:
		return "awaiting_resume"
	case StateSearching:
		return "searching"
	case StateResultsShown:
		return "results_shown"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type trigger int

const (
	triggerText trigger = iota
	triggerUpload
)

// reaction is what the controller does with a trigger in a given state.
type reaction int

const (
	reactReject reaction = iota
	reactStartFlow
	reactParse
	reactHint
)

// react is the transition table. Every state has to answer every trigger.
func (s State) react(t trigger) (reaction, error) {
	switch s {
	case StateIdle:
		switch t {
		case triggerText:
			return reactStartFlow, nil
		case triggerUpload:
			return reactReject, ErrUnexpectedUpload
		}
	case StateAwaitingResume:
		switch t {
		case triggerText:
			return reactHint, nil
		case triggerUpload:
			return reactParse, nil
		}
	case StateSearching, StateResultsShown:
		switch t {
		case triggerText:
			return reactHint, nil
		case triggerUpload:
			return reactReject, ErrUnexpectedUpload
		}
	}

	return reactReject, fmt.Errorf("%w: %s", ErrInvalidState, s)
}
