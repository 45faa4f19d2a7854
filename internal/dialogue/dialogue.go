// Package dialogue implements the registration conversation as an explicit
// finite state machine, independent of the chat transport.
package dialogue

import "sync"

// State of a single conversation.
type State int

const (
	// StateStart is the idle state; only /start begins a registration.
	StateStart State = iota
	// StateAwaitingName waits for the subject's display name.
	StateAwaitingName
)

// Event classifies one inbound conversational message.
type Event int

const (
	// EventStart is the "begin registration" command.
	EventStart Event = iota
	// EventCancel aborts the conversation from any state.
	EventCancel
	// EventHelp requests usage text without changing state.
	EventHelp
	// EventText is a plain, non-command text message.
	EventText
	// EventUnsupported is anything else (stickers, photos, empty input).
	EventUnsupported
)

// Action is what the transport must do after a transition.
type Action int

const (
	// ActionNone: no reply.
	ActionNone Action = iota
	// ActionPromptName: ask for the subject's display name.
	ActionPromptName
	// ActionRegister: create the subject from the received name.
	ActionRegister
	// ActionCancel: acknowledge cancellation.
	ActionCancel
	// ActionHelp: send the static help text.
	ActionHelp
	// ActionUnhandled: tell the user the message could not be handled.
	ActionUnhandled
)

// Transition is the pure state-transition function of the registration
// dialogue. Cancel and help are global; everything unmatched is unhandled
// and leaves the state alone.
func Transition(s State, e Event) (State, Action) {
	switch e {
	case EventCancel:
		return StateStart, ActionCancel
	case EventHelp:
		return s, ActionHelp
	}

	switch s {
	case StateStart:
		if e == EventStart {
			return StateAwaitingName, ActionPromptName
		}
	case StateAwaitingName:
		if e == EventText {
			return StateStart, ActionRegister
		}
	}
	return s, ActionUnhandled
}

// Sessions holds per-conversation dialogue state, keyed by chat id.
// In-memory only: an in-progress registration does not survive a restart
// and must be started over by the user.
type Sessions struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewSessions creates an empty session table.
func NewSessions() *Sessions {
	return &Sessions{states: make(map[int64]State)}
}

// Step applies one event to the chat's conversation under the session lock,
// so concurrent updates for the same chat cannot interleave, and returns the
// action the transport should perform. Completed or cancelled conversations
// are dropped from the table.
func (s *Sessions) Step(chatID int64, e Event) Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, action := Transition(s.states[chatID], e)
	if next == StateStart {
		delete(s.states, chatID)
	} else {
		s.states[chatID] = next
	}
	return action
}

// Current returns the chat's state (StateStart when no session exists).
func (s *Sessions) Current(chatID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[chatID]
}
