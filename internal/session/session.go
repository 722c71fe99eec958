package session

import (
	"errors"
	"time"
)

// Role identifies the speaker of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrInvalidState is returned when an operation requires an active,
// non-empty session and there is none.
var ErrInvalidState = errors.New("session: invalid session state")

// ErrEmptyTurn is returned when a turn append is missing its role or text.
var ErrEmptyTurn = errors.New("session: missing role or text")

// ErrTurnInProgress is returned when a second turn is started while one
// is still being processed. Turns of a session are strictly ordered.
var ErrTurnInProgress = errors.New("session: another turn is in progress")

// InterviewConfig is the immutable-per-session interview selection.
type InterviewConfig struct {
	ID          string
	Title       string
	Type        string
	JobRole     string
	Difficulty  string
	KeySkills   []string
	Duration    string
	Description string
}

// TurnRecord is one entry of the transcript ledger. Records are appended
// in dialogue order and never mutated.
type TurnRecord struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

// TurnEvent is the wire form of a ledger append, pushed to event
// feed subscribers.
type TurnEvent struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
