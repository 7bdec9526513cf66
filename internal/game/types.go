// internal/game/types.go
//
// Core type definitions for the solo game engine.
// Defines:
//   - LetterResult: per-letter classification of a guess (exact/present/absent).
//   - Status: lifecycle of a single game (in progress → won | lost).
//   - Signal: what a call to the machine produced, for the rendering layer.
//   - Message: user-facing banner text with its dismissal policy.

package game

import (
	"fmt"
	"time"
)

// Default board dimensions.
const (
	WordLength  = 5
	MaxAttempts = 6
)

// AutoDismiss is how long a transient message stays on screen.
const AutoDismiss = 2 * time.Second

// LetterResult represents the evaluation of a single letter in a guess.
// Values are ordered by rank so hints can be compared with <.
type LetterResult int

const (
	Absent LetterResult = iota
	Present
	Exact
)

func (r LetterResult) String() string {
	switch r {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Exact:
		return "exact"
	}
	return fmt.Sprintf("LetterResult(%d)", int(r))
}

// MarshalText encodes the result as its lowercase name.
func (r LetterResult) MarshalText() ([]byte, error) {
	switch r {
	case Absent, Present, Exact:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("game: unknown letter result %d", int(r))
}

// UnmarshalText decodes "absent", "present" or "exact".
func (r *LetterResult) UnmarshalText(b []byte) error {
	switch string(b) {
	case "absent":
		*r = Absent
	case "present":
		*r = Present
	case "exact":
		*r = Exact
	default:
		return fmt.Errorf("game: unknown letter result %q", string(b))
	}
	return nil
}

// Status is the coarse state of a game. Won and Lost are terminal.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Terminal reports whether no further guesses are accepted.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Signal tells the rendering layer what happened.
type Signal string

const (
	SignalTyped                 Signal = "typed"
	SignalDeleted               Signal = "deleted"
	SignalIgnored               Signal = "ignored"
	SignalContinue              Signal = "continue"
	SignalWin                   Signal = "win"
	SignalLoss                  Signal = "loss"
	SignalInvalidLength         Signal = "invalid_length"
	SignalInvalidWord           Signal = "invalid_word"
	SignalValidationUnavailable Signal = "validation_unavailable"
	SignalNotReady              Signal = "not_ready"
	SignalGameOver              Signal = "game_over"
	SignalBusy                  Signal = "busy"
	SignalStale                 Signal = "stale"
	SignalProviderFailure       Signal = "provider_failure"
)

// Message is a banner for the player.
// Persistent messages stay until the next game; others vanish after AutoDismiss.
type Message struct {
	Text       string `json:"text"`
	Persistent bool   `json:"persistent"`
}

// TTL returns how long the message should be shown; zero means forever.
func (m Message) TTL() time.Duration {
	if m.Persistent {
		return 0
	}
	return AutoDismiss
}

// Row is one accepted guess with its per-letter results.
type Row struct {
	Guess   string         `json:"guess"`
	Results []LetterResult `json:"results"`
}

// Outcome is the result of a single HandleInput or SubmitGuess call.
type Outcome struct {
	Signal  Signal         `json:"signal"`
	Results []LetterResult `json:"results,omitempty"` // set for accepted guesses
	Answer  string         `json:"answer,omitempty"`  // revealed on win or loss
	Attempt int            `json:"attempt"`
	Row     string         `json:"row"` // current input row after the call
	Hints   KeyHints       `json:"hints,omitempty"`
	Message *Message       `json:"message,omitempty"`
}

// Snapshot is a read-only copy of the machine's state for rendering.
type Snapshot struct {
	Generation  uint64   `json:"generation"`
	Ready       bool     `json:"ready"`
	Failed      bool     `json:"failed"`
	InFlight    bool     `json:"inFlight"`
	Status      Status   `json:"status"`
	Attempt     int      `json:"attempt"`
	MaxAttempts int      `json:"maxAttempts"`
	WordLength  int      `json:"wordLength"`
	Row         string   `json:"row"`
	Rows        []Row    `json:"rows"`
	Hints       KeyHints `json:"hints"`
	Message     *Message `json:"message,omitempty"`
	Answer      string   `json:"answer,omitempty"` // only once terminal
}
