// internal/game/engine.go
//
// Game state machine for a single solo session.
// Responsibilities:
//   - Acquire the target word once per generation (Load / Start / Fail).
//   - Funnel every input source through HandleInput (letters, delete, enter).
//   - Validate and apply guesses (length, dictionary lookup, scoring).
//   - Track state transitions: in_progress → won | lost.
//
// Notes:
//   - The dictionary lookup runs outside the lock; the inFlight flag rejects
//     a second guess until it returns.
//   - Restart bumps the generation. Anything that completes for an older
//     generation is discarded with ErrStale.
package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Provider supplies the target word.
type Provider interface {
	RandomWord(ctx context.Context, length int) (string, error)
}

// Validator reports whether a word is recognized.
// A false result with a nil error means "not a word"; any error means the
// lookup itself failed.
type Validator interface {
	IsWord(ctx context.Context, word string) (bool, error)
}

// Policy decides what happens when the Validator errors.
type Policy string

const (
	PolicyBlock Policy = "block" // reject the guess, attempt not consumed
	PolicyAllow Policy = "allow" // accept the guess as if it were valid
)

// Config holds the board dimensions and validation policy.
type Config struct {
	WordLength  int
	MaxAttempts int
	Policy      Policy
}

// DefaultConfig returns a 6x5 board that blocks on lookup errors.
func DefaultConfig() Config {
	return Config{WordLength: WordLength, MaxAttempts: MaxAttempts, Policy: PolicyBlock}
}

// Machine owns one GameState and its KeyHints.
type Machine struct {
	mu        sync.Mutex
	cfg       Config
	validator Validator
	now       func() time.Time

	gen     uint64
	target  string
	ready   bool
	loadErr error

	status   Status
	attempt  int
	row      []byte
	rows     []Row
	hints    KeyHints
	inFlight bool

	msg   *Message
	msgAt time.Time
}

// New constructs a machine waiting for its target word.
// A nil Validator accepts every well-formed guess.
func New(cfg Config, v Validator) *Machine {
	def := DefaultConfig()
	if cfg.WordLength <= 0 {
		cfg.WordLength = def.WordLength
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	m := &Machine{cfg: cfg, validator: v, now: time.Now}
	m.resetLocked()
	m.gen = 1
	return m
}

// Config returns the machine's configuration.
func (m *Machine) Config() Config { return m.cfg }

// Generation returns the current session token.
func (m *Machine) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// Load fetches the target word for the current generation.
// It blocks for the duration of the fetch; callers usually run it in a goroutine.
func (m *Machine) Load(ctx context.Context, p Provider) error {
	gen := m.Generation()
	word, err := p.RandomWord(ctx, m.cfg.WordLength)
	if err != nil {
		return m.Fail(gen, err)
	}
	return m.Start(gen, word)
}

// Start installs word as the target for generation gen.
// A malformed word puts the machine in the failed state.
func (m *Machine) Start(gen uint64, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return ErrStale
	}
	if m.ready || m.loadErr != nil {
		return fmt.Errorf("game: target for generation %d already resolved", gen)
	}
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) != m.cfg.WordLength || !isAlpha(w) {
		return m.failLocked(fmt.Errorf("malformed target word %q", word))
	}
	m.target = w
	m.ready = true
	return nil
}

// Fail records that the target could not be obtained for generation gen.
// The game stays unplayable until Restart.
func (m *Machine) Fail(gen uint64, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return ErrStale
	}
	return m.failLocked(cause)
}

func (m *Machine) failLocked(cause error) error {
	m.loadErr = cause
	m.setMessageLocked(messageFor(SignalProviderFailure, ""))
	return fmt.Errorf("%w: %w", ErrProviderFailure, cause)
}

// Restart discards the current game and returns the new generation.
// The caller must Load a target for it.
func (m *Machine) Restart() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.resetLocked()
	return m.gen
}

func (m *Machine) resetLocked() {
	m.target = ""
	m.ready = false
	m.loadErr = nil
	m.status = StatusInProgress
	m.attempt = 0
	m.row = make([]byte, 0, m.cfg.WordLength)
	m.rows = nil
	m.hints = KeyHints{}
	m.inFlight = false
	m.msg = nil
}

// HandleInput is the single entry point for keyboard-like input.
// Accepted keys: one ASCII letter, "Backspace"/"Delete", "Enter".
func (m *Machine) HandleInput(ctx context.Context, key string) (Outcome, error) {
	action, letter := classifyKey(key)
	if action == keySubmit {
		m.mu.Lock()
		row := string(m.row)
		m.mu.Unlock()
		return m.SubmitGuess(ctx, row)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if action == keyIgnored {
		return m.outcomeLocked(SignalIgnored), nil
	}
	if err := m.gateLocked(); err != nil {
		return m.rejectLocked(err), err
	}
	switch action {
	case keyLetter:
		if len(m.row) >= m.cfg.WordLength {
			return m.outcomeLocked(SignalIgnored), nil
		}
		m.row = append(m.row, letter)
		return m.outcomeLocked(SignalTyped), nil
	case keyDelete:
		if len(m.row) == 0 {
			return m.outcomeLocked(SignalIgnored), nil
		}
		m.row = m.row[:len(m.row)-1]
		return m.outcomeLocked(SignalDeleted), nil
	}
	return m.outcomeLocked(SignalIgnored), nil
}

// SubmitGuess validates raw, scores it and advances the game.
// Rejections leave the attempt counter untouched and return one of the
// package's sentinel errors alongside an Outcome describing it.
func (m *Machine) SubmitGuess(ctx context.Context, raw string) (Outcome, error) {
	m.mu.Lock()
	if err := m.gateLocked(); err != nil {
		out := m.rejectLocked(err)
		m.mu.Unlock()
		return out, err
	}
	guess := strings.ToLower(strings.TrimSpace(raw))
	var reject error
	switch {
	case utf8.RuneCountInString(guess) != m.cfg.WordLength:
		reject = ErrInvalidLength
	case !isAlpha(guess):
		reject = ErrInvalidWord
	}
	if reject != nil {
		out := m.rejectLocked(reject)
		m.mu.Unlock()
		return out, reject
	}
	gen := m.gen
	m.inFlight = true
	v := m.validator
	m.mu.Unlock()

	ok, verr := true, error(nil)
	if v != nil {
		ok, verr = v.IsWord(ctx, guess)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return Outcome{Signal: SignalStale}, ErrStale
	}
	m.inFlight = false
	switch {
	case verr != nil && m.cfg.Policy != PolicyAllow:
		err := fmt.Errorf("%w: %w", ErrValidationUnavailable, verr)
		return m.rejectLocked(err), err
	case verr == nil && !ok:
		return m.rejectLocked(ErrInvalidWord), ErrInvalidWord
	}
	return m.applyLocked(guess), nil
}

// applyLocked scores an accepted guess and performs the state transition.
func (m *Machine) applyLocked(guess string) Outcome {
	results := Evaluate(m.target, guess)
	m.hints.Merge(guess, results)
	m.rows = append(m.rows, Row{Guess: guess, Results: results})
	m.row = m.row[:0]

	var sig Signal
	switch {
	case guess == m.target:
		m.status = StatusWon
		sig = SignalWin
	case m.attempt == m.cfg.MaxAttempts-1:
		m.status = StatusLost
		sig = SignalLoss
	default:
		m.attempt++
		m.msg = nil
		sig = SignalContinue
	}
	if msg := messageFor(sig, m.target); msg != nil {
		m.setMessageLocked(msg)
	}

	out := m.outcomeLocked(sig)
	out.Results = append([]LetterResult(nil), results...)
	out.Hints = m.hints.Clone()
	if m.status.Terminal() {
		out.Answer = m.target
	}
	return out
}

// gateLocked rejects input the machine cannot take right now.
func (m *Machine) gateLocked() error {
	switch {
	case m.loadErr != nil:
		return ErrProviderFailure
	case !m.ready:
		return ErrNotReady
	case m.status.Terminal():
		return ErrGameOver
	case m.inFlight:
		return ErrBusy
	}
	return nil
}

func (m *Machine) rejectLocked(err error) Outcome {
	sig := SignalOf(err)
	out := m.outcomeLocked(sig)
	if sig == SignalProviderFailure {
		out.Message = m.currentMessageLocked()
		return out
	}
	if msg := messageFor(sig, ""); msg != nil {
		m.setMessageLocked(msg)
		cp := *msg
		out.Message = &cp
	}
	return out
}

func (m *Machine) outcomeLocked(sig Signal) Outcome {
	out := Outcome{Signal: sig, Attempt: m.attempt, Row: string(m.row)}
	if sig == SignalWin || sig == SignalLoss {
		out.Message = m.currentMessageLocked()
	}
	return out
}

func (m *Machine) setMessageLocked(msg *Message) {
	m.msg = msg
	m.msgAt = m.now()
}

// currentMessageLocked returns a copy of the banner if it is still visible.
func (m *Machine) currentMessageLocked() *Message {
	if m.msg == nil {
		return nil
	}
	if ttl := m.msg.TTL(); ttl > 0 && m.now().Sub(m.msgAt) >= ttl {
		return nil
	}
	cp := *m.msg
	return &cp
}

// Snapshot returns a copy of the state for rendering.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = Row{Guess: r.Guess, Results: append([]LetterResult(nil), r.Results...)}
	}
	s := Snapshot{
		Generation:  m.gen,
		Ready:       m.ready,
		Failed:      m.loadErr != nil,
		InFlight:    m.inFlight,
		Status:      m.status,
		Attempt:     m.attempt,
		MaxAttempts: m.cfg.MaxAttempts,
		WordLength:  m.cfg.WordLength,
		Row:         string(m.row),
		Rows:        rows,
		Hints:       m.hints.Clone(),
		Message:     m.currentMessageLocked(),
	}
	if m.status.Terminal() {
		s.Answer = m.target
	}
	return s
}

type keyAction int

const (
	keyIgnored keyAction = iota
	keyLetter
	keyDelete
	keySubmit
)

// classifyKey normalizes the key names sent by browsers and text proxies.
func classifyKey(key string) (keyAction, byte) {
	switch strings.ToLower(key) {
	case "enter", "return", "\n", "\r":
		return keySubmit, 0
	case "backspace", "delete", "del":
		return keyDelete, 0
	}
	if len(key) == 1 {
		c := key[0]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 'a' && c <= 'z' {
			return keyLetter, c
		}
	}
	return keyIgnored, 0
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}
