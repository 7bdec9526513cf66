package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type validatorFunc func(ctx context.Context, word string) (bool, error)

func (f validatorFunc) IsWord(ctx context.Context, word string) (bool, error) { return f(ctx, word) }

type providerFunc func(ctx context.Context, length int) (string, error)

func (f providerFunc) RandomWord(ctx context.Context, length int) (string, error) {
	return f(ctx, length)
}

// gateValidator blocks every lookup until release is closed.
type gateValidator struct {
	entered chan string
	release chan struct{}
}

func newGateValidator() *gateValidator {
	return &gateValidator{entered: make(chan string, 1), release: make(chan struct{})}
}

func (g *gateValidator) IsWord(ctx context.Context, word string) (bool, error) {
	g.entered <- word
	<-g.release
	return true, nil
}

func newReady(t *testing.T, target string, v Validator) *Machine {
	t.Helper()
	m := New(DefaultConfig(), v)
	require.NoError(t, m.Start(m.Generation(), target))
	return m
}

func submitAll(t *testing.T, m *Machine, guesses ...string) Outcome {
	t.Helper()
	var out Outcome
	for _, g := range guesses {
		var err error
		out, err = m.SubmitGuess(context.Background(), g)
		require.NoError(t, err, "guess %q", g)
	}
	return out
}

func TestSubmitGuess_NotReady(t *testing.T) {
	m := New(DefaultConfig(), nil)
	before := m.Snapshot()

	out, err := m.SubmitGuess(context.Background(), "crane")
	require.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, SignalNotReady, out.Signal)
	assert.Nil(t, out.Message)
	assert.Equal(t, before, m.Snapshot())

	_, err = m.HandleInput(context.Background(), "c")
	require.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, "", m.Snapshot().Row)
}

func TestSubmitGuess_WinFirstTry(t *testing.T) {
	m := newReady(t, "crane", nil)

	out := submitAll(t, m, "CRANE")
	assert.Equal(t, SignalWin, out.Signal)
	assert.Equal(t, "crane", out.Answer)
	assert.Equal(t, []LetterResult{Exact, Exact, Exact, Exact, Exact}, out.Results)
	require.NotNil(t, out.Message)
	assert.True(t, out.Message.Persistent)
	assert.Equal(t, "🎉 Yay! You guessed it right!", out.Message.Text)

	snap := m.Snapshot()
	assert.Equal(t, StatusWon, snap.Status)
	assert.Equal(t, 0, snap.Attempt)
	assert.Equal(t, "crane", snap.Answer)
}

func TestSubmitGuess_WinOnLastAttempt(t *testing.T) {
	m := newReady(t, "crane", nil)
	out := submitAll(t, m, "pithy", "pithy", "pithy", "pithy", "pithy")
	assert.Equal(t, SignalContinue, out.Signal)
	assert.Equal(t, 5, out.Attempt)

	out = submitAll(t, m, "crane")
	assert.Equal(t, SignalWin, out.Signal)
	assert.Equal(t, StatusWon, m.Snapshot().Status)
}

func TestSubmitGuess_LossOnLastAttempt(t *testing.T) {
	m := newReady(t, "crane", nil)
	out := submitAll(t, m, "crate", "crate", "crate", "crate", "crate", "crate")

	assert.Equal(t, SignalLoss, out.Signal)
	assert.Equal(t, "crane", out.Answer)
	require.NotNil(t, out.Message)
	assert.Equal(t, "😢 Try again! Word was: CRANE", out.Message.Text)
	assert.True(t, out.Message.Persistent)

	snap := m.Snapshot()
	assert.Equal(t, StatusLost, snap.Status)
	assert.Equal(t, MaxAttempts-1, snap.Attempt)
	assert.Len(t, snap.Rows, MaxAttempts)
}

func TestSubmitGuess_GameOverIsNoop(t *testing.T) {
	m := newReady(t, "crane", nil)
	submitAll(t, m, "crane")
	before := m.Snapshot()

	out, err := m.SubmitGuess(context.Background(), "pithy")
	require.ErrorIs(t, err, ErrGameOver)
	assert.Equal(t, SignalGameOver, out.Signal)

	_, err = m.HandleInput(context.Background(), "a")
	require.ErrorIs(t, err, ErrGameOver)
	assert.Equal(t, before, m.Snapshot())
}

func TestSubmitGuess_InvalidLength(t *testing.T) {
	m := newReady(t, "crane", nil)

	for _, g := range []string{"", "cran", "cranes"} {
		out, err := m.SubmitGuess(context.Background(), g)
		require.ErrorIs(t, err, ErrInvalidLength, "guess %q", g)
		assert.Equal(t, SignalInvalidLength, out.Signal)
		require.NotNil(t, out.Message)
		assert.Equal(t, "Invalid word!", out.Message.Text)
		assert.False(t, out.Message.Persistent)
	}
	snap := m.Snapshot()
	assert.Equal(t, 0, snap.Attempt)
	assert.Empty(t, snap.Rows)
}

func TestSubmitGuess_InvalidWord(t *testing.T) {
	calls := 0
	m := newReady(t, "crane", validatorFunc(func(ctx context.Context, w string) (bool, error) {
		calls++
		return w != "qzxjk", nil
	}))

	out, err := m.SubmitGuess(context.Background(), "qzxjk")
	require.ErrorIs(t, err, ErrInvalidWord)
	assert.Equal(t, SignalInvalidWord, out.Signal)
	assert.Equal(t, "Not a valid word!", out.Message.Text)
	assert.Equal(t, 0, m.Snapshot().Attempt)

	// non-letters never reach the dictionary
	_, err = m.SubmitGuess(context.Background(), "cr4ne")
	require.ErrorIs(t, err, ErrInvalidWord)
	assert.Equal(t, 1, calls)
}

func TestSubmitGuess_ValidationUnavailableBlocks(t *testing.T) {
	down := true
	m := newReady(t, "crane", validatorFunc(func(ctx context.Context, w string) (bool, error) {
		if down {
			return false, errors.New("dial tcp: connection refused")
		}
		return true, nil
	}))

	out, err := m.SubmitGuess(context.Background(), "pithy")
	require.ErrorIs(t, err, ErrValidationUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, SignalValidationUnavailable, out.Signal)
	assert.Equal(t, "Error validating word!", out.Message.Text)
	assert.Equal(t, 0, m.Snapshot().Attempt)
	assert.False(t, m.Snapshot().InFlight)

	down = false
	out = submitAll(t, m, "pithy")
	assert.Equal(t, SignalContinue, out.Signal)
	assert.Equal(t, 1, out.Attempt)
}

func TestSubmitGuess_ValidationUnavailableAllowPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = PolicyAllow
	m := New(cfg, validatorFunc(func(ctx context.Context, w string) (bool, error) {
		return false, errors.New("timeout")
	}))
	require.NoError(t, m.Start(m.Generation(), "crane"))

	out := submitAll(t, m, "crane")
	assert.Equal(t, SignalWin, out.Signal)
}

func TestSubmitGuess_HintsNeverDowngrade(t *testing.T) {
	m := newReady(t, "crane", nil)
	submitAll(t, m, "crate")
	out := submitAll(t, m, "acorn")

	assert.Equal(t, []LetterResult{Present, Present, Absent, Present, Present}, out.Results)
	for _, l := range []byte("cra") {
		r, ok := out.Hints.Get(l)
		require.True(t, ok)
		assert.Equal(t, Exact, r, "letter %c", l)
	}
	r, _ := out.Hints.Get('t')
	assert.Equal(t, Absent, r)
	r, _ = out.Hints.Get('n')
	assert.Equal(t, Present, r)
}

func TestHandleInput_RowEditing(t *testing.T) {
	ctx := context.Background()
	m := newReady(t, "crane", nil)

	for _, k := range []string{"P", "i", "t"} {
		out, err := m.HandleInput(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, SignalTyped, out.Signal)
	}
	assert.Equal(t, "pit", m.Snapshot().Row)

	out, err := m.HandleInput(ctx, "Backspace")
	require.NoError(t, err)
	assert.Equal(t, SignalDeleted, out.Signal)
	assert.Equal(t, "pi", out.Row)

	out, err = m.HandleInput(ctx, "Shift")
	require.NoError(t, err)
	assert.Equal(t, SignalIgnored, out.Signal)

	out, err = m.HandleInput(ctx, "Enter")
	require.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, SignalInvalidLength, out.Signal)
	assert.Equal(t, "pi", out.Row)

	for _, k := range []string{"t", "h", "y", "s"} {
		_, err := m.HandleInput(ctx, k)
		require.NoError(t, err)
	}
	assert.Equal(t, "pithy", m.Snapshot().Row, "row is capped at the word length")

	out, err = m.HandleInput(ctx, "Enter")
	require.NoError(t, err)
	assert.Equal(t, SignalContinue, out.Signal)
	assert.Equal(t, "", out.Row)
	assert.Equal(t, 1, out.Attempt)

	out, err = m.HandleInput(ctx, "Backspace")
	require.NoError(t, err)
	assert.Equal(t, SignalIgnored, out.Signal)
}

func TestSubmitGuess_BusyWhileValidating(t *testing.T) {
	gate := newGateValidator()
	m := newReady(t, "crane", gate)

	done := make(chan error, 1)
	go func() {
		_, err := m.SubmitGuess(context.Background(), "pithy")
		done <- err
	}()
	<-gate.entered
	assert.True(t, m.Snapshot().InFlight)

	_, err := m.SubmitGuess(context.Background(), "crane")
	require.ErrorIs(t, err, ErrBusy)
	_, err = m.HandleInput(context.Background(), "a")
	require.ErrorIs(t, err, ErrBusy)

	close(gate.release)
	require.NoError(t, <-done)
	snap := m.Snapshot()
	assert.False(t, snap.InFlight)
	assert.Equal(t, 1, snap.Attempt)
}

func TestSubmitGuess_StaleAfterRestart(t *testing.T) {
	gate := newGateValidator()
	m := newReady(t, "crane", gate)

	done := make(chan error, 1)
	go func() {
		_, err := m.SubmitGuess(context.Background(), "crane")
		done <- err
	}()
	<-gate.entered

	gen := m.Restart()
	require.NoError(t, m.Start(gen, "pithy"))
	close(gate.release)

	require.ErrorIs(t, <-done, ErrStale)
	snap := m.Snapshot()
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Empty(t, snap.Rows)
	assert.False(t, snap.InFlight)
}

func TestLoad(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := New(DefaultConfig(), nil)
		err := m.Load(context.Background(), providerFunc(func(ctx context.Context, n int) (string, error) {
			assert.Equal(t, WordLength, n)
			return "CRANE", nil
		}))
		require.NoError(t, err)
		assert.True(t, m.Snapshot().Ready)
		assert.Equal(t, SignalWin, submitAll(t, m, "crane").Signal)
	})

	t.Run("provider failure is permanent", func(t *testing.T) {
		m := New(DefaultConfig(), nil)
		err := m.Load(context.Background(), providerFunc(func(ctx context.Context, n int) (string, error) {
			return "", errors.New("no route to host")
		}))
		require.ErrorIs(t, err, ErrProviderFailure)

		snap := m.Snapshot()
		assert.True(t, snap.Failed)
		require.NotNil(t, snap.Message)
		assert.True(t, snap.Message.Persistent)
		assert.Equal(t, "Failed to fetch word. Refresh to try again.", snap.Message.Text)

		out, err := m.SubmitGuess(context.Background(), "crane")
		require.ErrorIs(t, err, ErrProviderFailure)
		assert.Equal(t, SignalProviderFailure, out.Signal)
		require.NotNil(t, out.Message)
	})

	t.Run("malformed word", func(t *testing.T) {
		m := New(DefaultConfig(), nil)
		err := m.Load(context.Background(), providerFunc(func(ctx context.Context, n int) (string, error) {
			return "cr4n3", nil
		}))
		require.ErrorIs(t, err, ErrProviderFailure)
		assert.True(t, m.Snapshot().Failed)
	})

	t.Run("late result after restart is discarded", func(t *testing.T) {
		m := New(DefaultConfig(), nil)
		old := m.Generation()
		gen := m.Restart()
		require.NotEqual(t, old, gen)

		require.ErrorIs(t, m.Start(old, "crane"), ErrStale)
		require.ErrorIs(t, m.Fail(old, errors.New("boom")), ErrStale)
		snap := m.Snapshot()
		assert.False(t, snap.Ready)
		assert.False(t, snap.Failed)
	})

	t.Run("restart clears failure", func(t *testing.T) {
		m := New(DefaultConfig(), nil)
		require.Error(t, m.Fail(m.Generation(), errors.New("boom")))
		gen := m.Restart()
		require.NoError(t, m.Start(gen, "crane"))
		snap := m.Snapshot()
		assert.False(t, snap.Failed)
		assert.Nil(t, snap.Message)
	})
}

func TestTransientMessageExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newReady(t, "crane", nil)
	m.now = func() time.Time { return now }

	_, err := m.SubmitGuess(context.Background(), "cra")
	require.ErrorIs(t, err, ErrInvalidLength)
	require.NotNil(t, m.Snapshot().Message)

	now = now.Add(AutoDismiss)
	assert.Nil(t, m.Snapshot().Message)
}

func TestPersistentMessageOutlivesDismiss(t *testing.T) {
	tests := []struct {
		name string
		play func(t *testing.T, m *Machine)
		want string
	}{
		{
			name: "win",
			play: func(t *testing.T, m *Machine) {
				_, err := m.SubmitGuess(context.Background(), "crane")
				require.NoError(t, err)
			},
			want: "🎉 Yay! You guessed it right!",
		},
		{
			name: "loss",
			play: func(t *testing.T, m *Machine) {
				for i := 0; i < MaxAttempts; i++ {
					_, err := m.SubmitGuess(context.Background(), "slate")
					require.NoError(t, err)
				}
			},
			want: "😢 Try again! Word was: CRANE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			m := newReady(t, "crane", nil)
			m.now = func() time.Time { return now }

			tt.play(t, m)
			now = now.Add(10 * AutoDismiss)

			msg := m.Snapshot().Message
			require.NotNil(t, msg)
			assert.True(t, msg.Persistent)
			assert.Equal(t, tt.want, msg.Text)
		})
	}

	t.Run("provider failure", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		m := New(DefaultConfig(), nil)
		m.now = func() time.Time { return now }
		require.Error(t, m.Fail(m.Generation(), errors.New("boom")))

		now = now.Add(10 * AutoDismiss)
		msg := m.Snapshot().Message
		require.NotNil(t, msg)
		assert.Equal(t, "Failed to fetch word. Refresh to try again.", msg.Text)
	})
}

func TestClassifyKey(t *testing.T) {
	tests := []struct {
		key    string
		action keyAction
		letter byte
	}{
		{"a", keyLetter, 'a'},
		{"Z", keyLetter, 'z'},
		{"Enter", keySubmit, 0},
		{"\n", keySubmit, 0},
		{"Backspace", keyDelete, 0},
		{"Delete", keyDelete, 0},
		{"1", keyIgnored, 0},
		{"ArrowLeft", keyIgnored, 0},
		{"é", keyIgnored, 0},
		{"", keyIgnored, 0},
	}
	for _, tt := range tests {
		action, letter := classifyKey(tt.key)
		assert.Equal(t, tt.action, action, "key %q", tt.key)
		assert.Equal(t, tt.letter, letter, "key %q", tt.key)
	}
}
