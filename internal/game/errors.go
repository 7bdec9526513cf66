package game

import (
	"errors"
	"strings"
)

// Rejections returned by the machine. Each maps to exactly one Signal.
var (
	ErrInvalidLength         = errors.New("game: guess has the wrong number of letters")
	ErrInvalidWord           = errors.New("game: not a recognized word")
	ErrValidationUnavailable = errors.New("game: word validation unavailable")
	ErrNotReady              = errors.New("game: target word not loaded yet")
	ErrGameOver              = errors.New("game: game is over")
	ErrBusy                  = errors.New("game: a guess is already being evaluated")
	ErrStale                 = errors.New("game: result belongs to a previous game")
	ErrProviderFailure       = errors.New("game: could not obtain a target word")
)

// SignalOf maps a machine error to its Signal. nil maps to SignalContinue.
func SignalOf(err error) Signal {
	switch {
	case err == nil:
		return SignalContinue
	case errors.Is(err, ErrInvalidLength):
		return SignalInvalidLength
	case errors.Is(err, ErrInvalidWord):
		return SignalInvalidWord
	case errors.Is(err, ErrValidationUnavailable):
		return SignalValidationUnavailable
	case errors.Is(err, ErrNotReady):
		return SignalNotReady
	case errors.Is(err, ErrGameOver):
		return SignalGameOver
	case errors.Is(err, ErrBusy):
		return SignalBusy
	case errors.Is(err, ErrStale):
		return SignalStale
	case errors.Is(err, ErrProviderFailure):
		return SignalProviderFailure
	}
	return SignalIgnored
}

// messageFor returns the banner for sig, or nil for silent signals.
func messageFor(sig Signal, answer string) *Message {
	switch sig {
	case SignalInvalidLength:
		return &Message{Text: "Invalid word!"}
	case SignalInvalidWord:
		return &Message{Text: "Not a valid word!"}
	case SignalValidationUnavailable:
		return &Message{Text: "Error validating word!"}
	case SignalWin:
		return &Message{Text: "🎉 Yay! You guessed it right!", Persistent: true}
	case SignalLoss:
		return &Message{Text: "😢 Try again! Word was: " + strings.ToUpper(answer), Persistent: true}
	case SignalProviderFailure:
		return &Message{Text: "Failed to fetch word. Refresh to try again.", Persistent: true}
	}
	return nil
}
