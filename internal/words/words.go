// internal/words/words.go
//
// Local word lists: an offline target provider and dictionary validator.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to the
//     embedded defaults in package assets.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Implement game.Provider (RandomWord) and game.Validator (IsWord).
//
// Load behavior:
//   1. Both paths set: answers from the first, allowed guesses from the second.
//   2. Only the allowed path set: that file serves as both lists.
//   3. Neither set: embedded assets/answers.txt and assets/allowed.txt.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z); anything else is dropped.
//   • Answers are always accepted as guesses.

package words

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/robalobadob/wordle/apps/solo-server/assets"
)

// Length is the only word length the lists carry.
const Length = 5

// ErrEmpty is returned when no usable answers remain after filtering.
var ErrEmpty = errors.New("words: answers list is empty")

// List is an immutable pair of answer and allowed-guess sets.
type List struct {
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{}
}

// Load builds a List from the given files, or the embedded defaults when
// both paths are empty.
func Load(answersPath, allowedPath string) (*List, error) {
	switch {
	case answersPath != "" && allowedPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		allow, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return New(ans, allow)

	case allowedPath != "":
		allow, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return New(allow, nil)

	case answersPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		return New(ans, nil)
	}

	ans, err := assets.AnswersList()
	if err != nil {
		return nil, fmt.Errorf("words: embedded answers: %w", err)
	}
	allow, err := assets.AllowedList()
	if err != nil {
		return nil, fmt.Errorf("words: embedded allowed: %w", err)
	}
	return New(ans, allow)
}

// New builds a List from in-memory slices. Invalid entries are dropped.
func New(answers, allowed []string) (*List, error) {
	l := &List{
		answersSet: make(map[string]struct{}, len(answers)),
		allowedSet: make(map[string]struct{}, len(answers)+len(allowed)),
	}
	for _, w := range normalize(answers) {
		if _, dup := l.answersSet[w]; dup {
			continue
		}
		l.answers = append(l.answers, w)
		l.answersSet[w] = struct{}{}
		l.allowedSet[w] = struct{}{}
	}
	for _, w := range normalize(allowed) {
		l.allowedSet[w] = struct{}{}
	}
	if len(l.answers) == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ws, err := assets.ParseWords(f)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return ws, nil
}

// normalize keeps only 5-letter lowercase alphabetic words.
func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, w := range in {
		if len(w) == Length && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RandomWord returns a cryptographically random answer.
func (l *List) RandomWord(ctx context.Context, length int) (string, error) {
	if length != Length {
		return "", fmt.Errorf("words: no %d-letter answers", length)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	if err != nil {
		return "", err
	}
	return l.answers[n.Int64()], nil
}

// IsWord reports whether w is an accepted guess. It never fails.
func (l *List) IsWord(_ context.Context, w string) (bool, error) {
	_, ok := l.allowedSet[w]
	return ok, nil
}

// IsAnswer reports whether w is an answer word.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answersSet[w]
	return ok
}

// Answers returns the answers in load order. The slice must not be modified.
func (l *List) Answers() []string { return l.answers }

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
