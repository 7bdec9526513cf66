// Package daily picks one answer per UTC day so every session on the same
// date plays the same word.
package daily

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}

// Provider serves the day's answer as the target word.
type Provider struct {
	Answers []string
	Salt    string
	Now     func() time.Time // defaults to time.Now
}

// RandomWord returns the answer for today's date.
func (p *Provider) RandomWord(ctx context.Context, length int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.Answers) == 0 {
		return "", errors.New("daily: no answers")
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	w := p.Answers[WordIndex(now(), p.Salt, len(p.Answers))]
	if len(w) != length {
		return "", fmt.Errorf("daily: answer %q is not %d letters", w, length)
	}
	return w, nil
}
