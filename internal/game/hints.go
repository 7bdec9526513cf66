package game

// KeyHints maps a lowercase letter to the best result seen for it this game.
// It backs the on-screen keyboard colouring and only ever upgrades.
type KeyHints map[string]LetterResult

// Upgrade records r for letter if it outranks the stored result.
// It reports whether the hint changed.
func (h KeyHints) Upgrade(letter byte, r LetterResult) bool {
	k := string(letter)
	if cur, ok := h[k]; ok && cur >= r {
		return false
	}
	h[k] = r
	return true
}

// Get returns the hint for letter, if any.
func (h KeyHints) Get(letter byte) (LetterResult, bool) {
	r, ok := h[string(letter)]
	return r, ok
}

// Merge applies one evaluated guess.
func (h KeyHints) Merge(guess string, results []LetterResult) {
	for i := 0; i < len(guess) && i < len(results); i++ {
		h.Upgrade(guess[i], results[i])
	}
}

// Clone returns an independent copy.
func (h KeyHints) Clone() KeyHints {
	out := make(KeyHints, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
