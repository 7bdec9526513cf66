package game

// Evaluate scores guess against target with the two-pass algorithm.
//
// Pass 1 marks exact matches and consumes both positions.
// Pass 2 walks the remaining guess letters left to right; each one that still
// occurs in the unconsumed target is Present and consumes the first such
// occurrence. Everything else stays Absent.
//
// Both words must already be normalized to the same case and length;
// Evaluate returns nil when the lengths differ.
func Evaluate(target, guess string) []LetterResult {
	n := len(target)
	if len(guess) != n {
		return nil
	}
	res := make([]LetterResult, n)
	targetUsed := make([]bool, n)
	guessUsed := make([]bool, n)

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			res[i] = Exact
			targetUsed[i] = true
			guessUsed[i] = true
		}
	}

	for i := 0; i < n; i++ {
		if guessUsed[i] {
			continue
		}
		for j := 0; j < n; j++ {
			if !targetUsed[j] && target[j] == guess[i] {
				res[i] = Present
				targetUsed[j] = true
				break
			}
		}
	}
	return res
}
