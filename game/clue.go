package game

// Clue is the comparison result between a guess and the secret sequence.
type Clue struct {
	Correct       int `json:"correct"`
	WrongPosition int `json:"wrong_position"`
	Wrong         int `json:"wrong"`
}

// CompareGuess scores a guess against the secret in two passes. Pass one
// counts exact positional matches and removes those slots from further
// consideration. Pass two walks the remaining guess slots and counts
// values that still exist anywhere in the remaining secret slots, each
// match consuming one secret slot; whatever is left over is wrong.
func CompareGuess(secret, guess []string) Clue {
	var clue Clue
	n := len(secret)
	if len(guess) < n {
		n = len(guess)
	}

	leftSecret := make([]string, 0, n)
	leftGuess := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if guess[i] == secret[i] {
			clue.Correct++
			continue
		}
		leftSecret = append(leftSecret, secret[i])
		leftGuess = append(leftGuess, guess[i])
	}

	pool := make(map[string]int, len(leftSecret))
	for _, v := range leftSecret {
		pool[v]++
	}
	for _, v := range leftGuess {
		if pool[v] > 0 {
			pool[v]--
			clue.WrongPosition++
		} else {
			clue.Wrong++
		}
	}
	return clue
}
