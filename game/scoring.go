package game

import "time"

// Pure scoring functions for the three game types. No side effects here;
// the state machines apply the results to player totals.

// DrawerPointsPerGuess is the flat award to the drawer for each player
// that guesses the word.
const DrawerPointsPerGuess = 5

// DrawingGuesserPoints rewards fast guesses: max(10, floor(remaining*1.5)).
func DrawingGuesserPoints(secondsRemaining int) int {
	points := int(float64(secondsRemaining) * 1.5)
	if points < 10 {
		points = 10
	}
	return points
}

// CodeBreakerPoints scores a solved code from the attempt count, the time
// left on the clock and the difficulty bonus. Never negative.
func CodeBreakerPoints(attempts, secondsRemaining int, difficulty CBDifficulty) int {
	points := 1000 - attempts*100 + secondsRemaining*10 + difficulties[difficulty].Bonus
	if points < 0 {
		points = 0
	}
	return points
}

// QuizPoints gives a correct answer 1000 base points plus a speed bonus
// that decays linearly from 500 to 0 over the answer window.
func QuizPoints(elapsed, roundDuration time.Duration, correct bool) int {
	if !correct {
		return 0
	}
	bonus := int(500 * (1 - elapsed.Seconds()/roundDuration.Seconds()))
	if bonus < 0 {
		bonus = 0
	}
	return 1000 + bonus
}
