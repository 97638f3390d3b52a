package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDrawingGuesserPoints(t *testing.T) {
	assert.Equal(t, 120, DrawingGuesserPoints(80))
	assert.Equal(t, 10, DrawingGuesserPoints(5), "floor of 10 for last-second guesses")
	assert.Equal(t, 10, DrawingGuesserPoints(0))
}

func TestCodeBreakerPoints(t *testing.T) {
	assert.Equal(t, 1100, CodeBreakerPoints(1, 20, DifficultyEasy), "first-attempt solve with 20s left")
	assert.Equal(t, 800, CodeBreakerPoints(2, 0, DifficultyEasy))
	assert.Equal(t, 1300, CodeBreakerPoints(2, 0, DifficultyMedium))
	assert.Equal(t, 2000, CodeBreakerPoints(2, 120, DifficultyEasy))
	assert.Equal(t, 0, CodeBreakerPoints(12, 0, DifficultyEasy), "never negative")
}

func TestQuizPoints(t *testing.T) {
	window := 60 * time.Second

	assert.Equal(t, 1500, QuizPoints(0, window, true), "instant answer gets the full speed bonus")
	assert.Equal(t, 1250, QuizPoints(30*time.Second, window, true))
	assert.Equal(t, 1000, QuizPoints(window, window, true), "bonus fully decayed at the deadline")
	assert.Equal(t, 0, QuizPoints(time.Second, window, false))
}
