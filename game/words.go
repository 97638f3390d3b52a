package game

import "math/rand"

// drawingWords is the built-in word pool for the drawing game.
var drawingWords = []string{
	"airplane", "anchor", "apple", "balloon", "banana", "beach", "bicycle",
	"bridge", "butterfly", "cactus", "camera", "candle", "castle", "cloud",
	"compass", "crown", "dolphin", "dragon", "drum", "elephant", "envelope",
	"feather", "firework", "flamingo", "fountain", "giraffe", "guitar",
	"hammer", "hamburger", "helicopter", "igloo", "island", "jellyfish",
	"kangaroo", "kettle", "ladder", "lighthouse", "lightning", "mermaid",
	"microscope", "mountain", "mushroom", "octopus", "parachute", "penguin",
	"piano", "pirate", "pyramid", "rainbow", "robot", "rocket", "sandwich",
	"scarecrow", "snowman", "spider", "submarine", "telescope", "tornado",
	"treasure", "trumpet", "umbrella", "unicorn", "volcano", "windmill",
}

// pickWords returns n distinct random words from the pool.
func pickWords(n int) []string {
	idx := rand.Perm(len(drawingWords))
	words := make([]string, 0, n)
	for _, i := range idx[:n] {
		words = append(words, drawingWords[i])
	}
	return words
}
