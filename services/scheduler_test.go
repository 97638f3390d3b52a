package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLobbyMaxAge(t *testing.T) {
	t.Setenv("LOBBY_MAX_AGE_MINUTES", "")
	assert.Equal(t, time.Hour, lobbyMaxAge(), "idle lobbies live an hour by default")

	t.Setenv("LOBBY_MAX_AGE_MINUTES", "15")
	assert.Equal(t, 15*time.Minute, lobbyMaxAge())

	t.Setenv("LOBBY_MAX_AGE_MINUTES", "soon")
	assert.Equal(t, time.Hour, lobbyMaxAge(), "garbage falls back to the default")

	t.Setenv("LOBBY_MAX_AGE_MINUTES", "-5")
	assert.Equal(t, time.Hour, lobbyMaxAge())
}
