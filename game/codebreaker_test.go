package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeBreakerStateOf(t *testing.T, r *Room) *codeBreakerState {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.state.(*codeBreakerState)
	require.True(t, ok)
	return st
}

func codeBreakerFixture(t *testing.T, n int) (*Registry, *Room, *codeBreakerState, map[string]*fakeConn, map[string]Identity) {
	t.Helper()
	g, room, conns, ids := setupRoom(t, GameTypeCodeBreaker, Config{}, n)
	require.NoError(t, g.StartGame(room.ID, ids[0].UserID))

	byID := make(map[string]*fakeConn, len(ids))
	identByID := make(map[string]Identity, len(ids))
	for i, id := range ids {
		byID[id.UserID] = conns[i]
		identByID[id.UserID] = id
	}
	return g, room, codeBreakerStateOf(t, room), byID, identByID
}

func otherThan(idents map[string]Identity, exclude string) string {
	for id := range idents {
		if id != exclude {
			return id
		}
	}
	return ""
}

func TestCodeBreakerTurnFlow(t *testing.T) {
	g, room, st, conns, idents := codeBreakerFixture(t, 2)
	maker := st.MakerID
	breaker := otherThan(idents, maker)

	assert.Equal(t, PhasePicking, currentPhase(room))
	_, ok := conns[breaker].last("picking-start")
	assert.True(t, ok)

	// Settings and secret are maker-only.
	send(g, conns[breaker], idents[breaker], "set-difficulty-and-alphabet", room.ID,
		map[string]any{"difficulty": "easy", "alphabet": "numbers"})
	ev, ok := conns[breaker].last("error")
	require.True(t, ok)
	assert.Equal(t, ErrNotAuthorized.Error(), ev.Data.(map[string]any)["reason"])

	send(g, conns[maker], idents[maker], "set-difficulty-and-alphabet", room.ID,
		map[string]any{"difficulty": "easy", "alphabet": "numbers"})
	settings, ok := conns[breaker].last("code-settings")
	require.True(t, ok)
	assert.Equal(t, 4, settings.Data.(map[string]any)["code_length"])

	// Length and alphabet are enforced on the secret.
	send(g, conns[maker], idents[maker], "submit-secret", room.ID, map[string]any{"secret": []string{"1", "2", "3"}})
	ev, _ = conns[maker].last("error")
	assert.Equal(t, ErrBadPayload.Error(), ev.Data.(map[string]any)["reason"])
	send(g, conns[maker], idents[maker], "submit-secret", room.ID, map[string]any{"secret": []string{"1", "2", "3", "x"}})
	ev, _ = conns[maker].last("error")
	assert.Equal(t, ErrBadPayload.Error(), ev.Data.(map[string]any)["reason"])

	send(g, conns[maker], idents[maker], "submit-secret", room.ID, map[string]any{"secret": []string{"1", "2", "3", "4"}})
	assert.Equal(t, PhaseGuessing, currentPhase(room))
	_, ok = conns[breaker].last("guessing-start")
	assert.True(t, ok)

	// The maker cannot guess their own code.
	send(g, conns[maker], idents[maker], "submit-guess", room.ID, map[string]any{"guess": []string{"1", "2", "3", "4"}})
	ev, _ = conns[maker].last("error")
	assert.Equal(t, ErrNotAuthorized.Error(), ev.Data.(map[string]any)["reason"])

	// A duplicate symbol in the guess consumes only one secret slot.
	send(g, conns[breaker], idents[breaker], "submit-guess", room.ID, map[string]any{"guess": []string{"4", "3", "2", "2"}})
	result, ok := conns[maker].last("guess-result")
	require.True(t, ok)
	assert.Equal(t, Clue{Correct: 0, WrongPosition: 3, Wrong: 1}, result.Data.(map[string]any)["clue"])
	assert.Equal(t, 9, result.Data.(map[string]any)["attempts_left"])

	// Crack on the second attempt with a full clock:
	// 1000 - 2*100 + 120*10 + 0 = 2000.
	send(g, conns[breaker], idents[breaker], "submit-guess", room.ID, map[string]any{"guess": []string{"1", "2", "3", "4"}})
	assert.Equal(t, 2000, scoreOf(room, breaker))
	assert.Equal(t, 0, scoreOf(room, maker))
	assert.Equal(t, PhaseTurnEnd, currentPhase(room))

	end, ok := conns[breaker].last("turn-end")
	require.True(t, ok)
	assert.Equal(t, "cracked", end.Data.(map[string]any)["reason"])
	assert.Equal(t, []string{"1", "2", "3", "4"}, end.Data.(map[string]any)["secret"])
}

func TestCodeBreakerMakerScoresWhenBudgetExhausted(t *testing.T) {
	g, room, st, conns, idents := codeBreakerFixture(t, 2)
	maker := st.MakerID
	breaker := otherThan(idents, maker)

	send(g, conns[maker], idents[maker], "set-difficulty-and-alphabet", room.ID,
		map[string]any{"difficulty": "easy", "alphabet": "numbers"})
	send(g, conns[maker], idents[maker], "submit-secret", room.ID, map[string]any{"secret": []string{"1", "2", "3", "4"}})

	for i := 0; i < difficulties[DifficultyEasy].Attempts; i++ {
		send(g, conns[breaker], idents[breaker], "submit-guess", room.ID, map[string]any{"guess": []string{"9", "9", "9", "9"}})
	}

	assert.Equal(t, PhaseTurnEnd, currentPhase(room))
	assert.Equal(t, makerSurvivalPoints, scoreOf(room, maker))
	assert.Equal(t, 0, scoreOf(room, breaker))

	end, ok := conns[breaker].last("turn-end")
	require.True(t, ok)
	assert.Equal(t, "exhausted", end.Data.(map[string]any)["reason"])
}

func TestCodeBreakerMakerDepartureMidGuessing(t *testing.T) {
	g, room, st, conns, idents := codeBreakerFixture(t, 3)
	maker := st.MakerID

	send(g, conns[maker], idents[maker], "set-difficulty-and-alphabet", room.ID,
		map[string]any{"difficulty": "easy", "alphabet": "numbers"})
	send(g, conns[maker], idents[maker], "submit-secret", room.ID, map[string]any{"secret": []string{"5", "6", "7", "8"}})
	require.Equal(t, PhaseGuessing, currentPhase(room))

	require.NoError(t, g.LeaveRoom(room.ID, conns[maker]))

	assert.Equal(t, PhaseTurnEnd, currentPhase(room))
	other := otherThan(idents, maker)
	end, ok := conns[other].last("turn-end")
	require.True(t, ok)
	assert.Equal(t, "maker_left", end.Data.(map[string]any)["reason"])
}

func TestCodeBreakerIdleMakerIsSkipped(t *testing.T) {
	g, room, st, conns, _ := codeBreakerFixture(t, 3)
	fc := fakeClockOf(t, g)
	firstMaker := st.MakerID

	require.Eventually(t, func() bool {
		fc.Advance(time.Second)
		room.mu.Lock()
		maker := st.MakerID
		room.mu.Unlock()
		return maker != firstMaker
	}, 10*time.Second, 5*time.Millisecond, "idle maker should be skipped after the picking deadline")

	_, ok := conns[firstMaker].last("turn-skipped")
	assert.True(t, ok)
	assert.Equal(t, PhasePicking, currentPhase(room))
}
