package game

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	events []Outbound
	closed bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, v.(Outbound))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) ofType(event string) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Outbound
	for _, e := range c.events {
		if e.Type == event {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) last(event string) (Outbound, bool) {
	evs := c.ofType(event)
	if len(evs) == 0 {
		return Outbound{}, false
	}
	return evs[len(evs)-1], true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func send(g *Registry, c Conn, id Identity, typ, roomID string, data any) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	g.HandleEvent(c, id, Inbound{Type: typ, RoomID: roomID, Data: raw})
}

// setupRoom builds a registry on a fake clock with n players already in a
// lobby room of the given type. conns[0] is the host.
func setupRoom(t *testing.T, gt GameType, cfg Config, n int) (*Registry, *Room, []*fakeConn, []Identity) {
	t.Helper()
	g := NewRegistry(Options{Clock: clockwork.NewFakeClock()})
	ids := make([]Identity, n)
	conns := make([]*fakeConn, n)
	for i := range ids {
		ids[i] = Identity{UserID: fmt.Sprintf("u%d", i+1), Name: fmt.Sprintf("Player %d", i+1)}
		conns[i] = &fakeConn{}
	}
	room, err := g.CreateRoom(ids[0], conns[0], CreateRoomRequest{GameType: gt, Config: cfg})
	require.NoError(t, err)
	for i := 1; i < n; i++ {
		require.NoError(t, g.JoinRoom(room.ID, ids[i], conns[i]))
	}
	return g, room, conns, ids
}

func fakeClockOf(t *testing.T, g *Registry) *clockwork.FakeClock {
	t.Helper()
	fc, ok := g.clock.(*clockwork.FakeClock)
	require.True(t, ok)
	return fc
}

func currentPhase(r *Room) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return ""
	}
	return r.state.phase()
}

func scoreOf(r *Room, playerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.playerByID(playerID); p != nil {
		return p.Score
	}
	return -1
}

func TestCreateRoomDefaults(t *testing.T) {
	g := NewRegistry(Options{Clock: clockwork.NewFakeClock()})
	c := &fakeConn{}
	id := Identity{UserID: "u1", Name: "Ava"}

	room, err := g.CreateRoom(id, c, CreateRoomRequest{GameType: GameTypeDrawingGuess})
	require.NoError(t, err)

	assert.Equal(t, "Ava's room", room.Name)
	assert.Equal(t, ScopePublic, room.Scope)
	assert.Equal(t, StatusLobby, room.Status)
	assert.Equal(t, "u1", room.HostID)
	assert.Equal(t, Config{TotalRounds: 3, RoundSeconds: 80}, room.Config)

	_, ok := c.last("room-created")
	assert.True(t, ok)
	assert.Len(t, g.ListOpenRooms("", ScopePublic), 1)
}

func TestCreateRoomRejectsUnknownTypeAndForeignClub(t *testing.T) {
	g := NewRegistry(Options{Clock: clockwork.NewFakeClock()})
	id := Identity{UserID: "u1", Name: "Ava", Clubs: []string{"chess-club"}}

	_, err := g.CreateRoom(id, &fakeConn{}, CreateRoomRequest{GameType: "backgammon"})
	assert.ErrorIs(t, err, ErrUnknownGameType)

	_, err = g.CreateRoom(id, &fakeConn{}, CreateRoomRequest{GameType: GameTypeQuizMatch, Scope: "book-club"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = g.CreateRoom(id, &fakeConn{}, CreateRoomRequest{GameType: GameTypeQuizMatch, Scope: "chess-club"})
	assert.NoError(t, err)
}

func TestJoinRoomCapacity(t *testing.T) {
	g, room, _, _ := setupRoom(t, GameTypeQuizMatch, Config{}, MaxPlayersPerRoom)

	err := g.JoinRoom(room.ID, Identity{UserID: "u9", Name: "Late"}, &fakeConn{})
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinRoomAfterStart(t *testing.T) {
	g, room, _, ids := setupRoom(t, GameTypeDrawingGuess, Config{}, 2)
	require.NoError(t, g.StartGame(room.ID, ids[0].UserID))

	err := g.JoinRoom(room.ID, Identity{UserID: "u3", Name: "Late"}, &fakeConn{})
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestStartGameValidation(t *testing.T) {
	g, room, _, ids := setupRoom(t, GameTypeDrawingGuess, Config{}, 2)

	assert.ErrorIs(t, g.StartGame("nope", ids[0].UserID), ErrRoomNotFound)
	assert.ErrorIs(t, g.StartGame(room.ID, ids[1].UserID), ErrNotHost)

	require.NoError(t, g.StartGame(room.ID, ids[0].UserID))
	assert.ErrorIs(t, g.StartGame(room.ID, ids[0].UserID), ErrAlreadyStarted)

	// Started rooms leave the lobby directory.
	assert.Empty(t, g.ListOpenRooms("", ScopePublic))
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	g := NewRegistry(Options{Clock: clockwork.NewFakeClock()})
	room, err := g.CreateRoom(Identity{UserID: "u1", Name: "Solo"}, &fakeConn{}, CreateRoomRequest{GameType: GameTypeQuizMatch})
	require.NoError(t, err)

	assert.ErrorIs(t, g.StartGame(room.ID, "u1"), ErrNotEnoughPlayers)
}

func TestReconnectReplacesConnAndKeepsScore(t *testing.T) {
	g, room, conns, ids := setupRoom(t, GameTypeQuizMatch, Config{}, 2)

	room.mu.Lock()
	room.playerByID("u2").Score = 42
	room.mu.Unlock()

	fresh := &fakeConn{}
	require.NoError(t, g.JoinRoom(room.ID, ids[1], fresh))

	assert.True(t, conns[1].isClosed())
	_, ok := fresh.last("room-snapshot")
	assert.True(t, ok)

	room.mu.Lock()
	assert.Len(t, room.Players, 2)
	assert.Equal(t, 42, room.playerByID("u2").Score)
	room.mu.Unlock()

	// The stale handle's disconnect must not remove the player.
	g.HandleDisconnect(conns[1])
	room.mu.Lock()
	assert.Len(t, room.Players, 2)
	room.mu.Unlock()
}

func TestLeaveTransfersHost(t *testing.T) {
	g, room, conns, ids := setupRoom(t, GameTypeQuizMatch, Config{}, 3)

	require.NoError(t, g.LeaveRoom(room.ID, conns[0]))

	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Len(t, room.Players, 2)
	assert.NotEqual(t, ids[0].UserID, room.HostID)
	assert.Equal(t, room.Players[0].ID, room.HostID)

	ev, ok := conns[1].last("host-changed")
	require.True(t, ok)
	assert.Equal(t, room.HostID, ev.Data.(map[string]any)["host_id"])
}

func TestLastLeaveDestroysRoom(t *testing.T) {
	g, room, conns, _ := setupRoom(t, GameTypeQuizMatch, Config{}, 2)

	require.NoError(t, g.LeaveRoom(room.ID, conns[0]))
	g.HandleDisconnect(conns[1])

	assert.Equal(t, 0, g.Rooms())
	assert.Empty(t, g.ListOpenRooms("", ScopePublic))
}

func TestListOpenRoomsScopeFiltering(t *testing.T) {
	g := NewRegistry(Options{Clock: clockwork.NewFakeClock()})
	member := Identity{UserID: "u1", Name: "Ava", Clubs: []string{"chess-club"}}

	_, err := g.CreateRoom(member, &fakeConn{}, CreateRoomRequest{GameType: GameTypeQuizMatch})
	require.NoError(t, err)
	_, err = g.CreateRoom(Identity{UserID: "u2", Name: "Bo", Clubs: []string{"chess-club"}}, &fakeConn{},
		CreateRoomRequest{GameType: GameTypeDrawingGuess, Scope: "chess-club"})
	require.NoError(t, err)

	assert.Len(t, g.ListOpenRooms("", ScopePublic), 1)
	assert.Len(t, g.ListOpenRooms("", "chess-club"), 2)
	assert.Len(t, g.ListOpenRooms(GameTypeDrawingGuess, "chess-club"), 1)
	assert.Empty(t, g.ListOpenRooms(GameTypeCodeBreaker, "chess-club"))
}

func TestRouteWithoutRoomBinding(t *testing.T) {
	g := NewRegistry(Options{Clock: clockwork.NewFakeClock()})
	c := &fakeConn{}

	send(g, c, Identity{UserID: "u1", Name: "Ava"}, "submit-guess", "", map[string]any{"text": "cat"})

	ev, ok := c.last("error")
	require.True(t, ok)
	assert.Equal(t, ErrNotInRoom.Error(), ev.Data.(map[string]any)["reason"])
}

func TestSweepDestroysAbandonedLobbies(t *testing.T) {
	fc := clockwork.NewFakeClock()
	g := NewRegistry(Options{Clock: fc})
	_, err := g.CreateRoom(Identity{UserID: "u1", Name: "Ava"}, &fakeConn{}, CreateRoomRequest{GameType: GameTypeQuizMatch})
	require.NoError(t, err)

	assert.Equal(t, 0, g.Sweep(time.Hour))

	fc.Advance(2 * time.Hour)
	assert.Equal(t, 1, g.Sweep(time.Hour))
	assert.Equal(t, 0, g.Rooms())
}

func TestLobbySubscriptionPushesUpdates(t *testing.T) {
	g := NewRegistry(Options{Clock: clockwork.NewFakeClock()})
	watcher := &fakeConn{}

	send(g, watcher, Identity{UserID: "w1", Name: "Watcher"}, "list-open-rooms", "", nil)
	ev, ok := watcher.last("room-list")
	require.True(t, ok)
	assert.Empty(t, ev.Data.(map[string]any)["rooms"])

	_, err := g.CreateRoom(Identity{UserID: "u1", Name: "Ava"}, &fakeConn{}, CreateRoomRequest{GameType: GameTypeQuizMatch})
	require.NoError(t, err)

	ev, ok = watcher.last("room-list")
	require.True(t, ok)
	assert.Len(t, ev.Data.(map[string]any)["rooms"], 1)
}
