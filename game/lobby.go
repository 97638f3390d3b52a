package game

import "sync"

// Lobby pushes open-room lists to connections that asked for them via
// list-open-rooms. The list is recomputed and re-broadcast whenever a
// room is created, filled, started or destroyed.
type Lobby struct {
	mu   sync.Mutex
	subs map[Conn]lobbySub
}

type lobbySub struct {
	gameType GameType
	scope    string
}

func NewLobby() *Lobby {
	return &Lobby{subs: make(map[Conn]lobbySub)}
}

func (l *Lobby) subscribe(c Conn, gt GameType, scope string) {
	l.mu.Lock()
	l.subs[c] = lobbySub{gameType: gt, scope: scope}
	l.mu.Unlock()
}

func (l *Lobby) drop(c Conn) {
	l.mu.Lock()
	delete(l.subs, c)
	l.mu.Unlock()
}

// publish recomputes each subscriber's view and pushes it. Cheap enough
// to run on every lifecycle change; subscriber counts are small.
func (l *Lobby) publish(g *Registry) {
	l.mu.Lock()
	subs := make(map[Conn]lobbySub, len(l.subs))
	for c, s := range l.subs {
		subs[c] = s
	}
	l.mu.Unlock()

	for c, s := range subs {
		unicast(c, "room-list", map[string]any{
			"rooms": g.ListOpenRooms(s.gameType, s.scope),
		})
	}
}
