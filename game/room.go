package game

import (
	"log"
	"math/rand"
	"sort"
)

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// join appends a new player or, when the participant id already exists,
// replaces its connection handle in place (reconnect) without resetting
// score or turn order.
func (r *Room) join(id Identity, c Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrRoomNotFound
	}

	if p := r.playerByID(id.UserID); p != nil {
		old := p.conn
		p.conn = c
		if old != nil && old != c {
			r.reg.directory.unbind(old)
			old.Close()
		}
		r.reg.directory.bind(c, r.ID, id.UserID)
		unicast(c, "room-snapshot", r.snapshotLocked(id.UserID))
		r.broadcastExcept(id.UserID, "player-rejoined", map[string]any{"id": id.UserID, "name": p.Name})
		log.Printf("[GAME] room %s: %s reconnected", r.ID, id.UserID)
		return nil
	}

	if r.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	if len(r.Players) >= MaxPlayersPerRoom {
		return ErrRoomFull
	}

	p := &Player{ID: id.UserID, Name: id.Name, conn: c}
	r.Players = append(r.Players, p)
	r.reg.directory.bind(c, r.ID, id.UserID)
	r.broadcastExcept(id.UserID, "player-joined", p.view())
	unicast(c, "room-snapshot", r.snapshotLocked(id.UserID))
	r.reg.updateSummary(r)
	r.reg.lobby.publish(r.reg)
	return nil
}

// start validates the request and hands control to the state machine
// matching the room's game type. Turn order is randomized here.
func (r *Room) start(requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrRoomNotFound
	}
	if r.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	if requesterID != r.HostID {
		return ErrNotHost
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}

	r.Status = StatusPlaying
	r.reg.removeSummary(r.ID)
	r.reg.lobby.publish(r.reg)
	r.broadcast("game-started", map[string]any{"game_type": r.Type})

	order := r.shuffledOrder()
	switch r.Type {
	case GameTypeDrawingGuess:
		r.startDrawingGame(order)
	case GameTypeCodeBreaker:
		r.startCodeBreakerGame(order)
	case GameTypeQuizMatch:
		r.startQuizGame()
	}
	log.Printf("[GAME] room %s: started %s with %d players", r.ID, r.Type, len(r.Players))
	return nil
}

func (r *Room) shuffledOrder() []string {
	order := make([]string, len(r.Players))
	for i, p := range r.Players {
		order[i] = p.ID
	}
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

// removeConn removes the player owning this handle. A handle that no
// longer belongs to any player (it was replaced by a reconnect) is
// unbound and nothing else happens — this is what keeps reconnect atomic
// with respect to the old connection's disconnect notification.
func (r *Room) removeConn(c Conn, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		r.reg.directory.unbind(c)
		return
	}

	idx := -1
	for i, p := range r.Players {
		if p.conn == c {
			idx = i
			break
		}
	}
	r.reg.directory.unbind(c)
	if idx < 0 {
		return
	}

	left := r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	log.Printf("[GAME] room %s: %s %s", r.ID, left.ID, reason)

	if len(r.Players) == 0 {
		r.destroyLocked()
		return
	}

	if left.ID == r.HostID {
		r.HostID = r.Players[0].ID
		r.broadcast("host-changed", map[string]any{"host_id": r.HostID})
	}
	r.broadcast("player-left", map[string]any{"id": left.ID, "name": left.Name, "reason": reason})

	if r.Status == StatusPlaying {
		r.onPlayerRemoved(left.ID)
	}
	if r.Status == StatusLobby {
		r.reg.updateSummary(r)
		r.reg.lobby.publish(r.reg)
	}
}

// onPlayerRemoved lets the active state machine react to a departure
// mid-game (privileged role holder gone, early-completion sets shrunk).
func (r *Room) onPlayerRemoved(playerID string) {
	switch st := r.state.(type) {
	case *drawingState:
		r.drawingPlayerRemoved(st, playerID)
	case *codeBreakerState:
		r.codeBreakerPlayerRemoved(st, playerID)
	case *quizState:
		r.quizPlayerRemoved(st, playerID)
	}
}

// leaderboard returns player views sorted by cumulative score, ties
// broken by name for stable output.
func (r *Room) leaderboard() []PlayerView {
	views := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		views = append(views, p.view())
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Score != views[j].Score {
			return views[i].Score > views[j].Score
		}
		return views[i].Name < views[j].Name
	})
	return views
}

// finishGame is the common tail of all three machines: the room becomes
// immutable, the leaderboard goes out, and destruction is scheduled after
// the delivery grace period. Caller holds r.mu and has already set the
// state's phase to game_over.
func (r *Room) finishGame() {
	r.Status = StatusFinished
	r.finishedAt = r.reg.clock.Now()
	r.broadcast("game-over", map[string]any{"leaderboard": r.leaderboard()})
	r.startCountdown(finishedGraceSeconds, nil, func() {
		r.destroyLocked()
	})
	log.Printf("[GAME] room %s: finished", r.ID)
}

// destroyLocked tears the room down: timers cancelled, players unbound,
// room dropped from the registry. Connections stay open — participants
// can browse the lobby or join another room. Caller holds r.mu.
func (r *Room) destroyLocked() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.cancelCountdown()
	for _, p := range r.Players {
		if p.conn != nil {
			r.reg.directory.unbind(p.conn)
		}
	}
	r.Players = nil
	r.reg.remove(r.ID)
	r.reg.lobby.publish(r.reg)
	log.Printf("[GAME] room %s: destroyed", r.ID)
}

// snapshotLocked builds the full room view for one recipient, used on
// join, reconnect and explicit sync. Caller holds r.mu.
func (r *Room) snapshotLocked(viewerID string) map[string]any {
	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.view())
	}
	snap := map[string]any{
		"id":        r.ID,
		"name":      r.Name,
		"scope":     r.Scope,
		"game_type": r.Type,
		"status":    r.Status,
		"host_id":   r.HostID,
		"config":    r.Config,
		"players":   players,
	}
	if r.state != nil {
		snap["state"] = r.state.snapshot(viewerID)
	}
	return snap
}
