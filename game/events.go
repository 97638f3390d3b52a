package game

import "encoding/json"

// HandleEvent is the single inbound entry point for a connection. Room
// lifecycle events resolve rooms by id; everything else routes through
// the connection's directory binding, so a connection can only ever act
// as the participant it authenticated as.
func (g *Registry) HandleEvent(c Conn, id Identity, msg Inbound) {
	switch msg.Type {
	case "create-room":
		var req CreateRoomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			sendError(c, ErrBadPayload)
			return
		}
		if _, err := g.CreateRoom(id, c, req); err != nil {
			sendError(c, err)
		}

	case "join-room":
		if err := g.JoinRoom(msg.RoomID, id, c); err != nil {
			sendError(c, err)
		}

	case "start-game":
		if err := g.StartGame(msg.RoomID, id.UserID); err != nil {
			sendError(c, err)
		}

	case "leave-room":
		if err := g.LeaveRoom(msg.RoomID, c); err != nil {
			sendError(c, err)
		}

	case "list-open-rooms":
		var q struct {
			GameType GameType `json:"game_type"`
			Scope    string   `json:"scope"`
		}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &q); err != nil {
				sendError(c, ErrBadPayload)
				return
			}
		}
		if q.Scope == "" {
			q.Scope = ScopePublic
		}
		if !id.MemberOf(q.Scope) {
			sendError(c, ErrNotAuthorized)
			return
		}
		g.lobby.subscribe(c, q.GameType, q.Scope)
		unicast(c, "room-list", map[string]any{"rooms": g.ListOpenRooms(q.GameType, q.Scope)})

	default:
		g.routeToRoom(c, msg)
	}
}

func (g *Registry) routeToRoom(c Conn, msg Inbound) {
	b, ok := g.directory.lookup(c)
	if !ok {
		sendError(c, ErrNotInRoom)
		return
	}
	room, ok := g.room(b.roomID)
	if !ok {
		g.directory.unbind(c)
		sendError(c, ErrRoomNotFound)
		return
	}
	if msg.RoomID != "" && msg.RoomID != b.roomID {
		// Addressed to a room the sender no longer occupies: stale, drop.
		return
	}
	room.handleEvent(b.userID, c, msg)
}

// handleEvent validates sender identity and current phase before acting.
// A handle that was replaced by a reconnect is ignored outright.
func (r *Room) handleEvent(playerID string, c Conn, msg Inbound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	p := r.playerByID(playerID)
	if p == nil || p.conn != c {
		return
	}

	var err error
	switch msg.Type {
	case "select-word":
		err = r.handleSelectWord(p, msg.Data)
	case "submit-stroke":
		err = r.handleStroke(p, msg.Data)
	case "clear-canvas":
		err = r.handleClearCanvas(p)
	case "change-canvas-color":
		err = r.handleCanvasColor(p, msg.Data)
	case "sync-strokes":
		err = r.handleSyncStrokes(p)
	case "submit-guess":
		err = r.handleGuess(p, msg.Data)
	case "set-difficulty-and-alphabet":
		err = r.handleCodeSettings(p, msg.Data)
	case "submit-secret":
		err = r.handleSecret(p, msg.Data)
	case "submit-answer":
		err = r.handleAnswer(p, msg.Data)
	default:
		err = ErrUnknownEvent
	}
	if err != nil {
		sendError(c, err)
	}
}

// handleGuess is shared wiring: the drawing game and the code-breaker
// both accept submit-guess, with payloads interpreted per variant.
func (r *Room) handleGuess(p *Player, data json.RawMessage) error {
	switch st := r.state.(type) {
	case *drawingState:
		return r.drawingGuess(st, p, data)
	case *codeBreakerState:
		return r.codeBreakerGuess(st, p, data)
	default:
		return ErrWrongPhase
	}
}
