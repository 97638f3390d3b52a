package game

import "log"

// Fanout delivers outbound events either to every connection in a room or
// to a single addressed participant. Single-recipient delivery is what
// hides privileged payloads (the code-maker's secret, the drawer's word
// options) from the rest of the room.

func unicast(c Conn, event string, data any) {
	if c == nil {
		return
	}
	if err := c.WriteJSON(Outbound{Type: event, Data: data}); err != nil {
		log.Printf("[FANOUT] write %s failed: %v", event, err)
	}
}

// broadcast sends to every player in the room. Caller holds r.mu.
func (r *Room) broadcast(event string, data any) {
	for _, p := range r.Players {
		unicast(p.conn, event, data)
	}
}

// broadcastExcept sends to every player except one, used when the
// excluded participant already received a privileged variant.
func (r *Room) broadcastExcept(exceptID string, event string, data any) {
	for _, p := range r.Players {
		if p.ID == exceptID {
			continue
		}
		unicast(p.conn, event, data)
	}
}

// sendTo addresses a single participant by id. No-op if absent.
func (r *Room) sendTo(playerID string, event string, data any) {
	if p := r.playerByID(playerID); p != nil {
		unicast(p.conn, event, data)
	}
}

func sendError(c Conn, err error) {
	unicast(c, "error", map[string]any{"reason": err.Error()})
}
