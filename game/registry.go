package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Registry owns the room lifecycle and is the only cross-room shared
// structure. Lock ordering: a room's mutex may be held while taking the
// registry mutex, never the reverse — the registry never touches a
// room's state while holding its own lock.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	summaries map[string]RoomSummary

	clock     clockwork.Clock
	timers    *TimerEngine
	directory *Directory
	lobby     *Lobby
	notifier  NotificationSink
	archiver  DrawingArchiver
	questions QuestionSource
}

// Options are the injected collaborators. Nil fields fall back to a real
// clock and no-op sinks so the core is usable in isolation.
type Options struct {
	Clock     clockwork.Clock
	Notifier  NotificationSink
	Archiver  DrawingArchiver
	Questions QuestionSource
}

func NewRegistry(opts Options) *Registry {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = noopSink{}
	}
	archiver := opts.Archiver
	if archiver == nil {
		archiver = noopArchiver{}
	}
	questions := opts.Questions
	if questions == nil {
		questions = builtinQuestions()
	}
	return &Registry{
		rooms:     make(map[string]*Room),
		summaries: make(map[string]RoomSummary),
		clock:     clock,
		timers:    NewTimerEngine(clock),
		directory: NewDirectory(),
		lobby:     NewLobby(),
		notifier:  notifier,
		archiver:  archiver,
		questions: questions,
	}
}

type noopSink struct{}

func (noopSink) NotifyRoomHosted(string, string, string, GameType) {}

type noopArchiver struct{}

func (noopArchiver) SaveDrawing(string, string, []TurnDrawing) {}

// CreateRoomRequest is the payload of the create-room event.
type CreateRoomRequest struct {
	GameType GameType `json:"game_type"`
	Name     string   `json:"name"`
	Scope    string   `json:"scope"`
	Config   Config   `json:"config"`
}

// CreateRoom opens a room in lobby status with the caller auto-joined as
// host. Club members are notified out of band when the room is scoped to
// a club; a notification failure never affects the room.
func (g *Registry) CreateRoom(id Identity, c Conn, req CreateRoomRequest) (*Room, error) {
	if !req.GameType.Valid() {
		return nil, ErrUnknownGameType
	}
	scope := req.Scope
	if scope == "" {
		scope = ScopePublic
	}
	if !id.MemberOf(scope) {
		return nil, ErrNotAuthorized
	}
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s's room", id.Name)
	}

	g.detach(c)

	room := &Room{
		ID:        uuid.NewString(),
		Name:      name,
		Scope:     scope,
		Type:      req.GameType,
		Status:    StatusLobby,
		HostID:    id.UserID,
		Config:    req.Config.clamped(),
		CreatedAt: g.clock.Now(),
		reg:       g,
	}
	room.Players = append(room.Players, &Player{ID: id.UserID, Name: id.Name, conn: c})

	g.mu.Lock()
	g.rooms[room.ID] = room
	g.mu.Unlock()

	room.mu.Lock()
	g.directory.bind(c, room.ID, id.UserID)
	g.updateSummary(room)
	unicast(c, "room-created", room.snapshotLocked(id.UserID))
	room.mu.Unlock()

	g.lobby.publish(g)

	if scope != ScopePublic {
		go g.notifier.NotifyRoomHosted(scope, id.Name, room.ID, room.Type)
	}
	log.Printf("[GAME] room %s created type=%s scope=%s host=%s", room.ID, room.Type, scope, id.UserID)
	return room, nil
}

// JoinRoom adds a participant, or replaces the connection handle in place
// when the participant id is already present (reconnect) — score and turn
// order are untouched in that case.
func (g *Registry) JoinRoom(roomID string, id Identity, c Conn) error {
	room, ok := g.room(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	g.detach(c)
	return room.join(id, c)
}

// LeaveRoom removes the player bound to the given connection.
func (g *Registry) LeaveRoom(roomID string, c Conn) error {
	room, ok := g.room(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	room.removeConn(c, "left")
	return nil
}

// StartGame moves the room to playing and hands control to the matching
// state machine. Host only, two players minimum.
func (g *Registry) StartGame(roomID, requesterID string) error {
	room, ok := g.room(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	return room.start(requesterID)
}

// HandleDisconnect treats a dropped connection as a leave. Never crashes
// the room or other participants' sessions; a handle that was already
// replaced by a reconnect is discarded without touching the player.
func (g *Registry) HandleDisconnect(c Conn) {
	g.lobby.drop(c)
	b, ok := g.directory.lookup(c)
	if !ok {
		return
	}
	if room, ok := g.room(b.roomID); ok {
		room.removeConn(c, "disconnected")
	} else {
		g.directory.unbind(c)
	}
}

// detach removes any existing room binding for the connection before it
// creates or joins another room.
func (g *Registry) detach(c Conn) {
	b, ok := g.directory.lookup(c)
	if !ok {
		return
	}
	if room, ok := g.room(b.roomID); ok {
		room.removeConn(c, "left")
	} else {
		g.directory.unbind(c)
	}
}

func (g *Registry) room(id string) (*Room, bool) {
	g.mu.RLock()
	r, ok := g.rooms[id]
	g.mu.RUnlock()
	return r, ok
}

// Rooms returns the number of live rooms.
func (g *Registry) Rooms() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// updateSummary refreshes the lobby-directory entry. Only lobby-status
// rooms are listed. Caller holds the room's mutex.
func (g *Registry) updateSummary(r *Room) {
	if r.Status != StatusLobby {
		g.removeSummary(r.ID)
		return
	}
	hostName := ""
	if h := r.playerByID(r.HostID); h != nil {
		hostName = h.Name
	}
	s := RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		GameType:    r.Type,
		Scope:       r.Scope,
		HostName:    hostName,
		PlayerCount: len(r.Players),
		MaxPlayers:  MaxPlayersPerRoom,
		TotalRounds: r.Config.TotalRounds,
	}
	g.mu.Lock()
	g.summaries[r.ID] = s
	g.mu.Unlock()
}

func (g *Registry) removeSummary(id string) {
	g.mu.Lock()
	delete(g.summaries, id)
	g.mu.Unlock()
}

// remove drops a destroyed room from the cross-room map.
func (g *Registry) remove(id string) {
	g.mu.Lock()
	delete(g.rooms, id)
	delete(g.summaries, id)
	g.mu.Unlock()
}

// ListOpenRooms returns open rooms of the given type visible from the
// given scope. Empty game type means all types; public rooms are visible
// everywhere.
func (g *Registry) ListOpenRooms(gt GameType, scope string) []RoomSummary {
	if scope == "" {
		scope = ScopePublic
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]RoomSummary, 0, len(g.summaries))
	for _, s := range g.summaries {
		if gt != "" && s.GameType != gt {
			continue
		}
		if s.Scope != ScopePublic && s.Scope != scope {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Sweep is the scheduler's backstop: it destroys finished rooms whose
// grace period lapsed without the per-room timer firing, and lobby rooms
// abandoned for longer than maxLobbyAge. Returns the number destroyed.
func (g *Registry) Sweep(maxLobbyAge time.Duration) int {
	g.mu.RLock()
	candidates := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		candidates = append(candidates, r)
	}
	g.mu.RUnlock()

	now := g.clock.Now()
	destroyed := 0
	for _, r := range candidates {
		r.mu.Lock()
		stale := false
		switch r.Status {
		case StatusFinished:
			stale = !r.finishedAt.IsZero() && now.Sub(r.finishedAt) > 2*finishedGraceSeconds*time.Second
		case StatusLobby:
			stale = now.Sub(r.CreatedAt) > maxLobbyAge
		}
		if stale && !r.destroyed {
			r.destroyLocked()
			destroyed++
		}
		r.mu.Unlock()
	}
	if destroyed > 0 {
		log.Printf("[SWEEP] destroyed %d stale room(s)", destroyed)
	}
	return destroyed
}
