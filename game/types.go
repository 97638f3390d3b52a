package game

import (
	"encoding/json"
	"sync"
	"time"
)

type GameType string

const (
	GameTypeDrawingGuess GameType = "drawing_guess"
	GameTypeCodeBreaker  GameType = "code_breaker"
	GameTypeQuizMatch    GameType = "quiz_match"
)

func (t GameType) Valid() bool {
	switch t {
	case GameTypeDrawingGuess, GameTypeCodeBreaker, GameTypeQuizMatch:
		return true
	}
	return false
}

type RoomStatus string

const (
	StatusLobby    RoomStatus = "lobby"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// PhaseGameOver is shared by all three state machines.
const PhaseGameOver = "game_over"

const (
	// MaxPlayersPerRoom is the hard capacity ceiling for every game type.
	MaxPlayersPerRoom = 8

	// ScopePublic is the global lobby scope; club ids form the rest.
	ScopePublic = "public"

	wordSelectSeconds  = 15
	pickingSeconds     = 60
	turnSummarySeconds = 8
	quizResultsSeconds = 6

	// finishedGraceSeconds keeps a finished room alive long enough for
	// final results to be delivered before it is destroyed.
	finishedGraceSeconds = 60
)

// Config is the per-room round configuration chosen by the host.
type Config struct {
	TotalRounds  int `json:"total_rounds"`
	RoundSeconds int `json:"round_seconds"`
}

func (c Config) clamped() Config {
	if c.TotalRounds < 1 || c.TotalRounds > 10 {
		c.TotalRounds = 3
	}
	if c.RoundSeconds < 30 || c.RoundSeconds > 180 {
		c.RoundSeconds = 80
	}
	return c
}

// Conn is the transient, replaceable delivery endpoint for a participant.
// The transport layer supplies an implementation that is safe for
// concurrent writers.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Identity is the authenticated participant context supplied by the
// transport at connect time. Treated as already verified upstream.
type Identity struct {
	UserID string
	Name   string
	Clubs  []string
}

// MemberOf reports whether the identity may see and host rooms in the
// given scope. Everyone is a member of the public scope.
func (id Identity) MemberOf(scope string) bool {
	if scope == ScopePublic {
		return true
	}
	for _, c := range id.Clubs {
		if c == scope {
			return true
		}
	}
	return false
}

// Player is owned exclusively by its room. The connection handle may be
// replaced on reconnect without touching score or turn order.
type Player struct {
	ID        string
	Name      string
	Score     int
	TurnScore int
	conn      Conn
}

// PlayerView is the wire representation of a player.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	TurnScore int    `json:"turn_score"`
}

func (p *Player) view() PlayerView {
	return PlayerView{ID: p.ID, Name: p.Name, Score: p.Score, TurnScore: p.TurnScore}
}

// gameState is the closed tagged union over the three game variants.
// Implementations are drawingState, codeBreakerState and quizState.
type gameState interface {
	phase() string
	// snapshot returns the wire view of the state for one recipient;
	// privileged fields (secret code, unrevealed word) are redacted
	// unless the recipient holds the privileged role.
	snapshot(viewerID string) map[string]any
}

// Room is one ephemeral multiplayer session. All reads and writes to a
// room's state are serialized under mu; different rooms run in parallel.
type Room struct {
	mu sync.Mutex

	ID        string
	Name      string
	Scope     string
	Type      GameType
	Status    RoomStatus
	HostID    string
	Config    Config
	Players   []*Player
	CreatedAt time.Time

	state gameState

	reg        *Registry
	finishedAt time.Time
	timerEpoch uint64
	destroyed  bool
}

// RoomSummary is the lobby-directory view of an open room.
type RoomSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	GameType    GameType `json:"game_type"`
	Scope       string   `json:"scope"`
	HostName    string   `json:"host_name"`
	PlayerCount int      `json:"player_count"`
	MaxPlayers  int      `json:"max_players"`
	TotalRounds int      `json:"total_rounds"`
}

// Inbound is the envelope every client event arrives in.
type Inbound struct {
	Type   string          `json:"type"`
	RoomID string          `json:"room_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Outbound is the envelope every server event leaves in.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Question is one quiz round's content: a prompt, its correct answer and
// three decoys drawn from the same category.
type Question struct {
	Prompt string
	Answer string
	Decoys []string
}

// QuestionSource supplies quiz content. Implemented outside the core.
type QuestionSource interface {
	Draw() (Question, error)
}

// NotificationSink alerts club members when a room is hosted in their
// club. Calls are fire-and-forget; failures must not affect room creation.
type NotificationSink interface {
	NotifyRoomHosted(clubID, hostName, roomID string, gameType GameType)
}

// TurnDrawing is one finished turn's canvas: the word drawn and the
// stroke log that produced it.
type TurnDrawing struct {
	Word    string            `json:"word"`
	Strokes []json.RawMessage `json:"strokes"`
}

// DrawingArchiver stores the canvases of a finished drawing game, one
// entry per turn. Calls are fire-and-forget.
type DrawingArchiver interface {
	SaveDrawing(roomID, roomName string, turns []TurnDrawing)
}
