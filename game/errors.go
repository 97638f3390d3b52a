package game

import "errors"

// Rejected commands. Reported to the originating connection only; no room
// state is mutated. Anything else inbound that does not match the current
// phase is a stale event and is dropped silently.
var (
	ErrRoomNotFound     = errors.New("room-not-found")
	ErrRoomFull         = errors.New("room-full")
	ErrNotHost          = errors.New("not-host")
	ErrNotEnoughPlayers = errors.New("not-enough-players")
	ErrWrongPhase       = errors.New("wrong-phase")
	ErrNotAuthorized    = errors.New("not-authorized")
	ErrAlreadyStarted   = errors.New("game-already-started")
	ErrBadPayload       = errors.New("bad-payload")
	ErrUnknownEvent     = errors.New("unknown-event")
	ErrUnknownGameType  = errors.New("unknown-game-type")
	ErrNotInRoom        = errors.New("not-in-room")
)
