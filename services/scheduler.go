package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"club-games-system/game"

	"github.com/go-co-op/gocron/v2"
)

// lobbyMaxAge is the sweep threshold for lobbies nobody started: an hour
// unless LOBBY_MAX_AGE_MINUTES overrides it.
func lobbyMaxAge() time.Duration {
	maxAge := time.Hour
	if v := os.Getenv("LOBBY_MAX_AGE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			maxAge = time.Duration(minutes) * time.Minute
		} else {
			log.Printf("[Sweeper] invalid LOBBY_MAX_AGE_MINUTES %q, using default", v)
		}
	}
	return maxAge
}

// StartRoomSweeper runs the registry's stale-room backstop every minute:
// finished rooms whose grace period lapsed and lobbies nobody started.
func StartRoomSweeper(reg *game.Registry) {
	maxLobbyAge := lobbyMaxAge()

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create sweeper scheduler: %v", err)
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			reg.Sweep(maxLobbyAge)
		}),
	); err != nil {
		log.Fatalf("❌ Failed to schedule room sweep: %v", err)
	}
	sched.Start()
}
