package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"invigil/internal/cache"
	"invigil/internal/config"
	"invigil/internal/db"
	"invigil/internal/models"
	"invigil/internal/tui"
)

// staleAfter is how old a cached timer state may be before recovery is
// refused and the session restarts from pre_exam.
const staleAfter = 12 * time.Hour

var runCmd = &cobra.Command{
	Use:   "run [session-id]",
	Short: "Open the invigilation board for a session",
	Long: `Open the interactive countdown board for a session.

The board shows every desk sorted by adjusted finish time, with green/amber/
red urgency colors. Keys on the board start the session, pause/resume it and
grant D.P. extra time to the selected desk. If redis recovery is enabled in
the config and a fresh timer state is cached, a restarted board picks up
where the previous one left off.`,
	Args: cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		session, err := db.LoadSession(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		var timerCache cache.TimerCache
		if cfg.RedisEnabled {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			timerCache, err = cache.NewTimerCache(ctx, cfg.RedisAddr)
			cancel()
			if err != nil {
				// Recovery is best-effort; run without it
				fmt.Printf("⚠️  redis unavailable at %s, running without restart recovery\n", cfg.RedisAddr)
				timerCache = nil
			}
		}

		state := recoverTimerState(timerCache, session.ID)

		if err := tui.RunBoard(session, state, timerCache); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}),
}

// recoverTimerState restores a cached timer state from a previous process,
// rebasing its elapsed time onto this process's monotonic clock. Anything
// stale, unreadable or still in pre_exam starts fresh.
func recoverTimerState(timerCache cache.TimerCache, sessionID string) models.TimerState {
	fresh := models.NewTimerState()
	if timerCache == nil {
		return fresh
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cached, err := timerCache.Get(ctx, sessionID)
	if err != nil {
		return fresh
	}

	state := cached.State
	if state.Phase == models.PhasePreExam {
		return fresh
	}

	nowWall := time.Now().UnixMilli()
	age := nowWall - cached.WallClockSaveMs
	if age < 0 || age > staleAfter.Milliseconds() {
		return fresh
	}

	// Elapsed countdown time at the moment the old process saved
	ref := cached.MonotonicSaveMs
	if state.IsPaused && state.PausedAtMonotonicMs != nil {
		ref = *state.PausedAtMonotonicMs
	}
	elapsedAtSave := ref - state.MonotonicStartMs - state.PausedDurationMs

	nowMono := tui.MonotonicNowMs()
	if state.IsPaused {
		// Still frozen at the elapsed time it was paused with
		state.MonotonicStartMs = nowMono - elapsedAtSave
		state.PausedDurationMs = 0
		pausedAt := nowMono
		state.PausedAtMonotonicMs = &pausedAt
	} else {
		// The countdown kept running while the board was down; charge the
		// wall-clock gap against it
		state.MonotonicStartMs = nowMono - (elapsedAtSave + age)
		state.PausedDurationMs = 0
		state.PausedAtMonotonicMs = nil
	}

	fmt.Println("♻️  Recovered timer state from a previous run")
	return state
}
