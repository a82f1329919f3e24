package game

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/rs/zerolog/log"
)

// TimeoutResolver finalizes a session that a watchdog has timed out.
type TimeoutResolver interface {
	ResolveTimeout(ctx context.Context, session *Session, player models.PlayerID, outcome TimeoutOutcome)
}

// warningBand is a one-shot "N seconds remaining" notice window. Bands are as
// wide as the tick cadence so each fires on exactly one tick, and a fired
// flag per watchdog keeps them one-shot even if the cadence ever changes.
type warningBand struct {
	after     time.Duration
	before    time.Duration
	remaining int
}

// warningBands places the 60/30/10 second notices relative to the window's
// deadline. Notices that do not fit inside the window are dropped.
func warningBands(window time.Duration) []warningBand {
	var bands []warningBand
	for _, remaining := range []int{60, 30, 10} {
		lead := time.Duration(remaining) * time.Second
		if lead >= window {
			continue
		}
		after := window - lead
		bands = append(bands, warningBand{
			after:     after,
			before:    after + 10*time.Second,
			remaining: remaining,
		})
	}
	return bands
}

// Scheduler runs one recurring watchdog per (session, player) pair. Each tick
// re-checks the termination conditions, emits at most one countdown notice,
// and past the deadline hands the session to the resolver exactly once across
// the pair's two watchdogs.
type Scheduler struct {
	clock    clockwork.Clock
	tick     time.Duration
	bands    []warningBand
	notifier Notifier
	resolver TimeoutResolver
}

func NewScheduler(clock clockwork.Clock, tick, window time.Duration, notifier Notifier, resolver TimeoutResolver) *Scheduler {
	return &Scheduler{
		clock:    clock,
		tick:     tick,
		bands:    warningBands(window),
		notifier: notifier,
		resolver: resolver,
	}
}

// Watch starts the watchdog goroutine for one player of a started session.
// It terminates when the player has answered, a winner is decided, the
// deadline is handled, or ctx is cancelled.
func (w *Scheduler) Watch(ctx context.Context, session *Session, player models.PlayerID) {
	go w.run(ctx, session, player)
}

func (w *Scheduler) run(ctx context.Context, session *Session, player models.PlayerID) {
	ticker := w.clock.NewTicker(w.tick)
	defer ticker.Stop()

	fired := make([]bool, len(w.bands))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		now := w.clock.Now()
		switch outcome := session.ExpireFor(player, now); outcome {
		case TimeoutNone:
			w.maybeWarn(ctx, session, player, now, fired)
		case TimeoutStop:
			log.Debug().
				Str("game_id", session.ID.String()).
				Int64("player", int64(player)).
				Msg("watchdog done, nothing left to guard")
			return
		default:
			log.Info().
				Str("game_id", session.ID.String()).
				Int64("player", int64(player)).
				Msg("answer deadline reached")
			w.resolver.ResolveTimeout(ctx, session, player, outcome)
			return
		}
	}
}

func (w *Scheduler) maybeWarn(ctx context.Context, session *Session, player models.PlayerID, now time.Time, fired []bool) {
	elapsed := now.Sub(session.StartedAt())
	for i, band := range w.bands {
		if fired[i] || elapsed <= band.after || elapsed >= band.before {
			continue
		}
		fired[i] = true
		w.notifier.Notify(ctx, player, fmt.Sprintf("You have %d seconds left.", band.remaining))
		return
	}
}
