package game

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/songrival/go/internal/game/events"
	"github.com/mcdev12/songrival/go/internal/metrics"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AppConfig carries the engine's tunables.
type AppConfig struct {
	// AnswerWindow is the time both players have to answer, counted from the
	// moment the round content is revealed.
	AnswerWindow time.Duration
	// WatchdogTick is the watchdog wake cadence.
	WatchdogTick time.Duration
	// Retention is how long a settled session (and its temp audio) is kept
	// around so late UI actions referencing it resolve gracefully.
	Retention time.Duration
	// CountdownSec is the pre-round countdown announced to both players.
	// Zero skips the countdown entirely.
	CountdownSec int
	// Currency is the display unit used in payout messages.
	Currency string
}

// App wires the matchmaking pool, session directory, watchdog scheduler and
// settlement engine together and drives them from player actions. It is the
// single entry point the chat front end talks to.
type App struct {
	ctx       context.Context
	cfg       AppConfig
	clock     clockwork.Clock
	pool      *Pool
	directory *Directory
	scheduler *Scheduler
	settler   *Settler
	ledger    Ledger
	media     MediaStore
	store     GameStore
	notifier  Notifier
	events    EventPublisher
	metrics   *metrics.Manager
}

// NewApp builds the engine. ctx bounds the lifetime of every background task
// the app spawns (round starters, watchdogs, cleanup timers).
func NewApp(
	ctx context.Context,
	cfg AppConfig,
	clock clockwork.Clock,
	stakes []decimal.Decimal,
	settler *Settler,
	ledger Ledger,
	media MediaStore,
	store GameStore,
	notifier Notifier,
	publisher EventPublisher,
	m *metrics.Manager,
) *App {
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		clock:    clock,
		settler:  settler,
		ledger:   ledger,
		media:    media,
		store:    store,
		notifier: notifier,
		events:   publisher,
		metrics:  m,
	}
	a.directory = NewDirectory(cfg.AnswerWindow)
	a.pool = NewPool(a.directory, clock, stakes)
	a.scheduler = NewScheduler(clock, cfg.WatchdogTick, cfg.AnswerWindow, notifier, a)
	return a
}

// Directory exposes the session directory for lookups by the front end.
func (a *App) Directory() *Directory { return a.directory }

// JoinMatchmaking queues the player for the given stake or pairs them with a
// waiting rival. For paid tiers the player's balance is checked up front so a
// broke player never occupies a queue slot.
func (a *App) JoinMatchmaking(ctx context.Context, player models.PlayerID, stake decimal.Decimal) (MatchResult, error) {
	if a.pool.IsWaiting(player) {
		return MatchResult{}, ErrAlreadyQueued
	}
	if _, active := a.directory.ActiveByPlayer(player); active {
		return MatchResult{}, ErrAlreadyInSession
	}
	if !stake.IsZero() {
		balance, err := a.ledger.Balance(ctx, player)
		if err != nil {
			return MatchResult{}, fmt.Errorf("check balance: %w", err)
		}
		if balance.LessThan(stake) {
			return MatchResult{}, ErrInsufficientStake
		}
	}

	result, err := a.pool.EnqueueOrMatch(player, stake)
	if err != nil {
		return MatchResult{}, err
	}
	a.metrics.SetWaitingPlayers(a.pool.WaitingCount())

	if result.Matched {
		session := result.Session
		a.metrics.RecordMatchStarted()
		a.metrics.SetActiveSessions(a.directory.ActiveLen())

		players := session.Players()
		now := a.clock.Now()
		record := &models.Game{
			ID:        session.ID,
			Player1:   players[0],
			Player2:   players[1],
			Stake:     session.Stake(),
			Status:    models.GameStatusCreated,
			CreatedAt: now,
		}
		if err := a.store.CreateGame(ctx, record); err != nil {
			log.Error().Err(err).Str("game_id", session.ID.String()).Msg("failed to persist new game")
		}
		a.events.Publish(events.TypeMatchFound, events.MatchFoundPayload{
			GameID:  session.ID.String(),
			Player1: int64(players[0]),
			Player2: int64(players[1]),
			Stake:   session.Stake().String(),
			FoundAt: now,
		})

		go a.runRound(session)
	}
	return result, nil
}

// CancelMatchmaking removes a queued player and reports whether they were
// actually waiting. An active game is not affected.
func (a *App) CancelMatchmaking(player models.PlayerID) bool {
	removed := a.pool.Cancel(player)
	if removed {
		a.metrics.SetWaitingPlayers(a.pool.WaitingCount())
	}
	return removed
}

// runRound announces the match, fetches round content and starts the clock
// for both players. Runs on its own goroutine per match; uses the app
// lifetime context so a finished chat interaction cannot cancel a running
// round.
func (a *App) runRound(session *Session) {
	ctx := a.ctx
	players := session.Players()

	if a.cfg.CountdownSec > 0 {
		a.notifyBoth(ctx, session, fmt.Sprintf("Match found! Starting game...\n\nStarting in *%d* seconds.", a.cfg.CountdownSec))
		for i := a.cfg.CountdownSec - 1; i >= 1; i-- {
			a.clock.Sleep(time.Second)
			a.notifyBoth(ctx, session, fmt.Sprintf("*%d*", i))
		}
		a.clock.Sleep(time.Second)
	} else {
		a.notifyBoth(ctx, session, "Match found! Starting game...")
	}

	content, err := a.media.PickRound(ctx)
	if err != nil {
		log.Error().Err(err).Str("game_id", session.ID.String()).Msg("failed to pick round content, abandoning match")
		a.notifyBoth(ctx, session, "Something went wrong starting the game. The match is cancelled.")
		a.abandonSession(ctx, session)
		return
	}

	choiceIDs := make([]string, len(content.Choices))
	buttons := make([]Choice, len(content.Choices))
	for i, c := range content.Choices {
		choiceIDs[i] = c.ID
		buttons[i] = Choice{Label: c.Title, Data: c.ID}
	}

	now := a.clock.Now()
	if err := session.Start(content.CorrectID, choiceIDs, content.CorrectLabel, content.AudioPath, now); err != nil {
		log.Error().Err(err).Str("game_id", session.ID.String()).Msg("failed to start session")
		return
	}
	if err := a.store.RecordAnswer(ctx, session.ID, content.CorrectID); err != nil {
		log.Error().Err(err).Str("game_id", session.ID.String()).Msg("failed to persist round answer")
	}

	prompt := fmt.Sprintf("You have %d seconds to answer", int(a.cfg.AnswerWindow.Seconds()))
	for _, p := range players {
		a.notifier.SendAudio(ctx, p, content.AudioPath)
		a.notifier.NotifyWithChoices(ctx, p, prompt, buttons)
		a.scheduler.Watch(ctx, session, p)
	}

	a.events.Publish(events.TypeGameStarted, events.GameStartedPayload{
		GameID:      session.ID.String(),
		ChoiceCount: len(choiceIDs),
		StartedAt:   now,
		TimeoutAt:   now.Add(a.cfg.AnswerWindow),
	})
	log.Info().
		Str("game_id", session.ID.String()).
		Int64("player1", int64(players[0])).
		Int64("player2", int64(players[1])).
		Msg("round started")
}

// SubmitAnswer records the player's guess and plays out the consequences:
// win notifications and settlement, a waiting notice, or a draw.
func (a *App) SubmitAnswer(ctx context.Context, player models.PlayerID, choiceID string) error {
	session, ok := a.directory.LookupByPlayer(player)
	if !ok {
		return ErrNoActiveGame
	}

	outcome, err := session.SubmitAnswer(player, choiceID, a.clock.Now())
	if err != nil {
		return err
	}

	rival := session.Opponent(player)
	reveal := fmt.Sprintf("Correct song was *%s*", session.Reveal())

	switch outcome {
	case OutcomeCorrectFirst:
		if session.Stake().IsZero() {
			a.notifier.Notify(ctx, player, "Correct guess! You've won.\n\nWanna play again? /start")
		} else {
			a.notifier.Notify(ctx, player, fmt.Sprintf("Correct guess! You've won %s %s\n\nWanna play again? /start", session.Stake(), a.cfg.Currency))
		}
		a.notifier.Notify(ctx, rival, "Your rival has guessed correctly, you have lost.\n"+reveal+"\n\nWanna play again? /start")
		a.finalize(ctx, session, metrics.OutcomeWin)

	case OutcomeIncorrectWaiting:
		a.notifier.Notify(ctx, player, "Wrong answer! Waiting for your rival's answer.\nIf they answer wrong too, it's a draw.")
		a.notifier.Notify(ctx, rival, "Your opponent has answered before you. If they answer correctly, you lose.")

	case OutcomeIncorrectDraw:
		a.notifier.Notify(ctx, player, "Wrong answer!\nYour rival also guessed incorrectly. It's a draw.\n"+reveal+"\n\nWanna play again? /start")
		a.notifier.Notify(ctx, rival, "Your rival has answered incorrectly. It's a draw.\n"+reveal+"\n\nWanna play again? /start")
		a.finalize(ctx, session, metrics.OutcomeDraw)
	}
	return nil
}

// ResolveTimeout is the watchdog's resolution callback. The session is
// already marked RESOLVED by the watchdog that got here; this finishes the
// messaging and settlement.
func (a *App) ResolveTimeout(ctx context.Context, session *Session, player models.PlayerID, outcome TimeoutOutcome) {
	rival := session.Opponent(player)

	switch outcome {
	case TimeoutFullDraw:
		a.notifyBoth(ctx, session, "Both players have timed out. It's a draw.\n\nWanna play again? /start")
	case TimeoutHalfDraw:
		a.notifier.Notify(ctx, player, "You have timed out. It's a draw.\n\nWanna play again? /start")
		a.notifier.Notify(ctx, rival, "Your rival has timed out. It's a draw.\n\nWanna play again? /start")
	default:
		return
	}

	a.metrics.RecordWatchdogTimeout()
	a.finalize(ctx, session, metrics.OutcomeDraw)
}

// finalize performs the RESOLVED→SETTLED transition exactly once: settlement
// transfers, the durable game record, events and delayed cleanup. Racing
// callers (answer path, both watchdogs) are shed by the session's guard.
func (a *App) finalize(ctx context.Context, session *Session, outcome string) {
	if !session.TryBeginSettlement() {
		return
	}

	winner := session.Winner()
	result := a.settler.Settle(ctx, session)
	if result.Err != nil {
		// Surfaced for operators; the session still settles so a broken
		// ledger is not retried on every tick.
		log.Error().
			Err(result.Err).
			Str("game_id", session.ID.String()).
			Str("stake", session.Stake().String()).
			Msg("settlement failed, manual reconciliation required")
		a.metrics.RecordSettlementFailure()
	}

	if err := a.store.FinishGame(ctx, session.ID, winner); err != nil {
		log.Error().Err(err).Str("game_id", session.ID.String()).Msg("failed to persist game result")
	}
	session.MarkSettled()
	a.metrics.RecordSettlement(outcome)
	a.metrics.SetActiveSessions(a.directory.ActiveLen())

	var winnerID *int64
	if winner != nil {
		w := int64(*winner)
		winnerID = &w
	}
	a.events.Publish(events.TypeGameResolved, events.GameResolvedPayload{
		GameID:     session.ID.String(),
		Winner:     winnerID,
		Outcome:    outcome,
		ResolvedAt: a.clock.Now(),
	})
	settled := events.GameSettledPayload{
		GameID:      session.ID.String(),
		Winner:      winnerID,
		NetToWinner: result.NetToWinner.String(),
		Fee:         result.Fee.String(),
		TxID:        result.TxID,
		SettledAt:   a.clock.Now(),
	}
	if result.Err != nil {
		settled.Failure = result.Err.Error()
	}
	a.events.Publish(events.TypeGameSettled, settled)

	a.scheduleCleanup(session)
}

// abandonSession force-settles a session that never got a round, as a draw.
func (a *App) abandonSession(ctx context.Context, session *Session) {
	session.ForceResolve()
	if !session.TryBeginSettlement() {
		return
	}
	if err := a.store.FinishGame(ctx, session.ID, nil); err != nil {
		log.Error().Err(err).Str("game_id", session.ID.String()).Msg("failed to persist abandoned game")
	}
	session.MarkSettled()
	a.metrics.RecordSettlement(metrics.OutcomeDraw)
	a.directory.Remove(session.ID)
	a.metrics.SetActiveSessions(a.directory.ActiveLen())
}

// scheduleCleanup releases the round's temp audio and drops the session from
// the directory once the retention window has passed.
func (a *App) scheduleCleanup(session *Session) {
	timer := a.clock.NewTimer(a.cfg.Retention)
	go func() {
		defer timer.Stop()
		select {
		case <-timer.Chan():
		case <-a.ctx.Done():
			return
		}
		if path := session.AudioPath(); path != "" {
			a.media.Release(path)
		}
		a.directory.Remove(session.ID)
		a.metrics.SetActiveSessions(a.directory.ActiveLen())
		log.Debug().Str("game_id", session.ID.String()).Msg("session cleaned up after retention window")
	}()
}

func (a *App) notifyBoth(ctx context.Context, session *Session, text string) {
	for _, p := range session.Players() {
		a.notifier.Notify(ctx, p, text)
	}
}
