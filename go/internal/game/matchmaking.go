package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// WaitingEntry is one player waiting in a stake tier's queue.
type WaitingEntry struct {
	Player     models.PlayerID
	EnqueuedAt time.Time
}

// MatchResult is the outcome of an EnqueueOrMatch call. Matched is false
// while the player is parked in a tier queue waiting for a rival.
type MatchResult struct {
	Matched bool
	Session *Session
}

// Pool holds one FIFO queue per stake tier and pairs players whose stakes
// match exactly. The pool-wide mutex guards the waiting index (a player may
// wait in at most one tier); each tier additionally has its own lock so that
// enqueue, dequeue-and-match and cancel on the same tier are serialized.
// Lock order is always pool.mu before tier.mu.
type Pool struct {
	directory *Directory
	clock     clockwork.Clock

	mu      sync.Mutex
	waiting map[models.PlayerID]string
	tiers   map[string]*tier
}

type tier struct {
	mu      sync.Mutex
	stake   decimal.Decimal
	entries []WaitingEntry
}

// NewPool creates a pool with one empty queue per recognized stake tier.
func NewPool(directory *Directory, clock clockwork.Clock, stakes []decimal.Decimal) *Pool {
	p := &Pool{
		directory: directory,
		clock:     clock,
		waiting:   make(map[models.PlayerID]string),
		tiers:     make(map[string]*tier, len(stakes)),
	}
	for _, s := range stakes {
		p.tiers[s.String()] = &tier{stake: s}
	}
	return p
}

// EnqueueOrMatch either parks the player in the tier's queue or pairs them
// with the longest-waiting player of that tier. Strict FIFO per tier;
// cross-tier matching is never attempted.
func (p *Pool) EnqueueOrMatch(player models.PlayerID, stake decimal.Decimal) (MatchResult, error) {
	t, ok := p.tiers[stake.String()]
	if !ok {
		return MatchResult{}, ErrUnknownStake
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, queued := p.waiting[player]; queued {
		return MatchResult{}, ErrAlreadyQueued
	}
	if _, active := p.directory.ActiveByPlayer(player); active {
		return MatchResult{}, ErrAlreadyInSession
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) > 0 {
		head := t.entries[0]
		t.entries = t.entries[1:]
		delete(p.waiting, head.Player)

		session, err := p.directory.Create(head.Player, player, t.stake)
		if err != nil {
			// The head entry is consumed either way; it referenced a player
			// who slipped into a game through another path.
			log.Error().
				Int64("player", int64(head.Player)).
				Int64("rival", int64(player)).
				Err(err).
				Msg("failed to create session for matched pair")
			return MatchResult{}, err
		}

		log.Info().
			Str("game_id", session.ID.String()).
			Int64("player1", int64(head.Player)).
			Int64("player2", int64(player)).
			Str("stake", t.stake.String()).
			Msg("players matched")
		return MatchResult{Matched: true, Session: session}, nil
	}

	p.waiting[player] = stake.String()
	t.entries = append(t.entries, WaitingEntry{Player: player, EnqueuedAt: p.clock.Now()})
	log.Debug().
		Int64("player", int64(player)).
		Str("stake", t.stake.String()).
		Int("queue_len", len(t.entries)).
		Msg("player waiting for a rival")
	return MatchResult{Matched: false}, nil
}

// Cancel removes the player from whichever tier queue they occupy and reports
// whether a waiting entry was removed. An active session is unaffected.
func (p *Pool) Cancel(player models.PlayerID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, ok := p.waiting[player]
	if !ok {
		return false
	}
	delete(p.waiting, player)

	t := p.tiers[key]
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.entries {
		if e.Player == player {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			break
		}
	}
	log.Debug().Int64("player", int64(player)).Str("stake", key).Msg("matchmaking cancelled")
	return true
}

// IsWaiting reports whether the player has a waiting entry in any tier.
func (p *Pool) IsWaiting(player models.PlayerID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.waiting[player]
	return ok
}

// WaitingCount reports the total number of queued players across tiers.
func (p *Pool) WaitingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiting)
}
