package game

import (
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStakes() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.Zero,
		decimal.RequireFromString("0.1"),
		decimal.RequireFromString("1"),
	}
}

func newTestPool() (*Pool, *Directory) {
	d := NewDirectory(answerWindow)
	p := NewPool(d, clockwork.NewFakeClock(), testStakes())
	return p, d
}

func TestPool_UnknownStakeRejected(t *testing.T) {
	p, _ := newTestPool()
	_, err := p.EnqueueOrMatch(1, decimal.RequireFromString("0.42"))
	assert.ErrorIs(t, err, ErrUnknownStake)
}

func TestPool_FirstPlayerWaits(t *testing.T) {
	p, _ := newTestPool()

	result, err := p.EnqueueOrMatch(1, decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Nil(t, result.Session)
	assert.True(t, p.IsWaiting(1))
	assert.Equal(t, 1, p.WaitingCount())
}

func TestPool_SecondPlayerMatches(t *testing.T) {
	p, d := newTestPool()
	stake := decimal.RequireFromString("0.1")

	_, err := p.EnqueueOrMatch(1, stake)
	require.NoError(t, err)

	result, err := p.EnqueueOrMatch(2, stake)
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.NotNil(t, result.Session)

	players := result.Session.Players()
	assert.Equal(t, models.PlayerID(1), players[0])
	assert.Equal(t, models.PlayerID(2), players[1])
	assert.True(t, result.Session.Stake().Equal(stake))

	// Neither player is waiting anymore; both are indexed in the directory.
	assert.False(t, p.IsWaiting(1))
	assert.False(t, p.IsWaiting(2))
	_, ok := d.ActiveByPlayer(1)
	assert.True(t, ok)
	_, ok = d.ActiveByPlayer(2)
	assert.True(t, ok)
}

func TestPool_DifferentStakesNeverMatch(t *testing.T) {
	p, _ := newTestPool()

	_, err := p.EnqueueOrMatch(1, decimal.RequireFromString("0.1"))
	require.NoError(t, err)

	result, err := p.EnqueueOrMatch(2, decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, 2, p.WaitingCount())
}

func TestPool_FIFOOrder(t *testing.T) {
	p, _ := newTestPool()
	stake := decimal.Zero

	// 1 waits, 2 matches 1. Then 3 waits, 4 matches 3.
	_, err := p.EnqueueOrMatch(1, stake)
	require.NoError(t, err)
	r2, err := p.EnqueueOrMatch(2, stake)
	require.NoError(t, err)
	require.True(t, r2.Matched)
	assert.Equal(t, models.PlayerID(1), r2.Session.Players()[0])

	_, err = p.EnqueueOrMatch(3, stake)
	require.NoError(t, err)
	r4, err := p.EnqueueOrMatch(4, stake)
	require.NoError(t, err)
	require.True(t, r4.Matched)
	assert.Equal(t, models.PlayerID(3), r4.Session.Players()[0])
}

func TestPool_DoubleEnqueueRejected(t *testing.T) {
	p, _ := newTestPool()

	_, err := p.EnqueueOrMatch(1, decimal.Zero)
	require.NoError(t, err)

	_, err = p.EnqueueOrMatch(1, decimal.Zero)
	assert.ErrorIs(t, err, ErrAlreadyQueued)

	// A different tier makes no difference.
	_, err = p.EnqueueOrMatch(1, decimal.RequireFromString("0.1"))
	assert.ErrorIs(t, err, ErrAlreadyQueued)
}

func TestPool_PlayerInSessionRejected(t *testing.T) {
	p, _ := newTestPool()
	stake := decimal.Zero

	_, err := p.EnqueueOrMatch(1, stake)
	require.NoError(t, err)
	result, err := p.EnqueueOrMatch(2, stake)
	require.NoError(t, err)
	require.True(t, result.Matched)

	_, err = p.EnqueueOrMatch(1, stake)
	assert.ErrorIs(t, err, ErrAlreadyInSession)
}

func TestPool_SettledSessionDoesNotBlockRequeue(t *testing.T) {
	p, _ := newTestPool()
	stake := decimal.Zero

	_, err := p.EnqueueOrMatch(1, stake)
	require.NoError(t, err)
	result, err := p.EnqueueOrMatch(2, stake)
	require.NoError(t, err)
	require.True(t, result.Matched)

	// Retention keeps the session in the directory, but once settled the
	// players may queue again.
	result.Session.ForceResolve()
	require.True(t, result.Session.TryBeginSettlement())
	result.Session.MarkSettled()

	r, err := p.EnqueueOrMatch(1, stake)
	require.NoError(t, err)
	assert.False(t, r.Matched)
	assert.True(t, p.IsWaiting(1))
}

func TestPool_Cancel(t *testing.T) {
	p, _ := newTestPool()

	assert.False(t, p.Cancel(1))

	_, err := p.EnqueueOrMatch(1, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, p.Cancel(1))
	assert.False(t, p.IsWaiting(1))
	assert.Equal(t, 0, p.WaitingCount())

	// Cancelled entry is really gone from the queue: next player waits.
	result, err := p.EnqueueOrMatch(2, decimal.Zero)
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

// Many players hitting one tier concurrently must be paired cleanly with no
// player in two sessions and no lost entries.
func TestPool_ConcurrentEnqueue(t *testing.T) {
	p, d := newTestPool()
	const n = 40

	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(player models.PlayerID) {
			defer wg.Done()
			_, err := p.EnqueueOrMatch(player, decimal.Zero)
			assert.NoError(t, err)
		}(models.PlayerID(i))
	}
	wg.Wait()

	assert.Equal(t, n/2, d.Len())
	assert.Equal(t, 0, p.WaitingCount())

	seen := make(map[models.PlayerID]bool)
	for i := 1; i <= n; i++ {
		s, ok := d.ActiveByPlayer(models.PlayerID(i))
		require.True(t, ok)
		require.False(t, seen[models.PlayerID(i)])
		seen[models.PlayerID(i)] = true
		assert.True(t, s.isMember(models.PlayerID(i)))
	}
}
