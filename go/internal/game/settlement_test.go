package game

import (
	"context"
	"testing"
	"time"

	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedSessionWithWinner(t *testing.T, stake string, winner models.PlayerID) *Session {
	t.Helper()
	s := NewSession(1, 2, decimal.RequireFromString(stake), answerWindow)
	start := time.Now()
	require.NoError(t, s.Start("song-1", []string{"song-1", "song-2"}, "A - B", "", start))
	_, err := s.SubmitAnswer(winner, "song-1", start.Add(time.Second))
	require.NoError(t, err)
	return s
}

func newTestSettler(ledger *fakeLedger) *Settler {
	ledger.feeAddress = "0xfee"
	return NewSettler(ledger, decimal.RequireFromString("0.5"), "0xfee")
}

func TestSettler_WinnerPaidNetOfFee(t *testing.T) {
	ledger := newFakeLedger()
	settler := newTestSettler(ledger)
	s := resolvedSessionWithWinner(t, "1", 1)

	result := settler.Settle(context.Background(), s)
	require.NoError(t, result.Err)
	assert.True(t, result.Transferred)
	assert.True(t, result.NetToWinner.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, result.Fee.Equal(decimal.RequireFromString("0.5")))
	assert.NotEmpty(t, result.TxID)

	calls := ledger.calls()
	require.Len(t, calls, 2)

	// Loser pays the winner's address first, then the house.
	assert.Equal(t, models.PlayerID(2), calls[0].From)
	assert.Equal(t, "0xaddr1", calls[0].To)
	assert.True(t, calls[0].Amount.Equal(decimal.RequireFromString("0.5")))

	assert.Equal(t, models.PlayerID(2), calls[1].From)
	assert.Equal(t, "0xfee", calls[1].To)
	assert.True(t, calls[1].Amount.Equal(decimal.RequireFromString("0.5")))
}

func TestSettler_FractionalStake(t *testing.T) {
	ledger := newFakeLedger()
	settler := newTestSettler(ledger)
	s := resolvedSessionWithWinner(t, "0.1", 2)

	result := settler.Settle(context.Background(), s)
	require.NoError(t, result.Err)
	assert.True(t, result.NetToWinner.Equal(decimal.RequireFromString("0.05")))
	assert.True(t, result.Fee.Equal(decimal.RequireFromString("0.05")))

	calls := ledger.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, models.PlayerID(1), calls[0].From)
	assert.Equal(t, "0xaddr2", calls[0].To)
}

func TestSettler_DrawMovesNothing(t *testing.T) {
	ledger := newFakeLedger()
	settler := newTestSettler(ledger)

	s := NewSession(1, 2, decimal.RequireFromString("1"), answerWindow)
	start := time.Now()
	require.NoError(t, s.Start("song-1", []string{"song-1", "song-2"}, "A - B", "", start))
	s.ExpireFor(1, start.Add(answerWindow))

	result := settler.Settle(context.Background(), s)
	require.NoError(t, result.Err)
	assert.False(t, result.Transferred)
	assert.Empty(t, ledger.calls())
}

func TestSettler_ZeroStakeMovesNothing(t *testing.T) {
	ledger := newFakeLedger()
	settler := newTestSettler(ledger)
	s := resolvedSessionWithWinner(t, "0", 1)

	result := settler.Settle(context.Background(), s)
	require.NoError(t, result.Err)
	assert.False(t, result.Transferred)
	assert.Empty(t, ledger.calls())
}

func TestSettler_AddressFailureAbortsBothTransfers(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failAddress = true
	settler := newTestSettler(ledger)
	s := resolvedSessionWithWinner(t, "1", 1)

	result := settler.Settle(context.Background(), s)
	require.Error(t, result.Err)
	assert.False(t, result.Transferred)
	assert.Empty(t, ledger.calls())
}

func TestSettler_NetFailureSkipsFee(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failNet = true
	settler := newTestSettler(ledger)
	s := resolvedSessionWithWinner(t, "1", 1)

	result := settler.Settle(context.Background(), s)
	require.Error(t, result.Err)
	assert.False(t, result.Transferred)
	// No fee may be collected when the winner was never paid.
	assert.Empty(t, ledger.calls())
}

func TestSettler_FeeFailureStillCountsTransfer(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failFee = true
	settler := newTestSettler(ledger)
	s := resolvedSessionWithWinner(t, "1", 1)

	result := settler.Settle(context.Background(), s)
	require.Error(t, result.Err)
	assert.True(t, result.Transferred)

	calls := ledger.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "0xaddr1", calls[0].To)
}
