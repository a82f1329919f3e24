package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SettlementResult reports what the settlement pass did. Err carries a
// settlement failure (ledger unreachable, insufficient funds at transfer
// time); the session reaches SETTLED regardless so a broken ledger is never
// hammered with retries.
type SettlementResult struct {
	Transferred bool
	NetToWinner decimal.Decimal
	Fee         decimal.Decimal
	TxID        string
	Err         error
}

// Settler computes and executes the post-match payout: the winner receives
// the loser's stake minus the house fee, and the fee goes to the configured
// collection address. Draws and zero-stake games move nothing.
type Settler struct {
	ledger     Ledger
	feeRate    decimal.Decimal
	feeAddress string
}

func NewSettler(ledger Ledger, feeRate decimal.Decimal, feeAddress string) *Settler {
	return &Settler{
		ledger:     ledger,
		feeRate:    feeRate,
		feeAddress: feeAddress,
	}
}

// Settle runs the transfers for a resolved session. The caller is responsible
// for the exactly-once guard (Session.TryBeginSettlement); Settle itself holds
// no session lock so a slow ledger never stalls other players.
func (s *Settler) Settle(ctx context.Context, session *Session) SettlementResult {
	winner := session.Winner()
	stake := session.Stake()

	if winner == nil || stake.IsZero() {
		return SettlementResult{}
	}
	loser := session.Opponent(*winner)

	fee := stake.Mul(s.feeRate)
	net := stake.Sub(fee)
	result := SettlementResult{NetToWinner: net, Fee: fee}

	winnerAddr, err := s.ledger.DepositAddress(ctx, *winner)
	if err != nil {
		result.Err = fmt.Errorf("resolve winner deposit address: %w", err)
		return result
	}

	tx, err := s.ledger.Transfer(ctx, loser, winnerAddr, net)
	if err != nil {
		result.Err = fmt.Errorf("transfer winnings: %w", err)
		return result
	}
	result.Transferred = true
	result.TxID = tx.ID.String()
	log.Info().
		Str("game_id", session.ID.String()).
		Int64("winner", int64(*winner)).
		Str("net", net.String()).
		Str("tx", result.TxID).
		Msg("winnings transferred")

	// The fee transfer is only attempted once the main transfer succeeded.
	if _, err := s.ledger.Transfer(ctx, loser, s.feeAddress, fee); err != nil {
		result.Err = fmt.Errorf("transfer fee: %w", err)
	}
	return result
}
