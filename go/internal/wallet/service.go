// Package wallet is the value ledger behind the game engine: one wallet row
// per player with a deposit address and a spendable balance, and a receipt
// row per transfer. Key custody and on-chain transaction construction live
// outside this service.
package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned when a transfer exceeds the sender's balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Service implements the engine's Ledger contract on Postgres.
type Service struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Balance returns the player's spendable balance, creating the wallet on
// first contact.
func (s *Service) Balance(ctx context.Context, player models.PlayerID) (decimal.Decimal, error) {
	w, err := s.getOrCreate(ctx, player)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// DepositAddress returns the player's deposit address, creating the wallet on
// first contact.
func (s *Service) DepositAddress(ctx context.Context, player models.PlayerID) (string, error) {
	w, err := s.getOrCreate(ctx, player)
	if err != nil {
		return "", err
	}
	return w.Address, nil
}

// Transfer debits the sender and credits the destination address if it
// belongs to an internal wallet; either way the transfer is recorded and a
// receipt returned. The balance check happens inside the same transaction as
// the debit so two concurrent transfers cannot both spend the same funds.
func (s *Service) Transfer(ctx context.Context, from models.PlayerID, toAddress string, amount decimal.Decimal) (*models.Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, fmt.Errorf("invalid transfer amount %s", amount)
	}
	if _, err := s.getOrCreate(ctx, from); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT balance FROM wallets WHERE uid = $1 FOR UPDATE`, int64(from),
	).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("lock sender wallet: %w", err)
	}
	if balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx,
		`UPDATE wallets SET balance = balance - $2 WHERE uid = $1`, int64(from), amount,
	); err != nil {
		return nil, fmt.Errorf("debit sender: %w", err)
	}

	// Credit only lands if the address is one of ours; an external address
	// just gets the receipt row and is reconciled out of band.
	tag, err := tx.Exec(ctx,
		`UPDATE wallets SET balance = balance + $2 WHERE address = $1`, toAddress, amount,
	)
	if err != nil {
		return nil, fmt.Errorf("credit recipient: %w", err)
	}

	receipt := &models.Transaction{
		ID:        uuid.New(),
		Player:    from,
		ToAddress: toAddress,
		Amount:    amount,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO transactions (id, uid, address, amount) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		receipt.ID, int64(from), toAddress, amount,
	).Scan(&receipt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer: %w", err)
	}

	log.Info().
		Int64("from", int64(from)).
		Str("to", toAddress).
		Str("amount", amount.String()).
		Bool("internal", tag.RowsAffected() > 0).
		Str("tx", receipt.ID.String()).
		Msg("transfer completed")
	return receipt, nil
}

// Deposit credits a player's wallet. Used by the operator tooling and tests;
// real deposits arrive through chain watching outside this service.
func (s *Service) Deposit(ctx context.Context, player models.PlayerID, amount decimal.Decimal) error {
	if _, err := s.getOrCreate(ctx, player); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE wallets SET balance = balance + $2 WHERE uid = $1`, int64(player), amount,
	)
	if err != nil {
		return fmt.Errorf("credit deposit: %w", err)
	}
	return nil
}

func (s *Service) getOrCreate(ctx context.Context, player models.PlayerID) (*models.Wallet, error) {
	w := &models.Wallet{Player: player}
	err := s.pool.QueryRow(ctx,
		`SELECT address, balance, created_at FROM wallets WHERE uid = $1`, int64(player),
	).Scan(&w.Address, &w.Balance, &w.CreatedAt)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	address, err := newAddress()
	if err != nil {
		return nil, err
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO wallets (uid, address, balance) VALUES ($1, $2, 0)
		 ON CONFLICT (uid) DO UPDATE SET uid = EXCLUDED.uid
		 RETURNING address, balance, created_at`,
		int64(player), address,
	).Scan(&w.Address, &w.Balance, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	log.Info().Int64("player", int64(player)).Str("address", w.Address).Msg("wallet created")
	return w, nil
}

// newAddress generates an opaque deposit address. The custody layer maps it
// to key material; the engine only ever treats it as an identifier.
func newAddress() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate address: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}
