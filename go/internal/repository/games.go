// Package repository provides the Postgres-backed stores for games and the
// song catalog.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/songrival/go/internal/models"
)

// GameRepository records games for audit. Writes are append/update only; the
// engine never reads game rows back on the hot path.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// CreateGame inserts the skeleton row at match time: pair, stake, status.
func (r *GameRepository) CreateGame(ctx context.Context, g *models.Game) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO games (id, u1, u2, bet, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, int64(g.Player1), int64(g.Player2), g.Stake, string(g.Status), g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// RecordAnswer stores the round's correct answer once the round starts.
func (r *GameRepository) RecordAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE games SET answer = $2, status = $3, started_at = now() WHERE id = $1`,
		id, answer, string(models.GameStatusStarted),
	)
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

// FinishGame writes the final outcome. winner is nil for draws.
func (r *GameRepository) FinishGame(ctx context.Context, id uuid.UUID, winner *models.PlayerID) error {
	var w *int64
	if winner != nil {
		v := int64(*winner)
		w = &v
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE games SET winner = $2, status = $3, finished_at = now() WHERE id = $1`,
		id, w, string(models.GameStatusSettled),
	)
	if err != nil {
		return fmt.Errorf("failed to finish game: %w", err)
	}
	return nil
}
