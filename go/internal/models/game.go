package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameStatus defines the lifecycle stage of a game.
type GameStatus string

const (
	GameStatusCreated  GameStatus = "CREATED"
	GameStatusStarted  GameStatus = "STARTED"
	GameStatusResolved GameStatus = "RESOLVED"
	GameStatusSettled  GameStatus = "SETTLED"
)

// Game is the durable record of one match between two players.
type Game struct {
	ID         uuid.UUID       `json:"id"`
	Player1    PlayerID        `json:"player1"`
	Player2    PlayerID        `json:"player2"`
	Stake      decimal.Decimal `json:"stake"`
	Answer     string          `json:"answer,omitempty"`
	Winner     *PlayerID       `json:"winner,omitempty"`
	Status     GameStatus      `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
