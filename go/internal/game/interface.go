package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/shopspring/decimal"
)

// Notifier delivers messages to players. Delivery is fire-and-forget from the
// engine's perspective; implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, player models.PlayerID, text string)
	NotifyWithChoices(ctx context.Context, player models.PlayerID, text string, choices []Choice)
	SendAudio(ctx context.Context, player models.PlayerID, path string)
}

// Choice is one button offered to a player.
type Choice struct {
	Label string
	Data  string
}

// Ledger moves value between player accounts. A non-error receipt from
// Transfer is authoritative success.
type Ledger interface {
	Balance(ctx context.Context, player models.PlayerID) (decimal.Decimal, error)
	DepositAddress(ctx context.Context, player models.PlayerID) (string, error)
	Transfer(ctx context.Context, from models.PlayerID, toAddress string, amount decimal.Decimal) (*models.Transaction, error)
}

// RoundContent is one round's worth of material: the correct song, four
// distractors and a local copy of the audio.
type RoundContent struct {
	CorrectID    string
	CorrectLabel string
	Choices      []ChoiceOption
	AudioPath    string
}

// ChoiceOption is a candidate answer shown to both players.
type ChoiceOption struct {
	ID    string
	Title string
}

// MediaStore selects round content and manages the temporary audio files
// backing it.
type MediaStore interface {
	PickRound(ctx context.Context) (*RoundContent, error)
	Release(path string)
}

// GameStore durably records games for audit. The engine tolerates eventual
// durability: store errors are logged, never folded into session state.
type GameStore interface {
	CreateGame(ctx context.Context, g *models.Game) error
	RecordAnswer(ctx context.Context, id uuid.UUID, answer string) error
	FinishGame(ctx context.Context, id uuid.UUID, winner *models.PlayerID) error
}

// EventPublisher publishes domain events best-effort.
type EventPublisher interface {
	Publish(eventType string, payload any)
}
