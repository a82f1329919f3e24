package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a player's deposit address and spendable balance.
type Wallet struct {
	Player    PlayerID        `json:"player"`
	Address   string          `json:"address"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transaction is the receipt for a completed transfer.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	Player    PlayerID        `json:"player"`
	ToAddress string          `json:"to_address"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
