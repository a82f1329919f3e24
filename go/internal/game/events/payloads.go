// Package events holds the JSON payloads published on the games.events.*
// subjects, shared between the engine and any out-of-process consumer.
package events

import "time"

// Event types as they appear in the subject suffix.
const (
	TypeMatchFound   = "MatchFound"
	TypeGameStarted  = "GameStarted"
	TypeGameResolved = "GameResolved"
	TypeGameSettled  = "GameSettled"
)

// MatchFoundPayload is published when two players are paired.
type MatchFoundPayload struct {
	GameID  string    `json:"game_id"`
	Player1 int64     `json:"player1"`
	Player2 int64     `json:"player2"`
	Stake   string    `json:"stake"`
	FoundAt time.Time `json:"found_at"`
}

// GameStartedPayload is published when the round content is revealed.
type GameStartedPayload struct {
	GameID      string    `json:"game_id"`
	ChoiceCount int       `json:"choice_count"`
	StartedAt   time.Time `json:"started_at"`
	TimeoutAt   time.Time `json:"timeout_at"`
}

// GameResolvedPayload is published when the round's outcome is decided.
// Winner is nil for draws.
type GameResolvedPayload struct {
	GameID     string    `json:"game_id"`
	Winner     *int64    `json:"winner,omitempty"`
	Outcome    string    `json:"outcome"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// GameSettledPayload is published once the payout pass has run.
type GameSettledPayload struct {
	GameID      string    `json:"game_id"`
	Winner      *int64    `json:"winner,omitempty"`
	NetToWinner string    `json:"net_to_winner"`
	Fee         string    `json:"fee"`
	TxID        string    `json:"tx_id,omitempty"`
	Failure     string    `json:"failure,omitempty"`
	SettledAt   time.Time `json:"settled_at"`
}
