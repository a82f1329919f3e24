package game

import "errors"

var (
	// ErrUnknownStake is returned when the requested stake is not one of the configured tiers.
	ErrUnknownStake = errors.New("unrecognized stake amount")

	// ErrAlreadyQueued is returned when a player is already waiting in a matchmaking tier.
	ErrAlreadyQueued = errors.New("already in the matchmaking pool")

	// ErrAlreadyInSession is returned when a player is already part of an active game.
	ErrAlreadyInSession = errors.New("already in a game")

	// ErrInsufficientStake is returned when a player's balance is below the requested stake.
	ErrInsufficientStake = errors.New("insufficient balance for this stake")

	// ErrUnknownPlayer is returned when a player is not one of the session's two players.
	ErrUnknownPlayer = errors.New("player is not part of this game")

	// ErrAlreadyAnswered is returned when a player submits a second answer.
	ErrAlreadyAnswered = errors.New("player has already answered")

	// ErrAlreadyDecided is returned when the rival has already answered correctly.
	ErrAlreadyDecided = errors.New("rival has already answered correctly")

	// ErrInvalidState is returned on state machine misuse, e.g. starting a session twice.
	ErrInvalidState = errors.New("invalid game state for this operation")

	// ErrTimedOut is returned for answers submitted after the answer window closed.
	ErrTimedOut = errors.New("game has timed out")

	// ErrNoActiveGame is returned when a player submits an answer without being in a game.
	ErrNoActiveGame = errors.New("no active game for player")
)
