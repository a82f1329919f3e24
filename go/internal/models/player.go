package models

import "strconv"

// PlayerID identifies a player by their chat account ID.
type PlayerID int64

func (p PlayerID) String() string {
	return strconv.FormatInt(int64(p), 10)
}
