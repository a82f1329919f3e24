package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/shopspring/decimal"
)

// Directory maps session IDs and player IDs to active sessions, giving O(1)
// answers to "is this player in a game" and "does this session exist".
type Directory struct {
	window time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	byPlayer map[models.PlayerID]uuid.UUID
}

// NewDirectory creates an empty directory. window is the per-round answer
// window passed to each created session.
func NewDirectory(window time.Duration) *Directory {
	return &Directory{
		window:   window,
		sessions: make(map[uuid.UUID]*Session),
		byPlayer: make(map[models.PlayerID]uuid.UUID),
	}
}

// Create makes a new session for the pair and indexes both players. At most
// one active session may exist per player; a second registration fails. A
// settled session lingering through its retention window does not block its
// players from being matched again, it just loses their index entries.
func (d *Directory) Create(p1, p2 models.PlayerID, stake decimal.Decimal) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activeLocked(p1) != nil || d.activeLocked(p2) != nil {
		return nil, ErrAlreadyInSession
	}

	s := NewSession(p1, p2, stake, d.window)
	d.sessions[s.ID] = s
	d.byPlayer[p1] = s.ID
	d.byPlayer[p2] = s.ID
	return s, nil
}

// activeLocked returns the non-settled session a player is indexed to, if any.
// Caller holds d.mu.
func (d *Directory) activeLocked(player models.PlayerID) *Session {
	id, ok := d.byPlayer[player]
	if !ok {
		return nil
	}
	s, ok := d.sessions[id]
	if !ok || s.Status() == models.GameStatusSettled {
		return nil
	}
	return s
}

// Lookup returns the session with the given ID, if present.
func (d *Directory) Lookup(id uuid.UUID) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[id]
	return s, ok
}

// LookupByPlayer returns the active session a player belongs to, if any.
func (d *Directory) LookupByPlayer(player models.PlayerID) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byPlayer[player]
	if !ok {
		return nil, false
	}
	s, ok := d.sessions[id]
	return s, ok
}

// Remove drops the session and both player indexes.
func (d *Directory) Remove(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[id]
	if !ok {
		return
	}
	delete(d.sessions, id)
	for _, p := range s.Players() {
		if d.byPlayer[p] == id {
			delete(d.byPlayer, p)
		}
	}
}

// ActiveByPlayer returns the session a player is currently playing in.
// Settled sessions held for the retention window do not count.
func (d *Directory) ActiveByPlayer(player models.PlayerID) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := d.activeLocked(player)
	return s, s != nil
}

// Len reports the number of live sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// ActiveLen reports the number of sessions still being played. Settled
// sessions waiting out their retention window are excluded.
func (d *Directory) ActiveLen() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, s := range d.sessions {
		if s.Status() != models.GameStatusSettled {
			n++
		}
	}
	return n
}
