package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_CreateAndLookup(t *testing.T) {
	d := NewDirectory(answerWindow)

	s, err := d.Create(1, 2, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())

	got, ok := d.Lookup(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	got, ok = d.LookupByPlayer(1)
	require.True(t, ok)
	assert.Same(t, s, got)
	got, ok = d.LookupByPlayer(2)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = d.Lookup(uuid.New())
	assert.False(t, ok)
	_, ok = d.LookupByPlayer(3)
	assert.False(t, ok)
}

func TestDirectory_OneActiveSessionPerPlayer(t *testing.T) {
	d := NewDirectory(answerWindow)

	_, err := d.Create(1, 2, decimal.Zero)
	require.NoError(t, err)

	_, err = d.Create(1, 3, decimal.Zero)
	assert.ErrorIs(t, err, ErrAlreadyInSession)
	_, err = d.Create(3, 2, decimal.Zero)
	assert.ErrorIs(t, err, ErrAlreadyInSession)

	_, err = d.Create(3, 4, decimal.Zero)
	assert.NoError(t, err)
}

func TestDirectory_SettledSessionIsNotActive(t *testing.T) {
	d := NewDirectory(answerWindow)

	s, err := d.Create(1, 2, decimal.Zero)
	require.NoError(t, err)

	s.ForceResolve()
	require.True(t, s.TryBeginSettlement())
	s.MarkSettled()

	// The settled session is still reachable by ID during retention, but it
	// no longer counts as "in a game".
	_, ok := d.Lookup(s.ID)
	assert.True(t, ok)
	_, ok = d.ActiveByPlayer(1)
	assert.False(t, ok)

	s2, err := d.Create(1, 3, decimal.Zero)
	require.NoError(t, err)
	got, ok := d.ActiveByPlayer(1)
	require.True(t, ok)
	assert.Same(t, s2, got)
}

func TestDirectory_ActiveLenExcludesRetainedSessions(t *testing.T) {
	d := NewDirectory(answerWindow)

	s, err := d.Create(1, 2, decimal.Zero)
	require.NoError(t, err)
	_, err = d.Create(3, 4, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 2, d.ActiveLen())

	s.ForceResolve()
	require.True(t, s.TryBeginSettlement())
	s.MarkSettled()

	// Retention keeps the settled session in the directory but it is no
	// longer load.
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 1, d.ActiveLen())

	d.Remove(s.ID)
	assert.Equal(t, 1, d.ActiveLen())
}

func TestDirectory_Remove(t *testing.T) {
	d := NewDirectory(answerWindow)

	s, err := d.Create(1, 2, decimal.Zero)
	require.NoError(t, err)

	d.Remove(s.ID)
	assert.Equal(t, 0, d.Len())
	_, ok := d.Lookup(s.ID)
	assert.False(t, ok)
	_, ok = d.LookupByPlayer(1)
	assert.False(t, ok)

	// Removing twice is a no-op.
	d.Remove(s.ID)
}

func TestDirectory_RemoveKeepsNewerIndex(t *testing.T) {
	d := NewDirectory(answerWindow)

	old, err := d.Create(1, 2, decimal.Zero)
	require.NoError(t, err)
	old.ForceResolve()
	require.True(t, old.TryBeginSettlement())
	old.MarkSettled()

	// Player 1 starts a new game while the settled one sits in retention.
	fresh, err := d.Create(1, 3, decimal.Zero)
	require.NoError(t, err)

	// Cleaning up the old session must not drop the index for the new one.
	d.Remove(old.ID)
	got, ok := d.LookupByPlayer(1)
	require.True(t, ok)
	assert.Same(t, fresh, got)
}

func TestDirectory_SessionInheritsWindow(t *testing.T) {
	d := NewDirectory(30 * time.Second)

	s, err := d.Create(1, 2, decimal.Zero)
	require.NoError(t, err)
	start := time.Now()
	require.NoError(t, s.Start("song-1", []string{"song-1"}, "A - B", "", start))

	_, err = s.SubmitAnswer(1, "song-1", start.Add(31*time.Second))
	assert.ErrorIs(t, err, ErrTimedOut)
}
