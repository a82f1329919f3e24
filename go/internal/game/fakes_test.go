package game

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/shopspring/decimal"
)

// fakeNotifier records every message and mirrors them onto a channel so tests
// can wait for asynchronous deliveries.
type fakeNotifier struct {
	mu     sync.Mutex
	texts  map[models.PlayerID][]string
	audios map[models.PlayerID][]string
	ch     chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		texts:  make(map[models.PlayerID][]string),
		audios: make(map[models.PlayerID][]string),
		ch:     make(chan string, 64),
	}
}

func (f *fakeNotifier) Notify(_ context.Context, player models.PlayerID, text string) {
	f.mu.Lock()
	f.texts[player] = append(f.texts[player], text)
	f.mu.Unlock()
	select {
	case f.ch <- text:
	default:
	}
}

func (f *fakeNotifier) NotifyWithChoices(ctx context.Context, player models.PlayerID, text string, _ []Choice) {
	f.Notify(ctx, player, text)
}

func (f *fakeNotifier) SendAudio(_ context.Context, player models.PlayerID, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audios[player] = append(f.audios[player], path)
}

func (f *fakeNotifier) textsFor(player models.PlayerID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts[player]...)
}

func (f *fakeNotifier) contains(player models.PlayerID, substr func(string) bool) bool {
	for _, s := range f.textsFor(player) {
		if substr(s) {
			return true
		}
	}
	return false
}

type transferCall struct {
	From   models.PlayerID
	To     string
	Amount decimal.Decimal
}

// fakeLedger is an in-memory Ledger with switchable failure modes.
type fakeLedger struct {
	mu          sync.Mutex
	balances    map[models.PlayerID]decimal.Decimal
	transfers   []transferCall
	failAddress bool
	failNet     bool
	failFee     bool
	feeAddress  string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[models.PlayerID]decimal.Decimal)}
}

func (f *fakeLedger) Balance(_ context.Context, player models.PlayerID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[player], nil
}

func (f *fakeLedger) DepositAddress(_ context.Context, player models.PlayerID) (string, error) {
	if f.failAddress {
		return "", errors.New("ledger unavailable")
	}
	return "0xaddr" + player.String(), nil
}

func (f *fakeLedger) Transfer(_ context.Context, from models.PlayerID, toAddress string, amount decimal.Decimal) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	isFee := toAddress == f.feeAddress
	if f.failNet && !isFee {
		return nil, errors.New("transfer rejected")
	}
	if f.failFee && isFee {
		return nil, errors.New("fee transfer rejected")
	}
	f.transfers = append(f.transfers, transferCall{From: from, To: toAddress, Amount: amount})
	return &models.Transaction{ID: uuid.New(), Player: from, ToAddress: toAddress, Amount: amount}, nil
}

func (f *fakeLedger) calls() []transferCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transferCall(nil), f.transfers...)
}

// fakeMedia returns a canned round.
type fakeMedia struct {
	mu       sync.Mutex
	content  *RoundContent
	err      error
	released []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		content: &RoundContent{
			CorrectID:    "song-1",
			CorrectLabel: "Artist One - First Song",
			Choices: []ChoiceOption{
				{ID: "song-1", Title: "Artist One - First Song"},
				{ID: "song-2", Title: "Artist Two - Second Song"},
				{ID: "song-3", Title: "Artist Three - Third Song"},
				{ID: "song-4", Title: "Artist Four - Fourth Song"},
				{ID: "song-5", Title: "Artist Five - Fifth Song"},
			},
			AudioPath: "temp/temp_song-1.mp3",
		},
	}
}

func (f *fakeMedia) PickRound(context.Context) (*RoundContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

func (f *fakeMedia) Release(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, path)
}

func (f *fakeMedia) releasedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}

// fakeStore records the durable writes.
type fakeStore struct {
	mu       sync.Mutex
	created  []*models.Game
	answers  map[uuid.UUID]string
	finished map[uuid.UUID]*models.PlayerID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		answers:  make(map[uuid.UUID]string),
		finished: make(map[uuid.UUID]*models.PlayerID),
	}
}

func (f *fakeStore) CreateGame(_ context.Context, g *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, g)
	return nil
}

func (f *fakeStore) RecordAnswer(_ context.Context, id uuid.UUID, answer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[id] = answer
	return nil
}

func (f *fakeStore) FinishGame(_ context.Context, id uuid.UUID, winner *models.PlayerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.finished[id]; dup {
		return errors.New("game finished twice")
	}
	f.finished[id] = winner
	return nil
}

func (f *fakeStore) finishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.finished)
}

func (f *fakeStore) winnerOf(id uuid.UUID) (*models.PlayerID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.finished[id]
	return w, ok
}

type publishedEvent struct {
	Type    string
	Payload any
}

// fakePublisher captures published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(eventType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Type: eventType, Payload: payload})
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}
