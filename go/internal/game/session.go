package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/shopspring/decimal"
)

// Outcome classifies the result of a single answer submission.
type Outcome int

const (
	// OutcomeCorrectFirst means this player answered correctly and won the round.
	OutcomeCorrectFirst Outcome = iota
	// OutcomeIncorrectWaiting means the answer was wrong and the rival is still to answer.
	OutcomeIncorrectWaiting
	// OutcomeIncorrectDraw means both players answered wrong; the round is a draw.
	OutcomeIncorrectDraw
)

// TimeoutOutcome classifies what a watchdog found at its tick.
type TimeoutOutcome int

const (
	// TimeoutNone: deadline not reached, watchdog keeps ticking.
	TimeoutNone TimeoutOutcome = iota
	// TimeoutStop: the watchdog's player answered, a winner exists, or the
	// session is already resolved. Nothing left for this watchdog to do.
	TimeoutStop
	// TimeoutFullDraw: deadline reached and neither player ever answered.
	TimeoutFullDraw
	// TimeoutHalfDraw: deadline reached; the rival answered (incorrectly)
	// but this player never did.
	TimeoutHalfDraw
)

// Session is one matched pair of players playing one round. All mutable state
// is guarded by a single mutex: answer submission and the watchdog deadline
// branch both need their check-and-set sequences to be atomic, otherwise two
// concurrent callers could both observe "no winner yet" and both claim the win.
type Session struct {
	ID uuid.UUID

	players [2]models.PlayerID
	stake   decimal.Decimal
	window  time.Duration

	mu        sync.Mutex
	status    models.GameStatus
	correct   string
	choices   []string
	reveal    string
	audioPath string
	startedAt time.Time
	answered  []models.PlayerID
	winner    *models.PlayerID
	settling  bool
}

// NewSession creates a session in the CREATED state. The player pair, stake
// and answer window are immutable afterwards.
func NewSession(p1, p2 models.PlayerID, stake decimal.Decimal, window time.Duration) *Session {
	return &Session{
		ID:      uuid.New(),
		players: [2]models.PlayerID{p1, p2},
		stake:   stake,
		window:  window,
		status:  models.GameStatusCreated,
	}
}

func (s *Session) Players() [2]models.PlayerID { return s.players }

func (s *Session) Stake() decimal.Decimal { return s.stake }

// Opponent returns the other member of the pair. The caller must pass one of
// the session's own players.
func (s *Session) Opponent(player models.PlayerID) models.PlayerID {
	if player == s.players[1] {
		return s.players[0]
	}
	return s.players[1]
}

func (s *Session) isMember(player models.PlayerID) bool {
	return player == s.players[0] || player == s.players[1]
}

// Start reveals the round: it fixes the correct answer, the choice pool and
// the round start time. Calling it on anything but a CREATED session fails.
func (s *Session) Start(correctID string, choiceIDs []string, reveal, audioPath string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.GameStatusCreated {
		return ErrInvalidState
	}

	s.correct = correctID
	s.choices = append([]string(nil), choiceIDs...)
	s.reveal = reveal
	s.audioPath = audioPath
	s.startedAt = now
	s.status = models.GameStatusStarted
	return nil
}

// SubmitAnswer records one player's answer. The first correct answer observed
// under the session lock wins; everything after that fails with
// ErrAlreadyDecided. Reaching two answers or a winner resolves the session.
// The duplicate-answer and decided-winner checks come before the status check
// so a tap landing after the round resolved still names its real cause.
func (s *Session) SubmitAnswer(player models.PlayerID, choiceID string, now time.Time) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isMember(player) {
		return 0, ErrUnknownPlayer
	}
	if s.hasAnswered(player) {
		return 0, ErrAlreadyAnswered
	}
	if s.winner != nil {
		return 0, ErrAlreadyDecided
	}
	if s.status != models.GameStatusStarted {
		return 0, ErrInvalidState
	}
	if now.Sub(s.startedAt) > s.window {
		return 0, ErrTimedOut
	}

	s.answered = append(s.answered, player)

	if choiceID == s.correct {
		w := player
		s.winner = &w
		s.status = models.GameStatusResolved
		return OutcomeCorrectFirst, nil
	}

	if len(s.answered) == 2 {
		s.status = models.GameStatusResolved
		return OutcomeIncorrectDraw, nil
	}
	return OutcomeIncorrectWaiting, nil
}

// ExpireFor is the watchdog's deadline branch for one player. The termination
// conditions are re-evaluated under the lock on every tick; a resolved
// session, an answered player or a decided winner all stop the watchdog
// without side effects. The first watchdog to observe the elapsed deadline
// resolves the session for the pair; the second finds it resolved and stops.
func (s *Session) ExpireFor(player models.PlayerID, now time.Time) TimeoutOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.GameStatusStarted {
		return TimeoutStop
	}
	if s.hasAnswered(player) || s.winner != nil {
		return TimeoutStop
	}
	if now.Sub(s.startedAt) < s.window {
		return TimeoutNone
	}

	s.status = models.GameStatusResolved
	if len(s.answered) == 0 {
		return TimeoutFullDraw
	}
	return TimeoutHalfDraw
}

// TryBeginSettlement is the single-fire guard on the RESOLVED→SETTLED
// transition. Only the first caller gets true; the answer path and the two
// watchdogs can all race here but settlement side effects run exactly once.
func (s *Session) TryBeginSettlement() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.GameStatusResolved || s.settling {
		return false
	}
	s.settling = true
	return true
}

// MarkSettled completes the lifecycle. Reached exactly once, after
// TryBeginSettlement, whether or not the transfer succeeded.
func (s *Session) MarkSettled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = models.GameStatusSettled
}

// ForceResolve abandons a session as a draw regardless of its current state.
// Used when a round cannot start (e.g. no media available); the failure is
// fatal to this session only.
func (s *Session) ForceResolve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == models.GameStatusCreated || s.status == models.GameStatusStarted {
		s.winner = nil
		s.status = models.GameStatusResolved
	}
}

func (s *Session) Status() models.GameStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Winner returns a copy of the winner, or nil for an undecided round or a draw.
func (s *Session) Winner() *models.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.winner == nil {
		return nil
	}
	w := *s.winner
	return &w
}

// Answered returns the players who have answered so far, in submission order.
func (s *Session) Answered() []models.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PlayerID(nil), s.answered...)
}

func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

func (s *Session) Correct() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correct
}

// Reveal returns the display form of the correct answer ("Artist - Title").
func (s *Session) Reveal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reveal
}

func (s *Session) AudioPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioPath
}

func (s *Session) hasAnswered(player models.PlayerID) bool {
	for _, p := range s.answered {
		if p == player {
			return true
		}
	}
	return false
}
