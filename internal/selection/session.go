package selection

import (
	"slices"
	"sync"

	"github.com/jaki95/lyrics-relay/internal/domain"
)

// State is the lifecycle position of a Session.
type State int

const (
	AwaitingChoice State = iota
	Superseded
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingChoice:
		return "awaiting_choice"
	case Superseded:
		return "superseded"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Session is one interactive selection over the results of a notification.
// It leaves AwaitingChoice exactly once, either superseded or terminated.
type Session struct {
	id      uint64
	player  domain.PlayerState
	results []domain.SearchResult

	// lines is the session's input handle; only the live session is fed.
	lines chan input
	done  chan struct{}

	mu    sync.Mutex
	state State
}

func newSession(id uint64, player domain.PlayerState, results []domain.SearchResult) *Session {
	return &Session{
		id:      id,
		player:  player,
		results: results,
		lines:   make(chan input),
		done:    make(chan struct{}),
		state:   AwaitingChoice,
	}
}

// ID returns the sequence id the session was created with.
func (s *Session) ID() uint64 { return s.id }

// Player returns the player state the session was created for.
func (s *Session) Player() domain.PlayerState { return s.player }

// Results returns a copy of the candidates in relevance order.
func (s *Session) Results() []domain.SearchResult { return slices.Clone(s.results) }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session stops awaiting a choice.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) live() bool {
	return s.State() == AwaitingChoice
}

func (s *Session) supersede() bool {
	return s.leave(Superseded)
}

func (s *Session) terminate() bool {
	return s.leave(Terminated)
}

func (s *Session) leave(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingChoice {
		return false
	}
	s.state = next
	close(s.done)
	return true
}
