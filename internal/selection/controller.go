package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jaki95/lyrics-relay/internal/domain"
	"github.com/jaki95/lyrics-relay/internal/storage"
	"github.com/muesli/cancelreader"
)

var ErrClosed = errors.New("selection controller closed")

// Opener receives the URL chosen by the operator.
type Opener interface {
	Open(url string)
}

// Controller owns the operator console and at most one live Session.
//
// Sessions are ordered by sequence id, not by the order their results
// arrive: results for an id at or below the highest one already presented
// are dropped, so a slow search can never replace a newer session.
type Controller struct {
	store  storage.ResultStore
	opener Opener
	out    io.Writer
	styles styles

	seq atomic.Uint64

	// mu guards latest, active and closed. Lock order is mu, then outMu.
	mu     sync.Mutex
	latest uint64
	active *Session
	closed bool

	// outMu serialises console output; output of a session that is no
	// longer live is dropped under it.
	outMu sync.Mutex

	console  cancelreader.CancelReader
	pumpDone chan struct{}
	loops    sync.WaitGroup
}

// NewController starts reading operator input from in. Lists and prompts are
// written to out.
func NewController(in io.Reader, out io.Writer, store storage.ResultStore, opener Opener) *Controller {
	c := &Controller{
		store:    store,
		opener:   opener,
		out:      out,
		styles:   newStyles(out),
		console:  openConsole(in),
		pumpDone: make(chan struct{}),
	}
	go c.pump()
	return c
}

// NextSequence reserves the sequence id for a newly accepted notification.
func (c *Controller) NextSequence() uint64 {
	return c.seq.Add(1)
}

// Active returns the live session, or nil when idle.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Present opens a session for results, superseding the live one. Results
// whose sequence id is not newer than the last presented one are rejected
// with domain.ErrStaleSession and leave the console untouched.
func (c *Controller) Present(ctx context.Context, player domain.PlayerState, results []domain.SearchResult, seq uint64) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if seq <= c.latest {
		return nil, fmt.Errorf("%w: sequence %d, latest %d", domain.ErrStaleSession, seq, c.latest)
	}
	c.latest = seq

	s := newSession(seq, player, results)

	c.outMu.Lock()
	if prev := c.active; prev != nil && prev.supersede() {
		slog.Info("Session superseded", "session", prev.id, "by", seq)
	}
	c.active = s
	c.outMu.Unlock()

	if err := c.store.SaveResults(ctx, domain.ResultURLs(results)); err != nil {
		slog.Error("Failed to save result list", "session", seq, "error", err)
	}

	c.write(s, c.styles.renderSession(s))

	c.loops.Add(1)
	go c.prompt(s)

	slog.Debug("Session started", "session", seq, "results", len(results))
	return s, nil
}

// prompt asks for a choice until one is valid or the session is superseded.
func (c *Controller) prompt(s *Session) {
	defer c.loops.Done()

	for {
		c.write(s, c.styles.renderPrompt())

		var line input
		select {
		case <-s.done:
			return
		case line = <-s.lines:
		}
		if !s.live() {
			return
		}

		if line.overlong {
			slog.Error("Invalid selection", "session", s.id, "error",
				fmt.Errorf("%w: input longer than %d bytes", domain.ErrInvalidSelection, maxInputLine))
			continue
		}

		choice, err := parseChoice(line.text, len(s.results))
		if err != nil {
			slog.Error("Invalid selection", "session", s.id, "error", err)
			continue
		}

		result := s.results[choice-1]
		if !c.finish(s) {
			return
		}
		c.opener.Open(result.URL)
		return
	}
}

// finish terminates s and returns the controller to idle.
func (c *Controller) finish(s *Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.terminate() {
		return false
	}
	if c.active == s {
		c.active = nil
	}
	return true
}

// write prints text for s, unless s is no longer live.
func (c *Controller) write(s *Session, text string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	if !s.live() {
		return
	}
	if _, err := io.WriteString(c.out, text); err != nil {
		slog.Debug("Failed to write to console", "error", err)
	}
}

// Close supersedes the live session and stops reading operator input.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	c.outMu.Lock()
	if c.active != nil {
		c.active.supersede()
		c.active = nil
	}
	c.outMu.Unlock()
	c.mu.Unlock()

	c.loops.Wait()

	if c.console.Cancel() {
		<-c.pumpDone
	}
	return c.console.Close()
}

// parseChoice maps operator input to a 1-based index into count results.
// Blank input picks the best result.
func parseChoice(input string, count int) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		trimmed = "1"
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidSelection, input)
	}
	return n, nil
}
