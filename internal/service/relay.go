package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jaki95/lyrics-relay/internal/domain"
	"github.com/jaki95/lyrics-relay/internal/notification"
	"github.com/jaki95/lyrics-relay/internal/scraper"
	"github.com/jaki95/lyrics-relay/internal/search"
	"github.com/jaki95/lyrics-relay/internal/selection"
)

// Presenter hands search results to the operator.
type Presenter interface {
	NextSequence() uint64
	Present(ctx context.Context, player domain.PlayerState, results []domain.SearchResult, seq uint64) (*selection.Session, error)
}

// ExtractFunc turns a raw results page into candidates.
type ExtractFunc func(body string) ([]domain.SearchResult, error)

// Relay runs one notification through parse, search, extract and selection.
//
// Every failure is logged and ends (or empties) that notification's run; none
// of them is returned, since nothing upstream can act on it.
type Relay struct {
	parser    *notification.Parser
	searcher  search.Searcher
	extract   ExtractFunc
	presenter Presenter
}

// NewRelay builds a Relay. A nil extract uses scraper.ExtractResults.
func NewRelay(parser *notification.Parser, searcher search.Searcher, extract ExtractFunc, presenter Presenter) *Relay {
	if extract == nil {
		extract = scraper.ExtractResults
	}
	return &Relay{
		parser:    parser,
		searcher:  searcher,
		extract:   extract,
		presenter: presenter,
	}
}

// Handle processes one notification body.
func (r *Relay) Handle(ctx context.Context, body []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Notification pipeline panicked", "panic", rec)
		}
	}()

	state, err := r.parser.Parse(string(body))
	if err != nil {
		slog.Error("Invalid notification", "error", err)
		return
	}

	if !state.Playing {
		slog.Info("Player is not playing, skipping search", "artist", state.Artist, "track", state.Track)
		return
	}

	seq := r.presenter.NextSequence()
	results := r.lookup(ctx, seq, state)

	if _, err := r.presenter.Present(ctx, state, results, seq); err != nil {
		if errors.Is(err, domain.ErrStaleSession) {
			slog.Info("Discarding results of an older notification", "session", seq, "artist", state.Artist, "track", state.Track)
			return
		}
		slog.Error("Failed to present results", "session", seq, "error", err)
	}
}

// lookup never fails: a failed search or unreadable page means no candidates.
func (r *Relay) lookup(ctx context.Context, seq uint64, state domain.PlayerState) []domain.SearchResult {
	page, err := r.searcher.Search(ctx, state)
	if err != nil {
		slog.Error("Search failed", "session", seq, "error", err)
		return []domain.SearchResult{}
	}

	results, err := r.extract(page)
	if err != nil {
		slog.Error("Failed to extract results", "session", seq, "error", err)
		return []domain.SearchResult{}
	}

	slog.Info("Got search results", "session", seq, "count", len(results))
	return results
}
