package search

import (
	"context"

	"github.com/jaki95/lyrics-relay/internal/domain"
)

// MockSearcher is a mock implementation of Searcher for testing
type MockSearcher struct {
	SearchFunc func(ctx context.Context, state domain.PlayerState) (string, error)
}

// Search implements the Searcher interface
func (m *MockSearcher) Search(ctx context.Context, state domain.PlayerState) (string, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, state)
	}
	return "", nil
}
