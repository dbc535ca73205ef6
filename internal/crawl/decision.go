package crawl

import (
	"context"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// DecisionSource resolves an ambiguous artist search to one candidate.
// SelectArtist receives at least two candidates, ordered by the
// provider's own ranking, and returns the index of the chosen one.
type DecisionSource interface {
	// Interactive reports whether a human is making the call. The
	// report records it.
	Interactive() bool

	SelectArtist(ctx context.Context, query string, candidates []provider.ArtistCandidate) (int, error)
}

// AutoSelect picks the top-ranked candidate without asking anyone.
// It is the decision source for non-interactive runs.
type AutoSelect struct{}

// Interactive always returns false.
func (AutoSelect) Interactive() bool { return false }

// SelectArtist returns the first candidate.
func (AutoSelect) SelectArtist(_ context.Context, _ string, _ []provider.ArtistCandidate) (int, error) {
	return 0, nil
}
