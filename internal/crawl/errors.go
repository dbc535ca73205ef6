package crawl

import (
	"errors"
	"fmt"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// Sentinel errors at the crawl boundary.
var (
	// ErrArtistNotFound: the primary provider has no candidate for the
	// query.
	ErrArtistNotFound = errors.New("artist not found")

	// ErrAmbiguous: more than one plausible candidate and no decision
	// source to pick one.
	ErrAmbiguous = errors.New("ambiguous artist")
)

// AmbiguousError carries the competing candidates so callers can show
// them. errors.Is(err, ErrAmbiguous) matches it.
type AmbiguousError struct {
	Query      string
	Candidates []provider.ArtistCandidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("query %q matches %d artists", e.Query, len(e.Candidates))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }
