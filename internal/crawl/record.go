// Package crawl orchestrates a discography crawl: it resolves the
// artist on the primary provider, fetches the release structure,
// merges the enrichment providers' views on top and produces a single
// aggregate with per-provider outcomes.
package crawl

import (
	"time"

	"github.com/google/uuid"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// Phase names a stage of the crawl state machine.
type Phase string

// Crawl phases, in order.
const (
	PhaseIdle             Phase = "idle"
	PhaseResolvingArtist  Phase = "resolving_artist"
	PhaseFetchingReleases Phase = "fetching_releases"
	PhaseMerging          Phase = "merging"
	PhaseEnriching        Phase = "enriching"
	PhaseComplete         Phase = "complete"
)

// OutcomeStatus classifies how a provider fared during a crawl.
type OutcomeStatus string

// Provider outcome statuses.
const (
	OutcomeOK      OutcomeStatus = "ok"
	OutcomePartial OutcomeStatus = "partial"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ProviderID names one provider's identifier for a merged entity.
type ProviderID struct {
	Provider provider.ProviderName `json:"provider"`
	ID       string                `json:"id"`
}

// ArtistRecord is the merged cross-provider view of the artist. The
// primary provider supplies the canonical fields; enrichment providers
// contribute popularity metrics and extra genres.
type ArtistRecord struct {
	Name        string       `json:"name"`
	SortName    string       `json:"sort_name,omitempty"`
	ProviderIDs []ProviderID `json:"provider_ids"`
	Country     string       `json:"country,omitempty"`
	BeginDate   string       `json:"begin_date,omitempty"`
	EndDate     string       `json:"end_date,omitempty"`
	Genres      []string     `json:"genres,omitempty"`
	Listeners   int64        `json:"listeners,omitempty"`
	Playcount   int64        `json:"playcount,omitempty"`
	URL         string       `json:"url,omitempty"`
}

// ReleaseRecord is a merged release with its ordered tracks.
type ReleaseRecord struct {
	Title       string               `json:"title"`
	Type        provider.ReleaseType `json:"type"`
	Year        int                  `json:"year,omitempty"`
	ReleaseDate string               `json:"release_date,omitempty"`
	Label       string               `json:"label,omitempty"`
	Genres      []string             `json:"genres,omitempty"`
	ProviderIDs []ProviderID         `json:"provider_ids"`
	Tracks      []TrackRecord        `json:"tracks,omitempty"`
}

// TrackRecord is a merged track. Structure (title, position, duration)
// comes from the primary provider; Enrichment holds everything the
// other providers contributed.
type TrackRecord struct {
	Title      string           `json:"title"`
	Position   int              `json:"position"`
	DurationMS int64            `json:"duration_ms,omitempty"`
	Enrichment *TrackEnrichment `json:"enrichment,omitempty"`
}

// TrackEnrichment carries non-structural track data from enrichment
// providers. Lyrics is a reference block only, never lyric text.
type TrackEnrichment struct {
	Playcount   int64                     `json:"playcount,omitempty"`
	ReleaseDate string                    `json:"release_date,omitempty"`
	Lyrics      *provider.LyricsReference `json:"lyrics,omitempty"`
}

// ProviderOutcome records how one provider fared during the crawl.
type ProviderOutcome struct {
	Provider provider.ProviderName `json:"provider"`
	Status   OutcomeStatus         `json:"status"`
	Error    string                `json:"error,omitempty"`
	Items    int                   `json:"items"`
}

// Decision records how the artist was selected when resolution needed
// a choice.
type Decision struct {
	Query        string `json:"query"`
	Chosen       string `json:"chosen"`
	ChosenID     string `json:"chosen_id"`
	Alternatives int    `json:"alternatives"`
	Interactive  bool   `json:"interactive"`
}

// Report carries crawl-level bookkeeping: timing, counters, request
// statistics and the resolution decision.
type Report struct {
	Query         string                                          `json:"query"`
	StartedAt     time.Time                                       `json:"started_at"`
	CompletedAt   time.Time                                       `json:"completed_at"`
	Phase         Phase                                           `json:"phase"`
	Cancelled     bool                                            `json:"cancelled,omitempty"`
	ReleasesFound int                                             `json:"releases_found"`
	TracksFound   int                                             `json:"tracks_found"`
	LyricsRefs    int                                             `json:"lyrics_refs"`
	Requests      map[provider.ProviderName]provider.RequestStats `json:"requests,omitempty"`
	Decision      *Decision                                       `json:"decision,omitempty"`
}

// Aggregate is the final product of a crawl.
type Aggregate struct {
	CrawlID   uuid.UUID               `json:"crawl_id"`
	Artist    ArtistRecord            `json:"artist"`
	Releases  []ReleaseRecord         `json:"releases"`
	Sources   []provider.ProviderName `json:"sources"`
	Outcomes  []ProviderOutcome       `json:"provider_outcomes"`
	CrawledAt time.Time               `json:"crawled_at"`
	Report    Report                  `json:"report"`
}
