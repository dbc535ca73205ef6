package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderName uniquely identifies a metadata provider.
type ProviderName string

// Known provider names.
const (
	NameMusicBrainz ProviderName = "musicbrainz"
	NameLastFM      ProviderName = "lastfm"
	NameGenius      ProviderName = "genius"
)

// AllProviderNames returns all known provider names in display order.
// MusicBrainz comes first because it is the canonical source.
func AllProviderNames() []ProviderName {
	return []ProviderName{
		NameMusicBrainz,
		NameLastFM,
		NameGenius,
	}
}

// DisplayName returns a human-readable name for the provider.
func (n ProviderName) DisplayName() string {
	switch n {
	case NameMusicBrainz:
		return "MusicBrainz"
	case NameLastFM:
		return "Last.fm"
	case NameGenius:
		return "Genius"
	default:
		return string(n)
	}
}

// ReleaseType classifies a release group.
type ReleaseType string

// Known release types.
const (
	ReleaseAlbum       ReleaseType = "album"
	ReleaseSingle      ReleaseType = "single"
	ReleaseEP          ReleaseType = "ep"
	ReleaseCompilation ReleaseType = "compilation"
	ReleaseLive        ReleaseType = "live"
	ReleaseOther       ReleaseType = "other"
)

// ArtistCandidate is a single provider's unmatched view of an artist.
// It is immutable once returned by an adapter.
type ArtistCandidate struct {
	ProviderID     string       `json:"provider_id"`
	Provider       ProviderName `json:"provider"`
	Name           string       `json:"name"`
	SortName       string       `json:"sort_name,omitempty"`
	Type           string       `json:"type,omitempty"`
	Disambiguation string       `json:"disambiguation,omitempty"`
	Country        string       `json:"country,omitempty"`
	BeginDate      string       `json:"begin_date,omitempty"` // YYYY or YYYY-MM-DD
	EndDate        string       `json:"end_date,omitempty"`
	Aliases        []string     `json:"aliases,omitempty"`
	Genres         []string     `json:"genres,omitempty"`
	Listeners      int64        `json:"listeners,omitempty"`
	Playcount      int64        `json:"playcount,omitempty"`
	Verified       bool         `json:"verified,omitempty"`
	Score          int          `json:"score"` // provider's own relevance rank, 0-100
	URL            string       `json:"url,omitempty"`
}

// ReleaseCandidate is a single provider's view of a release (album,
// single, EP, ...) before cross-source merge.
type ReleaseCandidate struct {
	ProviderID  string           `json:"provider_id"`
	Provider    ProviderName     `json:"provider"`
	Title       string           `json:"title"`
	Type        ReleaseType      `json:"type"`
	ReleaseDate string           `json:"release_date,omitempty"`
	Year        int              `json:"year,omitempty"`
	Label       string           `json:"label,omitempty"`
	Genres      []string         `json:"genres,omitempty"`
	Country     string           `json:"country,omitempty"`
	Tracks      []TrackCandidate `json:"tracks,omitempty"`
}

// TrackCandidate is a single provider's view of a track.
type TrackCandidate struct {
	ProviderID  string           `json:"provider_id,omitempty"`
	Provider    ProviderName     `json:"provider"`
	Title       string           `json:"title"`
	Position    int              `json:"position"`
	DurationMS  int64            `json:"duration_ms,omitempty"`
	Playcount   int64            `json:"playcount,omitempty"`
	ReleaseDate string           `json:"release_date,omitempty"`
	Lyrics      *LyricsReference `json:"lyrics,omitempty"`
}

// LyricsReference carries linking metadata for a track's lyrics.
// It never contains lyric text; only the official URL and the notices
// required to point users at the licensed source.
type LyricsReference struct {
	OfficialURL        string `json:"official_url"`
	AccessInstructions string `json:"access_instructions,omitempty"`
	LegalNotice        string `json:"legal_notice"`
}

// LegalNotice is attached to every lyrics reference this system emits.
const LegalNotice = "Lyrics are copyrighted material. This record links to the official source and carries no lyric text."

// Provider is the interface all metadata source adapters implement.
// All operations pass through the shared retry executor and the
// per-provider rate limiter; callers never see page boundaries.
type Provider interface {
	// Name returns the unique provider identifier.
	Name() ProviderName

	// RequiresAuth returns true if this provider needs an API key to function.
	RequiresAuth() bool

	// SearchArtist searches the provider by name, ranked by the
	// provider's own relevance. An empty result is nil, nil.
	SearchArtist(ctx context.Context, name string) ([]ArtistCandidate, error)

	// GetArtist fetches the full artist profile by the provider's own ID.
	GetArtist(ctx context.Context, id string) (*ArtistCandidate, error)

	// ListReleases returns all releases for an artist, paginating
	// transparently until the provider reports no further pages.
	ListReleases(ctx context.Context, artistID string) ([]ReleaseCandidate, error)

	// ListTracks returns the ordered track list for a release.
	ListTracks(ctx context.Context, releaseID string) ([]TrackCandidate, error)
}

// GenreFetcher is an optional interface for providers that expose
// release-level genre tags through a separate call instead of on the
// release listing itself.
type GenreFetcher interface {
	Provider
	AlbumGenres(ctx context.Context, releaseID string) ([]string, error)
}

// LyricsSearcher is an optional interface for providers that can
// resolve a single track to its official lyrics page. The returned
// candidate carries a LyricsReference and, when known, a release date
// and popularity metric; it never carries lyric text.
type LyricsSearcher interface {
	Provider
	SearchSong(ctx context.Context, artist, title string) (*TrackCandidate, error)
}

// ErrProviderUnavailable indicates a transient failure (rate-limited
// upstream, timeout, server error). It is retryable until the retry
// budget is exhausted, at which point it surfaces tagged with the
// provider identity so the crawl can mark that source as failed.
type ErrProviderUnavailable struct {
	Provider   ProviderName
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Cause)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the provider has no data for the requested ID.
// Adapters return empty results for empty searches; ErrNotFound is for
// lookups of a specific identifier.
type ErrNotFound struct {
	Provider ProviderName
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("provider %s: %s not found", e.Provider, e.ID)
}

// ErrAuthRequired indicates the provider rejected or is missing credentials.
// It is terminal: retrying with the same credentials cannot succeed.
type ErrAuthRequired struct {
	Provider ProviderName
}

func (e *ErrAuthRequired) Error() string {
	return fmt.Sprintf("provider %s: missing or invalid API credentials", e.Provider)
}
