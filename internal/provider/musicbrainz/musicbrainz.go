// Package musicbrainz implements the canonical metadata provider.
// MusicBrainz is structurally authoritative: album ordering, track
// numbering and identifiers in the merged aggregate all originate here.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/version"
)

const (
	defaultBaseURL = "https://musicbrainz.org/ws/2"
	browsePageSize = 100
)

// Adapter implements the provider.Provider interface for MusicBrainz.
type Adapter struct {
	client  *http.Client
	exec    *provider.Executor
	logger  *slog.Logger
	baseURL string
}

// New creates a MusicBrainz adapter with the default base URL.
func New(exec *provider.Executor, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(exec, logger, defaultBaseURL)
}

// NewWithBaseURL creates a MusicBrainz adapter with a custom base URL (for testing).
func NewWithBaseURL(exec *provider.Executor, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		exec:    exec,
		logger:  logger.With(slog.String("provider", "musicbrainz")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameMusicBrainz }

// RequiresAuth returns whether this provider needs an API key.
func (a *Adapter) RequiresAuth() bool { return false }

// SearchArtist searches MusicBrainz for artists matching the given name,
// ranked by MusicBrainz's own relevance score.
func (a *Adapter) SearchArtist(ctx context.Context, name string) ([]provider.ArtistCandidate, error) {
	if name == "" {
		return nil, nil
	}

	params := url.Values{
		"query": {name},
		"fmt":   {"json"},
		"limit": {"10"},
	}
	reqURL := a.baseURL + "/artist?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	results := make([]provider.ArtistCandidate, 0, len(resp.Artists))
	for _, mb := range resp.Artists {
		results = append(results, mapArtist(&mb))
	}

	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(results)))

	return results, nil
}

// GetArtist fetches the full artist profile by MusicBrainz ID.
func (a *Adapter) GetArtist(ctx context.Context, mbid string) (*provider.ArtistCandidate, error) {
	params := url.Values{
		"inc": {"aliases+genres+tags"},
		"fmt": {"json"},
	}
	reqURL := a.baseURL + "/artist/" + url.PathEscape(mbid) + "?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var mb MBArtist
	if err := json.Unmarshal(body, &mb); err != nil {
		return nil, fmt.Errorf("parsing artist response: %w", err)
	}

	candidate := mapArtist(&mb)
	return &candidate, nil
}

// ListReleases browses all release groups for an artist, following
// pagination until MusicBrainz reports no further pages. Page N+1 is
// only requested after page N's offset is known.
func (a *Adapter) ListReleases(ctx context.Context, artistID string) ([]provider.ReleaseCandidate, error) {
	var releases []provider.ReleaseCandidate

	offset := 0
	for {
		params := url.Values{
			"artist": {artistID},
			"fmt":    {"json"},
			"limit":  {strconv.Itoa(browsePageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		reqURL := a.baseURL + "/release-group?" + params.Encode()

		body, err := a.doRequest(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		var page BrowseReleaseGroupsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing release-group page: %w", err)
		}

		for _, rg := range page.ReleaseGroups {
			releases = append(releases, provider.ReleaseCandidate{
				ProviderID:  rg.ID,
				Provider:    provider.NameMusicBrainz,
				Title:       rg.Title,
				Type:        mapReleaseType(rg.PrimaryType, rg.SecondaryTypes),
				ReleaseDate: rg.FirstReleaseDate,
				Year:        yearOf(rg.FirstReleaseDate),
			})
		}

		offset += len(page.ReleaseGroups)
		if offset >= page.Count || len(page.ReleaseGroups) == 0 {
			break
		}
	}

	a.logger.Debug("release browse completed",
		slog.String("artist_id", artistID),
		slog.Int("releases", len(releases)))

	return releases, nil
}

// ListTracks returns the ordered track list for a release group,
// using its earliest concrete release as the tracklist source.
func (a *Adapter) ListTracks(ctx context.Context, releaseGroupID string) ([]provider.TrackCandidate, error) {
	params := url.Values{
		"release-group": {releaseGroupID},
		"inc":           {"recordings+media"},
		"fmt":           {"json"},
		"limit":         {"1"},
	}
	reqURL := a.baseURL + "/release?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp BrowseReleasesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing release response: %w", err)
	}
	if len(resp.Releases) == 0 {
		return nil, nil
	}

	var tracks []provider.TrackCandidate
	position := 0
	for _, medium := range resp.Releases[0].Media {
		for _, t := range medium.Tracks {
			position++
			length := t.Length
			if length == 0 {
				length = t.Recording.Length
			}
			tracks = append(tracks, provider.TrackCandidate{
				ProviderID: t.ID,
				Provider:   provider.NameMusicBrainz,
				Title:      t.Title,
				Position:   position,
				DurationMS: length,
			})
		}
	}

	return tracks, nil
}

// doRequest executes an HTTP GET through the retry executor, which
// applies the provider's rate budget before every attempt.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	var body []byte
	err := a.exec.Execute(ctx, provider.NameMusicBrainz, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent())
		req.Header.Set("Accept", "application/json")

		a.logger.Debug("requesting", slog.String("url", reqURL))

		resp, err := a.client.Do(req)
		if err != nil {
			return &provider.ErrProviderUnavailable{
				Provider: provider.NameMusicBrainz,
				Cause:    err,
			}
		}
		defer resp.Body.Close() //nolint:errcheck

		switch {
		case resp.StatusCode == http.StatusNotFound:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrNotFound{Provider: provider.NameMusicBrainz, ID: reqURL}
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrAuthRequired{Provider: provider.NameMusicBrainz}
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrProviderUnavailable{
				Provider:   provider.NameMusicBrainz,
				Cause:      fmt.Errorf("HTTP %d", resp.StatusCode),
				RetryAfter: 2 * time.Second,
			}
		case resp.StatusCode != http.StatusOK:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrProviderUnavailable{
				Provider: provider.NameMusicBrainz,
				Cause:    fmt.Errorf("unexpected HTTP %d", resp.StatusCode),
			}
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
		return err
	})
	return body, err
}

// mapArtist converts a MusicBrainz artist to the common candidate type.
func mapArtist(mb *MBArtist) provider.ArtistCandidate {
	c := provider.ArtistCandidate{
		ProviderID:     mb.ID,
		Provider:       provider.NameMusicBrainz,
		Name:           mb.Name,
		SortName:       mb.SortName,
		Type:           strings.ToLower(mb.Type),
		Disambiguation: mb.Disambiguation,
		Country:        mb.Country,
		BeginDate:      mb.LifeSpan.Begin,
		EndDate:        mb.LifeSpan.End,
		Score:          mb.Score,
	}

	for _, alias := range mb.Aliases {
		if alias.Name != "" && alias.Name != mb.Name {
			c.Aliases = append(c.Aliases, alias.Name)
		}
	}

	for _, g := range mb.Genres {
		if g.Name != "" {
			c.Genres = append(c.Genres, g.Name)
		}
	}
	// Fall back to tags if no genres
	if len(c.Genres) == 0 {
		for _, t := range mb.Tags {
			if t.Name != "" && t.Count > 0 {
				c.Genres = append(c.Genres, t.Name)
			}
		}
	}

	return c
}

// mapReleaseType normalizes MusicBrainz primary/secondary types.
// Secondary types win: a "Live" or "Compilation" album is not a studio album.
func mapReleaseType(primary string, secondary []string) provider.ReleaseType {
	for _, s := range secondary {
		switch s {
		case "Live":
			return provider.ReleaseLive
		case "Compilation":
			return provider.ReleaseCompilation
		}
	}
	switch primary {
	case "Album":
		return provider.ReleaseAlbum
	case "Single":
		return provider.ReleaseSingle
	case "EP":
		return provider.ReleaseEP
	default:
		return provider.ReleaseOther
	}
}

// yearOf extracts the year from a YYYY or YYYY-MM-DD date string.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

func userAgent() string {
	return fmt.Sprintf("crawl-lyrics/%s (https://github.com/AlbertoFerragosti/crawl-lyrics)", version.Version)
}
