// Package lastfm implements the Last.fm enrichment provider. It
// contributes popularity metrics (listeners, playcount), genre tags and
// track durations; it is never structurally authoritative.
package lastfm

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
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0"

// Adapter implements the provider.Provider interface for Last.fm.
//
// Last.fm has no opaque release identifier: albums are addressed by
// artist name + album title. ListReleases therefore encodes the pair
// into the candidate's ProviderID as "artist/album", which ListTracks
// splits back apart.
type Adapter struct {
	client  *http.Client
	exec    *provider.Executor
	logger  *slog.Logger
	apiKey  string
	baseURL string
}

// New creates a Last.fm adapter with the default base URL.
func New(exec *provider.Executor, apiKey string, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(exec, apiKey, logger, defaultBaseURL)
}

// NewWithBaseURL creates a Last.fm adapter with a custom base URL (for testing).
func NewWithBaseURL(exec *provider.Executor, apiKey string, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		exec:    exec,
		logger:  logger.With(slog.String("provider", "lastfm")),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameLastFM }

// RequiresAuth returns whether this provider needs an API key.
func (a *Adapter) RequiresAuth() bool { return true }

// SearchArtist searches Last.fm for artists matching the given name.
func (a *Adapter) SearchArtist(ctx context.Context, name string) ([]provider.ArtistCandidate, error) {
	if name == "" {
		return nil, nil
	}

	body, err := a.doRequest(ctx, url.Values{
		"method": {"artist.search"},
		"artist": {name},
		"limit":  {"10"},
	})
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	hits := resp.Results.ArtistMatches.Artist
	results := make([]provider.ArtistCandidate, 0, len(hits))
	for i, hit := range hits {
		results = append(results, provider.ArtistCandidate{
			ProviderID: hit.Name,
			Provider:   provider.NameLastFM,
			Name:       hit.Name,
			Listeners:  parseCount(hit.Listeners),
			URL:        hit.URL,
			Score:      100 - i, // Last.fm orders by its own relevance
		})
	}

	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(results)))

	return results, nil
}

// GetArtist fetches the artist profile. Last.fm's artist ID is the name.
func (a *Adapter) GetArtist(ctx context.Context, id string) (*provider.ArtistCandidate, error) {
	body, err := a.doRequest(ctx, url.Values{
		"method": {"artist.getinfo"},
		"artist": {id},
	})
	if err != nil {
		return nil, err
	}

	var resp ArtistInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing artist info: %w", err)
	}
	if resp.Artist.Name == "" {
		return nil, &provider.ErrNotFound{Provider: provider.NameLastFM, ID: id}
	}

	c := &provider.ArtistCandidate{
		ProviderID: resp.Artist.Name,
		Provider:   provider.NameLastFM,
		Name:       resp.Artist.Name,
		Listeners:  parseCount(resp.Artist.Stats.Listeners),
		Playcount:  parseCount(resp.Artist.Stats.Playcount),
		URL:        resp.Artist.URL,
		Score:      100,
	}
	for _, tag := range resp.Artist.Tags.Tag {
		if tag.Name != "" {
			c.Genres = append(c.Genres, tag.Name)
		}
	}
	return c, nil
}

// ListReleases returns the artist's top albums, paginating through
// Last.fm's page attribute until the last page.
func (a *Adapter) ListReleases(ctx context.Context, artistID string) ([]provider.ReleaseCandidate, error) {
	var releases []provider.ReleaseCandidate

	page := 1
	for {
		body, err := a.doRequest(ctx, url.Values{
			"method": {"artist.gettopalbums"},
			"artist": {artistID},
			"limit":  {"50"},
			"page":   {strconv.Itoa(page)},
		})
		if err != nil {
			return nil, err
		}

		var resp TopAlbumsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing top albums page: %w", err)
		}

		for _, album := range resp.TopAlbums.Album {
			releases = append(releases, provider.ReleaseCandidate{
				ProviderID: albumKey(album.Artist.Name, album.Name),
				Provider:   provider.NameLastFM,
				Title:      album.Name,
				Type:       provider.ReleaseAlbum,
			})
		}

		total, _ := strconv.Atoi(resp.TopAlbums.Attr.TotalPages)
		if page >= total || len(resp.TopAlbums.Album) == 0 {
			break
		}
		page++
	}

	return releases, nil
}

// ListTracks returns the album's track list with durations, genre tags
// attached via the release-level call that produced the composite ID.
func (a *Adapter) ListTracks(ctx context.Context, releaseID string) ([]provider.TrackCandidate, error) {
	artist, album, ok := splitAlbumKey(releaseID)
	if !ok {
		return nil, &provider.ErrNotFound{Provider: provider.NameLastFM, ID: releaseID}
	}

	info, err := a.albumInfo(ctx, artist, album)
	if err != nil {
		return nil, err
	}

	tracks := make([]provider.TrackCandidate, 0, len(info.Album.Tracks.Track))
	for i, t := range info.Album.Tracks.Track {
		position := t.Attr.Rank
		if position == 0 {
			position = i + 1
		}
		tracks = append(tracks, provider.TrackCandidate{
			Provider:   provider.NameLastFM,
			Title:      t.Name,
			Position:   position,
			DurationMS: t.Duration * 1000,
		})
	}
	return tracks, nil
}

// AlbumGenres returns the genre tags Last.fm holds for an album.
func (a *Adapter) AlbumGenres(ctx context.Context, releaseID string) ([]string, error) {
	artist, album, ok := splitAlbumKey(releaseID)
	if !ok {
		return nil, &provider.ErrNotFound{Provider: provider.NameLastFM, ID: releaseID}
	}

	info, err := a.albumInfo(ctx, artist, album)
	if err != nil {
		return nil, err
	}

	var genres []string
	for _, tag := range info.Album.Tags.Tag {
		if tag.Name != "" {
			genres = append(genres, tag.Name)
		}
	}
	return genres, nil
}

func (a *Adapter) albumInfo(ctx context.Context, artist, album string) (*AlbumInfoResponse, error) {
	body, err := a.doRequest(ctx, url.Values{
		"method": {"album.getinfo"},
		"artist": {artist},
		"album":  {album},
	})
	if err != nil {
		return nil, err
	}

	var resp AlbumInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing album info: %w", err)
	}
	if resp.Album.Name == "" {
		return nil, &provider.ErrNotFound{Provider: provider.NameLastFM, ID: albumKey(artist, album)}
	}
	return &resp, nil
}

// doRequest executes a Last.fm API call through the retry executor.
func (a *Adapter) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	if a.apiKey == "" {
		return nil, &provider.ErrAuthRequired{Provider: provider.NameLastFM}
	}

	params.Set("api_key", a.apiKey)
	params.Set("format", "json")
	reqURL := a.baseURL + "/?" + params.Encode()

	var body []byte
	err := a.exec.Execute(ctx, provider.NameLastFM, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", "crawl-lyrics/1.0")

		resp, err := a.client.Do(req)
		if err != nil {
			return &provider.ErrProviderUnavailable{Provider: provider.NameLastFM, Cause: err}
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrProviderUnavailable{
				Provider: provider.NameLastFM,
				Cause:    fmt.Errorf("HTTP %d", resp.StatusCode),
			}
		}

		// Last.fm reports application errors inside a 200/403 JSON envelope.
		body, err = io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
		if err != nil {
			return err
		}
		var lfmErr ErrorResponse
		if json.Unmarshal(body, &lfmErr) == nil && lfmErr.ErrorCode != 0 {
			switch lfmErr.ErrorCode {
			case errCodeInvalidAPIKey, errCodeSuspendedAPIKey:
				return &provider.ErrAuthRequired{Provider: provider.NameLastFM}
			case errCodeRateLimited:
				return &provider.ErrProviderUnavailable{
					Provider:   provider.NameLastFM,
					Cause:      fmt.Errorf("lastfm error %d: %s", lfmErr.ErrorCode, lfmErr.Message),
					RetryAfter: time.Second,
				}
			default:
				return &provider.ErrNotFound{Provider: provider.NameLastFM, ID: lfmErr.Message}
			}
		}
		return nil
	})
	return body, err
}

func albumKey(artist, album string) string {
	return artist + "/" + album
}

func splitAlbumKey(key string) (artist, album string, ok bool) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
