// Package genius implements the Genius enrichment provider. It
// contributes lyrics references only: the official song URL plus the
// notices pointing users at the licensed source. Lyric text is never
// fetched, stored or emitted anywhere in this codebase.
package genius

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

const defaultBaseURL = "https://api.genius.com"

// AccessInstructions accompanies every lyrics reference.
const AccessInstructions = "Open the official URL in a browser to read the licensed lyrics."

// Adapter implements provider.Provider and provider.LyricsSearcher for Genius.
// Genius does not expose release listings through its public API, so
// ListReleases and ListTracks report no data; the crawler only consults
// this provider during artist resolution and track enrichment.
type Adapter struct {
	client      *http.Client
	exec        *provider.Executor
	logger      *slog.Logger
	accessToken string
	baseURL     string
}

// New creates a Genius adapter with the default base URL.
func New(exec *provider.Executor, accessToken string, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(exec, accessToken, logger, defaultBaseURL)
}

// NewWithBaseURL creates a Genius adapter with a custom base URL (for testing).
func NewWithBaseURL(exec *provider.Executor, accessToken string, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:      &http.Client{Timeout: 10 * time.Second},
		exec:        exec,
		logger:      logger.With(slog.String("provider", "genius")),
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameGenius }

// RequiresAuth returns whether this provider needs an API key.
func (a *Adapter) RequiresAuth() bool { return true }

// SearchArtist searches Genius and collapses song hits into the
// distinct primary artists they belong to, in hit order.
func (a *Adapter) SearchArtist(ctx context.Context, name string) ([]provider.ArtistCandidate, error) {
	if name == "" {
		return nil, nil
	}

	resp, err := a.search(ctx, name)
	if err != nil {
		return nil, err
	}

	var results []provider.ArtistCandidate
	seen := make(map[int64]bool)
	for _, hit := range resp.Response.Hits {
		if hit.Type != "song" || hit.Result.PrimaryArtist == nil {
			continue
		}
		artist := hit.Result.PrimaryArtist
		if seen[artist.ID] {
			continue
		}
		seen[artist.ID] = true
		results = append(results, provider.ArtistCandidate{
			ProviderID: strconv.FormatInt(artist.ID, 10),
			Provider:   provider.NameGenius,
			Name:       artist.Name,
			Verified:   artist.IsVerified,
			URL:        artist.URL,
			Score:      100 - len(results),
		})
	}

	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(results)))

	return results, nil
}

// GetArtist fetches the artist profile by Genius numeric ID.
func (a *Adapter) GetArtist(ctx context.Context, id string) (*provider.ArtistCandidate, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, &provider.ErrNotFound{Provider: provider.NameGenius, ID: id}
	}

	body, err := a.doRequest(ctx, "/artists/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var resp ArtistResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing artist response: %w", err)
	}

	artist := resp.Response.Artist
	return &provider.ArtistCandidate{
		ProviderID: strconv.FormatInt(artist.ID, 10),
		Provider:   provider.NameGenius,
		Name:       artist.Name,
		Verified:   artist.IsVerified,
		Aliases:    artist.AlternateNames,
		URL:        artist.URL,
		Score:      100,
	}, nil
}

// ListReleases returns no data; Genius exposes no release listing.
func (a *Adapter) ListReleases(_ context.Context, _ string) ([]provider.ReleaseCandidate, error) {
	return nil, nil
}

// ListTracks returns no data; Genius exposes no release listing.
func (a *Adapter) ListTracks(_ context.Context, _ string) ([]provider.TrackCandidate, error) {
	return nil, nil
}

// SearchSong resolves a single track to its Genius song entry and
// returns a candidate carrying the lyrics reference. A nil candidate
// with nil error means no confident song hit exists.
func (a *Adapter) SearchSong(ctx context.Context, artist, title string) (*provider.TrackCandidate, error) {
	resp, err := a.search(ctx, title+" "+artist)
	if err != nil {
		return nil, err
	}

	for _, hit := range resp.Response.Hits {
		if hit.Type != "song" || hit.Result.PrimaryArtist == nil {
			continue
		}
		if !strings.EqualFold(hit.Result.PrimaryArtist.Name, artist) {
			continue
		}

		song := hit.Result
		candidate := &provider.TrackCandidate{
			ProviderID: strconv.FormatInt(song.ID, 10),
			Provider:   provider.NameGenius,
			Title:      song.Title,
			Playcount:  song.Stats.Pageviews,
			Lyrics: &provider.LyricsReference{
				OfficialURL:        song.URL,
				AccessInstructions: AccessInstructions,
				LegalNotice:        provider.LegalNotice,
			},
		}
		if d := song.ReleaseDateComponents; d != nil && d.Year > 0 {
			candidate.ReleaseDate = formatDate(d)
		}
		return candidate, nil
	}

	return nil, nil
}

func (a *Adapter) search(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{
		"q":        {query},
		"per_page": {"5"},
	}
	body, err := a.doRequest(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return &resp, nil
}

// doRequest executes an authenticated GET through the retry executor.
func (a *Adapter) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if a.accessToken == "" {
		return nil, &provider.ErrAuthRequired{Provider: provider.NameGenius}
	}

	reqURL := a.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var body []byte
	err := a.exec.Execute(ctx, provider.NameGenius, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+a.accessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return &provider.ErrProviderUnavailable{Provider: provider.NameGenius, Cause: err}
		}
		defer resp.Body.Close() //nolint:errcheck

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrAuthRequired{Provider: provider.NameGenius}
		case resp.StatusCode == http.StatusNotFound:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrNotFound{Provider: provider.NameGenius, ID: path}
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrProviderUnavailable{
				Provider:   provider.NameGenius,
				Cause:      fmt.Errorf("HTTP %d", resp.StatusCode),
				RetryAfter: time.Second,
			}
		case resp.StatusCode != http.StatusOK:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &provider.ErrProviderUnavailable{
				Provider: provider.NameGenius,
				Cause:    fmt.Errorf("unexpected HTTP %d", resp.StatusCode),
			}
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
		return err
	})
	return body, err
}

func formatDate(d *YMD) string {
	if d.Month > 0 && d.Day > 0 {
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return strconv.Itoa(d.Year)
}
