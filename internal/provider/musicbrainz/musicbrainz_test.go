package musicbrainz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("loading fixture %s: %v", name, err)
	}
	return data
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/artist":
			q := r.URL.Query().Get("query")
			if q == "no-results-query" {
				w.Write([]byte(`{"count":0,"offset":0,"artists":[]}`))
				return
			}
			w.Write(loadFixture(t, "search_radiohead.json"))

		case strings.HasPrefix(r.URL.Path, "/artist/"):
			id := strings.TrimPrefix(r.URL.Path, "/artist/")
			if id == "missing-mbid" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(loadFixture(t, "artist_radiohead.json"))

		case r.URL.Path == "/release-group":
			if r.URL.Query().Get("offset") == "0" {
				w.Write(loadFixture(t, "release_groups_page1.json"))
			} else {
				w.Write(loadFixture(t, "release_groups_page2.json"))
			}

		case r.URL.Path == "/release":
			w.Write(loadFixture(t, "releases_okcomputer.json"))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	limiter := provider.NewRateLimiterMap(nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	exec := provider.NewExecutor(limiter, provider.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	}, logger)
	return NewWithBaseURL(exec, logger, baseURL)
}

func TestSearchArtist(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	results, err := a.SearchArtist(context.Background(), "radiohead")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	top := results[0]
	if top.Name != "Radiohead" {
		t.Errorf("expected Radiohead, got %q", top.Name)
	}
	if top.ProviderID != "a74b1b7f-71a5-4011-9441-d0b5e4122711" {
		t.Errorf("unexpected provider ID %q", top.ProviderID)
	}
	if top.Country != "GB" || top.BeginDate != "1991" {
		t.Errorf("unexpected country/begin %q/%q", top.Country, top.BeginDate)
	}
	if top.Score != 100 {
		t.Errorf("expected score 100, got %d", top.Score)
	}
	if len(top.Aliases) != 1 || top.Aliases[0] != "On a Friday" {
		t.Errorf("unexpected aliases %v", top.Aliases)
	}
	// Genres fall back to tags on search results
	if len(top.Genres) != 2 {
		t.Errorf("expected 2 tag-derived genres, got %v", top.Genres)
	}
}

func TestSearchArtistEmpty(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	results, err := a.SearchArtist(context.Background(), "no-results-query")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result set, got %d", len(results))
	}
}

func TestGetArtist(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	c, err := a.GetArtist(context.Background(), "a74b1b7f-71a5-4011-9441-d0b5e4122711")
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if c.Name != "Radiohead" {
		t.Errorf("expected Radiohead, got %q", c.Name)
	}
	if c.Type != "group" {
		t.Errorf("expected normalized type group, got %q", c.Type)
	}
	// genres array wins over tags
	if len(c.Genres) != 2 || c.Genres[0] != "alternative rock" {
		t.Errorf("unexpected genres %v", c.Genres)
	}
}

func TestGetArtistNotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	_, err := a.GetArtist(context.Background(), "missing-mbid")
	var notFound *provider.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReleasesPaginates(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	releases, err := a.ListReleases(context.Background(), "a74b1b7f-71a5-4011-9441-d0b5e4122711")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(releases) != 3 {
		t.Fatalf("expected 3 releases across 2 pages, got %d", len(releases))
	}

	if releases[0].Title != "OK Computer" || releases[0].Type != provider.ReleaseAlbum {
		t.Errorf("unexpected first release %+v", releases[0])
	}
	if releases[0].Year != 1997 {
		t.Errorf("expected year 1997, got %d", releases[0].Year)
	}
	if releases[1].Type != provider.ReleaseSingle {
		t.Errorf("expected single, got %q", releases[1].Type)
	}
	// Secondary type wins over primary
	if releases[2].Type != provider.ReleaseLive {
		t.Errorf("expected live, got %q", releases[2].Type)
	}
}

func TestListTracks(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	tracks, err := a.ListTracks(context.Background(), "b1392450-e666-3926-a536-22c65f834433")
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Title != "Airbag" || tracks[0].Position != 1 || tracks[0].DurationMS != 284000 {
		t.Errorf("unexpected first track %+v", tracks[0])
	}
	// Track length falls back to the recording length
	if tracks[1].DurationMS != 386000 {
		t.Errorf("expected recording-length fallback, got %d", tracks[1].DurationMS)
	}
}

func TestTransientErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(loadFixture(t, "search_radiohead.json"))
	}))
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	results, err := a.SearchArtist(context.Background(), "radiohead")
	if err != nil {
		t.Fatalf("SearchArtist after retries: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestTransientErrorExhaustsBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	_, err := a.SearchArtist(context.Background(), "radiohead")
	var unavail *provider.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if unavail.Provider != provider.NameMusicBrainz {
		t.Errorf("error not tagged with provider: %v", unavail.Provider)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}
