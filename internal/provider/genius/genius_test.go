package genius

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
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
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/search":
			if strings.Contains(r.URL.Query().Get("q"), "nothing here") {
				w.Write([]byte(`{"response":{"hits":[]}}`))
				return
			}
			w.Write(loadFixture(t, "search_song.json"))
		case r.URL.Path == "/artists/604":
			w.Write(loadFixture(t, "artist_604.json"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestAdapter(t *testing.T, baseURL, token string) *Adapter {
	t.Helper()
	limiter := provider.NewRateLimiterMap(nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	exec := provider.NewExecutor(limiter, provider.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
	}, logger)
	return NewWithBaseURL(exec, token, logger, baseURL)
}

func TestSearchArtistCollapsesSongHits(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-token")

	results, err := a.SearchArtist(context.Background(), "radiohead")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 distinct artists, got %d", len(results))
	}
	if results[0].Name != "Radiohead" || results[0].ProviderID != "604" {
		t.Errorf("unexpected first artist %+v", results[0])
	}
	if !results[1].Verified {
		t.Error("expected second artist to carry verified flag")
	}
}

func TestGetArtist(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-token")

	c, err := a.GetArtist(context.Background(), "604")
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if c.Name != "Radiohead" {
		t.Errorf("expected Radiohead, got %q", c.Name)
	}
	if len(c.Aliases) != 1 || c.Aliases[0] != "On a Friday" {
		t.Errorf("unexpected aliases %v", c.Aliases)
	}
}

func TestGetArtistNonNumericID(t *testing.T) {
	a := newTestAdapter(t, "http://localhost", "good-token")

	_, err := a.GetArtist(context.Background(), "a74b1b7f-71a5-4011-9441-d0b5e4122711")
	var notFound *provider.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound for non-numeric ID, got %v", err)
	}
}

func TestSearchSongReturnsLyricsReference(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-token")

	track, err := a.SearchSong(context.Background(), "Radiohead", "Paranoid Android")
	if err != nil {
		t.Fatalf("SearchSong: %v", err)
	}
	if track == nil {
		t.Fatal("expected a song hit")
	}
	if track.Lyrics == nil {
		t.Fatal("expected a lyrics reference")
	}
	if track.Lyrics.OfficialURL != "https://genius.com/Radiohead-paranoid-android-lyrics" {
		t.Errorf("unexpected URL %q", track.Lyrics.OfficialURL)
	}
	if track.Lyrics.LegalNotice == "" {
		t.Error("expected a legal notice")
	}
	if track.ReleaseDate != "1997-05-26" {
		t.Errorf("unexpected release date %q", track.ReleaseDate)
	}
	if track.Playcount != 1520345 {
		t.Errorf("expected pageviews as popularity metric, got %d", track.Playcount)
	}
}

func TestSearchSongSkipsOtherArtists(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-token")

	// The fixture's only hits belong to Radiohead and Sia.
	track, err := a.SearchSong(context.Background(), "Muse", "Paranoid Android")
	if err != nil {
		t.Fatalf("SearchSong: %v", err)
	}
	if track != nil {
		t.Errorf("expected no match for a different artist, got %+v", track)
	}
}

func TestSearchSongNoHits(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-token")

	track, err := a.SearchSong(context.Background(), "Radiohead", "nothing here")
	if err != nil {
		t.Fatalf("SearchSong: %v", err)
	}
	if track != nil {
		t.Errorf("expected nil candidate, got %+v", track)
	}
}

func TestInvalidTokenIsTerminal(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "bad-token")

	_, err := a.SearchArtist(context.Background(), "radiohead")
	var auth *provider.ErrAuthRequired
	if !errors.As(err, &auth) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}
