package lastfm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
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

		if r.URL.Query().Get("api_key") == "bad-key" {
			w.Write(loadFixture(t, "error_invalid_key.json"))
			return
		}

		switch r.URL.Query().Get("method") {
		case "artist.search":
			w.Write(loadFixture(t, "search_radiohead.json"))
		case "artist.getinfo":
			w.Write(loadFixture(t, "artist_info.json"))
		case "artist.gettopalbums":
			w.Write(loadFixture(t, "top_albums.json"))
		case "album.getinfo":
			if r.URL.Query().Get("album") == "Unknown Album" {
				w.Write([]byte(`{"error": 6, "message": "Album not found"}`))
				return
			}
			w.Write(loadFixture(t, "album_info.json"))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func newTestAdapter(t *testing.T, baseURL, apiKey string) *Adapter {
	t.Helper()
	limiter := provider.NewRateLimiterMap(nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	exec := provider.NewExecutor(limiter, provider.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
	}, logger)
	return NewWithBaseURL(exec, apiKey, logger, baseURL)
}

func TestSearchArtist(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-key")

	results, err := a.SearchArtist(context.Background(), "radiohead")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "Radiohead" {
		t.Errorf("expected Radiohead, got %q", results[0].Name)
	}
	if results[0].Listeners != 5312345 {
		t.Errorf("expected listeners parsed, got %d", results[0].Listeners)
	}
	if results[0].Score <= results[1].Score {
		t.Error("expected rank-ordered scores")
	}
}

func TestGetArtistProfile(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-key")

	c, err := a.GetArtist(context.Background(), "Radiohead")
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if c.Playcount != 504321987 {
		t.Errorf("expected playcount, got %d", c.Playcount)
	}
	if len(c.Genres) != 2 || c.Genres[0] != "alternative" {
		t.Errorf("unexpected genres %v", c.Genres)
	}
}

func TestListReleasesAndTracks(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-key")

	releases, err := a.ListReleases(context.Background(), "Radiohead")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(releases))
	}
	if releases[0].ProviderID != "Radiohead/OK Computer" {
		t.Errorf("expected composite release key, got %q", releases[0].ProviderID)
	}

	tracks, err := a.ListTracks(context.Background(), releases[0].ProviderID)
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Title != "Airbag" || tracks[0].DurationMS != 284000 {
		t.Errorf("expected seconds converted to ms, got %+v", tracks[0])
	}
	if tracks[1].Position != 2 {
		t.Errorf("expected rank-derived position, got %d", tracks[1].Position)
	}
}

func TestAlbumGenres(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-key")

	genres, err := a.AlbumGenres(context.Background(), "Radiohead/OK Computer")
	if err != nil {
		t.Fatalf("AlbumGenres: %v", err)
	}
	if len(genres) != 2 || genres[0] != "alternative rock" {
		t.Errorf("unexpected genres %v", genres)
	}
}

func TestAlbumNotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "good-key")

	_, err := a.ListTracks(context.Background(), "Radiohead/Unknown Album")
	var notFound *provider.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvalidAPIKeyIsTerminal(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL, "bad-key")

	_, err := a.SearchArtist(context.Background(), "radiohead")
	var auth *provider.ErrAuthRequired
	if !errors.As(err, &auth) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	a := newTestAdapter(t, "http://localhost", "")

	_, err := a.SearchArtist(context.Background(), "radiohead")
	var auth *provider.ErrAuthRequired
	if !errors.As(err, &auth) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}
