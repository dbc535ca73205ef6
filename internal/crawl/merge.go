package crawl

import (
	"strings"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/match"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// filterExcluded drops releases whose title contains any of the
// configured substrings, case-insensitively. Used to keep live takes,
// demos and similar secondary editions out of the primary listing.
func filterExcluded(releases []provider.ReleaseCandidate, excluded []string) []provider.ReleaseCandidate {
	if len(excluded) == 0 {
		return releases
	}
	var kept []provider.ReleaseCandidate
	for _, r := range releases {
		title := strings.ToLower(r.Title)
		drop := false
		for _, term := range excluded {
			if term != "" && strings.Contains(title, strings.ToLower(term)) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, r)
		}
	}
	return kept
}

// dedupeReleases collapses releases that the matcher scores as the same
// release (same normalized title, adjacent year, compatible type). The
// first occurrence wins; later duplicates only contribute their
// provider IDs.
func dedupeReleases(m *match.Matcher, releases []provider.ReleaseCandidate) ([]provider.ReleaseCandidate, map[int][]ProviderID) {
	var kept []provider.ReleaseCandidate
	extras := make(map[int][]ProviderID)

	for _, r := range releases {
		dup := -1
		for i := range kept {
			if m.ScoreReleases(kept[i], r).Merged(m.Threshold()) {
				dup = i
				break
			}
		}
		if dup >= 0 {
			if r.ProviderID != "" && r.ProviderID != kept[dup].ProviderID {
				extras[dup] = append(extras[dup], ProviderID{Provider: r.Provider, ID: r.ProviderID})
			}
			continue
		}
		kept = append(kept, r)
	}
	return kept, extras
}

// buildArtistRecord seeds the merged artist from the primary
// candidate.
func buildArtistRecord(primary provider.ArtistCandidate) ArtistRecord {
	return ArtistRecord{
		Name:     primary.Name,
		SortName: primary.SortName,
		ProviderIDs: []ProviderID{
			{Provider: primary.Provider, ID: primary.ProviderID},
		},
		Country:   primary.Country,
		BeginDate: primary.BeginDate,
		EndDate:   primary.EndDate,
		Genres:    append([]string(nil), primary.Genres...),
		URL:       primary.URL,
	}
}

// buildReleaseRecord seeds a merged release from the primary candidate
// and its fetched tracks.
func buildReleaseRecord(r provider.ReleaseCandidate, extraIDs []ProviderID) ReleaseRecord {
	rec := ReleaseRecord{
		Title:       r.Title,
		Type:        r.Type,
		Year:        r.Year,
		ReleaseDate: r.ReleaseDate,
		Label:       r.Label,
		Genres:      append([]string(nil), r.Genres...),
		ProviderIDs: append([]ProviderID{{Provider: r.Provider, ID: r.ProviderID}}, extraIDs...),
	}
	for _, t := range r.Tracks {
		rec.Tracks = append(rec.Tracks, TrackRecord{
			Title:      t.Title,
			Position:   t.Position,
			DurationMS: t.DurationMS,
		})
	}
	return rec
}

// enrichArtist attaches enrichment fields to the merged artist without
// overwriting primary data. Listeners and playcount come only from
// enrichment; genres extend the existing set.
func enrichArtist(rec *ArtistRecord, c provider.ArtistCandidate) {
	rec.ProviderIDs = append(rec.ProviderIDs, ProviderID{Provider: c.Provider, ID: c.ProviderID})
	if c.Listeners > rec.Listeners {
		rec.Listeners = c.Listeners
	}
	if c.Playcount > rec.Playcount {
		rec.Playcount = c.Playcount
	}
	rec.Genres = appendMissing(rec.Genres, c.Genres)
}

// enrichRelease merges an enrichment provider's view of a release into
// the record: provider ID, extra genres, and per-track duration only
// where the primary had none.
func enrichRelease(m *match.Matcher, rec *ReleaseRecord, c provider.ReleaseCandidate) {
	rec.ProviderIDs = append(rec.ProviderIDs, ProviderID{Provider: c.Provider, ID: c.ProviderID})
	rec.Genres = appendMissing(rec.Genres, c.Genres)

	if len(c.Tracks) == 0 || len(rec.Tracks) == 0 {
		return
	}

	primary := make([]provider.TrackCandidate, len(rec.Tracks))
	for i, t := range rec.Tracks {
		primary[i] = provider.TrackCandidate{Title: t.Title, Position: t.Position, DurationMS: t.DurationMS}
	}
	for pi, ci := range m.MatchTracks(primary, c.Tracks) {
		other := c.Tracks[ci]
		t := &rec.Tracks[pi]
		if t.DurationMS == 0 && other.DurationMS > 0 {
			t.DurationMS = other.DurationMS
		}
		if other.Playcount > 0 {
			ensureEnrichment(t).Playcount = other.Playcount
		}
	}
}

// attachLyricsRef stores a lyrics reference on a track. The reference
// block links to the official source; it never carries lyric text.
func attachLyricsRef(t *TrackRecord, hit provider.TrackCandidate) {
	e := ensureEnrichment(t)
	e.Lyrics = hit.Lyrics
	if e.ReleaseDate == "" {
		e.ReleaseDate = hit.ReleaseDate
	}
	if hit.Playcount > e.Playcount {
		e.Playcount = hit.Playcount
	}
}

func ensureEnrichment(t *TrackRecord) *TrackEnrichment {
	if t.Enrichment == nil {
		t.Enrichment = &TrackEnrichment{}
	}
	return t.Enrichment
}

func appendMissing(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range src {
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		dst = append(dst, s)
	}
	return dst
}
