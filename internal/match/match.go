// Package match reconciles candidate records from different providers.
// It decides whether two provider-scoped views refer to the same
// real-world artist, release or track, producing a confidence score in
// [0,1] and the features that contributed. Candidates below the
// configured threshold are never merged.
package match

import (
	"sort"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// Feature names a signal that contributed to a match decision.
type Feature string

// Known match features.
const (
	FeatureName         Feature = "name"
	FeatureAlias        Feature = "alias"
	FeatureCountry      Feature = "country"
	FeatureBeginYear    Feature = "begin_year"
	FeatureReleaseYear  Feature = "release_year"
	FeatureReleaseType  Feature = "release_type"
	FeaturePosition     Feature = "position"
	FeatureDuration     Feature = "duration"
	FeatureCountryClash Feature = "country_conflict"
	FeatureYearClash    Feature = "year_conflict"
	FeatureTypeClash    Feature = "type_conflict"
)

// Auxiliary signal weights and conflict caps. Agreement on a weak
// signal nudges confidence up; disagreement on a strong signal caps it
// below the merge threshold so same-named but distinct entities stay
// separate.
const (
	auxBoost        = 0.05
	countryCap      = 0.60
	beginYearCap    = 0.75
	releaseYearCap  = 0.60
	releaseTypeCap  = 0.60
	durationSlackMS = 5000
)

// Config holds matcher tuning.
type Config struct {
	// Threshold is the minimum confidence required before two
	// candidates merge into one record.
	Threshold float64
	// AmbiguityBand: same-provider candidates whose name similarity to
	// the query is within this band of the top candidate count as
	// plausible alternatives.
	AmbiguityBand float64
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.8,
		AmbiguityBand: 0.05,
	}
}

// Result pairs two candidates with the confidence that they are the
// same entity and the features that contributed.
type Result struct {
	Confidence float64
	Features   []Feature
}

// Merged reports whether the result clears the threshold.
func (r Result) Merged(threshold float64) bool {
	return r.Confidence >= threshold
}

// Matcher scores cross-provider candidate pairs. It is stateless:
// matching the same inputs twice yields identical results.
type Matcher struct {
	config Config
}

// New creates a Matcher.
func New(config Config) *Matcher {
	if config.Threshold <= 0 {
		config.Threshold = DefaultConfig().Threshold
	}
	if config.AmbiguityBand <= 0 {
		config.AmbiguityBand = DefaultConfig().AmbiguityBand
	}
	return &Matcher{config: config}
}

// Threshold returns the configured merge threshold.
func (m *Matcher) Threshold() float64 { return m.config.Threshold }

// MatchArtists scores target against each candidate and returns the
// best match at or above the threshold, or nil if none qualifies.
// Ties are broken by the candidate's own provider ranking.
func (m *Matcher) MatchArtists(target provider.ArtistCandidate, candidates []provider.ArtistCandidate) (*provider.ArtistCandidate, Result) {
	var best *provider.ArtistCandidate
	var bestResult Result

	for i := range candidates {
		c := &candidates[i]
		r := m.ScoreArtists(target, *c)
		if !r.Merged(m.config.Threshold) {
			continue
		}
		if best == nil || r.Confidence > bestResult.Confidence ||
			(r.Confidence == bestResult.Confidence && c.Score > best.Score) {
			best = c
			bestResult = r
		}
	}
	return best, bestResult
}

// ScoreArtists computes the confidence that two artist candidates refer
// to the same artist.
func (m *Matcher) ScoreArtists(a, b provider.ArtistCandidate) Result {
	sim := Similarity(Normalize(a.Name), Normalize(b.Name))
	features := []Feature{FeatureName}

	// An alias match can beat the display-name similarity
	// ("On a Friday" vs "Radiohead").
	for _, alias := range append(append([]string{}, a.Aliases...), b.Aliases...) {
		for _, name := range []string{a.Name, b.Name} {
			if s := Similarity(Normalize(alias), Normalize(name)); s > sim {
				sim = s
				features = append(features, FeatureAlias)
			}
		}
	}

	confidence := sim
	cap := 1.0

	if a.Country != "" && b.Country != "" {
		if a.Country == b.Country {
			confidence += auxBoost
			features = append(features, FeatureCountry)
		} else {
			cap = countryCap
			features = append(features, FeatureCountryClash)
		}
	}

	ay, by := yearOf(a.BeginDate), yearOf(b.BeginDate)
	if ay > 0 && by > 0 {
		if diff := abs(ay - by); diff <= 1 {
			confidence += auxBoost
			features = append(features, FeatureBeginYear)
		} else {
			if beginYearCap < cap {
				cap = beginYearCap
			}
			features = append(features, FeatureYearClash)
		}
	}

	return Result{Confidence: clamp(confidence, cap), Features: features}
}

// ScoreReleases computes the confidence that two release candidates are
// the same release. The dedup key is normalized title + year bucket
// (±1) + type.
func (m *Matcher) ScoreReleases(a, b provider.ReleaseCandidate) Result {
	confidence := Similarity(Normalize(a.Title), Normalize(b.Title))
	features := []Feature{FeatureName}
	cap := 1.0

	if a.Year > 0 && b.Year > 0 {
		if abs(a.Year-b.Year) <= 1 {
			confidence += auxBoost
			features = append(features, FeatureReleaseYear)
		} else {
			cap = releaseYearCap
			features = append(features, FeatureYearClash)
		}
	}

	if a.Type != "" && b.Type != "" && a.Type != provider.ReleaseOther && b.Type != provider.ReleaseOther {
		if a.Type == b.Type {
			confidence += auxBoost
			features = append(features, FeatureReleaseType)
		} else {
			if releaseTypeCap < cap {
				cap = releaseTypeCap
			}
			features = append(features, FeatureTypeClash)
		}
	}

	return Result{Confidence: clamp(confidence, cap), Features: features}
}

// ScoreTracks computes the confidence that two track candidates are the
// same recording.
func (m *Matcher) ScoreTracks(a, b provider.TrackCandidate) Result {
	confidence := Similarity(Normalize(a.Title), Normalize(b.Title))
	features := []Feature{FeatureName}

	if a.Position > 0 && b.Position > 0 && a.Position == b.Position {
		confidence += auxBoost
		features = append(features, FeaturePosition)
	}
	if a.DurationMS > 0 && b.DurationMS > 0 && abs64(a.DurationMS-b.DurationMS) <= durationSlackMS {
		confidence += auxBoost
		features = append(features, FeatureDuration)
	}

	return Result{Confidence: clamp(confidence, 1.0), Features: features}
}

// MatchReleases pairs each release in primary with its best counterpart
// in others, returning a map from primary index to the matched index.
// Each enrichment release is consumed at most once.
func (m *Matcher) MatchReleases(primary, others []provider.ReleaseCandidate) map[int]int {
	return m.assign(len(primary), len(others), func(i, j int) Result {
		return m.ScoreReleases(primary[i], others[j])
	})
}

// MatchTracks pairs each track in primary with its best counterpart in
// others, by index, consuming each enrichment track at most once.
func (m *Matcher) MatchTracks(primary, others []provider.TrackCandidate) map[int]int {
	return m.assign(len(primary), len(others), func(i, j int) Result {
		return m.ScoreTracks(primary[i], others[j])
	})
}

// assign greedily pairs primary entries with others, best score first,
// one-to-one, keeping only pairs at or above the threshold.
func (m *Matcher) assign(nPrimary, nOthers int, score func(i, j int) Result) map[int]int {
	type pair struct {
		i, j int
		conf float64
	}
	var pairs []pair
	for i := 0; i < nPrimary; i++ {
		for j := 0; j < nOthers; j++ {
			if r := score(i, j); r.Merged(m.config.Threshold) {
				pairs = append(pairs, pair{i, j, r.Confidence})
			}
		}
	}
	sort.SliceStable(pairs, func(x, y int) bool { return pairs[x].conf > pairs[y].conf })

	matched := make(map[int]int, len(pairs))
	usedPrimary := make(map[int]bool, len(pairs))
	usedOther := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		if usedPrimary[p.i] || usedOther[p.j] {
			continue
		}
		usedPrimary[p.i] = true
		usedOther[p.j] = true
		matched[p.i] = p.j
	}
	return matched
}

// Ambiguous returns the plausible same-provider candidates for a query:
// every candidate whose name similarity to the query is within the
// ambiguity band of the best one. A single plausible candidate means no
// ambiguity; two or more must never be merged silently.
func (m *Matcher) Ambiguous(query string, candidates []provider.ArtistCandidate) []provider.ArtistCandidate {
	if len(candidates) == 0 {
		return nil
	}

	nq := Normalize(query)
	sims := make([]float64, len(candidates))
	best := 0.0
	for i, c := range candidates {
		sims[i] = Similarity(nq, Normalize(c.Name))
		if sims[i] > best {
			best = sims[i]
		}
	}

	var plausible []provider.ArtistCandidate
	for i, c := range candidates {
		if best-sims[i] <= m.config.AmbiguityBand && sims[i] >= m.config.Threshold {
			plausible = append(plausible, c)
		}
	}

	// Provider's own ranking decides order among equals.
	sort.SliceStable(plausible, func(i, j int) bool {
		return plausible[i].Score > plausible[j].Score
	})
	return plausible
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		y = y*10 + int(r-'0')
	}
	return y
}

func clamp(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	if v < 0 {
		return 0
	}
	return v
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
