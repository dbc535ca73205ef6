package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/match"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// Options tunes a Crawler.
type Options struct {
	// MaxReleases caps how many releases are fetched per crawl.
	// Zero means no cap.
	MaxReleases int
	// ExcludedTitles filters releases whose title contains any of
	// these substrings out of the primary listing.
	ExcludedTitles []string
	// Concurrency bounds parallel provider work. Defaults to 4.
	Concurrency int
	// Decision resolves ambiguous artist searches. Nil means an
	// ambiguous search fails with ErrAmbiguous.
	Decision DecisionSource
}

// Crawler runs the crawl state machine over the registered providers.
// The primary provider supplies the release structure; the others
// enrich it. Enrichment failures never fail the crawl.
type Crawler struct {
	registry *provider.Registry
	matcher  *match.Matcher
	exec     *provider.Executor
	logger   *slog.Logger
	opts     Options
}

// New creates a Crawler. exec supplies per-provider request statistics
// for the final report; it may be nil.
func New(registry *provider.Registry, matcher *match.Matcher, exec *provider.Executor, logger *slog.Logger, opts Options) *Crawler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Crawler{
		registry: registry,
		matcher:  matcher,
		exec:     exec,
		logger:   logger.With(slog.String("component", "crawl")),
		opts:     opts,
	}
}

// Search lists the primary provider's candidates for a query without
// crawling anything.
func (c *Crawler) Search(ctx context.Context, query string) ([]provider.ArtistCandidate, error) {
	primary := c.registry.Primary()
	if primary == nil {
		return nil, errors.New("primary provider not registered")
	}
	return primary.SearchArtist(ctx, query)
}

// Crawl resolves the artist, fetches the discography and merges the
// enrichment providers' data on top. Only primary-provider failure or
// cancellation aborts; everything else degrades to a partial outcome.
// On cancellation the partially built aggregate is returned alongside
// the context error, with the report marked cancelled.
func (c *Crawler) Crawl(ctx context.Context, query string) (*Aggregate, error) {
	agg := &Aggregate{
		CrawlID: uuid.New(),
		Report: Report{
			Query:     query,
			StartedAt: time.Now().UTC(),
			Phase:     PhaseIdle,
		},
	}

	primary := c.registry.Primary()
	if primary == nil {
		return nil, errors.New("primary provider not registered")
	}

	c.setPhase(agg, PhaseResolvingArtist)
	chosen, alternatives, err := c.resolveArtist(ctx, primary, query)
	if err != nil {
		return nil, err
	}
	agg.Artist = buildArtistRecord(*chosen)
	agg.Report.Decision = &Decision{
		Query:        query,
		Chosen:       chosen.Name,
		ChosenID:     chosen.ProviderID,
		Alternatives: alternatives,
		Interactive:  c.opts.Decision != nil && c.opts.Decision.Interactive(),
	}

	c.setPhase(agg, PhaseFetchingReleases)
	releases, primaryOutcome, err := c.fetchReleases(ctx, primary, chosen.ProviderID)
	if err != nil {
		if ctx.Err() != nil {
			agg.Report.Cancelled = true
		}
		return c.finalize(agg, primaryOutcome), err
	}

	c.setPhase(agg, PhaseMerging)
	kept, extraIDs := dedupeReleases(c.matcher, releases)
	for i, r := range kept {
		rec := buildReleaseRecord(r, extraIDs[i])
		agg.Releases = append(agg.Releases, rec)
		agg.Report.TracksFound += len(rec.Tracks)
	}
	agg.Report.ReleasesFound = len(agg.Releases)
	primaryOutcome.Items = len(agg.Releases)

	c.setPhase(agg, PhaseEnriching)
	outcomes := c.enrichAll(ctx, agg, kept)

	if ctx.Err() != nil {
		agg.Report.Cancelled = true
		return c.finalize(agg, primaryOutcome, outcomes...), ctx.Err()
	}

	c.setPhase(agg, PhaseComplete)
	return c.finalize(agg, primaryOutcome, outcomes...), nil
}

// resolveArtist searches the primary provider and picks one candidate,
// consulting the decision source when the result is ambiguous. The
// full profile is fetched for the winner.
func (c *Crawler) resolveArtist(ctx context.Context, primary provider.Provider, query string) (*provider.ArtistCandidate, int, error) {
	candidates, err := primary.SearchArtist(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("resolving %q: %w", query, err)
	}
	if len(candidates) == 0 {
		return nil, 0, fmt.Errorf("%q: %w", query, ErrArtistNotFound)
	}

	plausible := c.matcher.Ambiguous(query, candidates)
	if len(plausible) == 0 {
		return nil, 0, fmt.Errorf("%q: no candidate close enough: %w", query, ErrArtistNotFound)
	}

	chosen := plausible[0]
	if len(plausible) > 1 {
		if c.opts.Decision == nil {
			return nil, 0, &AmbiguousError{Query: query, Candidates: plausible}
		}
		idx, err := c.opts.Decision.SelectArtist(ctx, query, plausible)
		if err != nil {
			return nil, 0, fmt.Errorf("selecting artist for %q: %w", query, err)
		}
		if idx < 0 || idx >= len(plausible) {
			return nil, 0, fmt.Errorf("artist selection out of range for %q", query)
		}
		chosen = plausible[idx]
	}

	// The search result is thin; the profile has aliases and dates.
	if full, err := primary.GetArtist(ctx, chosen.ProviderID); err == nil {
		chosen = *full
	} else if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}
	return &chosen, len(plausible), nil
}

// fetchReleases lists and filters the primary discography, then fills
// in track lists in parallel. A failed track fetch leaves that release
// trackless and marks the primary outcome partial.
func (c *Crawler) fetchReleases(ctx context.Context, primary provider.Provider, artistID string) ([]provider.ReleaseCandidate, ProviderOutcome, error) {
	outcome := ProviderOutcome{Provider: primary.Name(), Status: OutcomeOK}

	releases, err := primary.ListReleases(ctx, artistID)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		return nil, outcome, fmt.Errorf("listing releases: %w", err)
	}

	releases = filterExcluded(releases, c.opts.ExcludedTitles)
	if c.opts.MaxReleases > 0 && len(releases) > c.opts.MaxReleases {
		releases = releases[:c.opts.MaxReleases]
	}

	var failed int64
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i := range releases {
		if len(releases[i].Tracks) > 0 {
			continue // listing already carried the tracks
		}
		i := i
		g.Go(func() error {
			tracks, err := primary.ListTracks(gctx, releases[i].ProviderID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("track fetch failed",
					slog.String("provider", string(primary.Name())),
					slog.String("release", releases[i].Title),
					slog.String("error", err.Error()))
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			releases[i].Tracks = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		outcome.Status = OutcomePartial
		outcome.Error = err.Error()
		return releases, outcome, err
	}
	if failed > 0 {
		outcome.Status = OutcomePartial
		outcome.Error = fmt.Sprintf("%d release track lists failed", failed)
	}
	return releases, outcome, nil
}

// enrichAll runs every enrichment provider concurrently against the
// merged records. Each provider gets one outcome; none of them can
// fail the crawl.
func (c *Crawler) enrichAll(ctx context.Context, agg *Aggregate, primaryReleases []provider.ReleaseCandidate) []ProviderOutcome {
	enrichers := c.registry.Enrichment()
	if len(enrichers) == 0 {
		return nil
	}

	var mu sync.Mutex // guards agg mutation across providers
	outcomes := make([]ProviderOutcome, len(enrichers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, p := range enrichers {
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = c.enrich(gctx, p, agg, primaryReleases, &mu)
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// enrich runs one enrichment provider: resolve the artist on that
// provider, gate everything on a confident identity match, then attach
// whatever the provider knows.
func (c *Crawler) enrich(ctx context.Context, p provider.Provider, agg *Aggregate, primaryReleases []provider.ReleaseCandidate, mu *sync.Mutex) ProviderOutcome {
	name := p.Name()
	outcome := ProviderOutcome{Provider: name, Status: OutcomeOK}
	log := c.logger.With(slog.String("provider", string(name)))

	target := provider.ArtistCandidate{
		Name:      agg.Artist.Name,
		Country:   agg.Artist.Country,
		BeginDate: agg.Artist.BeginDate,
	}

	candidates, err := p.SearchArtist(ctx, agg.Artist.Name)
	if err != nil {
		var auth *provider.ErrAuthRequired
		if errors.As(err, &auth) {
			outcome.Status = OutcomeSkipped
		} else {
			outcome.Status = OutcomeFailed
		}
		outcome.Error = err.Error()
		log.Warn("enrichment resolution failed", slog.String("error", err.Error()))
		return outcome
	}

	best, res := c.matcher.MatchArtists(target, candidates)
	if best == nil {
		outcome.Status = OutcomeSkipped
		outcome.Error = "no confident artist match"
		return outcome
	}
	log.Debug("enrichment artist matched",
		slog.String("artist", best.Name),
		slog.Float64("confidence", res.Confidence))

	if full, err := p.GetArtist(ctx, best.ProviderID); err == nil {
		best = full
	}

	mu.Lock()
	enrichArtist(&agg.Artist, *best)
	mu.Unlock()
	outcome.Items++

	outcome = c.enrichReleases(ctx, p, best.ProviderID, agg, primaryReleases, mu, outcome)
	if searcher, ok := p.(provider.LyricsSearcher); ok {
		outcome = c.attachLyrics(ctx, searcher, agg, mu, outcome)
	}
	if ctx.Err() != nil && outcome.Status == OutcomeOK {
		outcome.Status = OutcomePartial
		outcome.Error = ctx.Err().Error()
	}
	return outcome
}

// enrichReleases matches the enrichment provider's release list against
// the merged records and copies over genres, durations and playcounts.
func (c *Crawler) enrichReleases(ctx context.Context, p provider.Provider, artistID string, agg *Aggregate, primaryReleases []provider.ReleaseCandidate, mu *sync.Mutex, outcome ProviderOutcome) ProviderOutcome {
	releases, err := p.ListReleases(ctx, artistID)
	if err != nil {
		outcome.Status = OutcomePartial
		outcome.Error = err.Error()
		return outcome
	}
	if len(releases) == 0 {
		return outcome
	}

	genreFetcher, _ := p.(provider.GenreFetcher)
	for pi, ri := range c.matcher.MatchReleases(primaryReleases, releases) {
		other := releases[ri]
		if len(other.Tracks) == 0 {
			if tracks, err := p.ListTracks(ctx, other.ProviderID); err == nil {
				other.Tracks = tracks
			}
		}
		if len(other.Genres) == 0 && genreFetcher != nil {
			if genres, err := genreFetcher.AlbumGenres(ctx, other.ProviderID); err == nil {
				other.Genres = genres
			}
		}
		mu.Lock()
		enrichRelease(c.matcher, &agg.Releases[pi], other)
		mu.Unlock()
		outcome.Items++
	}
	return outcome
}

// attachLyrics resolves a lyrics reference for every merged track.
// A hit only attaches when it scores as the same recording; the right
// artist's wrong song stays off the record. Misses are fine; transient
// failures downgrade the outcome to partial and stop asking.
func (c *Crawler) attachLyrics(ctx context.Context, searcher provider.LyricsSearcher, agg *Aggregate, mu *sync.Mutex, outcome ProviderOutcome) ProviderOutcome {
	for ri := range agg.Releases {
		for ti := range agg.Releases[ri].Tracks {
			if ctx.Err() != nil {
				return outcome
			}
			track := &agg.Releases[ri].Tracks[ti]
			hit, err := searcher.SearchSong(ctx, agg.Artist.Name, track.Title)
			if err != nil {
				var notFound *provider.ErrNotFound
				if errors.As(err, &notFound) {
					continue
				}
				outcome.Status = OutcomePartial
				outcome.Error = err.Error()
				return outcome
			}
			if hit == nil || hit.Lyrics == nil {
				continue
			}
			merged := provider.TrackCandidate{Title: track.Title, Position: track.Position, DurationMS: track.DurationMS}
			if !c.matcher.ScoreTracks(merged, *hit).Merged(c.matcher.Threshold()) {
				continue
			}
			mu.Lock()
			attachLyricsRef(track, *hit)
			agg.Report.LyricsRefs++
			mu.Unlock()
			outcome.Items++
		}
	}
	return outcome
}

func (c *Crawler) setPhase(agg *Aggregate, phase Phase) {
	agg.Report.Phase = phase
	c.logger.Info("phase", slog.String("crawl_id", agg.CrawlID.String()), slog.String("phase", string(phase)))
}

// finalize stamps the aggregate with outcomes, sources, timing and
// request statistics. Sources lists every provider that contributed at
// least one item.
func (c *Crawler) finalize(agg *Aggregate, primaryOutcome ProviderOutcome, outcomes ...ProviderOutcome) *Aggregate {
	agg.Outcomes = append([]ProviderOutcome{primaryOutcome}, outcomes...)
	for _, o := range agg.Outcomes {
		if o.Items > 0 && (o.Status == OutcomeOK || o.Status == OutcomePartial) {
			agg.Sources = append(agg.Sources, o.Provider)
		}
	}
	agg.CrawledAt = time.Now().UTC()
	agg.Report.CompletedAt = agg.CrawledAt
	if c.exec != nil {
		agg.Report.Requests = c.exec.Stats()
	}
	return agg
}
