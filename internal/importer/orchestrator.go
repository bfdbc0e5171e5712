package importer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kpetrov-dev/anistream/internal/catalog"
	"github.com/kpetrov-dev/anistream/internal/model"
	"github.com/kpetrov-dev/anistream/internal/normalize"
	"github.com/kpetrov-dev/anistream/internal/source"
	"github.com/kpetrov-dev/anistream/internal/video"
)

// Options control one import run.
type Options struct {
	Limit        int
	Offset       int
	Force        bool // allow overwriting already-resolved video links
	WithEpisodes bool // fetch per-anime episode listings where the source supports it
	Trigger      string
}

// Summary is the sole contract callers depend on. Business-logic failures are
// Success=false with a readable Message, never an error value.
type Summary struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RunID      string `json:"runId"`
	Inserted   int    `json:"inserted"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	Errors     int    `json:"errors"`
	Count      int    `json:"count"`
	NextOffset int    `json:"nextOffset"`
}

// Orchestrator sequences source adapters through normalize and reconcile.
// Sources run strictly one after another with a fixed delay in between, so
// shared per-provider rate limits are respected; records within a source keep
// provider order (last processed wins, subject to the no-clobber-video rule).
type Orchestrator struct {
	Sources      []source.Source
	Fallback     source.Source
	Normalizer   *normalize.Normalizer
	Reconciler   *catalog.Reconciler
	Repo         *catalog.Repository
	Resolver     *video.Resolver
	Delay        time.Duration
	SampleVideos bool
	Sleep        func(time.Duration)

	// Import runs assume a single writer; concurrent triggers serialize here.
	mu sync.Mutex
}

func New(repo *catalog.Repository, rec *catalog.Reconciler, delay time.Duration) *Orchestrator {
	return &Orchestrator{
		Normalizer: normalize.New(),
		Reconciler: rec,
		Repo:       repo,
		Resolver:   video.NewResolver(),
		Delay:      delay,
		Sleep:      time.Sleep,
	}
}

// Run executes one import pass over the configured sources.
func (o *Orchestrator) Run(ctx context.Context, opts Options) Summary {
	return o.runSources(ctx, o.Sources, opts)
}

// RunSources executes one import pass over an explicit source list (the
// single-provider API triggers use this).
func (o *Orchestrator) RunSources(ctx context.Context, sources []source.Source, opts Options) Summary {
	return o.runSources(ctx, sources, opts)
}

func (o *Orchestrator) runSources(ctx context.Context, sources []source.Source, opts Options) Summary {
	o.mu.Lock()
	defer o.mu.Unlock()

	runID := uuid.New().String()
	if opts.Trigger == "" {
		opts.Trigger = "manual"
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var counters catalog.Counters
	names := make([]string, 0, len(sources)+1)
	fetchedAny := false
	degraded := false
	usedFallback := false
	cancelled := false

	for i, src := range sources {
		if i > 0 {
			o.Sleep(o.Delay)
		}

		got, err := o.runOne(ctx, src, opts, &counters)
		if err == context.Canceled {
			cancelled = true
			break
		}
		if err != nil {
			log.Printf("Importer: source %s failed: %v", src.Name(), err)
			degraded = true
			continue
		}
		names = append(names, src.Name())
		fetchedAny = fetchedAny || got
	}

	// Fallback seed only when literally nothing was obtained live.
	if !fetchedAny && !cancelled && o.Fallback != nil {
		log.Printf("Importer: no live source delivered, falling back to %s", o.Fallback.Name())
		usedFallback = true
		got, err := o.runOne(ctx, o.Fallback, opts, &counters)
		if err != nil && err != context.Canceled {
			log.Printf("Importer: fallback %s failed: %v", o.Fallback.Name(), err)
		}
		if got {
			names = append(names, o.Fallback.Name())
			fetchedAny = true
		}
	}

	summary := o.buildSummary(runID, opts, &counters, fetchedAny, degraded, usedFallback, cancelled)

	run := model.ImportRun{
		RunID:    runID,
		Trigger:  opts.Trigger,
		Sources:  strings.Join(names, ","),
		Inserted: counters.Inserted,
		Updated:  counters.Updated,
		Skipped:  counters.Skipped,
		Errors:   counters.Errors,
		Success:  summary.Success,
		Message:  summary.Message,
	}
	if err := o.Repo.CreateRun(&run); err != nil {
		log.Printf("Importer: failed to persist run log: %v", err)
	}

	return summary
}

// runOne fetches one source and pushes every record through normalize,
// resolve and reconcile. Per-record failures are absorbed into the counters;
// only a whole-source fetch failure or cancellation propagates.
func (o *Orchestrator) runOne(ctx context.Context, src source.Source, opts Options, counters *catalog.Counters) (bool, error) {
	records, err := src.Fetch(ctx, source.Page{Limit: opts.Limit, Offset: opts.Offset})
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}

	log.Printf("Importer: %s returned %d records", src.Name(), len(records))
	lister, canListEpisodes := src.(source.EpisodeLister)

	for _, raw := range records {
		// Cancellation is checked between records, never mid-record.
		select {
		case <-ctx.Done():
			return true, context.Canceled
		default:
		}

		rec, err := o.Normalizer.Normalize(raw)
		if err != nil {
			log.Printf("Importer: dropping record from %s: %v", src.Name(), err)
			counters.Errors++
			continue
		}

		if opts.WithEpisodes && canListEpisodes && len(rec.EpisodeData) == 0 && raw.Jikan != nil {
			o.attachEpisodes(ctx, lister, &rec, raw.Jikan.MalID)
		}

		// Duplicate titles within a run are not filtered here: each one hits
		// the reconciler in turn, so the last-processed record wins (subject
		// to the no-clobber-video rule).
		if rec.VideoURL != "" {
			if url, err := o.Resolver.Resolve(rec.VideoURL); err == nil {
				rec.VideoURL = url
			}
		} else if o.SampleVideos {
			if url, err := o.Resolver.Sample(rec.Title); err == nil {
				rec.VideoURL = url
				rec.VideoKind = model.VideoKindSample
			}
			// ErrNoVideoFound leaves the link empty rather than failing the record.
		}

		action, err := o.Reconciler.Reconcile(rec, opts.Force)
		if err != nil {
			log.Printf("Importer: store error for %q: %v", rec.Title, err)
			counters.Errors++
			continue
		}
		counters.Add(action)
	}

	return true, nil
}

// attachEpisodes fills the per-episode list from the provider, or falls back
// to synthetic placeholders when the provider has no listing but reported a
// count. Counts are never invented.
func (o *Orchestrator) attachEpisodes(ctx context.Context, lister source.EpisodeLister, rec *model.Anime, providerID int) {
	episodes, err := lister.Episodes(ctx, providerID)
	if err != nil {
		log.Printf("Importer: episode listing failed for %q: %v", rec.Title, err)
	}

	if len(episodes) == 0 {
		if rec.Episodes <= 0 {
			return
		}
		episodes = make([]model.Episode, 0, rec.Episodes)
		for i := 1; i <= rec.Episodes; i++ {
			episodes = append(episodes, model.Episode{Number: i, Title: fmt.Sprintf("Episode %d", i)})
		}
	}

	if o.SampleVideos {
		for i := range episodes {
			if episodes[i].VideoURL != "" {
				continue
			}
			if url, err := o.Resolver.Sample(fmt.Sprintf("%s #%d", rec.Title, episodes[i].Number)); err == nil {
				episodes[i].VideoURL = url
			}
		}
	}

	rec.EpisodeData = episodes
	if rec.Episodes == 0 {
		rec.Episodes = len(episodes)
	}
}

func (o *Orchestrator) buildSummary(runID string, opts Options, counters *catalog.Counters, fetchedAny, degraded, usedFallback, cancelled bool) Summary {
	s := Summary{
		RunID:      runID,
		Inserted:   counters.Inserted,
		Updated:    counters.Updated,
		Skipped:    counters.Skipped,
		Errors:     counters.Errors,
		Count:      counters.Processed(),
		NextOffset: opts.Offset + opts.Limit,
	}

	switch {
	case cancelled:
		s.Message = "Import cancelled before completion"
	case !fetchedAny:
		s.Message = "No data could be obtained from any source"
	case counters.Processed() == 0 && counters.Errors > 0:
		s.Message = fmt.Sprintf("Store rejected every record (%d errors)", counters.Errors)
	default:
		s.Success = true
		s.Message = fmt.Sprintf("Imported %d new anime, updated %d, skipped %d. %d errors.",
			counters.Inserted, counters.Updated, counters.Skipped, counters.Errors)
		switch {
		case degraded:
			s.Message += " Some sources were unavailable."
		case usedFallback:
			s.Message += " Live sources returned no records; used the built-in dataset."
		}
	}
	return s
}
