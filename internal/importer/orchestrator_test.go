package importer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kpetrov-dev/anistream/internal/catalog"
	"github.com/kpetrov-dev/anistream/internal/db"
	"github.com/kpetrov-dev/anistream/internal/model"
	"github.com/kpetrov-dev/anistream/internal/source"
)

var testRepo *catalog.Repository

func TestMain(m *testing.M) {
	db.InitDB(":memory:")
	testRepo = catalog.NewRepository(db.DB)

	code := m.Run()
	db.CloseDB()
	os.Exit(code)
}

func resetStore(t *testing.T) {
	t.Helper()
	if err := db.DB.Exec("DELETE FROM animes").Error; err != nil {
		t.Fatal(err)
	}
	if err := db.DB.Exec("DELETE FROM import_runs").Error; err != nil {
		t.Fatal(err)
	}
}

func newTestOrchestrator() *Orchestrator {
	o := New(testRepo, catalog.NewReconciler(testRepo), time.Millisecond)
	o.SampleVideos = true
	o.Sleep = func(time.Duration) {}
	return o
}

// fakeSource serves canned records, or fails, depending on how it is built.
type fakeSource struct {
	name  string
	fetch func(ctx context.Context, page source.Page) ([]source.RawRecord, error)
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) Fetch(ctx context.Context, page source.Page) ([]source.RawRecord, error) {
	return f.fetch(ctx, page)
}

func seedRecords(titles ...string) []source.RawRecord {
	records := make([]source.RawRecord, 0, len(titles))
	for _, title := range titles {
		records = append(records, source.RawRecord{
			Kind: source.KindSeed,
			Seed: &model.Anime{Title: title, Rating: 7.5, Year: 2020},
		})
	}
	return records
}

func staticSource(name string, records []source.RawRecord) *fakeSource {
	return &fakeSource{name: name, fetch: func(context.Context, source.Page) ([]source.RawRecord, error) {
		return records, nil
	}}
}

func failingSource(name string) *fakeSource {
	return &fakeSource{name: name, fetch: func(context.Context, source.Page) ([]source.RawRecord, error) {
		return nil, source.ErrSourceUnavailable
	}}
}

func TestRun_MalformedRecordDoesNotAbortTheBatch(t *testing.T) {
	resetStore(t)

	// One titleless record in the middle of the batch.
	records := seedRecords("Show 1", "Show 2")
	records = append(records, source.RawRecord{Kind: source.KindSeed, Seed: &model.Anime{}})
	records = append(records, seedRecords("Show 3", "Show 4")...)

	o := newTestOrchestrator()
	o.Sources = []source.Source{staticSource("fake", records)}

	summary := o.Run(context.Background(), Options{Limit: 10})
	if !summary.Success {
		t.Fatalf("run should succeed despite one bad record: %s", summary.Message)
	}
	if summary.Inserted != 4 || summary.Errors != 1 {
		t.Errorf("expected 4 inserted / 1 error, got %d / %d", summary.Inserted, summary.Errors)
	}

	total, _ := testRepo.Count()
	if total != 4 {
		t.Errorf("expected 4 rows, got %d", total)
	}
}

func TestRun_FallbackSeedWhenAllSourcesFail(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{failingSource("a"), failingSource("b")}
	o.Fallback = staticSource("seed", seedRecords("Fallback One", "Fallback Two"))

	summary := o.Run(context.Background(), Options{Limit: 10})
	if !summary.Success {
		t.Fatalf("fallback run should succeed: %s", summary.Message)
	}
	if summary.Inserted != 2 {
		t.Errorf("expected both fallback rows inserted, got %d", summary.Inserted)
	}
	if !strings.Contains(summary.Message, "Some sources were unavailable") {
		t.Errorf("degraded run must say so: %q", summary.Message)
	}
}

func TestRun_FallbackNotUsedWhenAnySourceDelivers(t *testing.T) {
	resetStore(t)

	fallbackCalled := false
	o := newTestOrchestrator()
	o.Sources = []source.Source{
		failingSource("a"),
		staticSource("b", seedRecords("Live Show")),
	}
	o.Fallback = &fakeSource{name: "seed", fetch: func(context.Context, source.Page) ([]source.RawRecord, error) {
		fallbackCalled = true
		return seedRecords("Fallback"), nil
	}}

	summary := o.Run(context.Background(), Options{Limit: 10})
	if !summary.Success {
		t.Fatalf("run failed: %s", summary.Message)
	}
	if fallbackCalled {
		t.Error("fallback must only run when no live source delivered")
	}
}

func TestRun_NothingObtained(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{failingSource("a")}

	summary := o.Run(context.Background(), Options{Limit: 10})
	if summary.Success {
		t.Error("a run with no data must not claim success")
	}
	if summary.Message != "No data could be obtained from any source" {
		t.Errorf("unexpected message: %q", summary.Message)
	}
}

func TestRun_DuplicateTitlesLastProcessedWins(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{
		staticSource("a", []source.RawRecord{{
			Kind: source.KindSeed,
			Seed: &model.Anime{Title: "Naruto", Rating: 5.0, Year: 2002},
		}}),
		staticSource("b", []source.RawRecord{{
			Kind: source.KindSeed,
			Seed: &model.Anime{Title: " NARUTO ", Rating: 9.0, Year: 2002},
		}}),
	}

	summary := o.Run(context.Background(), Options{Limit: 10})
	if summary.Inserted != 1 || summary.Updated != 1 {
		t.Errorf("expected 1 inserted / 1 updated, got %d / %d", summary.Inserted, summary.Updated)
	}

	total, _ := testRepo.Count()
	if total != 1 {
		t.Fatalf("expected a single row, got %d", total)
	}
	stored, _ := testRepo.FindByTitle("Naruto")
	if stored.Rating != 9.0 {
		t.Errorf("later record must win, rating = %v", stored.Rating)
	}
}

func TestRun_EmptySourcesFallbackWithoutFailureNote(t *testing.T) {
	resetStore(t)

	empty := &fakeSource{name: "empty", fetch: func(context.Context, source.Page) ([]source.RawRecord, error) {
		return nil, nil
	}}
	o := newTestOrchestrator()
	o.Sources = []source.Source{empty}
	o.Fallback = staticSource("seed", seedRecords("Fallback Row"))

	summary := o.Run(context.Background(), Options{Limit: 10})
	if !summary.Success {
		t.Fatalf("fallback run should succeed: %s", summary.Message)
	}
	if strings.Contains(summary.Message, "unavailable") {
		t.Errorf("no source failed, message must not claim otherwise: %q", summary.Message)
	}
	if !strings.Contains(summary.Message, "returned no records") {
		t.Errorf("message should say the live sources were empty: %q", summary.Message)
	}
}

func TestRun_ProviderVideoURLResolved(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{staticSource("a", []source.RawRecord{{
		Kind: source.KindSeed,
		Seed: &model.Anime{
			Title:     "Watch Page Show",
			Year:      2020,
			VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			VideoKind: model.VideoKindProvider,
		},
	}})}

	o.Run(context.Background(), Options{Limit: 10})

	stored, _ := testRepo.FindByTitle("Watch Page Show")
	if stored == nil {
		t.Fatal("row missing")
	}
	if stored.VideoURL != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Errorf("watch URL not rewritten to embed form: %q", stored.VideoURL)
	}
	if stored.VideoKind != model.VideoKindProvider {
		t.Errorf("provenance changed by resolution: %q", stored.VideoKind)
	}
}

func TestRun_NegativeOffsetClamped(t *testing.T) {
	resetStore(t)

	var sawPage source.Page
	o := newTestOrchestrator()
	o.Sources = []source.Source{&fakeSource{name: "paged", fetch: func(_ context.Context, page source.Page) ([]source.RawRecord, error) {
		sawPage = page
		return seedRecords("Clamped"), nil
	}}}

	summary := o.Run(context.Background(), Options{Limit: 10, Offset: -3})
	if sawPage.Offset != 0 {
		t.Errorf("negative offset must be clamped before fetching, got %d", sawPage.Offset)
	}
	if summary.NextOffset != 10 {
		t.Errorf("nextOffset must build on the clamped offset, got %d", summary.NextOffset)
	}
}

func TestRun_RepeatRunIsIdempotent(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{staticSource("fake", seedRecords("A", "B", "C"))}

	first := o.Run(context.Background(), Options{Limit: 10})
	if first.Inserted != 3 {
		t.Fatalf("first run inserted %d, expected 3", first.Inserted)
	}

	second := o.Run(context.Background(), Options{Limit: 10})
	if second.Inserted != 0 || second.Updated != 0 {
		t.Errorf("repeat run must not rewrite rows: inserted %d updated %d", second.Inserted, second.Updated)
	}
	if second.Skipped != 3 {
		t.Errorf("expected all 3 skipped, got %d", second.Skipped)
	}
}

func TestRun_PaginationForwardedAndNextOffset(t *testing.T) {
	resetStore(t)

	var sawPage source.Page
	o := newTestOrchestrator()
	paging := &fakeSource{name: "paged", fetch: func(_ context.Context, page source.Page) ([]source.RawRecord, error) {
		sawPage = page
		titles := make([]string, 0, page.Limit)
		for i := 0; i < page.Limit; i++ {
			titles = append(titles, fmt.Sprintf("Entry %d", page.Offset+i))
		}
		return seedRecords(titles...), nil
	}}
	o.Sources = []source.Source{paging}

	first := o.Run(context.Background(), Options{Limit: 25, Offset: 0})
	if sawPage.Limit != 25 || sawPage.Offset != 0 {
		t.Errorf("page not forwarded: %+v", sawPage)
	}
	if first.NextOffset != 25 {
		t.Errorf("expected nextOffset 25, got %d", first.NextOffset)
	}

	second := o.Run(context.Background(), Options{Limit: 25, Offset: first.NextOffset})
	if sawPage.Offset != 25 {
		t.Errorf("second window offset not forwarded: %+v", sawPage)
	}
	if second.NextOffset != 50 {
		t.Errorf("expected nextOffset 50, got %d", second.NextOffset)
	}
	if second.Inserted != 25 {
		t.Errorf("windows overlap: second run inserted %d", second.Inserted)
	}
}

func TestRun_Cancellation(t *testing.T) {
	resetStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator()
	o.Sources = []source.Source{staticSource("fake", seedRecords("X", "Y"))}

	summary := o.Run(ctx, Options{Limit: 10})
	if summary.Success {
		t.Error("cancelled run must not claim success")
	}
	if summary.Message != "Import cancelled before completion" {
		t.Errorf("unexpected message: %q", summary.Message)
	}
}

func TestRun_DelayBetweenSources(t *testing.T) {
	resetStore(t)

	var slept []time.Duration
	o := newTestOrchestrator()
	o.Delay = 750 * time.Millisecond
	o.Sleep = func(d time.Duration) { slept = append(slept, d) }
	o.Sources = []source.Source{
		staticSource("a", seedRecords("A")),
		staticSource("b", seedRecords("B")),
		staticSource("c", seedRecords("C")),
	}

	o.Run(context.Background(), Options{Limit: 10})

	if len(slept) != 2 {
		t.Fatalf("expected a delay between each source pair, got %d sleeps", len(slept))
	}
	for _, d := range slept {
		if d != 750*time.Millisecond {
			t.Errorf("wrong delay %v", d)
		}
	}
}

func TestRun_SampleVideoAttached(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{staticSource("fake", seedRecords("Needs Video"))}

	o.Run(context.Background(), Options{Limit: 10})

	stored, _ := testRepo.FindByTitle("Needs Video")
	if stored == nil {
		t.Fatal("row missing")
	}
	if stored.VideoURL == "" || stored.VideoKind != model.VideoKindSample {
		t.Errorf("expected sample video attached, got %q (%q)", stored.VideoURL, stored.VideoKind)
	}
}

func TestRun_PersistsRunLog(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{staticSource("fake", seedRecords("Logged"))}

	summary := o.Run(context.Background(), Options{Limit: 10, Trigger: "manual"})

	runs, err := testRepo.RecentRuns(5)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run row, got %d (%v)", len(runs), err)
	}
	run := runs[0]
	if run.RunID != summary.RunID || !run.Success || run.Inserted != 1 || run.Trigger != "manual" {
		t.Errorf("run log wrong: %+v", run)
	}
	if run.Sources != "fake" {
		t.Errorf("expected source names recorded, got %q", run.Sources)
	}
}

func TestRunSeedIfEmpty(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	seed := staticSource("seed", seedRecords("Seed A", "Seed B"))

	first := o.RunSeedIfEmpty(context.Background(), seed, Options{Limit: 10})
	if !first.Success || first.Inserted != 2 {
		t.Fatalf("seeding an empty store failed: %+v", first)
	}

	second := o.RunSeedIfEmpty(context.Background(), seed, Options{Limit: 10})
	if !second.Success {
		t.Error("re-seeding must be a successful no-op")
	}
	if second.Message != "Data already imported" {
		t.Errorf("unexpected message: %q", second.Message)
	}
	total, _ := testRepo.Count()
	if total != 2 {
		t.Errorf("re-seed touched the store: %d rows", total)
	}
}

func TestRunSyncIfBelow(t *testing.T) {
	resetStore(t)

	o := newTestOrchestrator()
	o.Sources = []source.Source{staticSource("fake", seedRecords("S1", "S2", "S3"))}

	first := o.RunSyncIfBelow(context.Background(), 2, Options{Limit: 10})
	if !first.Success || first.Inserted != 3 {
		t.Fatalf("sync below threshold failed: %+v", first)
	}

	second := o.RunSyncIfBelow(context.Background(), 2, Options{Limit: 10})
	if !second.Success || second.Inserted != 0 {
		t.Errorf("sync above threshold must be a no-op: %+v", second)
	}
	if !strings.Contains(second.Message, "already has") {
		t.Errorf("unexpected message: %q", second.Message)
	}
}

// episodeFakeSource emits one Jikan record and serves an episode listing,
// mirroring the WithEpisodes path.
type episodeFakeSource struct {
	fakeSource
	episodes []model.Episode
	err      error
}

func (f *episodeFakeSource) Episodes(ctx context.Context, malID int) ([]model.Episode, error) {
	return f.episodes, f.err
}

func TestRun_WithEpisodes(t *testing.T) {
	resetStore(t)

	jikanRecord := []source.RawRecord{{
		Kind:  source.KindJikan,
		Jikan: &source.JikanAnime{MalID: 1, Title: "Cowboy Bebop", Episodes: 26, Score: 8.7, Year: 1998},
	}}
	src := &episodeFakeSource{
		fakeSource: fakeSource{name: "jikan", fetch: func(context.Context, source.Page) ([]source.RawRecord, error) {
			return jikanRecord, nil
		}},
		episodes: []model.Episode{
			{Number: 2, Title: "Stray Dog Strut"},
			{Number: 1, Title: "Asteroid Blues"},
		},
	}

	o := newTestOrchestrator()
	o.Sources = []source.Source{src}

	summary := o.Run(context.Background(), Options{Limit: 10, WithEpisodes: true})
	if !summary.Success {
		t.Fatalf("run failed: %s", summary.Message)
	}

	stored, _ := testRepo.FindByTitle("Cowboy Bebop")
	if stored == nil {
		t.Fatal("row missing")
	}
	if len(stored.EpisodeData) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(stored.EpisodeData))
	}
	if stored.EpisodeData[0].Number != 1 || stored.EpisodeData[0].Title != "Asteroid Blues" {
		t.Errorf("episodes not stored sorted: %+v", stored.EpisodeData)
	}
	for _, ep := range stored.EpisodeData {
		if ep.VideoURL == "" {
			t.Errorf("episode %d missing a sample clip", ep.Number)
		}
	}
}

func TestRun_WithEpisodes_NoListingUsesReportedCount(t *testing.T) {
	resetStore(t)

	src := &episodeFakeSource{
		fakeSource: fakeSource{name: "jikan", fetch: func(context.Context, source.Page) ([]source.RawRecord, error) {
			return []source.RawRecord{{
				Kind:  source.KindJikan,
				Jikan: &source.JikanAnime{MalID: 2, Title: "Short Show", Episodes: 3, Year: 2001},
			}}, nil
		}},
		err: source.ErrSourceUnavailable,
	}

	o := newTestOrchestrator()
	o.Sources = []source.Source{src}

	o.Run(context.Background(), Options{Limit: 10, WithEpisodes: true})

	stored, _ := testRepo.FindByTitle("Short Show")
	if stored == nil {
		t.Fatal("row missing")
	}
	if len(stored.EpisodeData) != 3 {
		t.Fatalf("expected 3 placeholder episodes from the reported count, got %d", len(stored.EpisodeData))
	}
	if stored.EpisodeData[2].Title != "Episode 3" {
		t.Errorf("placeholder titles wrong: %+v", stored.EpisodeData)
	}
}
