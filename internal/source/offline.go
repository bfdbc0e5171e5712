package source

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const offlineDumpURL = "https://raw.githubusercontent.com/manami-project/anime-offline-database/master/anime-offline-database.json"

// OfflineEntry is one record of the community anime-offline-database dump.
// Some dump variants list genres as a comma-separated string instead of a tag
// array; both fields are kept and the normalizer merges them.
type OfflineEntry struct {
	Title       string   `json:"title"`
	Picture     string   `json:"picture"`
	Synopsis    string   `json:"synopsis"`
	Episodes    int      `json:"episodes"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`
	Genres      string   `json:"genres"`
	AnimeSeason struct {
		Season string `json:"season"`
		Year   int    `json:"year"`
	} `json:"animeSeason"`
}

type offlineDump struct {
	Data []OfflineEntry `json:"data"`
}

// OfflineSource serves static community JSON dumps from GitHub raw content.
// The dump has no server-side pagination: it is fetched whole (the response
// cache keeps repeat runs cheap) and sliced locally by limit/offset.
type OfflineSource struct {
	client  *resty.Client
	cache   *Cache
	dumpURL string
	backoff time.Duration
	sleep   func(time.Duration)
}

func NewOfflineSource(userAgent string, cache *Cache, backoff time.Duration) *OfflineSource {
	c := resty.New().
		SetTimeout(60 * time.Second). // the dump is tens of megabytes
		SetHeader("User-Agent", userAgent)

	return &OfflineSource{
		client:  c,
		cache:   cache,
		dumpURL: offlineDumpURL,
		backoff: backoff,
		sleep:   time.Sleep,
	}
}

func (s *OfflineSource) SetDumpURL(u string) { s.dumpURL = u }

func (s *OfflineSource) Name() string { return string(KindOffline) }

func (s *OfflineSource) Fetch(ctx context.Context, page Page) ([]RawRecord, error) {
	var dump offlineDump
	if err := getJSON(ctx, s.client, s.cache, s.dumpURL, s.sleep, s.backoff, &dump); err != nil {
		return nil, err
	}

	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(dump.Data) {
		return nil, nil
	}
	end := len(dump.Data)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}

	records := make([]RawRecord, 0, end-start)
	for i := start; i < end; i++ {
		records = append(records, RawRecord{Kind: KindOffline, Offline: &dump.Data[i]})
	}
	return records, nil
}
