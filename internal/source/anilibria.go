package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	anilibriaBaseURL  = "https://api.anilibria.tv/v3"
	anilibriaSiteURL  = "https://anilibria.tv"
	anilibriaListCols = "id,code,names,description,status,type,in_favorites,player,posters,season,genres"
)

// AnilibriaTitle is the provider shape of one AniLibria title. The API has no
// score; in_favorites is the only popularity signal and is mapped onto the
// rating scale by the normalizer. player.series carries the real per-episode
// HLS streams.
type AnilibriaTitle struct {
	ID    int    `json:"id"`
	Code  string `json:"code"`
	Names struct {
		RU string `json:"ru"`
		EN string `json:"en"`
	} `json:"names"`
	Description string `json:"description"`
	Status      struct {
		String string `json:"string"`
		Code   int    `json:"code"`
	} `json:"status"`
	InFavorites int `json:"in_favorites"`
	Player      struct {
		Host   string                      `json:"host"`
		Series map[string]AnilibriaEpisode `json:"series"`
	} `json:"player"`
	Posters struct {
		Original struct {
			URL string `json:"url"`
		} `json:"original"`
	} `json:"posters"`
	Season struct {
		Year   int    `json:"year"`
		String string `json:"string"`
	} `json:"season"`
	Genres []string `json:"genres"`
}

// AnilibriaEpisode maps quality labels to HLS paths relative to player.host.
type AnilibriaEpisode struct {
	HLS map[string]string `json:"hls"`
}

type anilibriaListResponse struct {
	List []AnilibriaTitle `json:"list"`
}

// AnilibriaSource fetches the fan-run AniLibria title list. The v3 list
// endpoint supports a limit but no usable offset, so paging beyond the first
// window returns nothing rather than re-serving the same titles.
type AnilibriaSource struct {
	client  *resty.Client
	cache   *Cache
	baseURL string
	siteURL string
	backoff time.Duration
	sleep   func(time.Duration)
}

func NewAnilibriaSource(userAgent string, cache *Cache, backoff time.Duration) *AnilibriaSource {
	c := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Content-Type", "application/json")

	return &AnilibriaSource{
		client:  c,
		cache:   cache,
		baseURL: anilibriaBaseURL,
		siteURL: anilibriaSiteURL,
		backoff: backoff,
		sleep:   time.Sleep,
	}
}

func (s *AnilibriaSource) SetBaseURL(u string) { s.baseURL = u }

// SiteURL is the host poster paths are resolved against.
func (s *AnilibriaSource) SiteURL() string { return s.siteURL }

func (s *AnilibriaSource) Name() string { return string(KindAnilibria) }

func (s *AnilibriaSource) Fetch(ctx context.Context, page Page) ([]RawRecord, error) {
	if page.Offset > 0 {
		return nil, nil
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	url := fmt.Sprintf("%s/title/list?limit=%d&filter=%s", s.baseURL, limit, anilibriaListCols)

	var resp anilibriaListResponse
	if err := getJSON(ctx, s.client, s.cache, url, s.sleep, s.backoff, &resp); err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(resp.List))
	for i := range resp.List {
		records = append(records, RawRecord{Kind: KindAnilibria, Anilibria: &resp.List[i]})
	}
	return records, nil
}
