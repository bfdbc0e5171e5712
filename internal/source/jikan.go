package source

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kpetrov-dev/anistream/internal/model"
)

const jikanBaseURL = "https://api.jikan.moe/v4"

// JikanAnime is the provider shape of one entry from the Jikan (MyAnimeList
// mirror) API. Scores are already on the 0-10 scale.
type JikanAnime struct {
	MalID    int     `json:"mal_id"`
	Title    string  `json:"title"`
	TitleEn  string  `json:"title_english"`
	Synopsis string  `json:"synopsis"`
	Episodes int     `json:"episodes"`
	Year     int     `json:"year"`
	Score    float64 `json:"score"`
	Status   string  `json:"status"`
	Images   struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Aired struct {
		String string `json:"string"`
	} `json:"aired"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type jikanListResponse struct {
	Data []JikanAnime `json:"data"`
}

type jikanEpisodesResponse struct {
	Data []struct {
		MalID   int    `json:"mal_id"`
		Title   string `json:"title"`
		Episode int    `json:"episode"`
	} `json:"data"`
}

// JikanSource fetches anime listings and per-anime episode lists from the
// Jikan API. Jikan is sensitive to anonymous hammering, so the client always
// carries a descriptive User-Agent and paces episode calls.
type JikanSource struct {
	client  *resty.Client
	cache   *Cache
	baseURL string
	filter  string // "" for plain top list, e.g. "airing" or "bypopularity"
	backoff time.Duration
	sleep   func(time.Duration)
}

func NewJikanSource(userAgent string, cache *Cache, backoff time.Duration) *JikanSource {
	c := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &JikanSource{
		client:  c,
		cache:   cache,
		baseURL: jikanBaseURL,
		backoff: backoff,
		sleep:   time.Sleep,
	}
}

// SetBaseURL overrides the API root, used by tests to point at a fake server.
func (s *JikanSource) SetBaseURL(u string) { s.baseURL = u }

// SetFilter narrows the top listing ("airing", "bypopularity", ...).
func (s *JikanSource) SetFilter(f string) { s.filter = f }

func (s *JikanSource) Name() string { return string(KindJikan) }

func (s *JikanSource) Fetch(ctx context.Context, page Page) ([]RawRecord, error) {
	url := fmt.Sprintf("%s/top/anime?limit=%d&offset=%d", s.baseURL, page.Limit, page.Offset)
	if s.filter != "" {
		url += "&filter=" + s.filter
	}

	var resp jikanListResponse
	if err := getJSON(ctx, s.client, s.cache, url, s.sleep, s.backoff, &resp); err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(resp.Data))
	for i := range resp.Data {
		records = append(records, RawRecord{Kind: KindJikan, Jikan: &resp.Data[i]})
	}
	return records, nil
}

// Episodes fetches the episode listing for one MAL id. Episode calls are
// paced with the configured backoff before every request because Jikan rate
// limits per-anime lookups far more aggressively than listings.
func (s *JikanSource) Episodes(ctx context.Context, malID int) ([]model.Episode, error) {
	s.sleep(s.backoff)

	url := fmt.Sprintf("%s/anime/%d/episodes", s.baseURL, malID)
	var resp jikanEpisodesResponse
	if err := getJSON(ctx, s.client, s.cache, url, s.sleep, s.backoff, &resp); err != nil {
		return nil, err
	}

	episodes := make([]model.Episode, 0, len(resp.Data))
	for _, e := range resp.Data {
		number := e.MalID
		if number == 0 {
			number = e.Episode
		}
		if number == 0 {
			log.Printf("[jikan] anime %d: episode entry without a number, dropping", malID)
			continue
		}
		title := e.Title
		if title == "" {
			title = fmt.Sprintf("Episode %d", number)
		}
		episodes = append(episodes, model.Episode{Number: number, Title: title})
	}
	return episodes, nil
}
