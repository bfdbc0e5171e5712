package source

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const anilistEndpoint = "https://graphql.anilist.co"

// AniListMedia is the provider shape of one AniList media entry.
// averageScore is a percentage (0-100), unlike Jikan's 0-10 scores.
type AniListMedia struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	CoverImage struct {
		ExtraLarge string `json:"extraLarge"`
		Large      string `json:"large"`
	} `json:"coverImage"`
	Description  string   `json:"description"`
	Episodes     int      `json:"episodes"`
	SeasonYear   int      `json:"seasonYear"`
	Genres       []string `json:"genres"`
	AverageScore int      `json:"averageScore"`
	Status       string   `json:"status"`
}

type anilistResponse struct {
	Data struct {
		Page struct {
			Media []AniListMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const anilistPageQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, sort: POPULARITY_DESC) {
      id
      title {
        romaji
        english
      }
      coverImage {
        extraLarge
        large
      }
      description(asHtml: false)
      episodes
      seasonYear
      genres
      averageScore
      status
    }
  }
}
`

// AniListSource fetches popular anime from the AniList GraphQL API.
type AniListSource struct {
	client   *resty.Client
	cache    *Cache
	endpoint string
	backoff  time.Duration
	sleep    func(time.Duration)
}

func NewAniListSource(userAgent string, cache *Cache, backoff time.Duration) *AniListSource {
	c := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &AniListSource{
		client:   c,
		cache:    cache,
		endpoint: anilistEndpoint,
		backoff:  backoff,
		sleep:    time.Sleep,
	}
}

func (s *AniListSource) SetEndpoint(u string) { s.endpoint = u }

func (s *AniListSource) Name() string { return string(KindAniList) }

func (s *AniListSource) Fetch(ctx context.Context, page Page) ([]RawRecord, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	// GraphQL pages are 1-based; offsets that are not page-aligned round down.
	pageNum := page.Offset/limit + 1

	payload := map[string]interface{}{
		"query": anilistPageQuery,
		"variables": map[string]interface{}{
			"page":    pageNum,
			"perPage": limit,
		},
	}

	var resp anilistResponse
	if err := postJSON(ctx, s.client, s.cache, s.endpoint, payload, s.sleep, s.backoff, &resp); err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(resp.Data.Page.Media))
	for i := range resp.Data.Page.Media {
		records = append(records, RawRecord{Kind: KindAniList, AniList: &resp.Data.Page.Media[i]})
	}
	return records, nil
}
