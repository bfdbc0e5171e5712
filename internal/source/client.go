package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// getJSON performs a cached GET with the retry policy every adapter shares:
// one bounded retry after backoff on 429/5xx, immediate ErrSourceUnavailable
// on any other 4xx or on a malformed payload. sleep is injectable for tests.
func getJSON(ctx context.Context, client *resty.Client, cache *Cache, url string, sleep func(time.Duration), backoff time.Duration, out interface{}) error {
	if cache != nil {
		if body, ok := cache.Get(url); ok {
			if err := json.Unmarshal(body, out); err == nil {
				return nil
			}
			// Corrupt cache entry, fall through to a live fetch.
		}
	}

	body, err := fetchOnce(ctx, client, url)
	if err != nil {
		retryable := err == errRetryable429 || err == errRetryable5xx
		if !retryable {
			return err
		}

		sleep(backoff)
		body, err = fetchOnce(ctx, client, url)
		if err == errRetryable429 {
			return fmt.Errorf("%w: %s still answers 429 after retry", ErrRateLimited, url)
		}
		if err == errRetryable5xx {
			return fmt.Errorf("%w: %s keeps failing with a server error", ErrSourceUnavailable, url)
		}
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: malformed payload from %s: %v", ErrSourceUnavailable, url, err)
	}
	if cache != nil {
		cache.Set(url, body)
	}
	return nil
}

// postJSON is getJSON for POST bodies (the AniList GraphQL endpoint). The
// cache key includes the body so distinct queries never collide.
func postJSON(ctx context.Context, client *resty.Client, cache *Cache, url string, payload interface{}, sleep func(time.Duration), backoff time.Duration, out interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: cannot encode request for %s: %v", ErrSourceUnavailable, url, err)
	}
	cacheKey := url + "#" + string(reqBody)

	if cache != nil {
		if body, ok := cache.Get(cacheKey); ok {
			if err := json.Unmarshal(body, out); err == nil {
				return nil
			}
		}
	}

	body, err := postOnce(ctx, client, url, reqBody)
	if err != nil {
		retryable := err == errRetryable429 || err == errRetryable5xx
		if !retryable {
			return err
		}

		sleep(backoff)
		body, err = postOnce(ctx, client, url, reqBody)
		if err == errRetryable429 {
			return fmt.Errorf("%w: %s still answers 429 after retry", ErrRateLimited, url)
		}
		if err == errRetryable5xx {
			return fmt.Errorf("%w: %s keeps failing with a server error", ErrSourceUnavailable, url)
		}
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: malformed payload from %s: %v", ErrSourceUnavailable, url, err)
	}
	if cache != nil {
		cache.Set(cacheKey, body)
	}
	return nil
}

var (
	errRetryable429 = fmt.Errorf("retryable: 429")
	errRetryable5xx = fmt.Errorf("retryable: 5xx")
)

func fetchOnce(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusTooManyRequests:
		return nil, errRetryable429
	case code >= 500:
		return nil, errRetryable5xx
	case code >= 400:
		return nil, fmt.Errorf("%w: %s returned %d", ErrSourceUnavailable, url, code)
	}
	return resp.Body(), nil
}

func postOnce(ctx context.Context, client *resty.Client, url string, body []byte) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).SetBody(body).Post(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusTooManyRequests:
		return nil, errRetryable429
	case code >= 500:
		return nil, errRetryable5xx
	case code >= 400:
		return nil, fmt.Errorf("%w: %s returned %d", ErrSourceUnavailable, url, code)
	}
	return resp.Body(), nil
}
