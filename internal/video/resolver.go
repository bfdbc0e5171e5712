package video

import (
	"errors"
	"hash/fnv"
	"regexp"
	"strings"
)

// ErrNoVideoFound means the resolver could not produce any playable URL.
// Distinct from "resolved but fails at watch time", which is the player's
// problem, not ours.
var ErrNoVideoFound = errors.New("no playable video found")

// Known-stable sample clips used for demo placeholders.
var defaultPool = []string{
	"https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerJoyrides.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerMeltdowns.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/SubaruOutbackOnStreetAndDirt.mp4",
	"https://storage.googleapis.com/gtv-videos-bucket/sample/TearsOfSteel.mp4",
}

// Resolver turns a candidate URL or bare title into a playable URL.
type Resolver struct {
	Pool []string
}

func NewResolver() *Resolver {
	return &Resolver{Pool: defaultPool}
}

// Resolve returns a playable URL for the candidate:
//   - a recognized embed/stream URL is returned unchanged;
//   - a YouTube watch URL is rewritten to its embeddable form;
//   - any other http(s) URL is passed through as-is (whether it actually
//     plays is a watch-time concern);
//   - a bare title gets a sample clip from the pool.
//
// Never returns an empty string without an error.
func (r *Resolver) Resolve(candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", ErrNoVideoFound
	}

	if isURL(candidate) {
		if IsEmbeddable(candidate) {
			return candidate, nil
		}
		if id, ok := ExtractYouTubeID(candidate); ok {
			return "https://www.youtube.com/embed/" + id, nil
		}
		return candidate, nil
	}

	return r.Sample(candidate)
}

// Sample picks one clip from the pool for the given title. The pick is
// pseudo-random but stable per title, so repeat imports do not churn rows.
func (r *Resolver) Sample(title string) (string, error) {
	if len(r.Pool) == 0 {
		return "", ErrNoVideoFound
	}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(title))))
	return r.Pool[int(h.Sum32())%len(r.Pool)], nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsEmbeddable reports whether the URL is already in a playable form: an
// iframe/kodik embed, a YouTube embed, or a direct media file/stream.
func IsEmbeddable(url string) bool {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "kodik"),
		strings.Contains(lower, "iframe"),
		strings.Contains(lower, "youtube.com/embed/"),
		strings.HasSuffix(lower, ".mp4"),
		strings.HasSuffix(lower, ".m3u8"),
		strings.Contains(lower, ".m3u8?"),
		strings.Contains(lower, ".mp4?"):
		return true
	}
	return false
}

// IsYouTube reports whether the URL belongs to a YouTube watch page.
func IsYouTube(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractYouTubeID pulls the 11-character clip id out of the known YouTube
// URL shapes (watch?v=, youtu.be/, /embed/, /v/).
func ExtractYouTubeID(url string) (string, bool) {
	if !IsYouTube(url) {
		return "", false
	}
	m := youtubeIDPattern.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return "", false
	}
	return m[2], true
}
