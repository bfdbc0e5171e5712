package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kpetrov-dev/anistream/internal/model"
	"github.com/kpetrov-dev/anistream/internal/source"
)

const (
	defaultDescription = "No description available."
	placeholderImage   = "https://via.placeholder.com/300x450.png?text=No+Image"
)

// Normalizer converts any adapter's raw record into the canonical Anime
// shape. Pure mapping, no I/O; Now is injectable so the year fallback is
// deterministic in tests.
type Normalizer struct {
	Now func() time.Time
}

func New() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize dispatches on the record's kind. A missing title is the one
// unrecoverable defect: it yields a MalformedRecordError and the record is
// dropped, everything else gets a documented default.
func (n *Normalizer) Normalize(raw source.RawRecord) (model.Anime, error) {
	switch raw.Kind {
	case source.KindJikan:
		if raw.Jikan == nil {
			return model.Anime{}, &source.MalformedRecordError{Source: raw.Kind, Reason: "empty payload"}
		}
		return n.fromJikan(raw.Jikan)
	case source.KindAnilibria:
		if raw.Anilibria == nil {
			return model.Anime{}, &source.MalformedRecordError{Source: raw.Kind, Reason: "empty payload"}
		}
		return n.fromAnilibria(raw.Anilibria)
	case source.KindAniList:
		if raw.AniList == nil {
			return model.Anime{}, &source.MalformedRecordError{Source: raw.Kind, Reason: "empty payload"}
		}
		return n.fromAniList(raw.AniList)
	case source.KindOffline:
		if raw.Offline == nil {
			return model.Anime{}, &source.MalformedRecordError{Source: raw.Kind, Reason: "empty payload"}
		}
		return n.fromOffline(raw.Offline)
	case source.KindSeed:
		if raw.Seed == nil {
			return model.Anime{}, &source.MalformedRecordError{Source: raw.Kind, Reason: "empty payload"}
		}
		return n.fromSeed(raw.Seed)
	default:
		return model.Anime{}, &source.MalformedRecordError{Source: raw.Kind, Reason: "unknown source kind"}
	}
}

func (n *Normalizer) fromJikan(a *source.JikanAnime) (model.Anime, error) {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = strings.TrimSpace(a.TitleEn)
	}
	if title == "" {
		return model.Anime{}, &source.MalformedRecordError{Source: source.KindJikan, Reason: "missing title"}
	}

	image := a.Images.JPG.LargeImageURL
	if image == "" {
		image = a.Images.JPG.ImageURL
	}

	genres := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		genres = append(genres, g.Name)
	}

	return model.Anime{
		// Jikan ids are MAL ids; the store's id space is the MAL id space.
		ID:          uint(a.MalID),
		Title:       title,
		Image:       defaultString(image, placeholderImage),
		Description: defaultString(strings.TrimSpace(a.Synopsis), defaultDescription),
		Episodes:    maxInt(a.Episodes, 0),
		Year:        n.pickYear(a.Year, a.Aired.String),
		Genre:       genreSet(genres, ""),
		Rating:      clampRating(a.Score),
		Status:      defaultString(a.Status, "Unknown"),
	}, nil
}

func (n *Normalizer) fromAnilibria(t *source.AnilibriaTitle) (model.Anime, error) {
	title := strings.TrimSpace(t.Names.RU)
	if title == "" {
		title = strings.TrimSpace(t.Names.EN)
	}
	if title == "" {
		title = strings.TrimSpace(t.Code)
	}
	if title == "" {
		return model.Anime{}, &source.MalformedRecordError{Source: source.KindAnilibria, Reason: "missing title"}
	}

	episodes := episodesFromSeries(t)

	image := ""
	if t.Posters.Original.URL != "" {
		image = "https://anilibria.tv" + t.Posters.Original.URL
	}

	status := t.Status.String
	if status == "" && t.Status.Code != 0 {
		status = strconv.Itoa(t.Status.Code)
	}

	rec := model.Anime{
		// AniLibria ids live in a different id space than MAL ids, so they
		// never become store ids; these records reconcile by title.
		Title:       title,
		Image:       defaultString(image, placeholderImage),
		Description: defaultString(strings.TrimSpace(t.Description), defaultDescription),
		Episodes:    len(episodes),
		Year:        n.pickYear(t.Season.Year, t.Season.String),
		Genre:       genreSet(t.Genres, ""),
		Rating:      ratingFromFavorites(t.InFavorites),
		Status:      defaultString(status, "Unknown"),
		EpisodeData: episodes,
	}
	if len(episodes) > 0 {
		rec.VideoURL = episodes[0].VideoURL
		rec.VideoKind = model.VideoKindProvider
	}
	return rec, nil
}

func (n *Normalizer) fromAniList(m *source.AniListMedia) (model.Anime, error) {
	title := strings.TrimSpace(m.Title.Romaji)
	if title == "" {
		title = strings.TrimSpace(m.Title.English)
	}
	if title == "" {
		return model.Anime{}, &source.MalformedRecordError{Source: source.KindAniList, Reason: "missing title"}
	}

	image := m.CoverImage.ExtraLarge
	if image == "" {
		image = m.CoverImage.Large
	}

	return model.Anime{
		Title:       title,
		Image:       defaultString(image, placeholderImage),
		Description: defaultString(stripHTMLBreaks(m.Description), defaultDescription),
		Episodes:    maxInt(m.Episodes, 0),
		Year:        n.pickYear(m.SeasonYear, ""),
		Genre:       genreSet(m.Genres, ""),
		Rating:      ratingFromPercent(float64(m.AverageScore)),
		Status:      defaultString(m.Status, "Unknown"),
	}, nil
}

func (n *Normalizer) fromOffline(e *source.OfflineEntry) (model.Anime, error) {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return model.Anime{}, &source.MalformedRecordError{Source: source.KindOffline, Reason: "missing title"}
	}

	return model.Anime{
		Title:       title,
		Image:       defaultString(e.Picture, placeholderImage),
		Description: defaultString(strings.TrimSpace(e.Synopsis), defaultDescription),
		Episodes:    maxInt(e.Episodes, 0),
		Year:        n.pickYear(e.AnimeSeason.Year, ""),
		Genre:       genreSet(e.Tags, e.Genres),
		Rating:      0, // dumps carry no score; a later pass from a scored source fills it
		Status:      defaultString(e.Status, "Unknown"),
	}, nil
}

func (n *Normalizer) fromSeed(a *model.Anime) (model.Anime, error) {
	rec := *a
	if strings.TrimSpace(rec.Title) == "" {
		return model.Anime{}, &source.MalformedRecordError{Source: source.KindSeed, Reason: "missing title"}
	}
	rec.Rating = clampRating(rec.Rating)
	if rec.Year == 0 {
		rec.Year = n.Now().Year()
	}
	return rec, nil
}

// episodesFromSeries turns AniLibria's player map into an ordered episode
// list with direct HLS URLs. Keys that do not parse as episode numbers are
// dropped; the first available quality wins.
func episodesFromSeries(t *source.AnilibriaTitle) []model.Episode {
	if t.Player.Host == "" || len(t.Player.Series) == 0 {
		return nil
	}

	episodes := make([]model.Episode, 0, len(t.Player.Series))
	for key, ep := range t.Player.Series {
		number, err := strconv.Atoi(key)
		if err != nil || number <= 0 {
			continue
		}

		url := ""
		for _, quality := range []string{"fhd", "hd", "sd"} {
			if path, ok := ep.HLS[quality]; ok && path != "" {
				url = "https://" + t.Player.Host + path
				break
			}
		}
		if url == "" {
			for _, path := range ep.HLS {
				if path != "" {
					url = "https://" + t.Player.Host + path
					break
				}
			}
		}
		if url == "" {
			continue
		}

		episodes = append(episodes, model.Episode{
			Number:   number,
			Title:    fmt.Sprintf("Episode %d", number),
			VideoURL: url,
		})
	}

	sort.Slice(episodes, func(i, j int) bool { return episodes[i].Number < episodes[j].Number })
	return episodes
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// pickYear prefers the explicit field, then the leading year token of an
// aired/season string, then the current year. Never fails.
func (n *Normalizer) pickYear(explicit int, dateString string) int {
	if explicit > 0 {
		return explicit
	}
	if m := yearPattern.FindString(dateString); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			return y
		}
	}
	return n.Now().Year()
}

// genreSet merges a tag array and a comma-separated string into a set of
// trimmed non-empty genres, preserving first-seen order for display.
func genreSet(tags []string, csv string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(tags))

	add := func(g string) {
		g = strings.TrimSpace(g)
		if g == "" {
			return
		}
		key := strings.ToLower(g)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}

	for _, t := range tags {
		add(t)
	}
	if csv != "" {
		for _, t := range strings.Split(csv, ",") {
			add(t)
		}
	}
	return out
}

func stripHTMLBreaks(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br />", "\n")
	s = strings.ReplaceAll(s, "<i>", "")
	s = strings.ReplaceAll(s, "</i>", "")
	return strings.TrimSpace(s)
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func maxInt(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
