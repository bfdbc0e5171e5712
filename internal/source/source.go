package source

import (
	"context"

	"github.com/kpetrov-dev/anistream/internal/model"
)

// Kind identifies which provider produced a raw record, and therefore which
// payload field of RawRecord is populated.
type Kind string

const (
	KindJikan     Kind = "jikan"
	KindAnilibria Kind = "anilibria"
	KindAniList   Kind = "anilist"
	KindOffline   Kind = "offline"
	KindSeed      Kind = "seed"
)

// Page carries provider pagination parameters. Providers without pagination
// ignore Offset and return their full payload (sliced locally if needed).
type Page struct {
	Limit  int
	Offset int
}

// RawRecord is a tagged union over provider-specific shapes. Exactly one
// payload pointer is non-nil, matching Kind. The normalizer dispatches on it;
// nothing else should probe provider fields.
type RawRecord struct {
	Kind      Kind
	Jikan     *JikanAnime
	Anilibria *AnilibriaTitle
	AniList   *AniListMedia
	Offline   *OfflineEntry
	Seed      *model.Anime
}

// Source is implemented by each external data provider. A source is
// responsible only for transport and shape-mapping; it never deduplicates and
// never touches the store.
type Source interface {
	Name() string
	Fetch(ctx context.Context, page Page) ([]RawRecord, error)
}

// EpisodeLister is implemented by sources that can fetch a per-anime episode
// listing keyed by the provider's own id.
type EpisodeLister interface {
	Episodes(ctx context.Context, providerID int) ([]model.Episode, error)
}
