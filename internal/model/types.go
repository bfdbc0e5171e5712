package model

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Video provenance values. "sample" marks placeholder demo clips so that a
// future real-content pipeline can tell them apart from sourced links and
// safely overwrite them.
const (
	VideoKindProvider = "provider"
	VideoKindSample   = "sample"
)

// Episode is one entry of an anime's episode list. Number is 1-based and
// unique within the anime.
type Episode struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

// Anime 是目录中的一条规范记录。ID 在记录来自 Jikan 时等于 MAL id，
// 其他来源的记录由数据库自增分配。
type Anime struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	TitleKey    string    `json:"-" gorm:"uniqueIndex"` // lowercased title, one row per logical anime
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Episodes    int       `json:"episodes"`
	Year        int       `json:"year"`
	Genre       []string  `json:"genre" gorm:"serializer:json"`
	Rating      float64   `json:"rating"` // always within [0, 10]
	Status      string    `json:"status"`
	VideoURL    string    `json:"video_url"`
	VideoKind   string    `json:"video_kind"`
	EpisodeData []Episode `json:"episodes_data" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Anime) TableName() string { return "animes" }

// BeforeSave keeps the invariants the reconciler depends on: the lowercased
// title key and an episode list sorted ascending by number.
func (a *Anime) BeforeSave(tx *gorm.DB) error {
	a.TitleKey = TitleKey(a.Title)
	sort.SliceStable(a.EpisodeData, func(i, j int) bool {
		return a.EpisodeData[i].Number < a.EpisodeData[j].Number
	})
	return nil
}

// TitleKey normalizes a title for case-insensitive matching.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// ImportRun 记录一次导入运行，方便在面板上回看历史。
type ImportRun struct {
	gorm.Model
	RunID    string `json:"run_id" gorm:"index"`
	Trigger  string `json:"trigger"` // "manual" or "scheduled"
	Sources  string `json:"sources"` // comma-separated source names
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Errors   int    `json:"errors"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}
