package catalog

import (
	"errors"
	"strings"

	"github.com/kpetrov-dev/anistream/internal/model"
	"gorm.io/gorm"
)

// Repository wraps every store access for the animes table. It is the read
// contract the UI consumes and the write surface the reconciler uses.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of the catalog plus the total row count.
func (r *Repository) List(page, pageSize int) ([]model.Anime, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	if err := r.db.Model(&model.Anime{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.Anime
	err := r.db.Order("rating DESC, title ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&records).Error
	return records, total, err
}

// Search does a case-insensitive substring match on titles. Minimum query
// length is the caller's concern.
func (r *Repository) Search(query string) ([]model.Anime, error) {
	var records []model.Anime
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.db.Where("title_key LIKE ?", pattern).
		Order("rating DESC").
		Find(&records).Error
	return records, err
}

// GetByID returns nil without error when the id is unknown.
func (r *Repository) GetByID(id uint) (*model.Anime, error) {
	var rec model.Anime
	err := r.db.First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByTitle does a case-insensitive exact title lookup.
func (r *Repository) FindByTitle(title string) (*model.Anime, error) {
	var rec model.Anime
	err := r.db.Where("title_key = ?", model.TitleKey(title)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&model.Anime{}).Count(&total).Error
	return total, err
}

// CountWithVideo counts rows that already carry a playable link.
func (r *Repository) CountWithVideo() (int64, error) {
	var total int64
	err := r.db.Model(&model.Anime{}).Where("video_url <> ''").Count(&total).Error
	return total, err
}

func (r *Repository) Create(rec *model.Anime) error {
	return r.db.Create(rec).Error
}

// Save writes the full record, including zero-valued fields. One atomic
// store operation per record; no cross-record transaction.
func (r *Repository) Save(rec *model.Anime) error {
	return r.db.Save(rec).Error
}

// SetVideo updates only the video link and its provenance flag.
func (r *Repository) SetVideo(id uint, url, kind string) error {
	return r.db.Model(&model.Anime{}).Where("id = ?", id).
		Updates(map[string]interface{}{"video_url": url, "video_kind": kind}).Error
}

// CreateRun persists one import-run log row.
func (r *Repository) CreateRun(run *model.ImportRun) error {
	return r.db.Create(run).Error
}

// RecentRuns returns the latest n import runs, newest first.
func (r *Repository) RecentRuns(n int) ([]model.ImportRun, error) {
	if n < 1 {
		n = 20
	}
	var runs []model.ImportRun
	err := r.db.Order("id DESC").Limit(n).Find(&runs).Error
	return runs, err
}
