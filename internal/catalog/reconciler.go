package catalog

import (
	"fmt"
	"reflect"

	"github.com/kpetrov-dev/anistream/internal/model"
)

// Action is the outcome of reconciling one record against the store.
type Action string

const (
	ActionInserted Action = "inserted"
	ActionUpdated  Action = "updated"
	ActionSkipped  Action = "skipped"
)

// Counters accumulates per-run reconcile outcomes.
type Counters struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   int
}

func (c *Counters) Add(a Action) {
	switch a {
	case ActionInserted:
		c.Inserted++
	case ActionUpdated:
		c.Updated++
	case ActionSkipped:
		c.Skipped++
	}
}

func (c *Counters) Processed() int {
	return c.Inserted + c.Updated + c.Skipped
}

// Reconciler decides insert vs update for normalized records. It never
// creates a second row for the same logical anime: lookup is by id when the
// record carries one (the shared MAL id space), then by case-insensitive
// title either way.
type Reconciler struct {
	repo *Repository
}

func NewReconciler(repo *Repository) *Reconciler {
	return &Reconciler{repo: repo}
}

// Reconcile applies the upsert decision table:
//
//	no existing row                  -> insert
//	existing row without video       -> update everything
//	existing row with video, !force  -> update everything except the video
//	                                    (skipped entirely if nothing else
//	                                    changed)
//
// force is the explicit overwrite path; routine re-imports never clobber an
// already-resolved video link.
func (r *Reconciler) Reconcile(rec model.Anime, force bool) (Action, error) {
	existing, err := r.lookup(&rec)
	if err != nil {
		return "", fmt.Errorf("lookup %q: %w", rec.Title, err)
	}

	if existing == nil {
		if err := r.repo.Create(&rec); err != nil {
			return "", fmt.Errorf("insert %q: %w", rec.Title, err)
		}
		return ActionInserted, nil
	}

	if existing.VideoURL != "" && !force {
		rec.VideoURL = existing.VideoURL
		rec.VideoKind = existing.VideoKind
	}

	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt

	if unchanged(existing, &rec) {
		return ActionSkipped, nil
	}

	if err := r.repo.Save(&rec); err != nil {
		return "", fmt.Errorf("update %q: %w", rec.Title, err)
	}
	return ActionUpdated, nil
}

// lookup finds the row rec belongs to. Store-assigned ids share the uint
// space with MAL ids, so an id hit only counts when it names the same logical
// anime; on a title mismatch the id is a collision and rec.ID is cleared so a
// later insert gets a store-assigned id instead of trampling the occupant.
func (r *Reconciler) lookup(rec *model.Anime) (*model.Anime, error) {
	if rec.ID != 0 {
		byID, err := r.repo.GetByID(rec.ID)
		if err != nil {
			return nil, err
		}
		if byID != nil {
			if byID.TitleKey == model.TitleKey(rec.Title) {
				return byID, nil
			}
			rec.ID = 0
		}
	}
	// Title lookup runs even for id-bearing records: another source may have
	// inserted the same anime without a MAL id.
	return r.repo.FindByTitle(rec.Title)
}

// unchanged compares the fields a re-import is allowed to touch.
func unchanged(existing, incoming *model.Anime) bool {
	return existing.Title == incoming.Title &&
		existing.Image == incoming.Image &&
		existing.Description == incoming.Description &&
		existing.Episodes == incoming.Episodes &&
		existing.Year == incoming.Year &&
		existing.Rating == incoming.Rating &&
		existing.Status == incoming.Status &&
		existing.VideoURL == incoming.VideoURL &&
		existing.VideoKind == incoming.VideoKind &&
		reflect.DeepEqual(existing.Genre, incoming.Genre) &&
		reflect.DeepEqual(existing.EpisodeData, incoming.EpisodeData)
}
