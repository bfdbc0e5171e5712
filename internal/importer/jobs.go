package importer

import (
	"context"
	"fmt"
	"log"

	"github.com/kpetrov-dev/anistream/internal/source"
)

// RunSeedIfEmpty imports the built-in seed set, but only into an empty
// catalog. Re-triggering it on a populated store is a successful no-op.
func (o *Orchestrator) RunSeedIfEmpty(ctx context.Context, seed source.Source, opts Options) Summary {
	count, err := o.Repo.Count()
	if err != nil {
		log.Printf("Importer: failed to check existing data: %v", err)
		return Summary{Message: fmt.Sprintf("Failed to check existing data: %v", err)}
	}
	if count > 0 {
		return Summary{
			Success: true,
			Message: "Data already imported",
			Count:   int(count),
		}
	}
	return o.RunSources(ctx, []source.Source{seed}, opts)
}

// RunSyncIfBelow runs the configured sources only while the catalog is still
// below the threshold. Keeps a scheduled quick-sync from hammering providers
// once the catalog is filled.
func (o *Orchestrator) RunSyncIfBelow(ctx context.Context, threshold int, opts Options) Summary {
	count, err := o.Repo.Count()
	if err != nil {
		log.Printf("Importer: failed to check existing data: %v", err)
		return Summary{Message: fmt.Sprintf("Failed to check existing data: %v", err)}
	}
	if threshold > 0 && count > int64(threshold) {
		return Summary{
			Success: true,
			Message: fmt.Sprintf("Database already has %d anime entries", count),
			Count:   int(count),
		}
	}
	return o.Run(ctx, opts)
}
