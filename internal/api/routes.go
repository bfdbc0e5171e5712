package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kpetrov-dev/anistream/internal/catalog"
	"github.com/kpetrov-dev/anistream/internal/importer"
	"github.com/kpetrov-dev/anistream/internal/source"
	"github.com/kpetrov-dev/anistream/internal/video"
)

// Deps carries everything the handlers touch. Set once by InitRoutes.
type Deps struct {
	Orch     *importer.Orchestrator
	Repo     *catalog.Repository
	Resolver *video.Resolver
	Seed     source.Source
	Named    map[string]source.Source // per-provider import triggers
	SyncMax  int                      // catalog size above which quick-sync is a no-op
}

var deps Deps

func InitRoutes(r *gin.Engine, d Deps) {
	deps = d

	r.Use(CORSMiddleware())

	apiGroup := r.Group("/api")
	{
		// Import triggers
		apiGroup.POST("/import/full", ImportFullHandler)
		apiGroup.POST("/import/sync", ImportSyncHandler)
		apiGroup.POST("/import/seed", ImportSeedHandler)
		apiGroup.POST("/import/source/:name", ImportSourceHandler)
		apiGroup.GET("/import/runs", ImportRunsHandler)

		// Catalog read API (consumed by the UI)
		apiGroup.GET("/anime", ListAnimeHandler)
		apiGroup.GET("/anime/search", SearchAnimeHandler)
		apiGroup.GET("/anime/:id", GetAnimeHandler)
		apiGroup.POST("/anime/:id/sample-video", SampleVideoHandler)
	}
}
