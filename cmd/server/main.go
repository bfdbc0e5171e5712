package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kpetrov-dev/anistream/internal/api"
	"github.com/kpetrov-dev/anistream/internal/catalog"
	"github.com/kpetrov-dev/anistream/internal/config"
	"github.com/kpetrov-dev/anistream/internal/db"
	"github.com/kpetrov-dev/anistream/internal/importer"
	"github.com/kpetrov-dev/anistream/internal/scheduler"
	"github.com/kpetrov-dev/anistream/internal/source"
	"github.com/kpetrov-dev/anistream/internal/video"
)

func main() {
	// 1. Load Config
	if err := config.LoadConfig("."); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	// 2. Setup Gin Mode
	gin.SetMode(cfg.Server.Mode)

	absPath, _ := filepath.Abs(cfg.Database.Path)
	log.Printf("Initializing database at: %s", absPath)
	db.InitDB(cfg.Database.Path)

	// 3. Wire the ingestion pipeline. One shared response cache for all
	// adapters, owned here and injected explicitly.
	cache := source.NewCache(cfg.Import.CacheTTL(), nil)
	delay := cfg.Import.RateDelay()
	ua := cfg.Import.UserAgent

	jikan := source.NewJikanSource(ua, cache, delay)
	anilibria := source.NewAnilibriaSource(ua, cache, delay)
	anilist := source.NewAniListSource(ua, cache, delay)
	offline := source.NewOfflineSource(ua, cache, delay)
	seed := source.NewSeedSource()

	repo := catalog.NewRepository(db.DB)
	orch := importer.New(repo, catalog.NewReconciler(repo), delay)
	orch.Sources = []source.Source{jikan, anilist, anilibria, offline}
	orch.Fallback = seed
	orch.SampleVideos = cfg.Import.SampleVideos

	r := gin.Default()
	api.InitRoutes(r, api.Deps{
		Orch:     orch,
		Repo:     repo,
		Resolver: video.NewResolver(),
		Seed:     seed,
		Named: map[string]source.Source{
			jikan.Name():     jikan,
			anilibria.Name(): anilibria,
			anilist.Name():   anilist,
			offline.Name():   offline,
		},
		SyncMax: cfg.Import.SyncThreshold,
	})

	// Start Scheduler
	sch := scheduler.NewManager(orch, time.Duration(cfg.Import.ScheduleHours)*time.Hour)
	sch.Start()
	defer sch.Stop()

	port := fmt.Sprintf("%d", cfg.Server.Port)
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
