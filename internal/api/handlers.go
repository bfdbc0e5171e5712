package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kpetrov-dev/anistream/internal/importer"
	"github.com/kpetrov-dev/anistream/internal/model"
	"github.com/kpetrov-dev/anistream/internal/source"
)

// Import triggers answer HTTP 200 for both business success and business
// failure; the caller reads the success flag and shows message verbatim.
// Non-200 is reserved for transport-level problems.

func pageParams(c *gin.Context) importer.Options {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	force := c.Query("force") == "true"
	return importer.Options{Limit: limit, Offset: offset, Force: force}
}

// ImportFullHandler runs the heavyweight import: Jikan listing plus
// per-anime episode data, resumable via limit/offset.
func ImportFullHandler(c *gin.Context) {
	opts := pageParams(c)
	opts.WithEpisodes = true

	src, ok := deps.Named[string(source.KindJikan)]
	if !ok {
		c.JSON(http.StatusOK, importer.Summary{Message: "Jikan source is not configured"})
		return
	}

	summary := deps.Orch.RunSources(c.Request.Context(), []source.Source{src}, opts)
	c.JSON(http.StatusOK, summary)
}

// ImportSyncHandler is the quick sync: all configured sources, no episode
// listings, skipped entirely once the catalog passes the threshold.
func ImportSyncHandler(c *gin.Context) {
	summary := deps.Orch.RunSyncIfBelow(c.Request.Context(), deps.SyncMax, pageParams(c))
	c.JSON(http.StatusOK, summary)
}

// ImportSeedHandler loads the built-in dataset into an empty catalog.
func ImportSeedHandler(c *gin.Context) {
	summary := deps.Orch.RunSeedIfEmpty(c.Request.Context(), deps.Seed, pageParams(c))
	c.JSON(http.StatusOK, summary)
}

// ImportSourceHandler triggers a single named provider.
func ImportSourceHandler(c *gin.Context) {
	name := c.Param("name")
	src, ok := deps.Named[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Unknown source: " + name})
		return
	}

	summary := deps.Orch.RunSources(c.Request.Context(), []source.Source{src}, pageParams(c))
	c.JSON(http.StatusOK, summary)
}

func ImportRunsHandler(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := deps.Repo.RecentRuns(n)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "runs": runs})
}

func ListAnimeHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	records, total, err := deps.Repo.List(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "totalCount": total})
}

func SearchAnimeHandler(c *gin.Context) {
	query := c.Query("q")
	records, err := deps.Repo.Search(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func GetAnimeHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	rec, err := deps.Repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// SampleVideoHandler attaches one clip from the sample pool to an anime.
// This is the explicit forced path: it overwrites whatever link is there and
// flags the row as carrying a placeholder.
func SampleVideoHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return
	}

	rec, err := deps.Repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Anime not found"})
		return
	}

	url, err := deps.Resolver.Sample(rec.Title)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No sample video available"})
		return
	}

	if err := deps.Repo.SetVideo(rec.ID, url, model.VideoKindSample); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Error updating anime: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Sample video added to anime",
		"videoUrl": url,
	})
}
