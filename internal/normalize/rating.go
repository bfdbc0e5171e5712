package normalize

// clampRating bounds a 0-10 score. Every rating path ends here so stored
// ratings are always within [0, 10] regardless of what a provider reports.
func clampRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// ratingFromPercent converts a 0-100 percentage score (AniList averageScore).
func ratingFromPercent(v float64) float64 {
	return clampRating(v / 10)
}

// ratingFromFavorites converts a raw popularity/favorites count (AniLibria
// in_favorites) with a monotonic bounded transform: 1000 favorites per point,
// saturating at 10 for anything above 10000.
func ratingFromFavorites(count int) float64 {
	if count <= 0 {
		return 0
	}
	if count > 10000 {
		return 10
	}
	return clampRating(float64(count) / 1000)
}
