package source

import (
	"context"

	"github.com/kpetrov-dev/anistream/internal/model"
)

// SeedSource is the built-in fallback dataset used when every live provider
// fails. No I/O; records are already in canonical shape. Video links point at
// known-stable sample clips and are flagged as samples.
type SeedSource struct{}

func NewSeedSource() *SeedSource { return &SeedSource{} }

func (s *SeedSource) Name() string { return string(KindSeed) }

func (s *SeedSource) Fetch(ctx context.Context, page Page) ([]RawRecord, error) {
	data := seedCatalog()

	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(data) {
		return nil, nil
	}
	end := len(data)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}

	records := make([]RawRecord, 0, end-start)
	for i := start; i < end; i++ {
		records = append(records, RawRecord{Kind: KindSeed, Seed: &data[i]})
	}
	return records, nil
}

func seedCatalog() []model.Anime {
	return []model.Anime{
		{
			Title:       "Attack on Titan",
			Description: "Humanity lives behind enormous walls that keep out the man-eating Titans. After a Titan devours his mother, Eren Yeager vows to wipe them all out.",
			Image:       "https://m.media-amazon.com/images/M/MV5BNDFjYTIxMjctYTQ2ZC00OWNiLWI1NzQtZDVlZTY1MjI2OTVhXkEyXkFqcGdeQXVyNDgyODgxNjE@._V1_FMjpg_UX1000_.jpg",
			Episodes:    88,
			Year:        2013,
			Genre:       []string{"Action", "Drama", "Fantasy", "Horror"},
			Rating:      9.0,
			Status:      "Finished",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-forest-stream-in-the-sunlight-529-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
		{
			Title:       "One Piece",
			Description: "Before his execution the Pirate King Gol D. Roger reveals that his treasure, the One Piece, is hidden somewhere on the Grand Line, setting off the great age of pirates.",
			Image:       "https://m.media-amazon.com/images/M/MV5BODcwNWE3OTMtMDc3MS00NDFjLWE1OTAtNDU3NjgxODMxY2UyXkEyXkFqcGdeQXVyNTAyODkwOQ@@._V1_.jpg",
			Episodes:    1000,
			Year:        1999,
			Genre:       []string{"Action", "Adventure", "Comedy", "Drama", "Fantasy"},
			Rating:      8.9,
			Status:      "Ongoing",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-waves-in-the-water-1164-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
		{
			Title:       "Demon Slayer: Kimetsu no Yaiba",
			Description: "Tanjiro Kamado becomes a demon slayer after his family is murdered and his younger sister is turned into a demon.",
			Image:       "https://m.media-amazon.com/images/M/MV5BZjZjNzI5MDctY2Y4YS00NmM4LTljMmItZTFkOTExNGI3ODRhXkEyXkFqcGdeQXVyNjc3MjQzNTI@._V1_.jpg",
			Episodes:    44,
			Year:        2019,
			Genre:       []string{"Action", "Adventure", "Fantasy", "Drama"},
			Rating:      8.7,
			Status:      "Ongoing",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-mysterious-forest-in-the-fog-16750-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
		{
			Title:       "My Hero Academia",
			Description: "In a world where most people have superpowers, a boy born without any still dreams of becoming a hero.",
			Image:       "https://m.media-amazon.com/images/M/MV5BOGZmYjdjN2UtNjAwZi00YmEyLWFhNTEtNjM1MTFjYWJkZjk0XkEyXkFqcGdeQXVyMTA1NjE5MTAz._V1_.jpg",
			Episodes:    113,
			Year:        2016,
			Genre:       []string{"Action", "Adventure", "Comedy", "Drama"},
			Rating:      8.4,
			Status:      "Ongoing",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-aerial-view-of-a-big-city-at-night-41375-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
		{
			Title:       "Naruto",
			Description: "Naruto Uzumaki, a young ninja carrying an enormous hidden power, dreams of becoming Hokage, the strongest ninja and leader of his village.",
			Image:       "https://m.media-amazon.com/images/M/MV5BZmQ5NGFiNWEtMmMyMC00MDdiLTg4YjktOGY5Yzc2MDUxMTE1XkEyXkFqcGdeQXVyNTA4NzY1MzY@._V1_.jpg",
			Episodes:    220,
			Year:        2002,
			Genre:       []string{"Action", "Adventure", "Comedy", "Drama", "Fantasy"},
			Rating:      8.3,
			Status:      "Finished",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-lake-surrounded-by-dry-grass-in-winter-39761-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
		{
			Title:       "Death Note",
			Description: "A brilliant student finds a notebook that belongs to a god of death and decides to use it to rid the world of criminals.",
			Image:       "https://m.media-amazon.com/images/M/MV5BODkzMjhjYTQtYmQyOS00NmZlLTg3Y2UtYjkzN2JkNmRjY2FhXkEyXkFqcGdeQXVyNTM4MDQ5MDc@._V1_FMjpg_UX1000_.jpg",
			Episodes:    37,
			Year:        2006,
			Genre:       []string{"Mystery", "Drama", "Fantasy", "Thriller", "Psychological"},
			Rating:      9.0,
			Status:      "Finished",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-fire-close-up-view-of-a-burning-fire-in-a-barbecue-43977-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
		{
			Title:       "Fullmetal Alchemist: Brotherhood",
			Description: "Two alchemist brothers search for the Philosopher's Stone after a failed attempt to resurrect their mother costs them dearly.",
			Image:       "https://m.media-amazon.com/images/M/MV5BZmEzN2YzOTItMDI5MS00MGU4LWI1NWQtOTg5ZThhNGQwYTEzXkEyXkFqcGdeQXVyNTA4NzY1MzY@._V1_.jpg",
			Episodes:    64,
			Year:        2009,
			Genre:       []string{"Action", "Adventure", "Drama", "Fantasy"},
			Rating:      9.1,
			Status:      "Finished",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-sun-setting-or-rising-on-a-hillside-with-clouds-28126-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
		{
			Title:       "Cowboy Bebop",
			Description: "The stories of a ragtag crew of bounty hunters drifting through space aboard the ship Bebop.",
			Image:       "https://m.media-amazon.com/images/M/MV5BNGNlNjBkODEtZThlOC00YzUxLWI0MjMtMjk3YzJmMDFlNWZlXkEyXkFqcGdeQXVyNjI0MDg2NzE@._V1_FMjpg_UX1000_.jpg",
			Episodes:    26,
			Year:        1998,
			Genre:       []string{"Action", "Adventure", "Drama", "Sci-Fi"},
			Rating:      8.9,
			Status:      "Finished",
			VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-stars-in-space-1610-large.mp4",
			VideoKind:   model.VideoKindSample,
		},
	}
}
