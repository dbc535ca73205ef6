package genius

// SearchResponse is the Genius /search payload.
type SearchResponse struct {
	Response struct {
		Hits []Hit `json:"hits"`
	} `json:"response"`
}

// Hit is a single search hit. Only "song" hits are meaningful.
type Hit struct {
	Type   string `json:"type"`
	Result Song   `json:"result"`
}

// Song is a Genius song entity.
type Song struct {
	ID                    int64   `json:"id"`
	Title                 string  `json:"title"`
	FullTitle             string  `json:"full_title"`
	URL                   string  `json:"url"`
	LyricsState           string  `json:"lyrics_state"`
	ReleaseDateComponents *YMD    `json:"release_date_components"`
	Stats                 Stats   `json:"stats"`
	PrimaryArtist         *Artist `json:"primary_artist"`
}

// YMD is Genius's exploded date representation.
type YMD struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Stats carries song popularity counters.
type Stats struct {
	Pageviews int64 `json:"pageviews"`
	Hot       bool  `json:"hot"`
}

// Artist is a Genius artist entity.
type Artist struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	URL            string   `json:"url"`
	IsVerified     bool     `json:"is_verified"`
	FollowersCount int64    `json:"followers_count"`
	AlternateNames []string `json:"alternate_names"`
}

// ArtistResponse is the Genius /artists/:id payload.
type ArtistResponse struct {
	Response struct {
		Artist Artist `json:"artist"`
	} `json:"response"`
}
