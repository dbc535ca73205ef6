package lastfm

// SearchResponse is the artist.search payload.
type SearchResponse struct {
	Results struct {
		ArtistMatches struct {
			Artist []SearchArtist `json:"artist"`
		} `json:"artistmatches"`
	} `json:"results"`
}

// SearchArtist is a single artist.search hit.
type SearchArtist struct {
	Name      string `json:"name"`
	MBID      string `json:"mbid"`
	URL       string `json:"url"`
	Listeners string `json:"listeners"`
}

// ArtistInfoResponse is the artist.getinfo payload.
type ArtistInfoResponse struct {
	Artist struct {
		Name  string `json:"name"`
		MBID  string `json:"mbid"`
		URL   string `json:"url"`
		Stats struct {
			Listeners string `json:"listeners"`
			Playcount string `json:"playcount"`
		} `json:"stats"`
		Tags struct {
			Tag []Tag `json:"tag"`
		} `json:"tags"`
	} `json:"artist"`
}

// TopAlbumsResponse is the artist.gettopalbums payload.
type TopAlbumsResponse struct {
	TopAlbums struct {
		Album []TopAlbum `json:"album"`
		Attr  PageAttr   `json:"@attr"`
	} `json:"topalbums"`
}

// TopAlbum is an album ranked by playcount.
type TopAlbum struct {
	Name      string `json:"name"`
	MBID      string `json:"mbid"`
	URL       string `json:"url"`
	Playcount int64  `json:"playcount"`
	Artist    struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// PageAttr carries Last.fm pagination attributes.
type PageAttr struct {
	Page       string `json:"page"`
	TotalPages string `json:"totalPages"`
}

// AlbumInfoResponse is the album.getinfo payload.
type AlbumInfoResponse struct {
	Album struct {
		Name      string `json:"name"`
		Artist    string `json:"artist"`
		MBID      string `json:"mbid"`
		URL       string `json:"url"`
		Playcount string `json:"playcount"`
		Tags      struct {
			Tag []Tag `json:"tag"`
		} `json:"tags"`
		Tracks struct {
			Track []AlbumTrack `json:"track"`
		} `json:"tracks"`
	} `json:"album"`
}

// AlbumTrack is a track within album.getinfo.
type AlbumTrack struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Duration int64  `json:"duration"` // seconds
	Attr     struct {
		Rank int `json:"rank"`
	} `json:"@attr"`
}

// Tag is a Last.fm tag.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ErrorResponse is Last.fm's error envelope.
type ErrorResponse struct {
	ErrorCode int    `json:"error"`
	Message   string `json:"message"`
}

// Last.fm error codes that matter for classification.
const (
	errCodeInvalidAPIKey   = 10
	errCodeSuspendedAPIKey = 26
	errCodeRateLimited     = 29
)
