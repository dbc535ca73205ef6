package musicbrainz

// SearchResponse is the MusicBrainz artist search payload.
type SearchResponse struct {
	Artists []MBArtist `json:"artists"`
}

// MBArtist is a MusicBrainz artist entity.
type MBArtist struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	SortName       string     `json:"sort-name"`
	Type           string     `json:"type"`
	Disambiguation string     `json:"disambiguation"`
	Country        string     `json:"country"`
	Score          int        `json:"score"`
	LifeSpan       MBLifeSpan `json:"life-span"`
	Aliases        []MBAlias  `json:"aliases"`
	Genres         []MBGenre  `json:"genres"`
	Tags           []MBTag    `json:"tags"`
}

// MBLifeSpan is an artist's active period.
type MBLifeSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Ended bool   `json:"ended"`
}

// MBAlias is an alternate artist name.
type MBAlias struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MBGenre is a genre entry.
type MBGenre struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MBTag is a folksonomy tag.
type MBTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// BrowseReleaseGroupsResponse is the paginated release-group browse payload.
type BrowseReleaseGroupsResponse struct {
	Count         int              `json:"release-group-count"`
	Offset        int              `json:"release-group-offset"`
	ReleaseGroups []MBReleaseGroup `json:"release-groups"`
}

// MBReleaseGroup is a MusicBrainz release group (one logical release).
type MBReleaseGroup struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	PrimaryType      string   `json:"primary-type"`
	SecondaryTypes   []string `json:"secondary-types"`
	FirstReleaseDate string   `json:"first-release-date"`
}

// BrowseReleasesResponse is the release browse payload.
type BrowseReleasesResponse struct {
	Releases []MBRelease `json:"releases"`
}

// MBRelease is a concrete release with media and tracks.
type MBRelease struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Date    string    `json:"date"`
	Country string    `json:"country"`
	Media   []MBMedia `json:"media"`
}

// MBMedia is a disc/medium within a release.
type MBMedia struct {
	Position int       `json:"position"`
	Tracks   []MBTrack `json:"tracks"`
}

// MBTrack is a track on a medium.
type MBTrack struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Position  int         `json:"position"`
	Length    int64       `json:"length"` // milliseconds
	Recording MBRecording `json:"recording"`
}

// MBRecording is the underlying recording for a track.
type MBRecording struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Length int64  `json:"length"`
}
