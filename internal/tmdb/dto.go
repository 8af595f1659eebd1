package tmdb

// ListResponse is the envelope of every paged TMDB list endpoint
type ListResponse struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Result is one movie, TV series or person in a list response.
// Movies carry title/release_date, series carry name/first_air_date.
type Result struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

// VideosResponse is returned by /movie/{id}/videos
type VideosResponse struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// Video is one trailer, teaser or clip
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// DetailsResponse is /{type}/{id}?append_to_response=credits,similar
type DetailsResponse struct {
	Result
	Runtime         int          `json:"runtime"`
	NumberOfSeasons int          `json:"number_of_seasons"`
	Tagline         string       `json:"tagline"`
	Genres          []GenreDTO   `json:"genres"`
	Credits         CreditsDTO   `json:"credits"`
	Similar         ListResponse `json:"similar"`
}

// GenreDTO is a genre id/name pair
type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreditsDTO holds the appended credits
type CreditsDTO struct {
	Cast []CastDTO `json:"cast"`
}

// CastDTO is one credited performer
type CastDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// GenreListResponse is returned by /genre/{type}/list
type GenreListResponse struct {
	Genres []GenreDTO `json:"genres"`
}

// ErrorResponse is the body TMDB sends with non-2xx statuses
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
