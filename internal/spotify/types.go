package spotify

type Image struct {
	URL string `json:"url"`
}

type Artist struct {
	Id     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type Album struct {
	Id     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

type Track struct {
	Id         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	Artists    []Artist `json:"artists"`
	Album      *Album   `json:"album,omitempty"`
	DurationMS int      `json:"duration_ms"`
	Popularity int      `json:"popularity"`
}

type Playlist struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Public       bool   `json:"public"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type topTracksResponse struct {
	Items []Track `json:"items"`
	Next  string  `json:"next"`
}

type tracksResponse struct {
	Tracks []Track `json:"tracks"`
}

type artistsResponse struct {
	Artists []Artist `json:"artists"`
}
