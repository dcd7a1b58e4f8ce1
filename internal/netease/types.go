package netease

// Song is one catalog entry as returned by a search.
type Song struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMS int64    `json:"duration_ms"`
}

// SongDetail carries the extra fields only the detail endpoint returns.
type SongDetail struct {
	Song
	CoverURL string `json:"cover_url"`
}

// GET /search?keywords=..&limit=..&type=1
type searchResponse struct {
	Result struct {
		Songs []struct {
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			Duration int64 `json:"duration"`
		} `json:"songs"`
	} `json:"result"`
}

// GET /song/detail?ids=.. uses the short field names (ar/al/dt).
type detailResponse struct {
	Songs []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Ar   []struct {
			Name string `json:"name"`
		} `json:"ar"`
		Al struct {
			Name   string `json:"name"`
			PicURL string `json:"picUrl"`
		} `json:"al"`
		Dt int64 `json:"dt"`
	} `json:"songs"`
}

// GET /song/url/v1?id=..&level=..
type audioURLResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}
