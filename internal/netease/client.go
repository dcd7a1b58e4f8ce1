package netease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUpstream marks any transport, status, or decode failure talking to the
// catalog API. An empty result is not an error.
var ErrUpstream = errors.New("netease api request failed")

const clientTimeout = 20 * time.Second

// fallbackQualities is the fixed ladder tried after the preferred tier.
var fallbackQualities = []string{"exhigh", "higher", "standard"}

type Client struct {
	BaseURL    string
	Cookie     string
	HTTPClient *http.Client

	cache SearchCache
}

func NewClient(baseURL, cookie string, cache SearchCache) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Cookie:     cookie,
		HTTPClient: &http.Client{Timeout: clientTimeout},
		cache:      cache,
	}
}

// Search looks up songs by keyword. A zero-match answer returns an empty
// slice with a nil error.
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]Song, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: empty keyword", ErrUpstream)
	}

	cacheKey := searchCacheKey(keyword, limit)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/search?keywords=%s&limit=%d&type=1",
		c.BaseURL, url.QueryEscape(keyword), limit)

	var payload searchResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	songs := make([]Song, 0, len(payload.Result.Songs))
	for _, s := range payload.Result.Songs {
		artists := make([]string, 0, len(s.Artists))
		for _, a := range s.Artists {
			if a.Name != "" {
				artists = append(artists, a.Name)
			}
		}
		songs = append(songs, Song{
			ID:         s.ID,
			Name:       s.Name,
			Artists:    artists,
			Album:      s.Album.Name,
			DurationMS: s.Duration,
		})
	}

	if c.cache != nil && len(songs) > 0 {
		c.cache.Set(ctx, cacheKey, songs)
	}

	return songs, nil
}

// SongDetail returns nil (not an error) when the catalog has no record for
// the id.
func (c *Client) SongDetail(ctx context.Context, songID int64) (*SongDetail, error) {
	endpoint := fmt.Sprintf("%s/song/detail?ids=%d", c.BaseURL, songID)

	var payload detailResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	if len(payload.Songs) == 0 {
		return nil, nil
	}

	s := payload.Songs[0]
	artists := make([]string, 0, len(s.Ar))
	for _, a := range s.Ar {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}

	return &SongDetail{
		Song: Song{
			ID:         s.ID,
			Name:       s.Name,
			Artists:    artists,
			Album:      s.Al.Name,
			DurationMS: s.Dt,
		},
		CoverURL: s.Al.PicURL,
	}, nil
}

// AudioURL resolves a playable stream URL, walking the quality ladder from
// the preferred tier downwards. A failed tier is logged and the next tier is
// tried; the call errors only when every tier failed. When the ladder is
// exhausted without a URL (region/VIP restriction) it returns "", "", nil.
func (c *Client) AudioURL(ctx context.Context, songID int64, preferred string) (string, string, error) {
	var lastErr error
	answered := false

	for _, tier := range qualityLadder(preferred) {
		endpoint := fmt.Sprintf("%s/song/url/v1?id=%d&level=%s&cookie=%s",
			c.BaseURL, songID, url.QueryEscape(tier), url.QueryEscape(c.Cookie))

		var payload audioURLResponse
		if err := c.getJSON(ctx, endpoint, &payload); err != nil {
			log.Printf("audio url tier %q failed for song %d: %v", tier, songID, err)
			lastErr = err
			continue
		}

		answered = true
		if len(payload.Data) > 0 && payload.Data[0].URL != "" {
			return payload.Data[0].URL, tier, nil
		}
	}

	// One answered-but-empty tier is enough to call the track absent rather
	// than the API broken.
	if answered {
		return "", "", nil
	}
	return "", "", lastErr
}

// DownloadImage fetches raw image bytes. Empty URL or a non-2xx status yields
// nil without an error; cover art is best effort.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	return io.ReadAll(resp.Body)
}

// Close releases the pooled HTTP connections. Call after all in-flight
// handlers have finished.
func (c *Client) Close() {
	c.HTTPClient.CloseIdleConnections()
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid json: %v", ErrUpstream, err)
	}

	return nil
}

func qualityLadder(preferred string) []string {
	ladder := make([]string, 0, len(fallbackQualities)+1)
	seen := make(map[string]bool, len(fallbackQualities)+1)

	for _, q := range append([]string{preferred}, fallbackQualities...) {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		ladder = append(ladder, q)
	}

	return ladder
}

func searchCacheKey(keyword string, limit int) string {
	return strings.ToLower(keyword) + ":" + strconv.Itoa(limit)
}
