// Package picker drives the search → numbered list → numeric reply → play
// conversation over the selection store and the catalog client.
package picker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hxnx/ncmbot/internal/netease"
	"github.com/hxnx/ncmbot/internal/selection"
)

// Catalog is the slice of the music API the picker needs. netease.Client
// implements it.
type Catalog interface {
	Search(ctx context.Context, keyword string, limit int) ([]netease.Song, error)
	SongDetail(ctx context.Context, songID int64) (*netease.SongDetail, error)
	AudioURL(ctx context.Context, songID int64, preferred string) (url, tier string, err error)
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Settings supplies optional per-conversation overrides for quality and
// search limit. A miss falls back to the configured defaults.
type Settings interface {
	ChannelSettings(ctx context.Context, conversationID string) (quality string, limit int, ok bool)
}

type Picker struct {
	catalog   Catalog
	sender    Sender
	sessions  *selection.SessionStore
	results   *selection.ResultCache
	templates Templates
	settings  Settings

	quality     string
	searchLimit int
}

func New(
	catalog Catalog,
	sender Sender,
	sessions *selection.SessionStore,
	results *selection.ResultCache,
	templates Templates,
	quality string,
	searchLimit int,
) *Picker {
	return &Picker{
		catalog:     catalog,
		sender:      sender,
		sessions:    sessions,
		results:     results,
		templates:   templates,
		quality:     quality,
		searchLimit: searchLimit,
	}
}

// WithSettings attaches a per-conversation settings source.
func (p *Picker) WithSettings(settings Settings) *Picker {
	p.settings = settings
	return p
}

// HandleKeyword runs one search and, when it yields results, opens a
// selection window for the sender.
func (p *Picker) HandleKeyword(ctx context.Context, ev Event, keyword string) {
	if p == nil {
		log.Printf("picker: used before initialization")
		return
	}
	if p.catalog == nil || p.sender == nil {
		log.Printf("picker: used before initialization")
		p.sendText(ctx, ev, p.templates.InitError)
		return
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		p.sendText(ctx, ev, p.templates.NoKeyword)
		return
	}

	if p.templates.Searching != "" {
		p.sendText(ctx, ev, p.templates.Searching)
	}

	_, limit := p.prefs(ctx, ev.ConversationID)

	songs, err := p.catalog.Search(ctx, keyword, limit)
	if err != nil {
		log.Printf("picker: search %q failed: %v", keyword, err)
		p.sendText(ctx, ev, p.templates.APIError)
		return
	}

	if len(songs) == 0 {
		p.sendText(ctx, ev, render(p.templates.NoResults, map[string]string{"keyword": keyword}))
		return
	}

	userKey := ev.UserKey()
	cacheKey := newCacheKey(userKey)
	p.results.Put(cacheKey, songs)

	header := render(p.templates.SearchResults, map[string]string{
		"count": strconv.Itoa(len(songs)),
	})
	if err := p.sender.Send(ctx, ev, []Block{TextBlock(formatListing(header, songs))}); err != nil {
		log.Printf("picker: failed to send results for %q: %v", keyword, err)
		p.results.Remove(cacheKey)
		return
	}

	p.sessions.Put(userKey, cacheKey, selection.SelectionTTL)
}

// HandleNumber interprets a pure-digit message as a song choice. It reports
// false when the sender has no open selection window, so unrelated numeric
// chatter passes through untouched.
func (p *Picker) HandleNumber(ctx context.Context, ev Event) bool {
	if p == nil || p.sessions == nil {
		return false
	}

	userKey := ev.UserKey()
	pending, ok := p.sessions.Get(userKey)
	if !ok {
		return false
	}

	if pending.Expired(time.Now()) {
		p.sendText(ctx, ev, p.templates.CacheExpired)
		p.sessions.Remove(userKey)
		p.results.Remove(pending.CacheKey)
		return true
	}

	// A reply too large for int still counts as a choice; Atoi clamps it to
	// MaxInt, which the range check below rejects.
	num, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}

	songs, ok := p.results.Get(pending.CacheKey)
	if !ok {
		p.sendText(ctx, ev, p.templates.CacheExpired)
		p.sessions.Remove(userKey)
		return true
	}

	if num < 1 || num > len(songs) {
		// The window stays open; only a valid pick or expiry closes it.
		p.sendText(ctx, ev, render(p.templates.InvalidSelection, map[string]string{
			"max": strconv.Itoa(len(songs)),
		}))
		return true
	}

	p.sessions.Remove(userKey)
	p.results.Remove(pending.CacheKey)

	p.deliver(ctx, ev, num, songs[num-1])
	return true
}

// deliver resolves and sends the chosen song. The selection window is already
// consumed; failures degrade to a single play-error message.
func (p *Picker) deliver(ctx context.Context, ev Event, num int, chosen netease.Song) {
	quality, _ := p.prefs(ctx, ev.ConversationID)

	detail, err := p.catalog.SongDetail(ctx, chosen.ID)
	if err != nil || detail == nil {
		log.Printf("picker: detail lookup for song %d failed: %v", chosen.ID, err)
		p.sendText(ctx, ev, p.templates.PlayError)
		return
	}

	audioURL, tier, err := p.catalog.AudioURL(ctx, chosen.ID, quality)
	if err != nil {
		log.Printf("picker: audio url for song %d failed: %v", chosen.ID, err)
		p.sendText(ctx, ev, p.templates.PlayError)
		return
	}
	if audioURL == "" {
		p.sendText(ctx, ev, p.templates.NoAudioURL)
		return
	}

	text := render(p.templates.SongDetail, map[string]string{
		"num":      strconv.Itoa(num),
		"title":    detail.Name,
		"artists":  formatArtists(detail.Artists),
		"album":    detail.Album,
		"duration": formatDuration(detail.DurationMS),
		"quality":  tier,
	})

	blocks := []Block{TextBlock(text)}
	cover, err := p.catalog.DownloadImage(ctx, detail.CoverURL)
	if err != nil {
		log.Printf("picker: cover download for song %d failed: %v", chosen.ID, err)
	}
	if len(cover) > 0 {
		blocks = append(blocks, ImageBlock(cover))
	}

	if err := p.sender.Send(ctx, ev, blocks); err != nil {
		log.Printf("picker: failed to send song %d: %v", chosen.ID, err)
		p.sendText(ctx, ev, p.templates.PlayError)
		return
	}

	if err := p.sender.Send(ctx, ev, []Block{AudioBlock(audioURL)}); err != nil {
		log.Printf("picker: failed to send audio for song %d: %v", chosen.ID, err)
		p.sendText(ctx, ev, p.templates.PlayError)
	}
}

func (p *Picker) prefs(ctx context.Context, conversationID string) (string, int) {
	quality, limit := p.quality, p.searchLimit
	if p.settings != nil {
		if q, l, ok := p.settings.ChannelSettings(ctx, conversationID); ok {
			if q != "" {
				quality = q
			}
			if l > 0 {
				limit = l
			}
		}
	}
	return quality, limit
}

func (p *Picker) sendText(ctx context.Context, ev Event, text string) {
	if p == nil || p.sender == nil || text == "" {
		return
	}
	if err := p.sender.Send(ctx, ev, []Block{TextBlock(text)}); err != nil {
		log.Printf("picker: send failed: %v", err)
	}
}

// newCacheKey binds a result set to the search that produced it. The uuid
// fragment keeps two searches by the same user in the same second distinct.
func newCacheKey(userKey string) string {
	return fmt.Sprintf("%s_%d_%s", userKey, time.Now().Unix(), uuid.NewString()[:8])
}
