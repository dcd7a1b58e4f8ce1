package picker

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxnx/ncmbot/internal/netease"
	"github.com/hxnx/ncmbot/internal/selection"
)

type fakeCatalog struct {
	songs     []netease.Song
	searchErr error
	lastLimit int

	detail    *netease.SongDetail
	detailErr error
	detailID  int64

	audioURL     string
	audioTier    string
	audioErr     error
	audioID      int64
	audioQuality string

	cover []byte
}

func (f *fakeCatalog) Search(_ context.Context, _ string, limit int) ([]netease.Song, error) {
	f.lastLimit = limit
	return f.songs, f.searchErr
}

func (f *fakeCatalog) SongDetail(_ context.Context, songID int64) (*netease.SongDetail, error) {
	f.detailID = songID
	return f.detail, f.detailErr
}

func (f *fakeCatalog) AudioURL(_ context.Context, songID int64, preferred string) (string, string, error) {
	f.audioID = songID
	f.audioQuality = preferred
	return f.audioURL, f.audioTier, f.audioErr
}

func (f *fakeCatalog) DownloadImage(_ context.Context, _ string) ([]byte, error) {
	return f.cover, nil
}

type fakeSender struct {
	mu    sync.Mutex
	calls [][]Block
}

func (f *fakeSender) Send(_ context.Context, _ Event, blocks []Block) error {
	f.mu.Lock()
	f.calls = append(f.calls, blocks)
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) sent() [][]Block {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSender) allText() string {
	var sb strings.Builder
	for _, call := range f.sent() {
		for _, block := range call {
			sb.WriteString(block.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func testTemplates() Templates {
	return Templates{
		NoKeyword:        "no keyword",
		APIError:         "api error",
		NoResults:        "no results for {keyword}",
		SearchResults:    "found {count}",
		SongDetail:       "num={num} title={title} artists={artists} album={album} duration={duration} quality={quality}",
		NoAudioURL:       "no audio",
		PlayError:        "play error",
		CacheExpired:     "stale",
		InvalidSelection: "pick 1-{max}",
		InitError:        "init error",
	}
}

func newTestPicker(catalog *fakeCatalog) (*Picker, *fakeSender, *selection.SessionStore, *selection.ResultCache) {
	results := selection.NewResultCache()
	sessions := selection.NewSessionStore(results)
	sender := &fakeSender{}
	p := New(catalog, sender, sessions, results, testTemplates(), "exhigh", 5)
	return p, sender, sessions, results
}

func twoSongs() []netease.Song {
	return []netease.Song{
		{ID: 1, Name: "A", Artists: []string{"X"}, Album: "AL", DurationMS: 125000},
		{ID: 2, Name: "B", Artists: []string{"Y"}, Album: "BL", DurationMS: 61000},
	}
}

func testEvent(text string) Event {
	return Event{ConversationID: "chan", SenderID: "user", Text: text}
}

func TestSearchThenSelectRoundTrip(t *testing.T) {
	catalog := &fakeCatalog{
		songs: twoSongs(),
		detail: &netease.SongDetail{
			Song:     netease.Song{ID: 2, Name: "B", Artists: []string{"Y"}, Album: "BL", DurationMS: 125000},
			CoverURL: "http://img/cover.jpg",
		},
		audioURL:  "http://audio/stream",
		audioTier: "standard",
		cover:     []byte{0xFF, 0xD8},
	}
	p, sender, sessions, _ := newTestPicker(catalog)
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 lemon"), "lemon")

	require.Len(t, sender.sent(), 1)
	listing := sender.sent()[0][0].Text
	assert.Contains(t, listing, "found 2")
	assert.Contains(t, listing, "1. A - X «AL» [2:05]")
	assert.Contains(t, listing, "2. B - Y «BL» [1:01]")
	assert.Equal(t, 5, catalog.lastLimit)
	assert.Equal(t, 1, sessions.Len())

	handled := p.HandleNumber(ctx, testEvent("2"))
	require.True(t, handled)

	assert.EqualValues(t, 2, catalog.detailID)
	assert.EqualValues(t, 2, catalog.audioID)
	assert.Equal(t, "exhigh", catalog.audioQuality)

	calls := sender.sent()
	require.Len(t, calls, 3)

	detailCall := calls[1]
	require.Len(t, detailCall, 2)
	assert.Contains(t, detailCall[0].Text, "num=2")
	assert.Contains(t, detailCall[0].Text, "title=B")
	assert.Contains(t, detailCall[0].Text, "duration=2:05")
	assert.Contains(t, detailCall[0].Text, "quality=standard")
	assert.Equal(t, BlockImage, detailCall[1].Type)

	audioCall := calls[2]
	require.Len(t, audioCall, 1)
	assert.Equal(t, BlockAudio, audioCall[0].Type)
	assert.Equal(t, "http://audio/stream", audioCall[0].AudioURL)

	// The window is consumed; a second number passes through.
	assert.False(t, p.HandleNumber(ctx, testEvent("1")))
	assert.Equal(t, 0, sessions.Len())
}

func TestEmptySearchSendsKeywordAndNoSession(t *testing.T) {
	p, sender, sessions, _ := newTestPicker(&fakeCatalog{})
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 Lemon"), "Lemon")

	require.Len(t, sender.sent(), 1)
	assert.Contains(t, sender.sent()[0][0].Text, "Lemon")
	assert.Equal(t, 0, sessions.Len())
	assert.False(t, p.HandleNumber(ctx, testEvent("1")))
}

func TestSearchUpstreamError(t *testing.T) {
	p, sender, sessions, _ := newTestPicker(&fakeCatalog{searchErr: netease.ErrUpstream})
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 x"), "x")

	assert.Contains(t, sender.allText(), "api error")
	assert.Equal(t, 0, sessions.Len())
}

func TestEmptyKeyword(t *testing.T) {
	p, sender, _, _ := newTestPicker(&fakeCatalog{songs: twoSongs()})

	p.HandleKeyword(context.Background(), testEvent("/노래"), "   ")

	assert.Contains(t, sender.allText(), "no keyword")
}

func TestOutOfRangeKeepsWindowOpen(t *testing.T) {
	catalog := &fakeCatalog{
		songs:     twoSongs(),
		detail:    &netease.SongDetail{Song: netease.Song{ID: 2, Name: "B"}},
		audioURL:  "http://audio/stream",
		audioTier: "exhigh",
	}
	p, sender, sessions, _ := newTestPicker(catalog)
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 x"), "x")
	require.Equal(t, 1, sessions.Len())

	require.True(t, p.HandleNumber(ctx, testEvent("3")))
	assert.Contains(t, sender.allText(), "pick 1-2")
	assert.Equal(t, 1, sessions.Len())

	require.True(t, p.HandleNumber(ctx, testEvent("0")))
	assert.Equal(t, 1, sessions.Len())

	// A valid pick still works afterwards.
	require.True(t, p.HandleNumber(ctx, testEvent("2")))
	assert.EqualValues(t, 2, catalog.detailID)
	assert.Equal(t, 0, sessions.Len())
}

func TestExpiredSelectionIsStale(t *testing.T) {
	p, sender, sessions, results := newTestPicker(&fakeCatalog{})
	ctx := context.Background()

	results.Put("key-1", twoSongs())
	sessions.Put("chan:user", "key-1", -time.Second)

	require.True(t, p.HandleNumber(ctx, testEvent("1")))
	assert.Contains(t, sender.allText(), "stale")

	_, ok := sessions.Get("chan:user")
	assert.False(t, ok)
	_, ok = results.Get("key-1")
	assert.False(t, ok)
}

func TestMissingResultSetIsStale(t *testing.T) {
	p, sender, sessions, _ := newTestPicker(&fakeCatalog{})
	ctx := context.Background()

	sessions.Put("chan:user", "key-gone", time.Minute)

	require.True(t, p.HandleNumber(ctx, testEvent("1")))
	assert.Contains(t, sender.allText(), "stale")
	assert.Equal(t, 0, sessions.Len())
}

func TestNilPickerDoesNotPanic(t *testing.T) {
	var p *Picker
	ctx := context.Background()

	assert.NotPanics(t, func() {
		p.HandleKeyword(ctx, testEvent("재생 lemon"), "lemon")
	})
	assert.NotPanics(t, func() {
		assert.False(t, p.HandleNumber(ctx, testEvent("1")))
	})
}

func TestUnwiredPickerSendsInitError(t *testing.T) {
	results := selection.NewResultCache()
	sessions := selection.NewSessionStore(results)
	sender := &fakeSender{}
	p := New(nil, sender, sessions, results, testTemplates(), "exhigh", 5)

	p.HandleKeyword(context.Background(), testEvent("재생 lemon"), "lemon")

	assert.Contains(t, sender.allText(), "init error")
	assert.Equal(t, 0, sessions.Len())
}

func TestOverflowingNumberIsOutOfRange(t *testing.T) {
	p, sender, sessions, _ := newTestPicker(&fakeCatalog{songs: twoSongs()})
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 x"), "x")
	require.Equal(t, 1, sessions.Len())

	require.True(t, p.HandleNumber(ctx, testEvent("99999999999999999999")))
	assert.Contains(t, sender.allText(), "pick 1-2")
	assert.Equal(t, 1, sessions.Len())
}

func TestNumberWithoutSessionIsIgnored(t *testing.T) {
	p, sender, _, _ := newTestPicker(&fakeCatalog{})

	handled := p.HandleNumber(context.Background(), testEvent("42"))

	assert.False(t, handled)
	assert.Empty(t, sender.sent())
}

func TestNoAudioURLMessage(t *testing.T) {
	catalog := &fakeCatalog{
		songs:  twoSongs(),
		detail: &netease.SongDetail{Song: netease.Song{ID: 1, Name: "A"}},
	}
	p, sender, sessions, _ := newTestPicker(catalog)
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 x"), "x")
	require.True(t, p.HandleNumber(ctx, testEvent("1")))

	assert.Contains(t, sender.allText(), "no audio")
	// Delivery failure does not restore the consumed session.
	assert.Equal(t, 0, sessions.Len())
}

func TestMissingDetailIsPlayError(t *testing.T) {
	catalog := &fakeCatalog{songs: twoSongs()}
	p, sender, _, _ := newTestPicker(catalog)
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 x"), "x")
	require.True(t, p.HandleNumber(ctx, testEvent("1")))

	assert.Contains(t, sender.allText(), "play error")
}

func TestSupersedingSearchDropsOldResults(t *testing.T) {
	p, _, sessions, results := newTestPicker(&fakeCatalog{songs: twoSongs()})
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 x"), "x")
	p.HandleKeyword(ctx, testEvent("재생 y"), "y")

	assert.Equal(t, 1, sessions.Len())
	assert.Equal(t, 1, results.Len())
}

type fakeSettings struct {
	quality string
	limit   int
}

func (f fakeSettings) ChannelSettings(context.Context, string) (string, int, bool) {
	return f.quality, f.limit, true
}

func TestChannelSettingsOverride(t *testing.T) {
	catalog := &fakeCatalog{
		songs:     twoSongs(),
		detail:    &netease.SongDetail{Song: netease.Song{ID: 1, Name: "A"}},
		audioURL:  "http://audio/stream",
		audioTier: "standard",
	}
	p, _, _, _ := newTestPicker(catalog)
	p.WithSettings(fakeSettings{quality: "standard", limit: 3})
	ctx := context.Background()

	p.HandleKeyword(ctx, testEvent("재생 x"), "x")
	assert.Equal(t, 3, catalog.lastLimit)

	require.True(t, p.HandleNumber(ctx, testEvent("1")))
	assert.Equal(t, "standard", catalog.audioQuality)
}
