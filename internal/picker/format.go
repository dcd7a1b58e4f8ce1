package picker

import (
	"fmt"
	"strings"

	"github.com/hxnx/ncmbot/internal/netease"
)

// formatDuration renders a millisecond duration as m:ss (125000 → "2:05").
func formatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d", ms/60000, (ms%60000)/1000)
}

// formatListingLine renders one 1-indexed search result line:
//
//	2. 曲名 - 아티스트1 / 아티스트2 «앨범» [3:42]
func formatListingLine(index int, song netease.Song) string {
	return fmt.Sprintf("%d. %s - %s «%s» [%s]",
		index,
		song.Name,
		formatArtists(song.Artists),
		song.Album,
		formatDuration(song.DurationMS),
	)
}

func formatListing(header string, songs []netease.Song) string {
	lines := make([]string, 0, len(songs)+1)
	lines = append(lines, header)
	for i, song := range songs {
		lines = append(lines, formatListingLine(i+1, song))
	}
	return strings.Join(lines, "\n")
}

func formatArtists(artists []string) string {
	return strings.Join(artists, " / ")
}
