package listeners

import (
	"bytes"
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/ncmbot/internal/picker"
)

// DiscordSender renders picker blocks as Discord messages: text blocks and a
// cover image go out as one message, each audio block as its own message so
// the client shows the stream link separately.
type DiscordSender struct {
	session *discordgo.Session
}

func NewDiscordSender(s *discordgo.Session) *DiscordSender {
	return &DiscordSender{session: s}
}

func (d *DiscordSender) Send(_ context.Context, ev picker.Event, blocks []picker.Block) error {
	if d == nil || d.session == nil {
		return nil
	}

	var texts []string
	var files []*discordgo.File
	var audioURLs []string

	for _, block := range blocks {
		switch block.Type {
		case picker.BlockText:
			if block.Text != "" {
				texts = append(texts, block.Text)
			}
		case picker.BlockImage:
			if len(block.Image) > 0 {
				files = append(files, &discordgo.File{
					Name:        "cover.jpg",
					ContentType: "image/jpeg",
					Reader:      bytes.NewReader(block.Image),
				})
			}
		case picker.BlockAudio:
			if block.AudioURL != "" {
				audioURLs = append(audioURLs, block.AudioURL)
			}
		}
	}

	if len(texts) > 0 || len(files) > 0 {
		msg := &discordgo.MessageSend{
			Content: strings.Join(texts, "\n"),
			Files:   files,
		}
		if _, err := d.session.ChannelMessageSendComplex(ev.ConversationID, msg); err != nil {
			return err
		}
	}

	for _, audioURL := range audioURLs {
		if _, err := d.session.ChannelMessageSend(ev.ConversationID, audioURL); err != nil {
			return err
		}
	}

	return nil
}
