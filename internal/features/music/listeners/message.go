package listeners

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/ncmbot/internal/picker"
)

// One inbound message gets one handling task; the budget covers the full
// search-or-deliver round trip against the catalog.
const handleTimeout = 60 * time.Second

var digitsOnly = regexp.MustCompile(`^\d+$`)

type Handler struct {
	picker  *picker.Picker
	matcher *TriggerMatcher
}

func NewHandler(p *picker.Picker, matcher *TriggerMatcher) *Handler {
	return &Handler{
		picker:  p,
		matcher: matcher,
	}
}

// HandleMessage routes one Discord message. Pure-digit messages are treated
// as a selection only when the sender has an open window; otherwise they fall
// through silently. Command and trigger matches become keyword searches.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if h == nil || s == nil || m == nil || m.Author == nil {
		return
	}
	if m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	ev := picker.Event{
		ConversationID: m.ChannelID,
		SenderID:       m.Author.ID,
		Text:           content,
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if digitsOnly.MatchString(content) {
		h.picker.HandleNumber(ctx, ev)
		return
	}

	if keyword, ok := h.matcher.Command(content); ok {
		h.picker.HandleKeyword(ctx, ev, keyword)
		return
	}

	if keyword, ok := h.matcher.Keyword(content); ok {
		h.picker.HandleKeyword(ctx, ev, keyword)
	}
}
