package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxnx/ncmbot/internal/netease"
	"github.com/hxnx/ncmbot/internal/selection"
)

func TestStopRunsFullShutdownSequence(t *testing.T) {
	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)

	results := selection.NewResultCache()
	b := &Bot{
		session:  s,
		catalog:  netease.NewClient("http://127.0.0.1:0", "", nil),
		sessions: selection.NewSessionStore(results),
		started:  true,
	}

	// Every resource in the sequence must be reached; none of the closers may
	// short-circuit the ones after it.
	assert.NoError(t, b.Stop())
	assert.False(t, b.started)

	// A second Stop is a no-op.
	assert.NoError(t, b.Stop())
}

func TestStopBeforeStartIsNoOp(t *testing.T) {
	b := &Bot{}
	assert.NoError(t, b.Stop())
}
