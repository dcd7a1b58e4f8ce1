package listeners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T) *TriggerMatcher {
	t.Helper()
	m, err := NewTriggerMatcher(
		[]string{"재생", "노래검색", "点歌"},
		[]string{"틀어줘", "들려줘"},
		[]string{"/", "!", "?", "."},
		[]string{"노래", "music"},
	)
	require.NoError(t, err)
	return m
}

func TestKeywordMatching(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name    string
		text    string
		keyword string
		ok      bool
	}{
		{"trigger_prefix", "재생 Lemon", "Lemon", true},
		{"trigger_no_space", "재생Lemon", "Lemon", true},
		{"suffix_stripped", "재생 Lemon 틀어줘", "Lemon", true},
		{"chinese_trigger", "点歌 海阔天空", "海阔天空", true},
		{"multi_word_keyword", "노래검색 米津玄師 Lemon", "米津玄師 Lemon", true},
		{"no_trigger", "Lemon", "", false},
		{"command_prefix_excluded", "/재생 Lemon", "", false},
		{"bang_prefix_excluded", "!재생 Lemon", "", false},
		{"trigger_only", "재생", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword, ok := m.Keyword(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.keyword, keyword)
		})
	}
}

func TestCommandMatching(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name    string
		text    string
		keyword string
		ok      bool
	}{
		{"slash_alias", "/노래 Lemon", "Lemon", true},
		{"bang_alias", "!music Lemon", "Lemon", true},
		{"spaced_prefix", "/ 노래 Lemon", "Lemon", true},
		{"mention_suffix", "/노래@ncmbot Lemon", "Lemon", true},
		{"empty_keyword_still_matches", "/노래", "", true},
		{"mention_only", "/노래@ncmbot", "", true},
		{"alias_word_boundary", "/노래방 Lemon", "", false},
		{"no_prefix", "노래 Lemon", "", false},
		{"unknown_alias", "/볼륨 5", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword, ok := m.Command(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.keyword, keyword)
		})
	}
}

func TestMatcherWithoutTriggers(t *testing.T) {
	m, err := NewTriggerMatcher(nil, nil, []string{"/"}, []string{"노래"})
	require.NoError(t, err)

	_, ok := m.Keyword("재생 Lemon")
	assert.False(t, ok)

	keyword, ok := m.Command("/노래 Lemon")
	assert.True(t, ok)
	assert.Equal(t, "Lemon", keyword)
}

func TestMatcherWithoutSuffixes(t *testing.T) {
	m, err := NewTriggerMatcher([]string{"재생"}, nil, nil, nil)
	require.NoError(t, err)

	keyword, ok := m.Keyword("재생 Lemon 틀어줘")
	assert.True(t, ok)
	assert.Equal(t, "Lemon 틀어줘", keyword)
}
