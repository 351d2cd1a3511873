package irc

import (
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

func TestFramer_Feed(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		want    [][]string
		pending int
	}{
		{
			name:   "single line",
			chunks: []string{"PING :tmi.twitch.tv\r\n"},
			want:   [][]string{{"PING :tmi.twitch.tv"}},
		},
		{
			name:   "several lines in one chunk",
			chunks: []string{"a\r\nb\r\nc\r\n"},
			want:   [][]string{{"a", "b", "c"}},
		},
		{
			name:    "line split across chunks",
			chunks:  []string{":alice!alice@host PRIV", "MSG #room :hi\r", "\n"},
			want:    [][]string{nil, nil, {":alice!alice@host PRIVMSG #room :hi"}},
			pending: 0,
		},
		{
			name:    "trailing partial kept",
			chunks:  []string{"a\nb"},
			want:    [][]string{{"a"}},
			pending: 1,
		},
		{
			name:   "bare LF and empty lines",
			chunks: []string{"a\n\n\r\nb\n"},
			want:   [][]string{{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFramer(0)
			for i, chunk := range tt.chunks {
				assert.Equal(t, tt.want[i], f.Feed([]byte(chunk)), "chunk %d", i)
			}
			assert.Equal(t, tt.pending, f.Pending())
		})
	}
}

func TestFramer_DropsOversizedPartial(t *testing.T) {
	f := NewFramer(8)

	assert.Empty(t, f.Feed([]byte(strings.Repeat("x", 9))))
	assert.Zero(t, f.Pending())
	assert.Equal(t, []string{"ok"}, f.Feed([]byte("ok\n")))
}

func TestFramer_Reset(t *testing.T) {
	f := NewFramer(0)
	f.Feed([]byte("stale"))
	f.Reset()

	assert.Equal(t, []string{"fresh"}, f.Feed([]byte("fresh\r\n")))
}
