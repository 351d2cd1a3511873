package message

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMessage_Trigger(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single token", "!hello", "!hello"},
		{"with args", "!hello world again", "!hello"},
		{"leading space", "  !hello there", "!hello"},
		{"tab separated", "!so\tstreamer", "!so"},
		{"no-break space", "!hello\u00a0world", "!hello"},
		{"ideographic space", "\u3000!hello\u3000world", "!hello"},
		{"newline", "!hello\nworld", "!hello"},
		{"empty", "", ""},
		{"plain chat", "hi everyone", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New("alice", tt.text).Trigger())
		})
	}
}

func TestMessage_Args(t *testing.T) {
	assert.Nil(t, New("alice", "!hello").Args())
	assert.Equal(t, []string{"a", "b"}, New("alice", "!cmd a  b").Args())
}
