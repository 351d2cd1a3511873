package irc

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"twitchbot/internal/app/domain/message"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want message.Message
	}{
		{
			name: "privmsg",
			line: ":alice!alice@alice.tmi.twitch.tv PRIVMSG #room :!hello",
			want: message.New("alice", "!hello"),
		},
		{
			name: "text with colons",
			line: ":bob!bob@host PRIVMSG #room :time is 12:30:01",
			want: message.New("bob", "time is 12:30:01"),
		},
		{
			name: "text with bangs",
			line: ":bob!bob@host PRIVMSG #room :wow!! nice! :)",
			want: message.New("bob", "wow!! nice! :)"),
		},
		{
			name: "empty text",
			line: ":carol!carol@host PRIVMSG #room :",
			want: message.New("carol", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"single char", ":"},
		{"server numeric", ":tmi.twitch.tv 001 bot Welcome"},
		{"join without text", ":alice!alice@host JOIN #room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.line)

			var malformed *MalformedLineError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.line, malformed.Line)
		})
	}
}

func TestKeepAlive(t *testing.T) {
	assert.True(t, IsKeepAlive("PING :tmi.twitch.tv"))
	assert.False(t, IsKeepAlive(":alice!alice@host PRIVMSG #room :PING :tmi.twitch.tv"))
	assert.False(t, IsKeepAlive(":tmi.twitch.tv PONG tmi.twitch.tv :tmi.twitch.tv"))

	assert.Equal(t, "PONG :tmi.twitch.tv", Pong("PING :tmi.twitch.tv"))
	assert.Equal(t, "PONG :PING", Pong("PING :PING"))
}

func TestKeepAlive_MatchesLinePrefixOnly(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		keepAlive bool
	}{
		{"server ping", "PING :tmi.twitch.tv", true},
		{"chat quoting ping", ":alice!alice@host PRIVMSG #room :PING :tmi.twitch.tv", false},
		{"chat starting with ping", ":alice!alice@host PRIVMSG #room :PING", false},
		{"leading space", " PING :tmi.twitch.tv", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keepAlive, IsKeepAlive(tt.line))
		})
	}

	msg, err := Decode(":alice!alice@host PRIVMSG #room :PING :tmi.twitch.tv")
	require.NoError(t, err)
	assert.Equal(t, message.New("alice", "PING :tmi.twitch.tv"), msg)
}

func TestMarkers(t *testing.T) {
	assert.True(t, IsJoinComplete(":bot.tmi.twitch.tv 366 bot #room :End of /NAMES list"))
	assert.False(t, IsJoinComplete(":bot.tmi.twitch.tv 353 bot = #room :bot"))

	assert.True(t, IsAuthFailure(":tmi.twitch.tv NOTICE * :Login authentication failed"))
	assert.True(t, IsAuthFailure(":tmi.twitch.tv NOTICE * :Improperly formatted auth"))
	assert.False(t, IsAuthFailure(":tmi.twitch.tv 001 bot :Welcome, GLHF!"))
}

func TestPrivMsg(t *testing.T) {
	assert.Equal(t, "PRIVMSG #room :hi alice", PrivMsg("room", "hi alice"))
	assert.Equal(t, "PRIVMSG #room :/ban bob", PrivMsg("#room", "/ban bob"))
}

func TestSendError_RedactsToken(t *testing.T) {
	err := &SendError{Line: "PASS oauth:secret", Err: ErrNotConnected}
	assert.NotContains(t, err.Error(), "secret")
}
