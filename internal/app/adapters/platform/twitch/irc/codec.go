package irc

import (
	"strings"
	"twitchbot/internal/app/domain/message"
)

const (
	keepAlivePing = "PING"
	keepAliveAck   = "PONG"

	joinCompleteMarker = "End of /NAMES list"
)

var authFailureMarkers = []string{
	"Login authentication failed",
	"Improperly formatted auth",
}

// IsKeepAlive reports whether the line is a server keep-alive ping.
func IsKeepAlive(line string) bool {
	return strings.HasPrefix(line, keepAlivePing)
}

// Pong builds the acknowledgement for a keep-alive line by swapping the ping
// keyword, keeping the server's payload.
func Pong(line string) string {
	return strings.Replace(line, keepAlivePing, keepAliveAck, 1)
}

func IsJoinComplete(line string) bool {
	return strings.Contains(line, joinCompleteMarker)
}

func IsAuthFailure(line string) bool {
	for _, m := range authFailureMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// Decode turns a chat line shaped ":<user>!<rest>:<text>" into a Message.
// The sender ends at the first '!' and the text starts after the first ':'
// that follows it.
func Decode(line string) (message.Message, error) {
	if len(line) < 2 {
		return message.Message{}, &MalformedLineError{Line: line, Reason: "line too short"}
	}

	body := line[1:]
	user, rest, ok := strings.Cut(body, "!")
	if !ok {
		return message.Message{}, &MalformedLineError{Line: line, Reason: "missing '!' separator"}
	}

	_, text, ok := strings.Cut(rest, ":")
	if !ok {
		return message.Message{}, &MalformedLineError{Line: line, Reason: "missing ':' separator"}
	}

	return message.New(user, text), nil
}

func PrivMsg(channel, text string) string {
	return "PRIVMSG " + channelName(channel) + " :" + text
}

func channelName(channel string) string {
	if !strings.HasPrefix(channel, "#") {
		channel = "#" + channel
	}
	return channel
}
