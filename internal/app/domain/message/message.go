package message

import (
	"strings"
	"unicode"
)

// Message is one decoded chat line. It is a value type and is never mutated
// after the codec builds it.
type Message struct {
	User string
	Text string
}

func New(user, text string) Message {
	return Message{User: user, Text: text}
}

// Trigger returns the first whitespace-delimited token of the text, or an
// empty string for a blank message.
func (m Message) Trigger() string {
	text := strings.TrimLeftFunc(m.Text, unicode.IsSpace)
	if i := strings.IndexFunc(text, unicode.IsSpace); i != -1 {
		return text[:i]
	}
	return text
}

// Args returns the tokens following the trigger.
func (m Message) Args() []string {
	fields := strings.Fields(m.Text)
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}
