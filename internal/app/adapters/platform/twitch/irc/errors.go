package irc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConnectionLost   = errors.New("connection lost")
	ErrAuthFailed       = errors.New("login authentication failed")
	ErrHandshakeTimeout = errors.New("handshake timed out")
	ErrNotConnected     = errors.New("not connected")
	ErrMessageTooLong   = errors.New("message too long")
)

// MalformedLineError is returned by Decode for lines that are not chat
// messages. Callers drop the line.
type MalformedLineError struct {
	Line   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed line %q: %s", e.Line, e.Reason)
}

// ConnectError wraps any failure while dialing or completing the handshake.
type ConnectError struct {
	Stage string
	Err   error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect (%s): %v", e.Stage, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

type SendError struct {
	Line string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %q: %v", redact(e.Line), e.Err)
}

func redact(line string) string {
	if strings.HasPrefix(line, "PASS ") {
		return "PASS ***"
	}
	return line
}

func (e *SendError) Unwrap() error {
	return e.Err
}
