package irc

import "bytes"

const defaultMaxLineLength = 64 * 1024

// Framer splits a byte stream into newline-terminated lines. A trailing
// partial line is kept until the rest of it arrives.
type Framer struct {
	buf     []byte
	maxLine int
}

func NewFramer(maxLine int) *Framer {
	if maxLine <= 0 {
		maxLine = defaultMaxLineLength
	}
	return &Framer{maxLine: maxLine}
}

// Feed appends chunk to the buffer and returns every complete line in the
// order received, without line terminators. Empty lines are skipped.
func (f *Framer) Feed(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx == -1 {
			break
		}

		line := bytes.TrimRight(f.buf[:idx], "\r")
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
		f.buf = f.buf[idx+1:]
	}

	// a line that never terminates would grow the buffer without bound
	if len(f.buf) > f.maxLine {
		f.buf = f.buf[:0]
	}

	if len(f.buf) == 0 {
		f.buf = nil
	}
	return lines
}

// Pending reports how many bytes of an unterminated line are buffered.
func (f *Framer) Pending() int {
	return len(f.buf)
}

func (f *Framer) Reset() {
	f.buf = nil
}
