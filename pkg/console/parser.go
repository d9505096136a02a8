package console

import (
	"bytes"
	"strconv"
)

// EventKind identifies a console token.
type EventKind int

// Console tokens.
const (
	EventBanner EventKind = iota
	EventWaiting
	EventOpen
	EventSignal
	EventData
	EventCorrect
	// EventPayload is a run of decimal digits.
	EventPayload
	// EventIdle is delivered by Reader when the line went quiet.
	EventIdle
)

var eventNames = []string{"banner", "waiting", "open", "signal", "data", "correct", "payload", "idle"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "event(" + strconv.Itoa(int(k)) + ")"
}

// Event is a decoded token.
type Event struct {
	Kind EventKind
	// Digits is the raw digit run of a payload.
	Digits string
	// Payload holds the decoded bytes of a payload.
	Payload []byte
	// Exact is false when the digit run could not be split into Width
	// bytes unambiguously and Payload holds one value per digit.
	Exact bool
}

var keywords = []struct {
	text []byte
	kind EventKind
}{
	{[]byte("Client."), EventBanner},
	{[]byte("Waiting"), EventWaiting},
	{[]byte("Open"), EventOpen},
	{[]byte("Signal"), EventSignal},
	{[]byte("Data"), EventData},
	{[]byte("Correct"), EventCorrect},
}

type parseState int

const (
	stateIdle   parseState = iota // between tokens
	stateWord                     // collecting a keyword
	stateDigits                   // collecting a digit run
)

// Parser decodes console bytes one at a time.
type Parser struct {
	// Width is the payload width used to split digit runs.
	Width int

	state   parseState
	word    []byte
	digits  []byte
	garbage int
}

// Garbage counts bytes that were not part of any token.
func (p *Parser) Garbage() int {
	return p.garbage
}

// Reset drops any partial token.
func (p *Parser) Reset() {
	p.state, p.word, p.digits = stateIdle, p.word[:0], p.digits[:0]
}

// Pending reports whether a token is partially collected.
func (p *Parser) Pending() bool {
	return p.state != stateIdle
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\r', '\n', '\t', ':':
		return true
	}
	return false
}

// Parse consumes one byte and returns the token it completed, if any.
func (p *Parser) Parse(b byte) (ev Event, ok bool) {
	if isSeparator(b) {
		return p.Flush()
	}
	if b >= '0' && b <= '9' {
		if p.state == stateWord {
			p.garbage += len(p.word)
			p.word = p.word[:0]
		}
		p.state = stateDigits
		p.digits = append(p.digits, b)
		return
	}
	if p.state == stateDigits {
		ev, ok = p.payload()
	}
	p.word = append(p.word, b)
	p.state = stateWord
	for len(p.word) > 0 && !hasKeywordPrefix(p.word) {
		p.word = p.word[1:]
		p.garbage++
	}
	if len(p.word) == 0 {
		p.state = stateIdle
		return
	}
	for _, kw := range keywords {
		if bytes.Equal(p.word, kw.text) {
			p.word, p.state = p.word[:0], stateIdle
			return Event{Kind: kw.kind}, true
		}
	}
	return
}

// Flush completes a pending digit run. Partial words are dropped.
func (p *Parser) Flush() (ev Event, ok bool) {
	switch p.state {
	case stateDigits:
		ev, ok = p.payload()
	case stateWord:
		p.garbage += len(p.word)
		p.word = p.word[:0]
	}
	p.state = stateIdle
	return
}

func (p *Parser) payload() (Event, bool) {
	digits := string(p.digits)
	p.digits = p.digits[:0]
	p.state = stateIdle
	buf, exact := SplitDecimal(digits, p.Width)
	return Event{Kind: EventPayload, Digits: digits, Payload: buf, Exact: exact}, true
}

func hasKeywordPrefix(word []byte) bool {
	for _, kw := range keywords {
		if bytes.HasPrefix(kw.text, word) {
			return true
		}
	}
	return false
}

// SplitDecimal splits a run of unpadded decimal bytes printed back to
// back into width values. The key payload width..1 is tried first; if
// that does not match, the run is accepted when exactly one split into
// width values of 0..255 exists. Otherwise every digit becomes a value
// and exact is false.
func SplitDecimal(digits string, width int) (buf []byte, exact bool) {
	if width > 0 {
		var key []byte
		for v := width; v > 0; v-- {
			key = strconv.AppendInt(key, int64(v), 10)
		}
		if string(key) == digits {
			buf = make([]byte, width)
			for i := range buf {
				buf[i] = byte(width - i)
			}
			return buf, true
		}
		if splits := countSplits(digits, width); splits == 1 {
			return firstSplit(digits, width), true
		}
	}
	buf = make([]byte, len(digits))
	for i := range buf {
		buf[i] = digits[i] - '0'
	}
	return buf, false
}

// field returns the value of the decimal of length n at the start of s,
// or -1 if it is not a valid unpadded byte.
func field(s string, n int) int {
	if n > len(s) || n > 3 || (n > 1 && s[0] == '0') {
		return -1
	}
	v, _ := strconv.Atoi(s[:n])
	if v > 255 {
		return -1
	}
	return v
}

func countSplits(s string, width int) int {
	if width == 0 {
		if len(s) == 0 {
			return 1
		}
		return 0
	}
	count := 0
	for n := 1; n <= 3; n++ {
		if field(s, n) >= 0 {
			count += countSplits(s[n:], width-1)
		}
	}
	return count
}

func firstSplit(s string, width int) []byte {
	if width == 0 {
		return []byte{}
	}
	for n := 1; n <= 3; n++ {
		if v := field(s, n); v >= 0 && countSplits(s[n:], width-1) > 0 {
			return append([]byte{byte(v)}, firstSplit(s[n:], width-1)...)
		}
	}
	return nil
}
