// Package properties reads and writes the line-oriented key=value format
// used for the repository mapping artifact. Escaping follows
// java.util.Properties so the artifact stays readable by JVM tooling.
package properties

import (
	"bufio"
	"fmt"
	"io"
	"errors"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Entry is one key=value pair
type Entry struct {
	Key   string
	Value string
}

const hexDigits = "0123456789ABCDEF"

// ErrInvalidUTF8 is returned when a key, value or comment is not valid
// UTF-8 and so has no \uXXXX form
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// EscapeKey escapes a key; every space is escaped
func EscapeKey(key string) string {
	return escape(key, true)
}

// EscapeValue escapes a value; only a leading space is escaped
func EscapeValue(value string) string {
	return escape(value, false)
}

func escape(s string, escapeSpace bool) string {
	var b strings.Builder
	b.Grow(len(s) * 2)

	for i, r := range s {
		switch {
		case r > 61 && r < 127:
			if r == '\\' {
				b.WriteString(`\\`)
			} else {
				b.WriteRune(r)
			}
		case r == ' ':
			if i == 0 || escapeSpace {
				b.WriteByte('\\')
			}
			b.WriteByte(' ')
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == '=', r == ':', r == '#', r == '!':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r > 0x7e:
			writeUnicode(&b, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// writeUnicode writes r as one or two \uXXXX escapes (UTF-16 code units)
func writeUnicode(b *strings.Builder, r rune) {
	units := []uint16{uint16(r)}
	if r > 0xFFFF {
		r1, r2 := utf16.EncodeRune(r)
		units = []uint16{uint16(r1), uint16(r2)}
	}
	for _, u := range units {
		b.WriteString(`\u`)
		b.WriteByte(hexDigits[(u>>12)&0xF])
		b.WriteByte(hexDigits[(u>>8)&0xF])
		b.WriteByte(hexDigits[(u>>4)&0xF])
		b.WriteByte(hexDigits[u&0xF])
	}
}

// Encoder writes comments and entries to an underlying writer
type Encoder struct {
	w   *bufio.Writer
	err error
}

// NewEncoder creates an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteComment writes a "#" comment. Embedded line breaks start new
// comment lines.
func (e *Encoder) WriteComment(comment string) error {
	if e.err == nil && !utf8.ValidString(comment) {
		e.err = fmt.Errorf("comment %q: %w", comment, ErrInvalidUTF8)
	}
	comment = strings.ReplaceAll(comment, "\r\n", "\n")
	for _, line := range strings.Split(comment, "\n") {
		e.writeLine("#" + escapeComment(line))
	}
	return e.err
}

// WriteEntry writes one escaped key=value line. Keys and values must be
// valid UTF-8.
func (e *Encoder) WriteEntry(key, value string) error {
	if e.err == nil {
		switch {
		case !utf8.ValidString(key):
			e.err = fmt.Errorf("key %q: %w", key, ErrInvalidUTF8)
		case !utf8.ValidString(value):
			e.err = fmt.Errorf("value of %q: %w", key, ErrInvalidUTF8)
		}
	}
	e.writeLine(EscapeKey(key) + "=" + EscapeValue(value))
	return e.err
}

// Flush flushes buffered output and returns the first error seen
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

func (e *Encoder) writeLine(line string) {
	if e.err != nil {
		return
	}
	if _, err := e.w.WriteString(line); err != nil {
		e.err = err
		return
	}
	e.err = e.w.WriteByte('\n')
}

func escapeComment(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > 0x7e {
			writeUnicode(&b, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store writes an optional comment followed by every entry in order
func Store(w io.Writer, comment string, entries []Entry) error {
	enc := NewEncoder(w)
	if comment != "" {
		if err := enc.WriteComment(comment); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		if err := enc.WriteEntry(entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return enc.Flush()
}

// Load reads entries in file order. Comment lines ('#' or '!') and blank
// lines are skipped; a line ending in an odd number of backslashes
// continues on the next line. Duplicate keys are returned as they appear.
func Load(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	var logical strings.Builder
	lineNo := 0
	continuing := false

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if continuing {
			line = strings.TrimLeft(line, " \t\f")
		} else {
			trimmed := strings.TrimLeft(line, " \t\f")
			if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!' {
				continue
			}
			line = trimmed
		}

		if endsWithOddBackslashes(line) {
			logical.WriteString(line[:len(line)-1])
			continuing = true
			continue
		}
		logical.WriteString(line)
		continuing = false

		entry, err := parseLine(logical.String())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
		logical.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if continuing && logical.Len() > 0 {
		entry, err := parseLine(logical.String())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func endsWithOddBackslashes(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// parseLine splits a logical line into key and value, then unescapes both
func parseLine(line string) (Entry, error) {
	keyEnd := len(line)
	valueStart := len(line)
	hasSep := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' {
			i++
			continue
		}
		if c == '=' || c == ':' {
			keyEnd, valueStart, hasSep = i, i+1, true
			break
		}
		if c == ' ' || c == '\t' || c == '\f' {
			keyEnd, valueStart = i, i+1
			break
		}
	}

	for valueStart < len(line) {
		c := line[valueStart]
		if c != ' ' && c != '\t' && c != '\f' {
			if !hasSep && (c == '=' || c == ':') {
				hasSep = true
				valueStart++
				continue
			}
			break
		}
		valueStart++
	}

	key, err := unescape(line[:keyEnd])
	if err != nil {
		return Entry{}, err
	}
	value, err := unescape(line[valueStart:])
	if err != nil {
		return Entry{}, err
	}
	return Entry{Key: key, Value: value}, nil
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	var pending []uint16
	flush := func() {
		if len(pending) > 0 {
			b.WriteString(string(utf16.Decode(pending)))
			pending = pending[:0]
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			flush()
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("malformed \\uxxxx encoding in %q", s)
			}
			var u uint16
			for _, h := range []byte(s[i+1 : i+5]) {
				d, ok := hexValue(h)
				if !ok {
					return "", fmt.Errorf("malformed \\uxxxx encoding in %q", s)
				}
				u = u<<4 | uint16(d)
			}
			pending = append(pending, u)
			i += 4
			continue
		case 't':
			flush()
			b.WriteByte('\t')
		case 'n':
			flush()
			b.WriteByte('\n')
		case 'r':
			flush()
			b.WriteByte('\r')
		case 'f':
			flush()
			b.WriteByte('\f')
		default:
			flush()
			b.WriteByte(s[i])
		}
	}
	flush()
	return b.String(), nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
