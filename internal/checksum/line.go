package checksum

import (
	"errors"
	"fmt"
	"strings"

	"github.com/autobrr/shabrr/internal/sha1"
)

// ErrMalformedLine is returned for lines that are neither GNU nor BSD
// style SHA1 checksum lines.
var ErrMalformedLine = errors.New("malformed checksum line")

// Style selects how a checksum line is written.
type Style int

const (
	// GNU is the coreutils sha1sum style: "<hex>  <name>".
	GNU Style = iota
	// BSD is the tagged style: "SHA1 (<name>) = <hex>".
	BSD
)

const bsdPrefix = "SHA1 ("

// Entry is one parsed checksum line.
type Entry struct {
	Name   string
	Digest sha1.Digest
	Binary bool
	Style  Style
	Line   int
}

// FormatLine renders d and name as one checksum line, without the
// trailing newline. Names containing a backslash or newline are escaped
// and the line gets a leading backslash, as coreutils does.
func FormatLine(d sha1.Digest, name string, style Style, binary bool) string {
	escaped, name := escapeName(name)

	var b strings.Builder
	if escaped {
		b.WriteByte('\\')
	}
	switch style {
	case BSD:
		b.WriteString(bsdPrefix)
		b.WriteString(name)
		b.WriteString(") = ")
		b.WriteString(d.String())
	default:
		b.WriteString(d.String())
		if binary {
			b.WriteString(" *")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(name)
	}
	return b.String()
}

// ParseLine parses a GNU or BSD style line.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r")

	escaped := strings.HasPrefix(line, "\\")
	if escaped {
		line = line[1:]
	}

	var (
		e   Entry
		hex string
	)

	if strings.HasPrefix(line, bsdPrefix) {
		idx := strings.LastIndex(line, ") = ")
		if idx < len(bsdPrefix) {
			return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		e.Style = BSD
		e.Name = line[len(bsdPrefix):idx]
		hex = line[idx+len(") = "):]
	} else {
		const hexLen = 2 * sha1.Size
		if len(line) < hexLen+3 || line[hexLen] != ' ' {
			return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		switch line[hexLen+1] {
		case ' ':
		case '*':
			e.Binary = true
		default:
			return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		e.Style = GNU
		hex = line[:hexLen]
		e.Name = line[hexLen+2:]
	}

	d, err := sha1.ParseDigest(hex)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	e.Digest = d

	if escaped {
		if e.Name, err = unescapeName(e.Name); err != nil {
			return Entry{}, err
		}
	}
	if e.Name == "" {
		return Entry{}, fmt.Errorf("%w: empty file name", ErrMalformedLine)
	}
	return e, nil
}

// EscapeName returns name as sha1sum prints it in check output: names
// containing a backslash or newline are escaped and get a leading
// backslash.
func EscapeName(name string) string {
	if escaped, name := escapeName(name); escaped {
		return "\\" + name
	}
	return name
}

func escapeName(name string) (bool, string) {
	if !strings.ContainsAny(name, "\\\n") {
		return false, name
	}
	r := strings.NewReplacer("\\", "\\\\", "\n", "\\n")
	return true, r.Replace(name)
}

func unescapeName(name string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(name) {
			return "", fmt.Errorf("%w: dangling escape in %q", ErrMalformedLine, name)
		}
		i++
		switch name[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		default:
			return "", fmt.Errorf("%w: unknown escape \\%c in %q", ErrMalformedLine, name[i], name)
		}
	}
	return b.String(), nil
}
