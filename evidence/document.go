package evidence

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"xdao.co/cellnft/cidutil"
)

var sectionOrder = []string{"META", "INPUTS", "RESULT", "GROUPS", "CRYPTO"}

// sorted sections must have strictly increasing lines.
var sortedSections = map[string]bool{"META": true, "INPUTS": true, "RESULT": true, "CRYPTO": true}

// Document is a parsed canonical verdict document.
type Document struct {
	Bytes    []byte
	CID      string
	sections map[string][]string
}

// Parse checks that b is canonical and splits it into sections.
func Parse(b []byte) (*Document, error) {
	if !utf8.Valid(b) {
		return nil, errors.New("evidence: document must be valid UTF-8")
	}
	if bytes.Contains(b, []byte("\r")) {
		return nil, errors.New("evidence: CR line endings not allowed")
	}
	if len(b) == 0 || b[len(b)-1] != '\n' {
		return nil, errors.New("evidence: missing trailing newline")
	}

	lines := strings.Split(string(b), "\n")
	if len(lines) < 3 || lines[0] != Preamble {
		return nil, errors.New("evidence: missing preamble")
	}
	if lines[len(lines)-2] != Postamble {
		return nil, errors.New("evidence: missing postamble")
	}

	sections := make(map[string][]string, len(sectionOrder))
	end := len(lines) - 2
	i := 1
	for _, sec := range sectionOrder {
		if i >= end || lines[i] != sec {
			return nil, fmt.Errorf("evidence: sections missing or out of order (expected %q)", sec)
		}
		i++
		start := i
		for i < end && lines[i] != "" {
			if err := checkLine(lines[i]); err != nil {
				return nil, fmt.Errorf("evidence: %s: %w", sec, err)
			}
			i++
		}
		if i >= end {
			return nil, fmt.Errorf("evidence: missing blank line after section %q", sec)
		}
		body := lines[start:i]
		if sortedSections[sec] {
			for j := 1; j < len(body); j++ {
				if !(body[j-1] < body[j]) {
					return nil, fmt.Errorf("evidence: %s: lines not sorted", sec)
				}
			}
		}
		sections[sec] = body
		i++
	}
	if i != end {
		return nil, errors.New("evidence: unexpected content before postamble")
	}

	canon := append([]byte(nil), b...)
	return &Document{Bytes: canon, CID: cidutil.CIDv1RawSHA256(canon), sections: sections}, nil
}

func checkLine(l string) error {
	if strings.HasSuffix(l, " ") || strings.HasSuffix(l, "\t") {
		return errors.New("trailing whitespace forbidden")
	}
	k, v, ok := strings.Cut(l, ": ")
	if !ok || k == "" || v == "" {
		return fmt.Errorf("invalid line %q", l)
	}
	return nil
}

// Field returns the value of key in section. It fails when key occurs more
// than once.
func (d *Document) Field(section, key string) (string, bool, error) {
	var (
		val   string
		found bool
	)
	for _, l := range d.sections[section] {
		k, v, _ := strings.Cut(l, ": ")
		if k != key {
			continue
		}
		if found {
			return "", false, fmt.Errorf("evidence: %s: duplicate %s", section, key)
		}
		val, found = v, true
	}
	return val, found, nil
}

// Accepted reports the RESULT section's verdict.
func (d *Document) Accepted() bool {
	v, ok, err := d.Field("RESULT", "Accepted")
	return err == nil && ok && v == "true"
}

// CID returns the content identifier of a canonical document.
func CID(doc []byte) (string, error) {
	d, err := Parse(doc)
	if err != nil {
		return "", err
	}
	return d.CID, nil
}
