// Package marker implements the inline embedding protocol that lets document
// text place a simulation among prose paragraphs:
//
//	::sim[<id>]
//	::sim[<id>]{key1="value1" key2="value2"}
//
// A line matching the grammar exactly (after trimming) becomes an Embed
// segment and consumes the whole line; every other line accumulates into the
// surrounding Text segment. The match is all-or-nothing per line: a malformed
// marker, an unterminated attribute block, or an empty id all fall through to
// plain text. Parsing is linear, needs no look-ahead beyond the current line,
// and is deterministic, so re-parsing identical input yields an identical
// segment sequence.
//
// Attribute values are double-quoted with no escaping; a value ends at the
// first closing quote. Duplicate keys within one block resolve last-wins.
// Unknown keys are preserved in the segment so future renderers can consume
// them; tokens that are not key="value" pairs at all are skipped.
package marker

import "strings"

const (
	markerPrefix = "::sim["

	// AttrTitle and AttrDescription are the override keys the renderer
	// recognizes. Other keys are carried through untouched.
	AttrTitle       = "title"
	AttrDescription = "description"
)

// Segment is one ordered piece of a parsed document: either Text or Embed.
type Segment interface {
	isSegment()
}

// Text is a maximal run of plain lines, joined with newlines.
type Text struct {
	Markdown string
}

func (Text) isSegment() {}

// Embed is a single marker line referencing a simulation by id.
type Embed struct {
	ID        string
	Overrides map[string]string
}

func (Embed) isSegment() {}

// Parse scans src line by line into an ordered segment sequence.
func Parse(src string) []Segment {
	lines := strings.Split(src, "\n")
	if len(lines) > 0 && strings.HasSuffix(src, "\n") {
		lines = lines[:len(lines)-1]
	}

	var segments []Segment
	var plain []string

	flush := func() {
		if len(plain) == 0 {
			return
		}
		text := strings.Join(plain, "\n")
		plain = plain[:0]
		if text == "" {
			return
		}
		segments = append(segments, Text{Markdown: text})
	}

	for _, line := range lines {
		if id, overrides, ok := matchMarker(strings.TrimSpace(line)); ok {
			flush()
			segments = append(segments, Embed{ID: id, Overrides: overrides})
			continue
		}
		plain = append(plain, line)
	}
	flush()
	return segments
}

// matchMarker reports whether a trimmed line is a well-formed marker. The id
// requires one or more non-bracket characters; an attribute block, when
// present, must immediately follow the closing bracket and span the rest of
// the line.
func matchMarker(line string) (string, map[string]string, bool) {
	if !strings.HasPrefix(line, markerPrefix) {
		return "", nil, false
	}
	rest := line[len(markerPrefix):]
	end := strings.IndexByte(rest, ']')
	if end <= 0 {
		return "", nil, false
	}
	id := rest[:end]
	if strings.ContainsRune(id, '[') {
		return "", nil, false
	}
	rest = rest[end+1:]
	if rest == "" {
		return id, map[string]string{}, true
	}
	if len(rest) < 2 || rest[0] != '{' || rest[len(rest)-1] != '}' {
		return "", nil, false
	}
	return id, parseAttrs(rest[1 : len(rest)-1]), true
}

// parseAttrs extracts key="value" pairs from an attribute block body. Tokens
// that do not form a pair are skipped rather than failing the whole block.
func parseAttrs(body string) map[string]string {
	attrs := map[string]string{}
	i := 0
	for i < len(body) {
		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		start := i
		for i < len(body) && isKeyByte(body[i]) {
			i++
		}
		key := body[start:i]
		if key == "" || i >= len(body) || body[i] != '=' {
			i = skipToken(body, i)
			continue
		}
		i++ // '='
		if i >= len(body) || body[i] != '"' {
			i = skipToken(body, i)
			continue
		}
		i++ // opening quote
		closing := strings.IndexByte(body[i:], '"')
		if closing < 0 {
			break
		}
		attrs[key] = body[i : i+closing]
		i += closing + 1
	}
	return attrs
}

func isKeyByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '-':
		return true
	}
	return false
}

// skipToken advances past the current non-pair token.
func skipToken(body string, i int) int {
	for i < len(body) && body[i] != ' ' && body[i] != '\t' {
		i++
	}
	return i
}
