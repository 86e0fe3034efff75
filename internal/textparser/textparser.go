// Package textparser compiles the format engine's concrete textual syntax
// (see the format-string grammar table) into a format.Spec tree.
//
// Whitespace is insignificant. The single-character tokens (B H T I Q s x
// the endian markers > < and the bracket pairs) are matched literally as
// defined by the grammar, since 'x' (Skip) and 'X' (a repeatable token) are
// deliberately distinct tokens — case-insensitivity applies to numeric hex
// literals (0xFF vs 0xff), not to the token alphabet.
package textparser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/LeJamon/binform/internal/format"
	"github.com/LeJamon/binform/internal/intspec"
)

// Compile parses a format string into a Spec tree. namePrefix seeds the
// auto-naming scheme: the n-th '%' allocates the variable name
// fmt.Sprintf("%s%d", namePrefix, n).
func Compile(src string, namePrefix string) (*format.Spec, error) {
	p := &parser{
		src:    []rune(src),
		endian: intspec.BigEndian,
		prefix: namePrefix,
	}
	terms, err := p.parseTerms(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("textparser: unbalanced brackets at offset %d", p.pos)
	}
	return format.SeqOf(terms...), nil
}

type parser struct {
	src    []rune
	pos    int
	endian intspec.Endian
	prefix string

	nextIndex int
	pending   []string
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) allocateName() string {
	name := fmt.Sprintf("%s%d", p.prefix, p.nextIndex)
	p.nextIndex++
	p.pending = append(p.pending, name)
	return name
}

func (p *parser) consumeName() (string, error) {
	if len(p.pending) == 0 {
		return "", fmt.Errorf("textparser: unbound reference at offset %d (no pending variable)", p.pos)
	}
	name := p.pending[0]
	p.pending = p.pending[1:]
	return name, nil
}

// parseTerms reads Spec terms until it sees stop (if nonzero) or EOF. stop
// being 0 means "top level: read to EOF".
func (p *parser) parseTerms(stop rune) ([]*format.Spec, error) {
	var terms []*format.Spec
	for {
		p.skipSpace()
		if p.eof() {
			if stop != 0 {
				return nil, fmt.Errorf("textparser: unbalanced brackets, expected %q before end of input", stop)
			}
			return terms, nil
		}
		if stop != 0 && p.peek() == stop {
			return terms, nil
		}

		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if term != nil {
			terms = append(terms, term)
		}
	}
}

// parseTerm consumes one term: an endian marker (state change, no Spec), a
// bare token, or a numeric-prefixed Skip/repeat.
func (p *parser) parseTerm() (*format.Spec, error) {
	c := p.peek()
	switch {
	case c == '>':
		p.pos++
		p.endian = intspec.BigEndian
		return nil, nil
	case c == '<':
		p.pos++
		p.endian = intspec.LittleEndian
		return nil, nil
	case unicode.IsDigit(c):
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() == 'x' {
			p.pos++
			return format.Skip(uint32(n)), nil
		}
		build, err := p.parseSingleToken()
		if err != nil {
			return nil, err
		}
		if build == nil {
			return nil, fmt.Errorf("textparser: numeric prefix %d at offset %d is not followed by a repeatable token", n, p.pos)
		}
		children := make([]*format.Spec, 0, n)
		for i := uint64(0); i < n; i++ {
			child, err := build()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return format.SeqOf(children...), nil
	default:
		build, err := p.parseSingleToken()
		if err != nil {
			return nil, err
		}
		if build == nil {
			return nil, fmt.Errorf("textparser: unknown character %q at offset %d", c, p.pos)
		}
		return build()
	}
}

// parseSingleToken recognises exactly one token starting at the current
// position and returns a builder that materialises it into a Spec. The
// builder may be called more than once (for "N X" repetition); each call
// performs its own auto-name allocation/consumption so repeated Variable,
// Bytes, Until, or Switch tokens get distinct names in order.
func (p *parser) parseSingleToken() (func() (*format.Spec, error), error) {
	switch p.peek() {
	case 'B':
		p.pos++
		return p.fixedIntBuilder(1), nil
	case 'H':
		p.pos++
		return p.fixedIntBuilder(2), nil
	case 'T':
		p.pos++
		return p.fixedIntBuilder(3), nil
	case 'I':
		p.pos++
		return p.fixedIntBuilder(4), nil
	case 'Q':
		p.pos++
		return p.fixedIntBuilder(8), nil
	case '%':
		p.pos++
		width, err := p.parseIntWidthToken()
		if err != nil {
			return nil, err
		}
		endian := p.endian
		return func() (*format.Spec, error) {
			name := p.allocateName()
			return format.Variable(intspec.New(width, endian), name), nil
		}, nil
	case 's':
		p.pos++
		return func() (*format.Spec, error) {
			name, err := p.consumeName()
			if err != nil {
				return nil, err
			}
			return format.Bytes(name), nil
		}, nil
	case '(':
		start := p.pos
		content, end, err := extractBalanced(p.src, p.pos, '(', ')')
		if err != nil {
			return nil, err
		}
		p.pos = end
		_ = start
		return func() (*format.Spec, error) {
			name, err := p.consumeName()
			if err != nil {
				return nil, err
			}
			sub := &parser{src: []rune(content), endian: p.endian, prefix: p.prefix, nextIndex: p.nextIndex, pending: p.pending}
			terms, err := sub.parseTerms(0)
			if err != nil {
				return nil, err
			}
			p.nextIndex = sub.nextIndex
			p.pending = sub.pending
			return format.Until(name, format.SeqOf(terms...)), nil
		}, nil
	case '{':
		content, end, err := extractBalanced(p.src, p.pos, '{', '}')
		if err != nil {
			return nil, err
		}
		p.pos = end
		return func() (*format.Spec, error) {
			name, err := p.consumeName()
			if err != nil {
				return nil, err
			}
			cases, def, err := p.parseSwitchBody(content)
			if err != nil {
				return nil, err
			}
			return format.SwitchOf(name, cases, def), nil
		}, nil
	default:
		return nil, nil
	}
}

func (p *parser) fixedIntBuilder(width int) func() (*format.Spec, error) {
	endian := p.endian
	return func() (*format.Spec, error) {
		return format.Integer(intspec.New(width, endian)), nil
	}
}

// parseIntWidthToken reads the single B/H/T/I/Q width letter that must
// follow '%'.
func (p *parser) parseIntWidthToken() (int, error) {
	switch p.peek() {
	case 'B':
		p.pos++
		return 1, nil
	case 'H':
		p.pos++
		return 2, nil
	case 'T':
		p.pos++
		return 3, nil
	case 'I':
		p.pos++
		return 4, nil
	case 'Q':
		p.pos++
		return 8, nil
	default:
		return 0, fmt.Errorf("textparser: '%%' at offset %d must be followed by one of B H T I Q", p.pos)
	}
}

func (p *parser) parseNumber() (uint64, error) {
	start := p.pos
	if p.peek() == '0' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == 'x' || p.src[p.pos+1] == 'X') {
		p.pos += 2
		hexStart := p.pos
		for !p.eof() && isHexDigit(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == hexStart {
			return 0, fmt.Errorf("textparser: malformed hex literal at offset %d", start)
		}
		return strconv.ParseUint(string(p.src[hexStart:p.pos]), 16, 64)
	}
	for !p.eof() && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}
	return strconv.ParseUint(string(p.src[start:p.pos]), 10, 64)
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// extractBalanced returns the content strictly between the open char at
// src[pos] and its matching close, plus the position just after the close.
func extractBalanced(src []rune, pos int, open, close rune) (string, int, error) {
	if pos >= len(src) || src[pos] != open {
		return "", 0, fmt.Errorf("textparser: expected %q at offset %d", open, pos)
	}
	depth := 1
	i := pos + 1
	for i < len(src) {
		switch src[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return string(src[pos+1 : i]), i + 1, nil
			}
		}
		i++
	}
	return "", 0, fmt.Errorf("textparser: unbalanced brackets, no matching %q for offset %d", close, pos)
}

// parseSwitchBody parses "k1=v1, k2=v2, *=vDefault" into a case map and a
// default Spec. Each value is a single token with no numeric prefix (so
// neither repetition nor Skip): a bare B/H/T/I/Q, a %X Variable, s, a
// nested (...) or {...}, or the literal "stop".
func (p *parser) parseSwitchBody(body string) (map[uint64]*format.Spec, *format.Spec, error) {
	cases := make(map[uint64]*format.Spec)
	var def *format.Spec

	for _, rawEntry := range splitTopLevel(body, ',') {
		entry := strings.TrimSpace(rawEntry)
		if entry == "" {
			continue
		}
		eq := strings.IndexByte(entry, '=')
		if eq < 0 {
			return nil, nil, fmt.Errorf("textparser: malformed switch entry %q (missing '=')", entry)
		}
		key := strings.TrimSpace(entry[:eq])
		valSrc := strings.TrimSpace(entry[eq+1:])

		spec, err := p.parseSwitchValue(valSrc)
		if err != nil {
			return nil, nil, err
		}

		if key == "*" {
			if def != nil {
				return nil, nil, fmt.Errorf("textparser: switch has more than one default ('*') entry")
			}
			def = spec
			continue
		}
		k, err := strconv.ParseUint(key, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("textparser: invalid switch key %q: %w", key, err)
		}
		if _, dup := cases[k]; dup {
			return nil, nil, fmt.Errorf("textparser: duplicate switch key %d", k)
		}
		cases[k] = spec
	}
	return cases, def, nil
}

func (p *parser) parseSwitchValue(valSrc string) (*format.Spec, error) {
	if strings.EqualFold(valSrc, "stop") {
		return format.StopSpec(), nil
	}
	sub := &parser{src: []rune(valSrc), endian: p.endian, prefix: p.prefix, nextIndex: p.nextIndex, pending: p.pending}
	build, err := sub.parseSingleToken()
	if err != nil {
		return nil, err
	}
	if build == nil {
		return nil, fmt.Errorf("textparser: unrecognised switch case value %q", valSrc)
	}
	spec, err := build()
	if err != nil {
		return nil, err
	}
	if sub.pos != len(sub.src) {
		return nil, fmt.Errorf("textparser: trailing characters in switch case value %q", valSrc)
	}
	p.nextIndex = sub.nextIndex
	p.pending = sub.pending
	return spec, nil
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside ()/{}.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
