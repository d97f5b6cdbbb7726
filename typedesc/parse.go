package typedesc

import (
	"fmt"
	"strconv"

	"github.com/arloliu/graft/errs"
)

// Parse reads the text form produced by Descriptor.String.
func Parse(s string) (*Descriptor, error) {
	p := parser{src: s}
	d, err := p.parse(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected %q", p.src[p.pos:])
	}

	return d, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(format string, args ...any) error {
	return fmt.Errorf("type %q at offset %d: %s: %w", p.src, p.pos, fmt.Sprintf(format, args...), errs.ErrMalformedInput)
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}

	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return p.fail("expected %q", c)
	}
	p.pos++

	return nil
}

func (p *parser) hasPrefix(prefix string) bool {
	return len(p.src)-p.pos >= len(prefix) && p.src[p.pos:p.pos+len(prefix)] == prefix
}

func (p *parser) parse(depth int) (*Descriptor, error) {
	if depth > maxNesting {
		return nil, p.fail("nested deeper than %d", maxNesting)
	}

	switch c := p.peek(); {
	case c == '*':
		p.pos++
		elem, err := p.parse(depth + 1)
		if err != nil {
			return nil, err
		}

		return PointerTo(elem), nil
	case c == '&':
		p.pos++
		elem, err := p.parse(depth + 1)
		if err != nil {
			return nil, err
		}

		return ByRef(elem), nil
	case c == '[':
		return p.parseArray(depth)
	case p.hasPrefix("map["):
		p.pos += len("map[")
		key, err := p.parse(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		elem, err := p.parse(depth + 1)
		if err != nil {
			return nil, err
		}

		return MapOf(key, elem), nil
	default:
		return p.parseNamed(depth)
	}
}

func (p *parser) parseArray(depth int) (*Descriptor, error) {
	p.pos++ // '['

	var build func(elem *Descriptor) *Descriptor
	switch c := p.peek(); {
	case c == ']':
		build = SliceOf
	case c == '*':
		p.pos++
		build = func(elem *Descriptor) *Descriptor { return MultiArrayOf(1, elem) }
	case c == ',':
		rank := 1
		for p.peek() == ',' {
			rank++
			p.pos++
		}
		build = func(elem *Descriptor) *Descriptor { return MultiArrayOf(rank, elem) }
	case c >= '0' && c <= '9':
		start := p.pos
		for p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
		}
		n, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil {
			return nil, p.fail("bad array length")
		}
		build = func(elem *Descriptor) *Descriptor { return ArrayOf(n, elem) }
	default:
		return nil, p.fail("bad array shape")
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	elem, err := p.parse(depth + 1)
	if err != nil {
		return nil, err
	}

	return build(elem), nil
}

func (p *parser) parseNamed(depth int) (*Descriptor, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '[' || c == ']' || c == ',' {
			break
		}
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return nil, p.fail("missing type name")
	}
	if p.peek() != '[' {
		return Named(name), nil
	}
	p.pos++

	// Open generic: only commas, or nothing, between the brackets.
	if c := p.peek(); c == ']' || c == ',' {
		arity := 1
		for p.peek() == ',' {
			arity++
			p.pos++
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}

		return OpenGeneric(name, arity), nil
	}

	var args []*Descriptor
	for {
		arg, err := p.parse(depth + 1)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}

		return Generic(name, args...), nil
	}
}
