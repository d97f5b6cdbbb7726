// Package dump decodes a serialized payload into a tree of fields without
// knowing the types it was written from.
package dump

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/arloliu/graft/bridge"
	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/encoding"
	"github.com/arloliu/graft/format"
)

// Options controls how payload bytes are rendered.
type Options struct {
	// MaxBytes truncates LengthPrefixed payloads in the output. 0 prints them whole.
	MaxBytes int
	// CBOR renders LengthPrefixed payloads that parse as CBOR in diagnostic notation.
	CBOR bool
}

// Node is one decoded field.
type Node struct {
	// ID is the absolute field ID within the enclosing object.
	ID     uint32
	Header buffers.FieldHeader
	// RefID is the reference ID the field was assigned, or the target of a Reference field.
	RefID    uint32
	Value    string
	Children []Node
}

// Walk reads top-level fields until r is exhausted.
func Walk(r *buffers.Reader, opts Options) ([]Node, error) {
	var nodes []Node
	var id uint32
	for r.Remaining() > 0 {
		n, err := readNode(r, opts, &id)
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, n)
	}

	return nodes, nil
}

func readNode(r *buffers.Reader, opts Options, id *uint32) (Node, error) {
	h, err := r.ReadFieldHeader()
	if err != nil {
		return Node{}, err
	}
	if h.WireType == format.WireExtended {
		if h.IsEndBaseFields() {
			*id = 0
		}

		return Node{Header: h}, nil
	}
	*id += h.FieldIDDelta
	n := Node{ID: *id, Header: h}
	if h.WireType != format.WireReference {
		n.RefID = r.Session().References.CurrentReferenceID()
	}

	switch h.WireType {
	case format.WireVarInt:
		hi, lo, err := r.ReadVarUint128()
		if err != nil {
			return n, err
		}
		n.Value = varintText(hi, lo)
	case format.WireFixed32:
		v, err := r.ReadUint32()
		if err != nil {
			return n, err
		}
		n.Value = fmt.Sprintf("0x%08x (%g)", v, math.Float32frombits(v))
	case format.WireFixed64:
		v, err := r.ReadUint64()
		if err != nil {
			return n, err
		}
		n.Value = fmt.Sprintf("0x%016x (%g)", v, math.Float64frombits(v))
	case format.WireLengthPrefixed:
		p, err := r.ReadLengthPrefixed()
		if err != nil {
			return n, err
		}
		n.Value = bytesText(p, opts)
	case format.WireReference:
		n.RefID, err = r.ReadReferenceID()
		if err != nil {
			return n, err
		}
	case format.WireTagDelimited:
		if err := r.Session().Enter(); err != nil {
			return n, err
		}
		defer r.Session().Leave()

		var childID uint32
		for {
			child, err := readNode(r, opts, &childID)
			if err != nil {
				return n, err
			}
			if child.Header.IsEndObject() {
				break
			}
			n.Children = append(n.Children, child)
		}
	default:
		return n, r.SkipField(h)
	}

	return n, nil
}

func varintText(hi, lo uint64) string {
	if hi == 0 {
		return fmt.Sprintf("%d (zigzag %d)", lo, encoding.UnZigZag64(lo))
	}
	u := new(big.Int).Lsh(new(big.Int).SetUint64(hi), 64)
	u.Or(u, new(big.Int).SetUint64(lo))

	return u.String()
}

func bytesText(p []byte, opts Options) string {
	if opts.CBOR && len(p) > 0 {
		if diag, err := bridge.Diagnose(p); err == nil {
			return "cbor " + diag
		}
	}
	shown, more := p, 0
	if opts.MaxBytes > 0 && len(p) > opts.MaxBytes {
		shown, more = p[:opts.MaxBytes], len(p)-opts.MaxBytes
	}

	var sb strings.Builder
	sb.WriteString("len=")
	sb.WriteString(strconv.Itoa(len(p)))
	sb.WriteByte(' ')
	if utf8.Valid(shown) {
		sb.WriteString(strconv.Quote(string(shown)))
	} else {
		fmt.Fprintf(&sb, "%x", shown)
	}
	if more > 0 {
		fmt.Fprintf(&sb, " ... +%d", more)
	}

	return sb.String()
}

func typeText(h buffers.FieldHeader) string {
	switch {
	case h.Type != nil:
		return h.Type.String()
	case h.Descriptor != nil:
		return h.Descriptor.String() + " (unresolved)"
	case h.SchemaType == format.SchemaWellKnown:
		return "wellknown(" + strconv.FormatUint(uint64(h.WellKnownID), 10) + ")"
	default:
		return ""
	}
}

// Write prints nodes as an indented tree.
func Write(w io.Writer, nodes []Node) error {
	return writeNodes(w, nodes, 0)
}

func writeNodes(w io.Writer, nodes []Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if err := writeNode(w, n, indent); err != nil {
			return err
		}
		if err := writeNodes(w, n.Children, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func writeNode(w io.Writer, n Node, indent string) error {
	h := n.Header
	if h.WireType == format.WireExtended {
		_, err := fmt.Fprintf(w, "%s-- %s --\n", indent, h.Extended)
		return err
	}

	var sb strings.Builder
	sb.WriteString(indent)
	fmt.Fprintf(&sb, "[%d] %s", n.ID, h.WireType)
	if t := typeText(h); t != "" {
		sb.WriteString(" ")
		sb.WriteString(t)
	}
	switch {
	case h.WireType == format.WireReference && n.RefID == 0:
		sb.WriteString(" null")
	case h.WireType == format.WireReference:
		fmt.Fprintf(&sb, " -> #%d", n.RefID)
	default:
		fmt.Fprintf(&sb, " #%d", n.RefID)
	}
	if n.Value != "" {
		sb.WriteString(" = ")
		sb.WriteString(n.Value)
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())

	return err
}
