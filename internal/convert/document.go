// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"regexp"
	"strconv"

	"github.com/go-faster/jx"
	"go.yaml.in/yaml/v3"
)

// maxValues bounds alias expansion so a small document cannot blow up
// into an unbounded amount of JSON.
const maxValues = 10_000_000

const (
	nullTag  = "!!null"
	boolTag  = "!!bool"
	intTag   = "!!int"
	floatTag = "!!float"
	mergeTag = "!!merge"
)

// Plain number forms of the YAML 1.2 core schema. The decoder also accepts
// YAML 1.1 forms (0b101, 1_000, 017 as octal) that the core schema leaves
// as strings or reads as decimal.
var (
	coreDecimal = regexp.MustCompile(`^[-+]?[0-9]+$`)
	coreOctal   = regexp.MustCompile(`^0o[0-7]+$`)
	coreHex     = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	coreFloat   = regexp.MustCompile(`^[-+]?(\.[0-9]+|[0-9]+(\.[0-9]*)?)([eE][-+]?[0-9]+)?$`)
	coreInf     = regexp.MustCompile(`^[-+]?\.(inf|Inf|INF)$`)
	coreNaN     = regexp.MustCompile(`^\.(nan|NaN|NAN)$`)
)

// parseDocument parses src as a single YAML document. It returns a nil
// node for an empty stream.
func parseDocument(src []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var extra yaml.Node
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return &doc, nil
	case err != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("line %d: input contains more than one document", extra.Line)
	}
}

// encoder writes a YAML node tree as JSON, keeping mapping order.
type encoder struct {
	e      *jx.Encoder
	values int
	// active holds anchored nodes currently being expanded through an alias.
	active map[*yaml.Node]bool
}

func newEncoder(indent int) *encoder {
	e := &jx.Encoder{}
	if indent > 0 {
		e.SetIdent(indent)
	}
	return &encoder{e: e, active: make(map[*yaml.Node]bool)}
}

// encodeDocument serialises doc, which may be nil for an empty stream.
func encodeDocument(doc *yaml.Node, indent int) ([]byte, error) {
	enc := newEncoder(indent)
	if doc == nil {
		enc.e.Null()
	} else if err := enc.node(doc); err != nil {
		return nil, err
	}
	return enc.e.Bytes(), nil
}

func (enc *encoder) node(n *yaml.Node) error {
	enc.values++
	if enc.values > maxValues {
		return fmt.Errorf("document expands beyond %d values", maxValues)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			enc.e.Null()
			return nil
		}
		return enc.node(n.Content[0])
	case yaml.MappingNode:
		return enc.mapping(n)
	case yaml.SequenceNode:
		enc.e.ArrStart()
		for _, item := range n.Content {
			if err := enc.node(item); err != nil {
				return err
			}
		}
		enc.e.ArrEnd()
		return nil
	case yaml.ScalarNode:
		return enc.scalar(n)
	case yaml.AliasNode:
		return enc.alias(n)
	default:
		return fmt.Errorf("line %d: unsupported node kind %v", n.Line, n.Kind)
	}
}

func (enc *encoder) alias(n *yaml.Node) error {
	target, err := enc.enter(n)
	if err != nil {
		return err
	}
	defer delete(enc.active, target)
	return enc.node(target)
}

// enter marks the anchor an alias points at as being expanded.
func (enc *encoder) enter(n *yaml.Node) (*yaml.Node, error) {
	target := n.Alias
	if target == nil {
		return nil, fmt.Errorf("line %d: unknown anchor %q", n.Line, n.Value)
	}
	if enc.active[target] {
		return nil, fmt.Errorf("line %d: alias *%s refers to a value that contains it", n.Line, n.Value)
	}
	enc.active[target] = true
	return target, nil
}

type field struct {
	key   string
	value *yaml.Node
}

func (enc *encoder) mapping(n *yaml.Node) error {
	fields, err := enc.fields(n)
	if err != nil {
		return err
	}
	enc.e.ObjStart()
	for _, f := range fields {
		enc.e.FieldStart(f.key)
		if err := enc.node(f.value); err != nil {
			return err
		}
	}
	enc.e.ObjEnd()
	return nil
}

// fields flattens a mapping into ordered key/value pairs. Merge keys are
// expanded in place; explicit keys override merged ones and earlier merge
// sources override later ones.
func (enc *encoder) fields(n *yaml.Node) ([]field, error) {
	if len(n.Content)%2 != 0 {
		return nil, fmt.Errorf("line %d: mapping has an odd number of nodes", n.Line)
	}

	keys := make([]string, len(n.Content)/2)
	explicit := make(map[string]bool, len(keys))
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i]
		if isMerge(k) {
			continue
		}
		key, err := mappingKey(k)
		if err != nil {
			return nil, err
		}
		if explicit[key] {
			return nil, fmt.Errorf("line %d: mapping key %q already defined", k.Line, key)
		}
		explicit[key] = true
		keys[i/2] = key
	}

	out := make([]field, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if !isMerge(k) {
			seen[keys[i/2]] = true
			out = append(out, field{key: keys[i/2], value: v})
			continue
		}
		merged, err := enc.merge(v)
		if err != nil {
			return nil, err
		}
		for _, f := range merged {
			if explicit[f.key] || seen[f.key] {
				continue
			}
			seen[f.key] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// merge returns the fields contributed by the value of a "<<" key: a
// mapping, an alias to one, or a sequence of those.
func (enc *encoder) merge(v *yaml.Node) ([]field, error) {
	switch v.Kind {
	case yaml.MappingNode:
		return enc.fields(v)
	case yaml.AliasNode:
		target, err := enc.enter(v)
		if err != nil {
			return nil, err
		}
		defer delete(enc.active, target)
		if target.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: merge alias *%s does not refer to a mapping", v.Line, v.Value)
		}
		return enc.fields(target)
	case yaml.SequenceNode:
		var out []field
		seen := make(map[string]bool)
		for _, item := range v.Content {
			if item.Kind != yaml.MappingNode && item.Kind != yaml.AliasNode {
				return nil, fmt.Errorf("line %d: merge sequence items must be mappings", item.Line)
			}
			fields, err := enc.merge(item)
			if err != nil {
				return nil, err
			}
			for _, f := range fields {
				if seen[f.key] {
					continue
				}
				seen[f.key] = true
				out = append(out, f)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", v.Line)
	}
}

func isMerge(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.ShortTag() == mergeTag
}

// mappingKey returns the JSON object key for a YAML key node: the literal
// text of a scalar, following a single alias.
func mappingKey(k *yaml.Node) (string, error) {
	n := k
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
	}
	return n.Value, nil
}

func (enc *encoder) scalar(n *yaml.Node) error {
	tag := n.ShortTag()
	if n.Style&yaml.TaggedStyle == 0 && (tag == intTag || tag == floatTag) {
		enc.plainNumber(n.Value)
		return nil
	}

	switch tag {
	case nullTag:
		enc.e.Null()
	case boolTag:
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		enc.e.Bool(b)
	case intTag:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		switch x := v.(type) {
		case int:
			enc.e.Int64(int64(x))
		case int64:
			enc.e.Int64(x)
		case uint64:
			enc.e.Raw(strconv.AppendUint(nil, x, 10))
		case float64:
			enc.float(x)
		default:
			enc.e.Str(n.Value)
		}
	case floatTag:
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		enc.float(f)
	default:
		enc.e.Str(n.Value)
	}
	return nil
}

// plainNumber writes an untagged numeric scalar as the core schema
// resolves it. Integers of any size are written exactly. Text the core
// schema does not read as a number is written as a string.
func (enc *encoder) plainNumber(v string) {
	switch {
	case coreDecimal.MatchString(v):
		enc.integer(v, v, 10)
	case coreOctal.MatchString(v):
		enc.integer(v, v[2:], 8)
	case coreHex.MatchString(v):
		enc.integer(v, v[2:], 16)
	case coreInf.MatchString(v), coreNaN.MatchString(v):
		enc.e.Null()
	case coreFloat.MatchString(v):
		f, err := strconv.ParseFloat(v, 64)
		if err != nil && !math.IsInf(f, 0) {
			enc.e.Str(v)
			return
		}
		enc.float(f)
	default:
		enc.e.Str(v)
	}
}

func (enc *encoder) integer(v, digits string, base int) {
	i, ok := new(big.Int).SetString(digits, base)
	if !ok {
		enc.e.Str(v)
		return
	}
	enc.e.Raw(i.Append(nil, 10))
}

// float writes f the way JSON.stringify does: NaN and infinities become
// null, negative zero becomes 0.
func (enc *encoder) float(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		enc.e.Null()
		return
	}
	enc.e.Raw(appendFloat(nil, f))
}

// appendFloat formats f in the shortest form that round-trips, switching
// to exponent notation outside [1e-6, 1e21) as encoding/json does.
func appendFloat(b []byte, f float64) []byte {
	if f == 0 {
		return append(b, '0')
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	b = strconv.AppendFloat(b, f, format, -1, 64)
	if format == 'e' {
		// e-09 → e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return b
}
