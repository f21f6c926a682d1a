package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decoding goes through yaml.v3 nodes for both JSON and YAML input: JSON is
// valid YAML and the node tree keeps mapping order, which sort clauses and
// and/or lists rely on.

// ParseValue decodes a JSON or YAML document into a Value
func ParseValue(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Value{}, fmt.Errorf("failed to parse document: %w", err)
	}
	return ValueFromNode(&node)
}

// ParseRecord decodes a JSON or YAML object into a Record
func ParseRecord(data []byte) (*Record, error) {
	v, err := ParseValue(data)
	if err != nil {
		return nil, err
	}
	rec, ok := v.AsRecord()
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", v.Kind())
	}
	return rec, nil
}

// ValueFromNode converts a yaml.v3 node tree into a Value
func ValueFromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case 0:
		return Value{}, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return ValueFromNode(n.Content[0])
	case yaml.AliasNode:
		return ValueFromNode(n.Alias)
	case yaml.MappingNode:
		rec := NewRecord()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := ValueFromNode(n.Content[i+1])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			rec.Set(key, v)
		}
		return Object(rec), nil
	case yaml.SequenceNode:
		out := make([]Value, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := ValueFromNode(c)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, v)
		}
		return List(out...), nil
	case yaml.ScalarNode:
		return scalarFromNode(n)
	default:
		return Value{}, fmt.Errorf("unsupported node kind %d", n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}

// NodeFromValue converts a Value into a yaml.v3 node tree
func NodeFromValue(v Value) *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindNumber:
		if v.n == math.Trunc(v.n) && !math.IsInf(v.n, 0) && math.Abs(v.n) < 1e15 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(v.n), 10)}
		}
		switch {
		case math.IsNaN(v.n):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}
		case math.IsInf(v.n, 1):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}
		case math.IsInf(v.n, -1):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.n, 'g', -1, 64)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.list {
			n.Content = append(n.Content, NodeFromValue(e))
		}
		return n
	case KindRecord:
		return v.rec.node()
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func (r *Record) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	r.Range(func(k string, v Value) bool {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			NodeFromValue(v))
		return true
	})
	return n
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return []byte("null"), nil
		}
		return []byte(FormatNumber(v.n)), nil
	case KindString:
		return json.Marshal(v.s)
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindRecord:
		return v.rec.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v Value) MarshalYAML() (interface{}, error) {
	return NodeFromValue(v), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ValueFromNode(node)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON writes attributes in record order
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		data, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps attribute order from the input
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := ParseRecord(data)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (r *Record) MarshalYAML() (interface{}, error) {
	return r.node(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	v, err := ValueFromNode(node)
	if err != nil {
		return err
	}
	rec, ok := v.AsRecord()
	if !ok {
		return fmt.Errorf("expected a mapping, got %s", v.Kind())
	}
	*r = *rec
	return nil
}
