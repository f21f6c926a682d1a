package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/arthur-debert/nanoquery/types"
)

// MsgPack format implementation
// Encoding: map of collection name to array of maps, attribute order kept
// Decoding: any msgpack value; maps keep wire order, bin decodes as a string
var MsgPack = &DatasetFormat{
	Name:       "msgpack",
	Extensions: []string{".msgpack", ".mpk"},
	Encode: func(d types.Dataset) ([]byte, error) {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		if err := encodeValue(enc, types.Object(d.Record())); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	},
	Decode: func(data []byte) (types.Value, error) {
		if len(data) == 0 {
			return types.Null(), nil
		}
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		v, err := decodeValue(dec)
		if err != nil {
			return types.Value{}, err
		}
		if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
			return types.Value{}, fmt.Errorf("trailing data after msgpack value")
		}
		return v, nil
	},
}

func init() {
	if err := Register(MsgPack); err != nil {
		panic(fmt.Sprintf("failed to register msgpack format: %v", err))
	}
}

func encodeValue(enc *msgpack.Encoder, v types.Value) error {
	switch v.Kind() {
	case types.KindBool:
		b, _ := v.AsBool()
		return enc.EncodeBool(b)
	case types.KindNumber:
		n, _ := v.AsNumber()
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return enc.EncodeInt(int64(n))
		}
		return enc.EncodeFloat64(n)
	case types.KindString:
		s, _ := v.AsString()
		return enc.EncodeString(s)
	case types.KindList:
		items, _ := v.AsList()
		if err := enc.EncodeArrayLen(len(items)); err != nil {
			return err
		}
		for _, item := range items {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	case types.KindRecord:
		rec, _ := v.AsRecord()
		if err := enc.EncodeMapLen(rec.Len()); err != nil {
			return err
		}
		var err error
		rec.Range(func(key string, item types.Value) bool {
			if err = enc.EncodeString(key); err != nil {
				return false
			}
			err = encodeValue(enc, item)
			return err == nil
		})
		return err
	default:
		return enc.EncodeNil()
	}
}

func decodeValue(dec *msgpack.Decoder) (types.Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return types.Value{}, err
	}

	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return types.Value{}, err
		}
		rec := types.NewRecord()
		for i := 0; i < n; i++ {
			key, err := decodeKey(dec)
			if err != nil {
				return types.Value{}, err
			}
			item, err := decodeValue(dec)
			if err != nil {
				return types.Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			rec.Set(key, item)
		}
		return types.Object(rec), nil

	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return types.Value{}, err
		}
		items := make([]types.Value, n)
		for i := range items {
			if items[i], err = decodeValue(dec); err != nil {
				return types.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
		}
		return types.List(items...), nil
	}

	x, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return types.Value{}, err
	}
	if b, ok := x.([]byte); ok {
		return types.String(string(b)), nil
	}
	return types.FromInterface(x)
}

// decodeKey reads a map key; non-string keys use their printed form
func decodeKey(dec *msgpack.Decoder) (string, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return "", err
	}
	if msgpcode.IsString(code) {
		return dec.DecodeString()
	}
	x, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return "", err
	}
	if b, ok := x.([]byte); ok {
		return string(b), nil
	}
	return fmt.Sprint(x), nil
}
