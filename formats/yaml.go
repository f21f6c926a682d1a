package formats

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/nanoquery/types"
)

// YAML format implementation
// Encoding: block-style mapping of collection name to sequence of records
// Decoding: any YAML document; mapping order is kept
var YAML = &DatasetFormat{
	Name:       "yaml",
	Extensions: []string{".yaml", ".yml"},
	Encode: func(d types.Dataset) ([]byte, error) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d.Record()); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	},
	Decode: types.ParseValue,
}

func init() {
	if err := Register(YAML); err != nil {
		panic(fmt.Sprintf("failed to register YAML format: %v", err))
	}
}
