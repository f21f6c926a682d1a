package formats

import (
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/nanoquery/types"
)

// JSON format implementation
// Encoding: indented JSON object of collection name to array of records
// Decoding: any JSON document; key order is kept
var JSON = &DatasetFormat{
	Name:       "json",
	Extensions: []string{".json"},
	Encode: func(d types.Dataset) ([]byte, error) {
		data, err := json.MarshalIndent(d.Record(), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	},
	Decode: func(data []byte) (types.Value, error) {
		if !json.Valid(data) {
			return types.Value{}, fmt.Errorf("invalid JSON document")
		}
		return types.ParseValue(data)
	},
}

func init() {
	if err := Register(JSON); err != nil {
		panic(fmt.Sprintf("failed to register JSON format: %v", err))
	}
}
