package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/choicegen/internal/ir"
)

// marshalConfig converts a run configuration to canonical JSON TEXT.
func marshalConfig(cfg map[string]any) (string, error) {
	if cfg == nil {
		cfg = map[string]any{}
	}
	data, err := ir.MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// unmarshalConfig parses canonical JSON TEXT back into a configuration map.
// Integers decode as int64 so a re-hash yields the same config hash.
func unmarshalConfig(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for k, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("unmarshal config: %s: %w", k, err)
		}
		raw[k] = i
	}
	return raw, nil
}
