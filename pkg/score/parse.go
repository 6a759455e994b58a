package score

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotAList is returned when QA input is not a list.
var ErrNotAList = errors.New("qa pairs must be a list")

// ParsePairs decodes a loosely typed JSON list of QA pairs.
// Entries that are not objects, and fields that are not strings, are
// treated as missing rather than rejected. Null or empty input yields no pairs.
func ParsePairs(raw json.RawMessage) ([]QAPair, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []QAPair{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAList, err)
	}

	return PairsFromMaps(decodeObjects(items)), nil
}

// PairsFromMaps converts generic key/value entries into QA pairs.
func PairsFromMaps(items []map[string]any) []QAPair {
	pairs := make([]QAPair, 0, len(items))
	for _, m := range items {
		pairs = append(pairs, QAPair{
			Question: stringField(m, "question"),
			Answer:   stringField(m, "answer"),
		})
	}
	return pairs
}

func decodeObjects(items []json.RawMessage) []map[string]any {
	list := make([]map[string]any, 0, len(items))
	for _, item := range items {
		var m map[string]any
		if err := json.Unmarshal(item, &m); err != nil || m == nil {
			continue
		}
		list = append(list, m)
	}
	return list
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
