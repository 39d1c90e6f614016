package cart

import (
	"bytes"
	"encoding/json"
)

// Encode serialises the cart list for a Store.
func Encode(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// Decode parses a stored snapshot. Empty payloads are an empty cart; decoded lines are
// normalised so a hand-edited or stale blob cannot break the one-line-per-id rule.
func Decode(payload []byte) ([]Line, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Line{}, nil
	}
	var lines []Line
	if err := json.Unmarshal(trimmed, &lines); err != nil {
		return nil, err
	}
	return Normalize(lines), nil
}
