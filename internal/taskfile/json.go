package taskfile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

func decodeJSON(data []byte) (*File, error) {
	data = bytes.TrimSpace(data)
	var doc document
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &doc.Tasks); err != nil {
			return nil, fmt.Errorf("decode json tasks: %w", err)
		}
		return fromDocument(doc), nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json tasks: %w", err)
	}
	return fromDocument(doc), nil
}
