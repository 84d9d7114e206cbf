package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SaveJSON stores v under key as JSON.
func SaveJSON(p Provider, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return p.Put(key, string(data))
}

// LoadJSON decodes the value stored under key into v. It reports false
// without error when nothing is stored.
func LoadJSON(p Provider, key string, v any) (bool, error) {
	raw, err := p.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
