package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// fieldsKey is the top-level key holding the descriptor list in field files
const fieldsKey = "fields"

// LoadFile reads field descriptors from a YAML, JSON or TOML file. The list
// lives under a top-level "fields" key; JSON files may also hold a bare
// array.
func LoadFile(path string) ([]ExtractField, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read field file: %w", err)
		}
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			return ParseJSON(data)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read field file %s: %w", path, err)
	}
	if !v.IsSet(fieldsKey) {
		return nil, fmt.Errorf("field file %s has no %q key", path, fieldsKey)
	}

	var out []ExtractField
	if err := v.UnmarshalKey(fieldsKey, &out); err != nil {
		return nil, fmt.Errorf("failed to decode fields in %s: %w", path, err)
	}
	return out, nil
}

// ParseJSON decodes descriptors given either as a JSON array or as an
// object with a "fields" array.
func ParseJSON(data []byte) ([]ExtractField, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty field list")
	}

	var out []ExtractField
	if data[0] == '[' {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("invalid field list: %w", err)
		}
		return out, nil
	}

	var wrapped struct {
		Fields []ExtractField `json:"fields"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("invalid field list: %w", err)
	}
	return wrapped.Fields, nil
}
