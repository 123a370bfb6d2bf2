package jsonx

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ParseJSONIntoStruct unmarshals the JSON data through the target's own UnmarshalJSON.
// target needs to be a pointer to a struct
func ParseJSONIntoStruct[T json.Unmarshaler](jsonData []byte, target T) (T, error) {
	if err := target.UnmarshalJSON(jsonData); err != nil {
		return target, errors.WithMessage(err, "failed to unmarshal JSON data")
	}

	return target, nil
}

// ParseObject splits a JSON object into its raw members. A JSON null yields a nil map.
func ParseObject(jsonData []byte) (map[string]json.RawMessage, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(jsonData, &members); err != nil {
		return nil, errors.WithMessage(err, "expected a JSON object")
	}

	return members, nil
}

// IsNull reports whether raw is the JSON literal null.
func IsNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// MarshalIndent encodes v as indented JSON terminated by a newline.
func MarshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.WithMessage(err, "failed to marshal JSON data")
	}

	return append(data, '\n'), nil
}
