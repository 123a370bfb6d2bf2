package servingstmt

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx/jsonx"
)

// JSON keys of the feature store REST representation.
const (
	KeyFeatureGroupID              = "featureGroupId"
	KeyPreparedStatementIndex      = "preparedStatementIndex"
	KeyPreparedStatementParameters = "preparedStatementParameters"
	KeyQueryOnline                 = "queryOnline"
	KeyPrefix                      = "prefix"

	KeyParameterName  = "name"
	KeyParameterIndex = "index"
)

type wireStatement struct {
	FeatureGroupID              *int                           `json:"featureGroupId,omitempty"`
	PreparedStatementIndex      *int                           `json:"preparedStatementIndex,omitempty"`
	PreparedStatementParameters *[]*PreparedStatementParameter `json:"preparedStatementParameters,omitempty"`
	QueryOnline                 *string                        `json:"queryOnline,omitempty"`
	Prefix                      *string                        `json:"prefix,omitempty"`
}

type wireParameter struct {
	Name  *string `json:"name,omitempty"`
	Index *int    `json:"index,omitempty"`
}

// MarshalJSON encodes the set attributes only. An empty, non nil, parameter list is encoded as [].
func (s ServingPreparedStatement) MarshalJSON() ([]byte, error) {
	w := wireStatement{
		FeatureGroupID:         s.FeatureGroupID,
		PreparedStatementIndex: s.PreparedStatementIndex,
		QueryOnline:            s.QueryOnline,
		Prefix:                 s.Prefix,
	}
	if s.PreparedStatementParameters != nil {
		w.PreparedStatementParameters = &s.PreparedStatementParameters
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes a JSON object by key. Keys that are not attributes of the statement are
// skipped. A known key holding null, or a value of the wrong type, leaves its attribute unset.
// Only a document that is not a JSON object is an error.
func (s *ServingPreparedStatement) UnmarshalJSON(data []byte) error {
	members, err := jsonx.ParseObject(data)
	if err != nil {
		return errorx.NewGeneralErrorWrapper(err, "invalid serving prepared statement")
	}

	*s = ServingPreparedStatement{}

	for key, raw := range members {
		switch key {
		case KeyFeatureGroupID:
			s.FeatureGroupID = decodeOptional[int](key, raw)
		case KeyPreparedStatementIndex:
			s.PreparedStatementIndex = decodeOptional[int](key, raw)
		case KeyPreparedStatementParameters:
			s.PreparedStatementParameters = decodeParameters(raw)
		case KeyQueryOnline:
			s.QueryOnline = decodeOptional[string](key, raw)
		case KeyPrefix:
			s.Prefix = decodeOptional[string](key, raw)
		}
	}

	return nil
}

// MarshalJSON encodes a nil parameter as null, keeping its position in the list.
func (p *PreparedStatementParameter) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}

	return json.Marshal(wireParameter{Name: p.Name, Index: p.Index})
}

// UnmarshalJSON decodes a parameter with the same leniency as ServingPreparedStatement.UnmarshalJSON.
func (p *PreparedStatementParameter) UnmarshalJSON(data []byte) error {
	members, err := jsonx.ParseObject(data)
	if err != nil {
		return errorx.NewGeneralErrorWrapper(err, "invalid prepared statement parameter")
	}

	*p = PreparedStatementParameter{}

	for key, raw := range members {
		switch key {
		case KeyParameterName:
			p.Name = decodeOptional[string](key, raw)
		case KeyParameterIndex:
			p.Index = decodeOptional[int](key, raw)
		}
	}

	return nil
}

// Decode decodes a single statement, ignoring unknown keys.
func Decode(data []byte) (*ServingPreparedStatement, error) {
	return jsonx.ParseJSONIntoStruct(data, NewEmpty())
}

// Encode is the counterpart of Decode. A nil statement is encoded as null.
func Encode(s *ServingPreparedStatement) ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	return s.MarshalJSON()
}

// DecodeParameters decodes a JSON array of parameters with the leniency of Decode; null yields nil.
func DecodeParameters(data []byte) ([]*PreparedStatementParameter, error) {
	if jsonx.IsNull(data) {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errorx.NewGeneralErrorWrapper(err, "invalid prepared statement parameters")
	}

	return decodeParameterItems(items), nil
}

// decodeOptional returns nil for null and for values that do not fit T.
func decodeOptional[T any](key string, raw json.RawMessage) *T {
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		logx.GetLogger().LogDebug(context.TODO(), fmt.Sprintf("ignoring malformed value of '%s': %s", key, err.Error()))
		return nil
	}

	return v
}

// decodeParameters keeps the positions of the array: a null or malformed element becomes a nil parameter.
func decodeParameters(raw json.RawMessage) []*PreparedStatementParameter {
	if jsonx.IsNull(raw) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		logx.GetLogger().LogDebug(context.TODO(), fmt.Sprintf("ignoring malformed value of '%s': %s", KeyPreparedStatementParameters, err.Error()))
		return nil
	}

	return decodeParameterItems(items)
}

func decodeParameterItems(items []json.RawMessage) []*PreparedStatementParameter {
	parameters := make([]*PreparedStatementParameter, 0, len(items))
	for i, item := range items {
		if jsonx.IsNull(item) {
			parameters = append(parameters, nil)
			continue
		}

		parameter := &PreparedStatementParameter{}
		if err := parameter.UnmarshalJSON(item); err != nil {
			logx.GetLogger().LogDebug(context.TODO(), fmt.Sprintf("ignoring malformed parameter %d: %s", i, err.Error()))
			parameter = nil
		}
		parameters = append(parameters, parameter)
	}

	return parameters
}
