package servingstmt

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-json"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx/jsonx"
)

// Envelope keys of a feature store collection response.
const (
	KeyHref  = "href"
	KeyCount = "count"
	KeyItems = "items"
)

// Collection is the REST envelope the feature store wraps lists of statements in.
type Collection struct {
	Href  string                      `json:"href,omitempty"`
	Count int                         `json:"count"`
	Items []*ServingPreparedStatement `json:"items"`
}

// NewCollection wraps items, keeping their order. Count always matches len(Items).
func NewCollection(items []*ServingPreparedStatement) *Collection {
	if items == nil {
		items = []*ServingPreparedStatement{}
	}

	return &Collection{Count: len(items), Items: items}
}

// DecodeList decodes the statements of a feature view response. It accepts:
//   - an envelope object carrying "count" and/or "items" (a count of 0 or missing items yields an empty list),
//   - a bare JSON array of statements,
//   - a single statement object.
//
// Items that are null or not objects are skipped; unknown keys are ignored at every level.
func DecodeList(data []byte) ([]*ServingPreparedStatement, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errorx.NewGeneralError("empty serving prepared statement payload")
	}

	switch trimmed[0] {
	case '[':
		return decodeItems(trimmed)
	case '{':
		members, err := jsonx.ParseObject(trimmed)
		if err != nil {
			return nil, errorx.NewGeneralErrorWrapper(err, "invalid serving prepared statement payload")
		}

		items, hasItems := members[KeyItems]
		_, hasCount := members[KeyCount]
		if !hasItems && !hasCount {
			stmt, err := Decode(trimmed)
			if err != nil {
				return nil, err
			}

			return []*ServingPreparedStatement{stmt}, nil
		}

		if !hasItems || jsonx.IsNull(items) {
			return []*ServingPreparedStatement{}, nil
		}

		return decodeItems(items)
	default:
		return nil, errorx.NewGeneralError("serving prepared statement payload must be a JSON object or array")
	}
}

func decodeItems(data []byte) ([]*ServingPreparedStatement, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errorx.NewGeneralErrorWrapper(err, "invalid list of serving prepared statements")
	}

	stmts := make([]*ServingPreparedStatement, 0, len(items))
	for i, item := range items {
		if jsonx.IsNull(item) {
			continue
		}

		stmt, err := Decode(item)
		if err != nil {
			logx.GetLogger().LogDebug(context.TODO(), fmt.Sprintf("skipping item %d: %s", i, err.Error()))
			continue
		}
		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

// SortByIndex orders statements by PreparedStatementIndex, in place and stably.
// Statements without an index keep their relative order after the indexed ones.
func SortByIndex(stmts []*ServingPreparedStatement) {
	slices.SortStableFunc(stmts, func(a, b *ServingPreparedStatement) int {
		ai, bi := indexOf(a), indexOf(b)
		switch {
		case ai == nil && bi == nil:
			return 0
		case ai == nil:
			return 1
		case bi == nil:
			return -1
		default:
			return *ai - *bi
		}
	})
}

func indexOf(s *ServingPreparedStatement) *int {
	if s == nil {
		return nil
	}

	return s.PreparedStatementIndex
}
