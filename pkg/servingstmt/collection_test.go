package servingstmt_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeListEnvelope(t *testing.T) {
	payload := `{
		"href": "https://hopsworks/api/featurestores/67/featureview/fv/version/1/preparedstatement",
		"type": "servingPreparedStatementDTO",
		"count": 2,
		"items": [
			{"featureGroupId": 13, "preparedStatementIndex": 0, "queryOnline": "SELECT a FROM fg13 WHERE id = ?", "unknown": true},
			{"featureGroupId": 14, "preparedStatementIndex": 1, "queryOnline": "SELECT b FROM fg14 WHERE id = ?"}
		]
	}`

	stmts, err := servingstmt.DecodeList([]byte(payload))
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, 13, *stmts[0].GetFeatureGroupID())
	assert.Equal(t, 14, *stmts[1].GetFeatureGroupID())
}

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []*servingstmt.ServingPreparedStatement
	}{
		{name: "empty envelope", payload: `{"count": 0}`, want: []*servingstmt.ServingPreparedStatement{}},
		{name: "null items", payload: `{"count": 0, "items": null}`, want: []*servingstmt.ServingPreparedStatement{}},
		{name: "bare array", payload: ` [{"preparedStatementIndex": 3}, null, 5] `, want: []*servingstmt.ServingPreparedStatement{
			servingstmt.NewBuilder().PreparedStatementIndex(3).Build(),
		}},
		{name: "single statement", payload: `{"preparedStatementIndex": 0, "prefix": "p_"}`, want: []*servingstmt.ServingPreparedStatement{
			servingstmt.NewBuilder().PreparedStatementIndex(0).Prefix("p_").Build(),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := servingstmt.DecodeList([]byte(tt.payload))
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, got))
		})
	}
}

func TestDecodeListErrors(t *testing.T) {
	for _, payload := range []string{``, `   `, `"x"`, `{"items": {}}`, `[`} {
		_, err := servingstmt.DecodeList([]byte(payload))
		assert.Error(t, err, payload)
	}
}

func TestCollectionEncoding(t *testing.T) {
	data, err := json.Marshal(servingstmt.NewCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"items":[]}`, string(data))

	items := []*servingstmt.ServingPreparedStatement{
		servingstmt.NewBuilder().PreparedStatementIndex(0).QueryOnline("SELECT 1").Build(),
		servingstmt.NewBuilder().PreparedStatementIndex(1).Build(),
	}
	data, err = json.Marshal(servingstmt.NewCollection(items))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2,"items":[{"preparedStatementIndex":0,"queryOnline":"SELECT 1"},{"preparedStatementIndex":1}]}`, string(data))

	decoded, err := servingstmt.DecodeList(data)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(items, decoded))
}

func TestSortByIndex(t *testing.T) {
	stmts := []*servingstmt.ServingPreparedStatement{
		servingstmt.NewBuilder().PreparedStatementIndex(2).Prefix("c").Build(),
		servingstmt.NewBuilder().Prefix("unset1").Build(),
		servingstmt.NewBuilder().PreparedStatementIndex(0).Prefix("a").Build(),
		nil,
		servingstmt.NewBuilder().PreparedStatementIndex(1).Prefix("b").Build(),
		servingstmt.NewBuilder().Prefix("unset2").Build(),
	}

	servingstmt.SortByIndex(stmts)

	got := []string{}
	for _, s := range stmts {
		if s == nil {
			got = append(got, "<nil>")
			continue
		}
		got = append(got, *s.GetPrefix())
	}
	assert.Equal(t, []string{"a", "b", "c", "unset1", "<nil>", "unset2"}, got)
	assert.Equal(t, 0, *stmts[0].GetPreparedStatementIndex())
	assert.Equal(t, utilx.Ptr(2), stmts[2].GetPreparedStatementIndex())
}
