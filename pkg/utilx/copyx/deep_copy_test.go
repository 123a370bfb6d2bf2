package copyx_test

import (
	"testing"

	"github.com/marcodd23/go-serving-stmt/pkg/utilx/copyx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type param struct {
	Name  *string
	Index int
}

type record struct {
	ID     *int
	Params []*param
	Labels map[string][]string
	Any    any
	hidden string
}

func TestOfSharesNothing(t *testing.T) {
	id, name := 7, "customer_id"
	src := &record{
		ID:     &id,
		Params: []*param{{Name: &name, Index: 0}, nil},
		Labels: map[string][]string{"team": {"risk"}},
		Any:    &param{Index: 3},
		hidden: "not copied",
	}

	dst := copyx.Of(src)
	require.NotNil(t, dst)

	assert.Equal(t, 7, *dst.ID)
	assert.NotSame(t, src.ID, dst.ID)
	require.Len(t, dst.Params, 2)
	assert.NotSame(t, src.Params[0], dst.Params[0])
	assert.NotSame(t, src.Params[0].Name, dst.Params[0].Name)
	assert.Nil(t, dst.Params[1])
	assert.Empty(t, dst.hidden)

	*src.ID = 8
	*src.Params[0].Name = "changed"
	src.Labels["team"][0] = "changed"
	src.Any.(*param).Index = 4

	assert.Equal(t, 7, *dst.ID)
	assert.Equal(t, "customer_id", *dst.Params[0].Name)
	assert.Equal(t, []string{"risk"}, dst.Labels["team"])
	assert.Equal(t, 3, dst.Any.(*param).Index)
}

func TestOfKeepsNilAndEmpty(t *testing.T) {
	assert.Nil(t, copyx.Of[record](nil))

	dst := copyx.Of(&record{Params: []*param{}})
	assert.Nil(t, dst.ID)
	assert.NotNil(t, dst.Params)
	assert.Empty(t, dst.Params)
	assert.Nil(t, dst.Labels)
}
