package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/marcodd23/go-serving-stmt/pkg/catalog"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	batches []bool
	views   map[string][]*servingstmt.ServingPreparedStatement
}

func (f *fakeSource) GetServingPreparedStatements(_ context.Context, fsID int, name string, version int, batch bool) ([]*servingstmt.ServingPreparedStatement, error) {
	f.mu.Lock()
	f.batches = append(f.batches, batch)
	f.mu.Unlock()

	view := catalog.FeatureView{FeatureStoreID: fsID, Name: name, Version: version}
	stmts, ok := f.views[view.String()]
	if !ok {
		return nil, errors.New("feature view not found")
	}

	return stmts, nil
}

func TestSyncerSync(t *testing.T) {
	ctx := context.Background()

	transactions := catalog.FeatureView{FeatureStoreID: 67, Name: "transactions", Version: 1}
	orders := catalog.FeatureView{FeatureStoreID: 67, Name: "orders", Version: 2}
	invalid := catalog.FeatureView{FeatureStoreID: 67, Name: "invalid", Version: 1}
	missing := catalog.FeatureView{FeatureStoreID: 67, Name: "missing", Version: 1}

	source := &fakeSource{views: map[string][]*servingstmt.ServingPreparedStatement{
		transactions.String(): {
			servingstmt.NewBuilder().FeatureGroupID(13).PreparedStatementIndex(1).Build(),
			servingstmt.NewBuilder().FeatureGroupID(12).PreparedStatementIndex(0).Build(),
		},
		orders.String(): {},
		invalid.String(): {
			servingstmt.NewBuilder().PreparedStatementIndex(-1).Build(),
		},
	}}
	store := catalog.NewMemoryStore()

	results := catalog.NewSyncer(source, store, 2).Sync(ctx, []catalog.FeatureView{transactions, orders, invalid, missing}, true)
	require.Len(t, results, 4)

	assert.Equal(t, transactions, results[0].View)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Count)

	assert.Equal(t, orders, results[1].View)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 0, results[1].Count)

	assert.Error(t, results[2].Err)
	assert.EqualError(t, results[3].Err, "feature view not found")

	stored, err := store.List(ctx, transactions)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 0, *stored[0].GetPreparedStatementIndex(), "statements are stored by index")

	stored, err = store.List(ctx, invalid)
	require.NoError(t, err)
	assert.Empty(t, stored)

	assert.Equal(t, []bool{true, true, true, true}, source.batches)
}

func TestSyncerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view := catalog.FeatureView{FeatureStoreID: 1, Name: "fv", Version: 1}
	results := catalog.NewSyncer(&fakeSource{}, catalog.NewMemoryStore(), 1).Sync(ctx, []catalog.FeatureView{view}, false)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestParseFeatureView(t *testing.T) {
	view, err := catalog.ParseFeatureView("67/transactions/v3")
	require.NoError(t, err)
	assert.Equal(t, catalog.FeatureView{FeatureStoreID: 67, Name: "transactions", Version: 3}, view)

	parsed, err := catalog.ParseFeatureView(view.String())
	require.NoError(t, err)
	assert.Equal(t, view, parsed)

	view, err = catalog.ParseFeatureView("67/transactions/3")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Version)

	for _, ref := range []string{"transactions", "fs/transactions/1", "67/transactions/latest", "67/a/b/1"} {
		_, err := catalog.ParseFeatureView(ref)
		assert.Error(t, err, ref)
	}
}

// cancellingStore cancels the sync right after a successful write.
type cancellingStore struct {
	catalog.Store
	cancel context.CancelFunc
}

func (s cancellingStore) Replace(ctx context.Context, view catalog.FeatureView, stmts []*servingstmt.ServingPreparedStatement) error {
	if err := s.Store.Replace(ctx, view, stmts); err != nil {
		return err
	}
	s.cancel()

	return nil
}

func TestSyncerReportsViewStoredBeforeCancellation(t *testing.T) {
	view := catalog.FeatureView{FeatureStoreID: 67, Name: "transactions", Version: 1}
	source := &fakeSource{views: map[string][]*servingstmt.ServingPreparedStatement{
		view.String(): {servingstmt.NewBuilder().PreparedStatementIndex(0).Build()},
	}}

	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		store := cancellingStore{Store: catalog.NewMemoryStore(), cancel: cancel}

		results := catalog.NewSyncer(source, store, 1).Sync(ctx, []catalog.FeatureView{view}, false)
		cancel()

		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.Equal(t, 1, results[0].Count)
	}
}
