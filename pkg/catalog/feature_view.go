package catalog

import (
	"context"
	"fmt"

	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
)

// FeatureView identifies the set of serving prepared statements of one feature view version.
type FeatureView struct {
	FeatureStoreID int    `validate:"gte=0"`
	Name           string `validate:"required"`
	Version        int    `validate:"gte=1"`
}

func (fv FeatureView) String() string {
	return fmt.Sprintf("%d/%s/v%d", fv.FeatureStoreID, fv.Name, fv.Version)
}

// Store keeps the serving prepared statements of feature views.
//
// List returns the statements in the order they were given to Replace, and an empty (non nil)
// slice for an unknown feature view.
type Store interface {
	Replace(ctx context.Context, view FeatureView, stmts []*servingstmt.ServingPreparedStatement) error
	List(ctx context.Context, view FeatureView) ([]*servingstmt.ServingPreparedStatement, error)
	Delete(ctx context.Context, view FeatureView) (int64, error)
}
