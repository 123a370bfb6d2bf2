package servingstmt

import (
	"github.com/marcodd23/go-serving-stmt/pkg/utilx/copyx"
	"github.com/marcodd23/go-serving-stmt/pkg/validator"
)

// ServingPreparedStatement describes one prepared statement slot of a feature view served from the
// online feature store.
//
// Every attribute is optional: a nil pointer (or a nil parameter slice) means "not set". No invariant is
// enforced when building or decoding a statement, callers that need one can call Validate.
//
// Fields:
//   - FeatureGroupID: the feature group owning the queried table.
//   - PreparedStatementIndex: ordinal of this statement among the statements of the feature view.
//   - PreparedStatementParameters: bind parameters of QueryOnline, in binding order.
//   - QueryOnline: the query template executed against the online store.
//   - Prefix: prepended to feature names to disambiguate columns joined from several feature groups.
//
// A ServingPreparedStatement holds no lock; concurrent mutation must be synchronized by the caller.
type ServingPreparedStatement struct {
	FeatureGroupID              *int                          `validate:"omitempty,gte=0"`
	PreparedStatementIndex      *int                          `validate:"omitempty,gte=0"`
	PreparedStatementParameters []*PreparedStatementParameter `validate:"omitempty,dive"`
	QueryOnline                 *string
	Prefix                      *string
}

// New creates a statement with exactly the given values; any of them may be nil.
func New(
	featureGroupID *int,
	preparedStatementIndex *int,
	preparedStatementParameters []*PreparedStatementParameter,
	queryOnline *string,
	prefix *string,
) *ServingPreparedStatement {
	return &ServingPreparedStatement{
		FeatureGroupID:              featureGroupID,
		PreparedStatementIndex:      preparedStatementIndex,
		PreparedStatementParameters: preparedStatementParameters,
		QueryOnline:                 queryOnline,
		Prefix:                      prefix,
	}
}

// NewEmpty creates a statement with every attribute unset, to be filled through the setters or a decoder.
func NewEmpty() *ServingPreparedStatement {
	return &ServingPreparedStatement{}
}

// NewPartial creates a statement from its index, parameters and query. FeatureGroupID and Prefix are
// left unset; callers composing queries across feature groups assign them afterwards.
func NewPartial(
	preparedStatementIndex *int,
	preparedStatementParameters []*PreparedStatementParameter,
	queryOnline *string,
) *ServingPreparedStatement {
	return &ServingPreparedStatement{
		PreparedStatementIndex:      preparedStatementIndex,
		PreparedStatementParameters: preparedStatementParameters,
		QueryOnline:                 queryOnline,
	}
}

func (s *ServingPreparedStatement) GetFeatureGroupID() *int {
	return s.FeatureGroupID
}

func (s *ServingPreparedStatement) SetFeatureGroupID(featureGroupID *int) {
	s.FeatureGroupID = featureGroupID
}

func (s *ServingPreparedStatement) GetPreparedStatementIndex() *int {
	return s.PreparedStatementIndex
}

func (s *ServingPreparedStatement) SetPreparedStatementIndex(preparedStatementIndex *int) {
	s.PreparedStatementIndex = preparedStatementIndex
}

func (s *ServingPreparedStatement) GetPreparedStatementParameters() []*PreparedStatementParameter {
	return s.PreparedStatementParameters
}

func (s *ServingPreparedStatement) SetPreparedStatementParameters(parameters []*PreparedStatementParameter) {
	s.PreparedStatementParameters = parameters
}

func (s *ServingPreparedStatement) GetQueryOnline() *string {
	return s.QueryOnline
}

func (s *ServingPreparedStatement) SetQueryOnline(queryOnline *string) {
	s.QueryOnline = queryOnline
}

func (s *ServingPreparedStatement) GetPrefix() *string {
	return s.Prefix
}

func (s *ServingPreparedStatement) SetPrefix(prefix *string) {
	s.Prefix = prefix
}

// Clone returns a deep copy sharing no pointer, slice or parameter with s.
func (s *ServingPreparedStatement) Clone() *ServingPreparedStatement {
	return copyx.Of(s)
}

// Validate checks that the indexes and the feature group id, when set, are not negative.
// It is never called by the constructors nor by the decoder.
// The returned error, if any, is a *validator.ValidationError.
func (s *ServingPreparedStatement) Validate() error {
	return validator.NewValidator().Validate(s)
}

// Builder assembles a ServingPreparedStatement field by field.
//
// Example Usage:
//
//	stmt := servingstmt.NewBuilder().
//	    FeatureGroupID(7).
//	    PreparedStatementIndex(0).
//	    QueryOnline("SELECT * FROM fg WHERE id = ?").
//	    Build()
type Builder struct {
	stmt ServingPreparedStatement
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) FeatureGroupID(featureGroupID int) *Builder {
	b.stmt.FeatureGroupID = &featureGroupID
	return b
}

func (b *Builder) PreparedStatementIndex(index int) *Builder {
	b.stmt.PreparedStatementIndex = &index
	return b
}

// PreparedStatementParameters sets the parameters in the given order. Calling it with no argument sets an
// empty, not an unset, parameter list.
func (b *Builder) PreparedStatementParameters(parameters ...*PreparedStatementParameter) *Builder {
	b.stmt.PreparedStatementParameters = append([]*PreparedStatementParameter{}, parameters...)
	return b
}

func (b *Builder) QueryOnline(query string) *Builder {
	b.stmt.QueryOnline = &query
	return b
}

func (b *Builder) Prefix(prefix string) *Builder {
	b.stmt.Prefix = &prefix
	return b
}

// Build returns a new statement; the builder can keep being used afterwards.
func (b *Builder) Build() *ServingPreparedStatement {
	return b.stmt.Clone()
}
