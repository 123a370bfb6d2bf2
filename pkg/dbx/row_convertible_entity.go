package dbx

// RowConvertibleEntity defines an interface for converting a struct into a row of values for database insertion.
//
// Structs that are bulk-inserted implement ToRow, returning their values in the same order as their
// `db` tagged fields, which DeriveColumnNamesFromTags turns into the column list. Fields tagged `db:"-"`
// or without a tag are left out of both.
//
// Example:
//
//	type statementRow struct {
//	    ViewName string `db:"feature_view_name"`
//	    Query    *string `db:"query_online"`
//	}
//
//	func (r statementRow) ToRow() []interface{} {
//	    return []interface{}{r.ViewName, r.Query}
//	}
type RowConvertibleEntity interface {
	ToRow() []interface{} // Converts the struct to a row of values.
}
