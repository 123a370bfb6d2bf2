package dbx

// PreparedStatement represents a named statement prepared on every pooled connection.
//
// Once prepared, the statement is executed by passing its Name in place of the SQL text, which skips
// parsing and planning on each call.
//
// Fields:
//   - Name: A unique name identifying the prepared statement on a connection.
//   - Query: The SQL query string, with $n placeholders for arguments.
type PreparedStatement struct {
	Name  string
	Query string
}

// NewPreparedStatement creates a new prepared statement.
func NewPreparedStatement(name, query string) PreparedStatement {
	return PreparedStatement{Name: name, Query: query}
}

// GetName returns the name of the prepared statement.
func (p PreparedStatement) GetName() string {
	return p.Name
}

// GetQuery returns the query of the prepared statement.
func (p PreparedStatement) GetQuery() string {
	return p.Query
}
