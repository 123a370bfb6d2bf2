package servingstmt

// PreparedStatementParameter is one bind parameter of a serving prepared statement:
// the feature (primary key) name and its position in the query template.
type PreparedStatementParameter struct {
	Name  *string
	Index *int `validate:"omitempty,gte=0"`
}

// NewParameter returns a parameter with both attributes set.
func NewParameter(name string, index int) *PreparedStatementParameter {
	return &PreparedStatementParameter{Name: &name, Index: &index}
}

func (p *PreparedStatementParameter) GetName() *string {
	return p.Name
}

func (p *PreparedStatementParameter) SetName(name *string) {
	p.Name = name
}

func (p *PreparedStatementParameter) GetIndex() *int {
	return p.Index
}

func (p *PreparedStatementParameter) SetIndex(index *int) {
	p.Index = index
}
