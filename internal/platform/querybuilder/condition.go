package querybuilder

// Condition is one predicate of a WHERE clause. Conditions are joined
// with AND.
type Condition interface {
	render(s *statement)
}

type compare struct {
	column string
	op     string
	value  any
}

func (c compare) render(s *statement) {
	s.write(c.column, " ", c.op, " ")
	s.bind(c.value)
}

func Eq(column string, value any) Condition {
	return compare{column: column, op: "=", value: value}
}

func Lte(column string, value any) Condition {
	return compare{column: column, op: "<=", value: value}
}

type anyOf struct {
	column string
	array  any
}

// Any matches column against every element of a single array argument,
// e.g. Any("team_id", pq.Array(ids)).
func Any(column string, array any) Condition {
	return anyOf{column: column, array: array}
}

func (c anyOf) render(s *statement) {
	s.write(c.column, " = ANY(")
	s.bind(c.array)
	s.write(")")
}

type rawExpr struct {
	sql  string
	args []any
}

// Expr is a raw predicate with '?' placeholders.
func Expr(sql string, args ...any) Condition {
	return rawExpr{sql: sql, args: args}
}

func (c rawExpr) render(s *statement) {
	s.expr(c.sql, c.args)
}
