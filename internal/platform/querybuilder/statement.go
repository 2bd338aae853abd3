// Package querybuilder renders Postgres statements with positional
// placeholders for sqlx.
package querybuilder

import (
	"strconv"
	"strings"
)

// statement accumulates SQL text together with the arguments bound to its
// $n placeholders.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.sql.WriteString(part)
	}
}

func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteByte('$')
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

// expr writes raw SQL, binding one argument per '?'. Extra '?' are kept
// verbatim.
func (s *statement) expr(raw string, args []any) {
	next := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '?' && next < len(args) {
			s.bind(args[next])
			next++
			continue
		}
		s.sql.WriteByte(raw[i])
	}
}

func (s *statement) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c.render(s)
	}
}

func (s *statement) list(items []string) {
	s.write(strings.Join(items, ", "))
}

func (s *statement) result() (string, []any) {
	return s.sql.String(), s.args
}
