package querybuilder

import (
	"errors"
	"fmt"
	"slices"
)

type conflictAction int

const (
	conflictNone conflictAction = iota
	conflictDoNothing
	conflictDoUpdate
)

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	err     error

	target  []string
	action  conflictAction
	updates []string
	keep    []string
	allCols bool
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// InsertModel inserts one row per model. Columns come from the db tags of
// the first model and every model must share its type.
func InsertModel(table string, models ...any) *InsertBuilder {
	b := InsertInto(table)
	for i, model := range models {
		fields, err := modelFields(model)
		if err != nil {
			b.err = fmt.Errorf("insert model %d into %s: %w", i, table, err)
			return b
		}
		if i == 0 {
			b.columns = fields.columns
		} else if !slices.Equal(b.columns, fields.columns) {
			b.err = fmt.Errorf("insert model %d into %s: columns differ from the first model", i, table)
			return b
		}
		b.rows = append(b.rows, fields.values(model))
	}
	return b
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append(b.columns, columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, values)
	return b
}

// OnConflict names the unique columns an upsert resolves against.
func (b *InsertBuilder) OnConflict(target ...string) *InsertBuilder {
	b.target = target
	return b
}

func (b *InsertBuilder) DoNothing() *InsertBuilder {
	b.action = conflictDoNothing
	return b
}

// DoUpdate overwrites the listed columns with the rejected row's values.
func (b *InsertBuilder) DoUpdate(columns ...string) *InsertBuilder {
	b.action = conflictDoUpdate
	b.updates = columns
	b.allCols = false
	return b
}

// DoUpdateAllExcept overwrites every inserted column except the conflict
// target and keep.
func (b *InsertBuilder) DoUpdateAllExcept(keep ...string) *InsertBuilder {
	b.action = conflictDoUpdate
	b.keep = keep
	b.allCols = true
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if b.table == "" {
		return "", nil, errors.New("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert into %s has no columns", b.table)
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert into %s has no rows", b.table)
	}

	var s statement
	s.write("INSERT INTO ", b.table, " (")
	s.list(b.columns)
	s.write(") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert into %s row %d has %d values for %d columns", b.table, i, len(row), len(b.columns))
		}
		if i > 0 {
			s.write(", ")
		}
		s.write("(")
		for j, value := range row {
			if j > 0 {
				s.write(", ")
			}
			s.bind(value)
		}
		s.write(")")
	}

	if err := b.writeConflict(&s); err != nil {
		return "", nil, err
	}
	query, args := s.result()
	return query, args, nil
}

func (b *InsertBuilder) writeConflict(s *statement) error {
	if b.action == conflictNone {
		if len(b.target) > 0 {
			return fmt.Errorf("insert into %s: conflict target without an action", b.table)
		}
		return nil
	}

	s.write(" ON CONFLICT")
	if len(b.target) > 0 {
		s.write(" (")
		s.list(b.target)
		s.write(")")
	}
	if b.action == conflictDoNothing {
		s.write(" DO NOTHING")
		return nil
	}

	if len(b.target) == 0 {
		return fmt.Errorf("insert into %s: DO UPDATE requires a conflict target", b.table)
	}
	updates := b.updates
	if b.allCols {
		updates = make([]string, 0, len(b.columns))
		for _, col := range b.columns {
			if slices.Contains(b.target, col) || slices.Contains(b.keep, col) {
				continue
			}
			updates = append(updates, col)
		}
	}
	if len(updates) == 0 {
		return fmt.Errorf("insert into %s: DO UPDATE has no columns", b.table)
	}

	s.write(" DO UPDATE SET ")
	for i, col := range updates {
		if i > 0 {
			s.write(", ")
		}
		s.write(col, " = EXCLUDED.", col)
	}
	return nil
}
