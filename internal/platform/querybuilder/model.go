package querybuilder

import (
	"errors"
	"reflect"
	"strings"
	"sync"
)

// modelLayout is the db-tagged field layout of one struct type.
type modelLayout struct {
	columns []string
	index   []int
}

var layouts sync.Map // reflect.Type -> *modelLayout

func modelFields(model any) (*modelLayout, error) {
	value, err := structValue(model)
	if err != nil {
		return nil, err
	}
	typ := value.Type()
	if cached, ok := layouts.Load(typ); ok {
		return cached.(*modelLayout), nil
	}

	layout := &modelLayout{}
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		layout.columns = append(layout.columns, col)
		layout.index = append(layout.index, i)
	}
	if len(layout.columns) == 0 {
		return nil, errors.New("model has no db columns")
	}

	actual, _ := layouts.LoadOrStore(typ, layout)
	return actual.(*modelLayout), nil
}

func (l *modelLayout) values(model any) []any {
	value, _ := structValue(model)
	out := make([]any, len(l.index))
	for i, idx := range l.index {
		out[i] = value.Field(idx).Interface()
	}
	return out
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, errors.New("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("model must be a struct")
	}
	return value, nil
}
