package repositories

import (
	"fmt"
	"strings"

	"entitycore/src/domain/model"
)

// dialect captures what differs between SQL engines when rendering row statements.
type dialect struct {
	quote       func(identifier string) string
	placeholder func(position int) string
	// encode converts an attribute value into a driver argument.
	encode func(value any) (any, error)
}

type statement struct {
	query string
	args  []any
}

func buildInsert(d dialect, table string, attrs *model.Attributes, returning string) (statement, error) {
	var builder strings.Builder
	builder.WriteString("INSERT INTO ")
	builder.WriteString(d.quote(table))

	columns := make([]string, 0, attrs.Len())
	placeholders := make([]string, 0, attrs.Len())
	args := make([]any, 0, attrs.Len())

	var err error
	attrs.Each(func(name string, value any) {
		if err != nil {
			return
		}
		var arg any
		if arg, err = d.encode(value); err != nil {
			err = fmt.Errorf("column %s: %w", name, err)
			return
		}
		columns = append(columns, d.quote(name))
		args = append(args, arg)
		placeholders = append(placeholders, d.placeholder(len(args)))
	})
	if err != nil {
		return statement{}, err
	}

	if len(columns) == 0 {
		builder.WriteString(" DEFAULT VALUES")
	} else {
		fmt.Fprintf(&builder, " (%s) VALUES (%s)", strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	}

	if returning != "" {
		builder.WriteString(" RETURNING ")
		builder.WriteString(d.quote(returning))
	}

	return statement{query: builder.String(), args: args}, nil
}

func buildUpdate(d dialect, table string, key string, value any, attrs *model.Attributes) (statement, error) {
	if attrs.Len() == 0 {
		return statement{}, fmt.Errorf("update %s: no columns to write", table)
	}

	assignments := make([]string, 0, attrs.Len())
	args := make([]any, 0, attrs.Len()+1)

	var err error
	attrs.Each(func(name string, column any) {
		if err != nil {
			return
		}
		var arg any
		if arg, err = d.encode(column); err != nil {
			err = fmt.Errorf("column %s: %w", name, err)
			return
		}
		args = append(args, arg)
		assignments = append(assignments, d.quote(name)+" = "+d.placeholder(len(args)))
	})
	if err != nil {
		return statement{}, err
	}

	args = append(args, value)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		d.quote(table), strings.Join(assignments, ", "), d.quote(key), d.placeholder(len(args)))

	return statement{query: query, args: args}, nil
}

func buildDelete(d dialect, table string, key string, value any) statement {
	return statement{
		query: fmt.Sprintf("DELETE FROM %s WHERE %s = %s", d.quote(table), d.quote(key), d.placeholder(1)),
		args:  []any{value},
	}
}

func buildSelectByKey(d dialect, table string, key string, value any) statement {
	return statement{
		query: fmt.Sprintf("SELECT * FROM %s WHERE %s = %s LIMIT 1", d.quote(table), d.quote(key), d.placeholder(1)),
		args:  []any{value},
	}
}

func isNested(value any) bool {
	switch value.(type) {
	case *model.Attributes, map[string]any, []any:
		return true
	default:
		return false
	}
}
