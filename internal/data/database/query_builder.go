// Package database builds parameterized SQL fragments with sanitized identifiers.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal  ConditionType = "="
	ILike  ConditionType = "ILIKE"
	In     ConditionType = "IN"
	Custom ConditionType = "CUSTOM"
)

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// Condition is a single predicate joined with AND by BuildWhere.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery string
}

// WhereCond builds a predicate on a (possibly qualified) column.
func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond builds a predicate from raw SQL numbered from $1. Placeholders are
// renumbered when the clause is assembled. The SQL itself is not sanitized.
func WhereRawCond(rawQuery string, params ...any) Condition {
	return Condition{Type: Custom, rawQuery: rawQuery, Value: params}
}

// Ident sanitizes identifiers like "column" or "table.column".
func Ident(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

// BuildWhere renders conditions as "WHERE a AND b" with placeholders starting at
// startParam. It returns the clause, its args and the next free placeholder index.
// An empty clause is returned when no condition renders.
func BuildWhere(conds []Condition, startParam int) (string, []any, int) {
	parts := make([]string, 0, len(conds))
	var args []any
	next := startParam

	for _, cond := range conds {
		sqlPart, condArgs, n := render(cond, next)
		if sqlPart == "" {
			continue
		}
		parts = append(parts, sqlPart)
		args = append(args, condArgs...)
		next = n
	}
	if len(parts) == 0 {
		return "", args, next
	}
	return "WHERE " + strings.Join(parts, " AND "), args, next
}

func render(cond Condition, param int) (string, []any, int) {
	if cond.Type == Custom {
		return renderCustom(cond, param)
	}
	if cond.Field == "" {
		return "", nil, param
	}
	field := Ident(cond.Field)

	switch cond.Type {
	case In:
		rv := reflect.ValueOf(cond.Value)
		if rv.Kind() != reflect.Slice || rv.Len() == 0 {
			return "", nil, param
		}
		placeholders := make([]string, rv.Len())
		args := make([]any, rv.Len())
		for i := range rv.Len() {
			placeholders[i] = "$" + strconv.Itoa(param)
			args[i] = rv.Index(i).Interface()
			param++
		}
		return fmt.Sprintf("%s IN (%s)", field, strings.Join(placeholders, ", ")), args, param
	case Equal, ILike:
		return fmt.Sprintf("%s %s $%d", field, cond.Type, param), []any{cond.Value}, param + 1
	default:
		return "", nil, param
	}
}

func renderCustom(cond Condition, param int) (string, []any, int) {
	if cond.rawQuery == "" {
		return "", nil, param
	}
	params, _ := cond.Value.([]any)

	var args []any
	mapped := make(map[int]int)
	out := placeholderRe.ReplaceAllStringFunc(cond.rawQuery, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, ok := mapped[n]; !ok {
			mapped[n] = param
			args = append(args, params[n-1])
			param++
		}
		return "$" + strconv.Itoa(mapped[n])
	})
	return "(" + out + ")", args, param
}
