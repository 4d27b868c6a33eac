package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWhere_Empty(t *testing.T) {
	clause, args, next := BuildWhere(nil, 1)
	assert.Empty(t, clause)
	assert.Empty(t, args)
	assert.Equal(t, 1, next)
}

func TestBuildWhere_EqualAndILike(t *testing.T) {
	clause, args, next := BuildWhere([]Condition{
		WhereCond("p.is_available", Equal, true),
		WhereCond("c.slug", ILike, "%kits%"),
	}, 1)
	assert.Equal(t, `WHERE "p"."is_available" = $1 AND "c"."slug" ILIKE $2`, clause)
	assert.Equal(t, []any{true, "%kits%"}, args)
	assert.Equal(t, 3, next)
}

func TestBuildWhere_In(t *testing.T) {
	clause, args, _ := BuildWhere([]Condition{
		WhereCond("role", In, []string{"admin", "user"}),
		WhereCond("id", In, []string{}),
	}, 3)
	assert.Equal(t, `WHERE "role" IN ($3, $4)`, clause)
	assert.Equal(t, []any{"admin", "user"}, args)
}

func TestBuildWhere_CustomRenumbersRepeatedPlaceholders(t *testing.T) {
	clause, args, next := BuildWhere([]Condition{
		WhereCond("is_available", Equal, true),
		WhereRawCond("name ILIKE $1 OR club ILIKE $1 OR description ILIKE $1", "%milan%"),
	}, 1)
	assert.Equal(t, `WHERE "is_available" = $1 AND (name ILIKE $2 OR club ILIKE $2 OR description ILIKE $2)`, clause)
	assert.Equal(t, []any{true, "%milan%"}, args)
	assert.Equal(t, 3, next)
}

func TestBuildWhere_CustomOutOfRangePlaceholderKept(t *testing.T) {
	clause, args, _ := BuildWhere([]Condition{WhereRawCond("a = $2", "x")}, 1)
	assert.Equal(t, "WHERE (a = $2)", clause)
	assert.Empty(t, args)
}

func TestIdent_SanitizesInjection(t *testing.T) {
	assert.Equal(t, `"name; DROP TABLE users"`, Ident("name; DROP TABLE users"))
	assert.Equal(t, `"p"."name"`, Ident("p.name"))
}

func TestWhereCond_CustomPanics(t *testing.T) {
	assert.Panics(t, func() { WhereCond("x", Custom, nil) })
}
