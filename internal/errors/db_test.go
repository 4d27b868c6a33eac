package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError_Passthrough(t *testing.T) {
	assert.NoError(t, MapDBError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, MapDBError(plain))
}

func TestMapDBError_ContextAndNoRows(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, want: ErrCodeCanceled},
		{name: "wrapped canceled", err: fmt.Errorf("query: %w", context.Canceled), want: ErrCodeCanceled},
		{name: "no rows", err: pgx.ErrNoRows, want: ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(MapDBError(tt.err)))
		})
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name:      "column metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "email"},
			wantField: "email",
		},
		{
			name: "detail message",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: `Key (slug)=(home-kits) already exists.`,
			},
			wantField: "slug",
		},
		{
			name:      "constraint name",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "categories_slug_key"},
			wantField: "slug",
		},
		{
			name:      "expression index",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_lower_key"},
			wantField: "",
		},
		{
			name:      "multi-column constraint",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "product_images_product_id_key"},
			wantField: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			assert.True(t, IsConflict(err))
			assert.Equal(t, tt.wantField, GetField(err))
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name  string
		pgErr *pgconn.PgError
		want  string
	}{
		{
			name: "parent still referenced",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (id)=(abc) is still referenced from table "products".`,
			},
			want: "Cannot delete because this item is in use by Product.",
		},
		{
			name: "missing parent",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (category_id)=(abc) is not present in table "categories".`,
			},
			want: "Cannot complete operation because the referenced Category does not exist.",
		},
		{
			name:  "table metadata",
			pgErr: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "product_images"},
			want:  "Cannot complete operation because this item is in use by Product Image.",
		},
		{
			name:  "constraint name only",
			pgErr: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "products_category_id_fkey"},
			want:  "Cannot delete category because it still has products.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			assert.True(t, IsForeignKey(err))
			appErr, ok := As(err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
}

func TestMapDBError_ConstraintValidation(t *testing.T) {
	notNull := MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "name"})
	assert.True(t, IsValidation(notNull))
	assert.Equal(t, "name", GetField(notNull))

	check := MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation})
	assert.True(t, IsValidation(check))
	assert.Empty(t, GetField(check))
}

func TestMapDBError_InvalidTextRepresentation(t *testing.T) {
	err := MapDBError(&pgconn.PgError{
		Code:    pgerrcode.InvalidTextRepresentation,
		Message: `invalid input syntax for type uuid: "p1"`,
	})
	assert.True(t, IsValidation(err))
	if appErr, ok := As(err); assert.True(t, ok) {
		assert.Equal(t, 400, appErr.HTTPStatus())
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	assert.True(t, IsInternal(err))
}

func TestMapTableToDomain(t *testing.T) {
	assert.Equal(t, "Category", mapTableToDomain("categories"))
	assert.Equal(t, "Product Image", mapTableToDomain(" PRODUCT_IMAGES "))
	assert.Equal(t, "Order Lines", mapTableToDomain("order_lines"))
}
