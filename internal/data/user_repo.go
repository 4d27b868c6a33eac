package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jerseyretro/storefront/internal/core"
	"github.com/jerseyretro/storefront/internal/data/pgxutil"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
)

var _ core.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, name, role, created_at, updated_at`

// UserRepo provides database operations for users.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// Create inserts a user. An empty request ID lets the database assign one.
func (r *UserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	return r.queryOne(ctx, `
		INSERT INTO users (id, email, name, role)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
		RETURNING `+userColumns,
		req.ID, req.Email, req.Name, req.Role,
	)
}

// Upsert inserts the user or, when the email already exists, updates its name and role.
// The existing row keeps its id.
func (r *UserRepo) Upsert(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("upsert user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	return r.queryOne(ctx, `
		INSERT INTO users (id, email, name, role)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
		RETURNING `+userColumns,
		req.ID, req.Email, req.Name, req.Role,
	)
}

// GetByEmail looks a user up by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, model.NormalizeEmail(email))
}

// GetByID looks a user up by id. Ids that are not UUIDs cannot match and report NotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("user not found")
	}
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// SetRole changes the role of the user with the given email.
func (r *UserRepo) SetRole(ctx context.Context, email string, role domainauth.Role) (*model.User, error) {
	if role != domainauth.RoleAdmin && role != domainauth.RoleUser {
		return nil, apperrors.ValidationField("role", "role must be admin or user")
	}
	return r.queryOne(ctx,
		`UPDATE users SET role = $2 WHERE email = $1 RETURNING `+userColumns,
		model.NormalizeEmail(email), role,
	)
}

func (r *UserRepo) queryOne(ctx context.Context, q string, args ...any) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}
