package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/user"
)

type userRow struct {
	ID           int            `db:"id"`
	Username     string         `db:"username"`
	Email        sql.NullString `db:"email"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	SystemAdmin  bool           `db:"system_admin"`
	PasswordHash []byte         `db:"password_hash"`
	Token        sql.NullString `db:"token"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) unpack() user.User {
	return user.User{
		ID:            r.ID,
		Username:      r.Username,
		Email:         r.Email.String,
		FirstName:     r.FirstName.String,
		LastName:      r.LastName.String,
		IsSystemAdmin: r.SystemAdmin,
		PasswordHash:  r.PasswordHash,
		Token:         r.Token.String,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM "user" WHERE username = $1)`, username)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO "user" (username, email, first_name, last_name, system_admin, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		usr.Username, nullStr(usr.Email), nullStr(usr.FirstName), nullStr(usr.LastName),
		usr.IsSystemAdmin, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return row.unpack(), nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE username = $1`, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by username")
	}
	return row.unpack(), nil
}

func (repo *userRepository) GetUserByToken(ctx context.Context, token string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE token = $1`, token); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by token")
	}
	return row.unpack(), nil
}

func (repo *userRepository) UpdateUserToken(ctx context.Context, id int, token string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE "user" SET token = $1, updated_at = now() WHERE id = $2`, token, id)
	if err != nil {
		return errors.Wrap(err, "updating user token")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
