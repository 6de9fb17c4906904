package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/university"
)

type universityRow struct {
	ID        int            `db:"id"`
	Name      string         `db:"name"`
	Formula   sql.NullString `db:"note_calculation"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r universityRow) unpack() university.University {
	return university.University{
		ID:        r.ID,
		Name:      r.Name,
		Formula:   r.Formula.String,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type universityRepository struct {
	db *sqlx.DB
}

var _ university.Repository = (*universityRepository)(nil) // interface compliance check

func NewUniversityRepository(db *sqlx.DB) university.Repository {
	return &universityRepository{db: db}
}

func (repo *universityRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return university.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *universityRepository) CreateUniversity(ctx context.Context, uni university.University) (university.University, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO university (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		uni.Name, uni.CreatedAt, uni.UpdatedAt,
	).Scan(&uni.ID)
	if err != nil {
		return university.University{}, errors.Wrap(err, "inserting university")
	}
	return uni, nil
}

func (repo *universityRepository) GetUniversityByID(ctx context.Context, id int) (university.University, error) {
	var row universityRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM university WHERE id = $1`, id); err != nil {
		return university.University{}, repo.trapNoRowsErr(err, "getting university")
	}
	return row.unpack(), nil
}

func (repo *universityRepository) QueryUniversitiesByMember(ctx context.Context, userID int) ([]university.University, error) {
	var rows []universityRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT u.*
		FROM university u
		INNER JOIN user_role ur ON ur.university_id = u.id
		WHERE ur.user_id = $1
		ORDER BY u.id`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying member universities")
	}
	unis := make([]university.University, len(rows))
	for i, row := range rows {
		unis[i] = row.unpack()
	}
	return unis, nil
}

func (repo *universityRepository) SetUniversityFormula(ctx context.Context, id int, formula string) (university.University, error) {
	var row universityRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE university
		SET note_calculation = $1, updated_at = now()
		WHERE id = $2
		RETURNING *`,
		formula, id,
	)
	if err != nil {
		return university.University{}, repo.trapNoRowsErr(err, "setting university formula")
	}
	return row.unpack(), nil
}

func (repo *universityRepository) AssignRole(ctx context.Context, member university.Member) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO user_role (user_id, university_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, university_id) DO UPDATE SET role = EXCLUDED.role`,
		member.UserID, member.UniversityID, member.Role,
	)
	return errors.Wrap(err, "assigning role")
}

func (repo *universityRepository) GetRole(ctx context.Context, userID, universityID int) (string, bool, error) {
	var role string
	err := repo.db.GetContext(ctx, &role, `
		SELECT role FROM user_role WHERE user_id = $1 AND university_id = $2`,
		userID, universityID,
	)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "getting role")
	}
	return role, true, nil
}
