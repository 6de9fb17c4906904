package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/grading"
)

type gradingRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *sqlx.DB) grading.Repository {
	return &gradingRepository{db: db}
}

func (repo *gradingRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return grading.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *gradingRepository) CreateNoteSchema(ctx context.Context, ns grading.NoteSchema) (grading.NoteSchema, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO note_schema (user_id, course_id, university_id, name, type, weight, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		ns.UserID, ns.CourseID, ns.UniversityID, ns.Name, ns.Type, ns.Weight, ns.CreatedAt, ns.UpdatedAt,
	).Scan(&ns.ID)
	if err != nil {
		return grading.NoteSchema{}, errors.Wrap(err, "inserting note schema")
	}
	return ns, nil
}

func (repo *gradingRepository) GetNoteSchema(ctx context.Context, schemaID, courseID, universityID int) (grading.NoteSchema, error) {
	var ns grading.NoteSchema
	err := repo.db.QueryRowContext(ctx, `
		SELECT id, user_id, course_id, university_id, name, type, weight, created_at, updated_at
		FROM note_schema
		WHERE id = $1 AND course_id = $2 AND university_id = $3`,
		schemaID, courseID, universityID,
	).Scan(&ns.ID, &ns.UserID, &ns.CourseID, &ns.UniversityID, &ns.Name, &ns.Type, &ns.Weight, &ns.CreatedAt, &ns.UpdatedAt)
	if err != nil {
		return grading.NoteSchema{}, repo.trapNoRowsErr(err, "getting note schema")
	}
	return ns, nil
}

func (repo *gradingRepository) QueryNoteSchemas(ctx context.Context, courseID, universityID int) ([]grading.NoteSchema, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT id, user_id, course_id, university_id, name, type, weight, created_at, updated_at
		FROM note_schema
		WHERE course_id = $1 AND university_id = $2
		ORDER BY id`,
		courseID, universityID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying note schemas")
	}
	defer rows.Close()

	schemas := make([]grading.NoteSchema, 0)
	for rows.Next() {
		var ns grading.NoteSchema
		if err = rows.Scan(&ns.ID, &ns.UserID, &ns.CourseID, &ns.UniversityID, &ns.Name, &ns.Type, &ns.Weight, &ns.CreatedAt, &ns.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning note schema")
		}
		schemas = append(schemas, ns)
	}
	return schemas, errors.Wrap(rows.Err(), "iterating note schemas")
}

func (repo *gradingRepository) UpdateNoteSchema(ctx context.Context, ns grading.NoteSchema) (grading.NoteSchema, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE note_schema
		SET name = $1, type = $2, weight = $3, updated_at = $4
		WHERE id = $5`,
		ns.Name, ns.Type, ns.Weight, ns.UpdatedAt, ns.ID,
	)
	if err != nil {
		return grading.NoteSchema{}, errors.Wrap(err, "updating note schema")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.NoteSchema{}, grading.ErrNotFound
	}
	return ns, nil
}

func (repo *gradingRepository) DeleteNoteSchema(ctx context.Context, schemaID int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM note_schema WHERE id = $1`, schemaID)
	if err != nil {
		return errors.Wrap(err, "deleting note schema")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.ErrNotFound
	}
	return nil
}

func (repo *gradingRepository) CountNoteData(ctx context.Context, schemaID int) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT count(*) FROM note_data WHERE schema_id = $1`, schemaID)
	return count, errors.Wrap(err, "counting note data")
}

func (repo *gradingRepository) UpsertNoteData(ctx context.Context, nd grading.NoteData) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO note_data (schema_id, student_id, note)
		VALUES ($1, $2, $3)
		ON CONFLICT (schema_id, student_id) DO UPDATE SET note = EXCLUDED.note`,
		nd.SchemaID, nd.StudentID, nd.Note,
	)
	return errors.Wrap(err, "upserting note data")
}

func (repo *gradingRepository) QueryNoteData(ctx context.Context, courseID, universityID, studentID int) ([]grading.NoteData, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT nd.schema_id, nd.student_id, nd.note
		FROM note_data nd
		INNER JOIN note_schema ns ON ns.id = nd.schema_id
		WHERE ns.course_id = $1 AND ns.university_id = $2 AND nd.student_id = $3
		ORDER BY nd.schema_id`,
		courseID, universityID, studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying note data")
	}
	defer rows.Close()

	data := make([]grading.NoteData, 0)
	for rows.Next() {
		var nd grading.NoteData
		if err = rows.Scan(&nd.SchemaID, &nd.StudentID, &nd.Note); err != nil {
			return nil, errors.Wrap(err, "scanning note data")
		}
		data = append(data, nd)
	}
	return data, errors.Wrap(rows.Err(), "iterating note data")
}
