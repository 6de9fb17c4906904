package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO course (university_id, lecturer_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.UniversityID, c.LecturerID, c.Name, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, courseID, universityID int) (course.Course, error) {
	var c course.Course
	err := repo.db.QueryRowContext(ctx, `
		SELECT id, university_id, lecturer_id, name, created_at, updated_at
		FROM course
		WHERE id = $1 AND university_id = $2`,
		courseID, universityID,
	).Scan(&c.ID, &c.UniversityID, &c.LecturerID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "getting course")
	}
	return c, nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO enrollment (course_id, user_id, university_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		enr.CourseID, enr.UserID, enr.UniversityID, enr.CreatedAt,
	).Scan(&enr.ID)
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, courseID, userID, universityID int) (course.Enrollment, bool, error) {
	var enr course.Enrollment
	err := repo.db.QueryRowContext(ctx, `
		SELECT id, course_id, user_id, university_id, created_at
		FROM enrollment
		WHERE course_id = $1 AND user_id = $2 AND university_id = $3`,
		courseID, userID, universityID,
	).Scan(&enr.ID, &enr.CourseID, &enr.UserID, &enr.UniversityID, &enr.CreatedAt)
	if err == sql.ErrNoRows {
		return course.Enrollment{}, false, nil
	}
	if err != nil {
		return course.Enrollment{}, false, errors.Wrap(err, "getting enrollment")
	}
	return enr, true, nil
}

func (repo *courseRepository) QueryStudentCourses(ctx context.Context, userID, universityID int) ([]course.StudentCourse, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(l.first_name, ''), COALESCE(l.last_name, ''), l.username
		FROM enrollment e
		INNER JOIN course c ON c.id = e.course_id
		INNER JOIN "user" l ON l.id = c.lecturer_id
		WHERE e.user_id = $1 AND e.university_id = $2
		ORDER BY c.id`,
		userID, universityID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying student courses")
	}
	defer rows.Close()

	courses := make([]course.StudentCourse, 0)
	for rows.Next() {
		var sc course.StudentCourse
		if err = rows.Scan(&sc.ID, &sc.Name, &sc.Lecturer.FirstName, &sc.Lecturer.LastName, &sc.Lecturer.Username); err != nil {
			return nil, errors.Wrap(err, "scanning student course")
		}
		courses = append(courses, sc)
	}
	return courses, errors.Wrap(rows.Err(), "iterating student courses")
}

func (repo *courseRepository) GetCourseLecturer(ctx context.Context, courseID, universityID int) (int, bool, error) {
	var lecturerID int
	err := repo.db.GetContext(ctx, &lecturerID, `
		SELECT lecturer_id FROM course WHERE id = $1 AND university_id = $2`,
		courseID, universityID,
	)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "getting course lecturer")
	}
	return lecturerID, true, nil
}
