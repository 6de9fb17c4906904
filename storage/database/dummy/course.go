package dummydb

import (
	"context"

	"github.com/trezcool/alama/core/course"
)

type courseRepository struct {
	db    *courseTable
	users *userTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, users: db.user}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	c.ID = repo.db.pkCount
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, courseID, universityID int) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[courseID]; ok && c.UniversityID == universityID {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseLecturer(ctx context.Context, courseID, universityID int) (int, bool, error) {
	c, err := repo.GetCourse(ctx, courseID, universityID)
	if err == course.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c.LecturerID, true, nil
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := [3]int{enr.CourseID, enr.UserID, enr.UniversityID}
	if _, ok := repo.db.enrollment[key]; ok {
		return course.Enrollment{}, course.ErrAlreadyEnrolled
	}
	repo.db.enrCount++
	enr.ID = repo.db.enrCount
	repo.db.enrollment[key] = &enr
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(_ context.Context, courseID, userID, universityID int) (course.Enrollment, bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.enrollment[[3]int{courseID, userID, universityID}]; ok {
		return *enr, true, nil
	}
	return course.Enrollment{}, false, nil
}

func (repo *courseRepository) QueryStudentCourses(_ context.Context, userID, universityID int) ([]course.StudentCourse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.users.RLock()
	defer repo.users.RUnlock()

	courses := make([]course.StudentCourse, 0)
	for key, enr := range repo.db.enrollment {
		if key[1] != userID || key[2] != universityID {
			continue
		}
		c, ok := repo.db.table[enr.CourseID]
		if !ok {
			continue
		}
		sc := course.StudentCourse{ID: c.ID, Name: c.Name}
		if lect, ok := repo.users.table[c.LecturerID]; ok {
			sc.Lecturer = course.Lecturer{
				FirstName: lect.FirstName,
				LastName:  lect.LastName,
				Username:  lect.Username,
			}
		}
		courses = append(courses, sc)
	}
	return courses, nil
}
