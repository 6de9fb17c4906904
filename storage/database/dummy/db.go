// Package dummydb is an in-memory database used by tests and local
// development; it mirrors the sqlx repositories' behavior table by table.
package dummydb

import (
	"sync"

	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/grading"
	"github.com/trezcool/alama/core/university"
	"github.com/trezcool/alama/core/user"
)

type (
	DB struct {
		user       *userTable
		university *universityTable
		course     *courseTable
		grading    *gradingTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	universityTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*university.University
		roles   map[[2]int]string // (userID, universityID) -> role
	}

	courseTable struct {
		sync.RWMutex
		pkCount    int
		enrCount   int
		table      map[int]*course.Course
		enrollment map[[3]int]*course.Enrollment // (courseID, userID, universityID)
	}

	gradingTable struct {
		sync.RWMutex
		pkCount int
		schemas map[int]*grading.NoteSchema
		data    map[[2]int]*grading.NoteData // (schemaID, studentID)
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		university: &universityTable{table: make(map[int]*university.University), roles: make(map[[2]int]string)},
		course:     &courseTable{table: make(map[int]*course.Course), enrollment: make(map[[3]int]*course.Enrollment)},
		grading:    &gradingTable{schemas: make(map[int]*grading.NoteSchema), data: make(map[[2]int]*grading.NoteData)},
	}
	return db, nil
}
