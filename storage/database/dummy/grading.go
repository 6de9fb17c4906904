package dummydb

import (
	"context"

	"github.com/trezcool/alama/core/grading"
)

type gradingRepository struct {
	db *gradingTable
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *DB) grading.Repository {
	return &gradingRepository{db: db.grading}
}

func (repo *gradingRepository) CreateNoteSchema(_ context.Context, ns grading.NoteSchema) (grading.NoteSchema, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	ns.ID = repo.db.pkCount
	repo.db.schemas[ns.ID] = &ns
	return ns, nil
}

func (repo *gradingRepository) GetNoteSchema(_ context.Context, schemaID, courseID, universityID int) (grading.NoteSchema, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ns, ok := repo.db.schemas[schemaID]; ok && ns.CourseID == courseID && ns.UniversityID == universityID {
		return *ns, nil
	}
	return grading.NoteSchema{}, grading.ErrNotFound
}

func (repo *gradingRepository) QueryNoteSchemas(_ context.Context, courseID, universityID int) ([]grading.NoteSchema, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	schemas := make([]grading.NoteSchema, 0)
	// schema order follows insertion order (primary key)
	for id := 1; id <= repo.db.pkCount; id++ {
		if ns, ok := repo.db.schemas[id]; ok && ns.CourseID == courseID && ns.UniversityID == universityID {
			schemas = append(schemas, *ns)
		}
	}
	return schemas, nil
}

func (repo *gradingRepository) UpdateNoteSchema(_ context.Context, ns grading.NoteSchema) (grading.NoteSchema, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.schemas[ns.ID]; !ok {
		return grading.NoteSchema{}, grading.ErrNotFound
	}
	repo.db.schemas[ns.ID] = &ns
	return ns, nil
}

func (repo *gradingRepository) DeleteNoteSchema(_ context.Context, schemaID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.schemas[schemaID]; !ok {
		return grading.ErrNotFound
	}
	delete(repo.db.schemas, schemaID)
	return nil
}

func (repo *gradingRepository) CountNoteData(_ context.Context, schemaID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for key := range repo.db.data {
		if key[0] == schemaID {
			count++
		}
	}
	return count, nil
}

func (repo *gradingRepository) UpsertNoteData(_ context.Context, nd grading.NoteData) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.data[[2]int{nd.SchemaID, nd.StudentID}] = &nd
	return nil
}

func (repo *gradingRepository) QueryNoteData(_ context.Context, courseID, universityID, studentID int) ([]grading.NoteData, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	data := make([]grading.NoteData, 0)
	for key, nd := range repo.db.data {
		if key[1] != studentID {
			continue
		}
		if ns, ok := repo.db.schemas[key[0]]; ok && ns.CourseID == courseID && ns.UniversityID == universityID {
			data = append(data, *nd)
		}
	}
	return data, nil
}
