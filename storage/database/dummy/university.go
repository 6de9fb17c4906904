package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/alama/core/university"
)

type universityRepository struct {
	db *universityTable
}

var _ university.Repository = (*universityRepository)(nil) // interface compliance check

func NewUniversityRepository(db *DB) university.Repository {
	return &universityRepository{db: db.university}
}

func (repo *universityRepository) CreateUniversity(_ context.Context, uni university.University) (university.University, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	uni.ID = repo.db.pkCount
	repo.db.table[uni.ID] = &uni
	return uni, nil
}

func (repo *universityRepository) GetUniversityByID(_ context.Context, id int) (university.University, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if uni, ok := repo.db.table[id]; ok {
		return *uni, nil
	}
	return university.University{}, university.ErrNotFound
}

func (repo *universityRepository) QueryUniversitiesByMember(_ context.Context, userID int) ([]university.University, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	unis := make([]university.University, 0)
	for key := range repo.db.roles {
		if key[0] == userID {
			if uni, ok := repo.db.table[key[1]]; ok {
				unis = append(unis, *uni)
			}
		}
	}
	return unis, nil
}

func (repo *universityRepository) SetUniversityFormula(_ context.Context, id int, formula string) (university.University, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	uni, ok := repo.db.table[id]
	if !ok {
		return university.University{}, university.ErrNotFound
	}
	uni.Formula = formula
	uni.UpdatedAt = time.Now().UTC()
	return *uni, nil
}

func (repo *universityRepository) AssignRole(_ context.Context, member university.Member) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.roles[[2]int{member.UserID, member.UniversityID}] = member.Role
	return nil
}

func (repo *universityRepository) GetRole(_ context.Context, userID, universityID int) (string, bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	role, ok := repo.db.roles[[2]int{userID, universityID}]
	return role, ok, nil
}
