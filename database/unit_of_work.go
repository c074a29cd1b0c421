package database

import (
	"gorm.io/gorm"
)

// UnitOfWorkInterface defines the contract for transaction handling.
// Multi-write operations (task+target creation, task+target deletion,
// robot deletion with reference clearing) run entirely inside one unit
// of work: either every write is visible or none is.
type UnitOfWorkInterface interface {
	Begin() *gorm.DB
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

// unitOfWork implements the UnitOfWorkInterface.
type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *gorm.DB) UnitOfWorkInterface {
	return &unitOfWork{db: db}
}

// Begin starts a new transaction.
func (uow *unitOfWork) Begin() *gorm.DB {
	return uow.db.Begin()
}

// Commit commits the transaction.
func (uow *unitOfWork) Commit(tx *gorm.DB) error {
	return tx.Commit().Error
}

// Rollback rolls back the transaction unless it already finished.
func (uow *unitOfWork) Rollback(tx *gorm.DB) {
	if tx.Error == nil {
		tx.Rollback()
	}
}
