package repository

import (
	"gamenight/application"
	"gamenight/database"
	"gamenight/domain/interfaces"
)

// NewTestUnitOfWorkFactory creates a unit of work factory for tests
func NewTestUnitOfWorkFactory(db *database.DB, startingBalance int64) *unitOfWorkFactory {
	return NewUnitOfWorkFactory(db, startingBalance)
}

// CreateTestUnitOfWork creates a unit of work for testing with the provided transactional publisher
func CreateTestUnitOfWork(db *database.DB, startingBalance int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	factory := NewTestUnitOfWorkFactory(db, startingBalance)
	return factory.CreateWithPublisher(transactionalPublisher)
}
