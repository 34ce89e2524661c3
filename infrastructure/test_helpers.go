package infrastructure

import (
	"gamenight/application"
	"gamenight/database"
	"gamenight/domain/interfaces"
	"gamenight/repository"
)

// TestUnitOfWorkFactory creates unit of work instances backed by a shared
// transactional publisher. Placed here to avoid a circular dependency
// between the application and repository packages.
type TestUnitOfWorkFactory struct {
	db                     *database.DB
	startingBalance        int64
	transactionalPublisher interfaces.TransactionalEventPublisher
}

// NewTestUnitOfWorkFactory creates a new test unit of work factory
func NewTestUnitOfWorkFactory(db *database.DB, startingBalance int64, transactionalPublisher interfaces.TransactionalEventPublisher) *TestUnitOfWorkFactory {
	return &TestUnitOfWorkFactory{
		db:                     db,
		startingBalance:        startingBalance,
		transactionalPublisher: transactionalPublisher,
	}
}

// Create creates a new UnitOfWork instance for testing
func (f *TestUnitOfWorkFactory) Create() application.UnitOfWork {
	// Fresh UoW per call to avoid transaction state issues
	return repository.CreateTestUnitOfWork(f.db, f.startingBalance, f.transactionalPublisher)
}
