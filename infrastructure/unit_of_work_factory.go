package infrastructure

import (
	"gamenight/application"
	"gamenight/database"
	"gamenight/domain/interfaces"
	"gamenight/repository"
)

// UnitOfWorkFactory implements the application.UnitOfWorkFactory interface.
// Each unit of work gets its own transactional publisher so events buffer
// per transaction.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, startingBalance int64, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db, startingBalance),
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with a fresh transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	transactionalPublisher := NewNATSTransactionalPublisher(f.eventPublisher)
	return f.repoFactory.CreateWithPublisher(transactionalPublisher)
}
