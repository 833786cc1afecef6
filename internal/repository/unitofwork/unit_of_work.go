package unitofwork

import (
	"context"

	"knowledge-hub-be/internal/repository/contract"
)

// UnitOfWork scopes note repository calls to one transaction. Outside Begin/Commit the
// repository runs each call on its own.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// Transaction runs fn inside a transaction, committing when fn returns nil.
	Transaction(ctx context.Context, fn func(repo contract.NoteRepository) error) error

	NoteRepository() contract.NoteRepository
}
