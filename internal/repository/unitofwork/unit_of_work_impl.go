package unitofwork

import (
	"context"
	"errors"

	"knowledge-hub-be/internal/repository/contract"
	"knowledge-hub-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	errTxActive   = errors.New("unit of work: transaction already started")
	errTxInactive = errors.New("unit of work: no transaction to commit")
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

// conn is the open transaction if any. SQLite runs on a single connection, so callers
// must not reach for the root handle while a transaction is open.
func (u *UnitOfWorkImpl) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errTxActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return errTxInactive
	}
	tx := u.tx
	u.tx = nil
	return tx.Commit().Error
}

// Rollback is safe to defer after a successful Commit.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	return tx.Rollback().Error
}

func (u *UnitOfWorkImpl) Transaction(ctx context.Context, fn func(repo contract.NoteRepository) error) error {
	if u.tx != nil {
		return errTxActive
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(implementation.NewNoteRepository(tx))
	})
}

func (u *UnitOfWorkImpl) NoteRepository() contract.NoteRepository {
	return implementation.NewNoteRepository(u.conn())
}
