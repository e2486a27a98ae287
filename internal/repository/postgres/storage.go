package postgres

import (
	"context"
	"fmt"

	"github.com/fluyo/backend/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Session() repository.SessionRepo {
	return &SessionRepo{DB: s.db}
}

func (s *Storage) Company() repository.CompanyRepo {
	return &CompanyRepo{DB: s.db}
}

// InTx opens a transaction (a savepoint if s is already bound to one)
// and commits it when fn succeeds.
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
