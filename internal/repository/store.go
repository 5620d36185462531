package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/game-room-reservation/internal/engine"
)

// executor abstracts *sql.DB and *sql.Tx so the same repository code
// serves both plain reads and transactional check-and-mutate spans.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store aggregates every repository over one database handle and
// implements engine.Atomic.  The exported repo fields are bound to
// the raw handle and serve non-transactional reads in handlers; InTx
// hands the engine a view bound to a single transaction.
type Store struct {
	db *sql.DB

	Sessions     *SessionRepo
	Reservations *ReservationRepo
	Clients      *ClientRepo
	Referrers    *ReferrerRepo
	Posts        *PostRepo
	Games        *GameRepo
	Catalog      *CatalogRepo
	Payments     *PaymentRepo
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store {
	s := &Store{db: db}
	s.Sessions = &SessionRepo{ex: db}
	s.Reservations = &ReservationRepo{ex: db}
	s.Clients = &ClientRepo{ex: db}
	s.Referrers = &ReferrerRepo{ex: db}
	s.Posts = &PostRepo{ex: db}
	s.Games = &GameRepo{ex: db}
	s.Catalog = &CatalogRepo{ex: db}
	s.Payments = &PaymentRepo{ex: db}
	return s
}

// DB exposes the underlying handle for auth repositories that manage
// their own statements.
func (s *Store) DB() *sql.DB { return s.db }

// View returns a non-transactional engine.Stores over the raw handle.
func (s *Store) View() engine.Stores { return viewFor(s.db) }

// InTx implements engine.Atomic: it opens one transaction, hands the
// callback a transaction-bound view, and commits only when the
// callback succeeds.  Any error rolls everything back, so partial
// writes are never observable.
func (s *Store) InTx(ctx context.Context, fn func(v engine.Stores) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(viewFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func viewFor(ex executor) engine.Stores {
	return engine.Stores{
		Sessions:     &SessionRepo{ex: ex},
		Reservations: &ReservationRepo{ex: ex},
		Clients:      &ClientRepo{ex: ex},
		Referrers:    &ReferrerRepo{ex: ex},
		Posts:        &PostRepo{ex: ex},
		Games:        &GameRepo{ex: ex},
		Catalog:      &CatalogRepo{ex: ex},
		Payments:     &PaymentRepo{ex: ex},
	}
}
