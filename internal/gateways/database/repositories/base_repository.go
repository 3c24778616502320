package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
)

// DefaultQueryTimeout bounds every repository call that does not run inside
// a caller-provided transaction.
const DefaultQueryTimeout = 10 * time.Second

type txKey struct{}

// BaseRepository provides common repository functionality
type BaseRepository struct {
	db             *bun.DB
	defaultTimeout time.Duration
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *bun.DB) *BaseRepository {
	return &BaseRepository{
		db:             db,
		defaultTimeout: DefaultQueryTimeout,
	}
}

// RunInTx runs fn inside a transaction carried by the context. Repository
// calls made with that context join the transaction. When ctx already
// carries one, fn simply joins it.
func (br *BaseRepository) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return fn(ctx)
	}

	timeoutCtx, cancel := br.WithTimeout(ctx)
	defer cancel()

	return br.db.RunInTx(timeoutCtx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or the database.
func (br *BaseRepository) conn(ctx context.Context) bun.IDB {
	if tx, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return tx
	}
	return br.db
}

// WithTimeout creates a context with the default timeout
func (br *BaseRepository) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, br.defaultTimeout)
}

// HandleError standardizes error handling across repositories
func (br *BaseRepository) HandleError(operation, entity string, err error) error {
	return br.HandleErrorWithID(operation, entity, "unknown", err)
}

// HandleErrorWithID standardizes error handling with specific ID
func (br *BaseRepository) HandleErrorWithID(operation, entity string, id any, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &errs.NotFoundError{Entity: entity, ID: id}
	}

	return &errs.StorageError{
		Operation: operation,
		Entity:    entity,
		Err:       err,
	}
}

// isForeignKeyViolation reports whether err rejected a row whose parent row
// does not exist.
func isForeignKeyViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
