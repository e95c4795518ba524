package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Transactor hands out request-scoped connections and runs units of work
// atomically. Use cases depend on it instead of *gorm.DB so that they can be
// exercised without a database.
type Transactor interface {
	Conn(ctx context.Context) *gorm.DB
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Conn(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}
