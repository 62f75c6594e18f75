// Package store is the persistence layer: a hand-written query layer over
// pgx/v5, in the same calling convention the rest of this codebase's
// ancestor used for its generated queries (db.New(pool).Method(ctx, params)),
// covering the bordereaux file/row/error/template entities instead of the
// original per-source upload tables.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every query method
// works unchanged inside or outside a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries wraps a DBTX with the bordereaux entity operations.
type Queries struct {
	db DBTX
}

// New builds a Queries bound to db. Pass a *pgxpool.Pool for top-level calls
// or a pgx.Tx to run within a transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx, for callers that started a
// transaction and want to keep using the same method set.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
