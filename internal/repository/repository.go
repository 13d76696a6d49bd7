// Package repository implements the catalog stores on top of gorm.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// CatalogRepository stores categories, products, skus and their
// cross-references. It satisfies hierarchy.Store and product.Store.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a repository over db
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Transaction runs fn inside a database transaction. Calls that already run
// inside one join it.
func (r *CatalogRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or the pool
func (r *CatalogRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// forUpdate adds a row lock where the dialect supports one. sqlite holds a
// database-wide write lock for the whole transaction instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// hierarchyLockKey identifies the advisory lock taken by LockHierarchy
const hierarchyLockKey int64 = 0x63617467

// LockHierarchy serializes category edge inserts until the surrounding
// transaction ends. sqlite serializes writers already, so only postgres
// takes a lock.
func (r *CatalogRepository) LockHierarchy(ctx context.Context) error {
	db := r.conn(ctx)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec("SELECT pg_advisory_xact_lock(?)", hierarchyLockKey).Error; err != nil {
		return fmt.Errorf("lock hierarchy: %w", err)
	}
	return nil
}

// inChunkSize bounds IN lists below the postgres bind parameter limit
var inChunkSize = 10000

// chunked splits ids into IN lists of at most inChunkSize entries
func chunked(ids []int64) [][]int64 {
	return slices.Collect(slices.Chunk(ids, inChunkSize))
}

// translate maps gorm errors onto the catalog error taxonomy
func translate(err error, kind model.Kind, id int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(kind, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict(kind, id, 0, apperror.ReasonDuplicate)
	}
	return fmt.Errorf("%s %d: %w", kind, id, err)
}

// remove applies the removal policy of kind to value
func remove(db *gorm.DB, kind model.Kind, value interface{}, archive func()) error {
	switch model.PolicyFor(kind) {
	case model.RemoveArchive:
		if err := db.Model(value).Update("archived", true).Error; err != nil {
			return err
		}
		archive()
		return nil
	default:
		return db.Delete(value).Error
	}
}
