// Package hierarchy maintains the category tree and category membership of
// products on top of a transactional Store.
package hierarchy

import (
	"context"
	"errors"
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"go.uber.org/zap"
)

// Manager implements the category hierarchy operations
type Manager struct {
	store    Store
	log      *zap.Logger
	maxDepth int
}

// Option configures a Manager
type Option func(*Manager)

// WithMaxDepth rejects traversals deeper than depth. Zero disables the limit.
func WithMaxDepth(depth int) Option {
	return func(m *Manager) {
		m.maxDepth = depth
	}
}

// NewManager creates a Manager backed by store
func NewManager(store Store, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{store: store, log: log.Named("hierarchy")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateCategory validates and stores a new category
func (m *Manager) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateCategory(category); err != nil {
		return m.finish(ctx, "create", err)
	}
	category.ID = 0
	category.Archived = false

	err := m.store.SaveCategory(ctx, category)
	return m.finish(ctx, "create", err, zap.Int64("category_id", category.ID))
}

// GetCategory returns a visible category
func (m *Manager) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return m.visibleCategory(ctx, id)
}

// UpdateCategory applies update to a visible category and stores the result
func (m *Manager) UpdateCategory(ctx context.Context, id int64, update func(*model.Category) error) (*model.Category, error) {
	var updated *model.Category
	err := m.store.Transaction(ctx, func(ctx context.Context) error {
		category, err := m.lockVisibleCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := update(category); err != nil {
			return err
		}
		if err := validateCategory(category); err != nil {
			return err
		}
		category.ID = id
		updated = category
		return m.store.SaveCategory(ctx, category)
	})
	return updated, m.finish(ctx, "update", err, zap.Int64("category_id", id))
}

// DeleteCategory archives a visible category. Its edges and product
// cross-references are left in place.
func (m *Manager) DeleteCategory(ctx context.Context, id int64) error {
	err := m.store.Transaction(ctx, func(ctx context.Context) error {
		category, err := m.lockVisibleCategory(ctx, id)
		if err != nil {
			return err
		}
		return m.store.RemoveCategory(ctx, category)
	})
	return m.finish(ctx, "delete", err, zap.Int64("category_id", id))
}

// AllCategories returns every visible category
func (m *Manager) AllCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := m.store.FindAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterVisible(categories), nil
}

// RootCategories returns the visible categories that have no visible parent
func (m *Manager) RootCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := m.AllCategories(ctx)
	if err != nil || len(categories) == 0 {
		return categories, err
	}

	visible := make(map[int64]bool, len(categories))
	for _, c := range categories {
		visible[c.ID] = true
	}

	xrefs, err := m.store.AllCategoryXrefs(ctx)
	if err != nil {
		return nil, err
	}
	hasParent := make(map[int64]bool, len(xrefs))
	for _, x := range xrefs {
		if visible[x.CategoryID] {
			hasParent[x.SubCategoryID] = true
		}
	}

	roots := make([]*model.Category, 0, len(categories))
	for _, c := range categories {
		if !hasParent[c.ID] {
			roots = append(roots, c)
		}
	}
	return roots, nil
}

// FindCategoryByName returns the first visible category called name
func (m *Manager) FindCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	categories, err := m.store.FindCategoriesByName(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if catalog.IsVisible(c) {
			return c, nil
		}
	}
	return nil, &apperror.NotFoundError{Kind: model.KindCategory, Name: name}
}

func (m *Manager) visibleCategory(ctx context.Context, id int64) (*model.Category, error) {
	category, err := m.store.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !catalog.IsVisible(category) {
		return nil, apperror.NotFound(model.KindCategory, id)
	}
	return category, nil
}

func (m *Manager) lockVisibleCategory(ctx context.Context, id int64) (*model.Category, error) {
	category, err := m.store.LockCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !catalog.IsVisible(category) {
		return nil, apperror.NotFound(model.KindCategory, id)
	}
	return category, nil
}

func (m *Manager) visibleProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := m.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !catalog.IsVisible(product) {
		return nil, apperror.NotFound(model.KindProduct, id)
	}
	return product, nil
}

// logger returns the request logger carried by ctx, or the manager's own
func (m *Manager) logger(ctx context.Context) *zap.Logger {
	if log, ok := logger.Lookup(ctx); ok {
		return log.Named("hierarchy")
	}
	return m.log
}

// finish logs the outcome of a mutation and records it in the metrics
func (m *Manager) finish(ctx context.Context, op string, err error, fields ...zap.Field) error {
	log := m.logger(ctx)
	if err == nil {
		prometheus.RecordCategoryOperation(op)
		log.Info("Category "+op, fields...)
		return nil
	}

	var conflict *apperror.ConflictError
	if errors.As(err, &conflict) {
		prometheus.RecordHierarchyConflict(conflict.Reason)
	}

	fields = append(fields, zap.Error(err))
	if apperror.KindOf(err) == apperror.KindInternal {
		log.Error("Category "+op+" failed", fields...)
	} else {
		log.Warn("Category "+op+" rejected", fields...)
	}
	return err
}

func validateCategory(category *model.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return apperror.Invalid("name", "required")
	}
	if category.InventoryType == "" {
		category.InventoryType = model.AlwaysAvailable
		return nil
	}
	if _, ok := model.ParseInventoryType(string(category.InventoryType)); !ok {
		return apperror.Invalid("inventory_type", "unknown value "+string(category.InventoryType))
	}
	return nil
}
