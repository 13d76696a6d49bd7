package hierarchy

import (
	"context"

	"catalog-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

func (m *mockStore) LockHierarchy(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) FindCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Category)
	return c, args.Error(1)
}

func (m *mockStore) LockCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Category)
	return c, args.Error(1)
}

func (m *mockStore) FindCategoriesByIDs(ctx context.Context, ids []int64) (map[int64]*model.Category, error) {
	args := m.Called(ctx, ids)
	found, _ := args.Get(0).(map[int64]*model.Category)
	return found, args.Error(1)
}

func (m *mockStore) FindAllCategories(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]*model.Category)
	return categories, args.Error(1)
}

func (m *mockStore) FindCategoriesByName(ctx context.Context, name string) ([]*model.Category, error) {
	args := m.Called(ctx, name)
	categories, _ := args.Get(0).([]*model.Category)
	return categories, args.Error(1)
}

func (m *mockStore) SaveCategory(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockStore) RemoveCategory(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockStore) ChildXrefs(ctx context.Context, parentIDs ...int64) ([]model.CategoryXref, error) {
	args := m.Called(ctx, parentIDs)
	xrefs, _ := args.Get(0).([]model.CategoryXref)
	return xrefs, args.Error(1)
}

func (m *mockStore) ParentXrefs(ctx context.Context, childIDs ...int64) ([]model.CategoryXref, error) {
	args := m.Called(ctx, childIDs)
	xrefs, _ := args.Get(0).([]model.CategoryXref)
	return xrefs, args.Error(1)
}

func (m *mockStore) AllCategoryXrefs(ctx context.Context) ([]model.CategoryXref, error) {
	args := m.Called(ctx)
	xrefs, _ := args.Get(0).([]model.CategoryXref)
	return xrefs, args.Error(1)
}

func (m *mockStore) CreateCategoryXref(ctx context.Context, xref *model.CategoryXref) error {
	return m.Called(ctx, xref).Error(0)
}

func (m *mockStore) DeleteCategoryXref(ctx context.Context, xref *model.CategoryXref) error {
	return m.Called(ctx, xref).Error(0)
}

func (m *mockStore) FindProductByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockStore) FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error) {
	args := m.Called(ctx, ids)
	found, _ := args.Get(0).(map[int64]*model.Product)
	return found, args.Error(1)
}

func (m *mockStore) ProductXrefsForCategory(ctx context.Context, categoryID int64) ([]model.CategoryProductXref, error) {
	args := m.Called(ctx, categoryID)
	xrefs, _ := args.Get(0).([]model.CategoryProductXref)
	return xrefs, args.Error(1)
}

func (m *mockStore) ProductXrefsForProduct(ctx context.Context, productID int64) ([]model.CategoryProductXref, error) {
	args := m.Called(ctx, productID)
	xrefs, _ := args.Get(0).([]model.CategoryProductXref)
	return xrefs, args.Error(1)
}

func (m *mockStore) CreateProductXref(ctx context.Context, xref *model.CategoryProductXref) error {
	return m.Called(ctx, xref).Error(0)
}

func (m *mockStore) DeleteProductXref(ctx context.Context, xref *model.CategoryProductXref) error {
	return m.Called(ctx, xref).Error(0)
}
