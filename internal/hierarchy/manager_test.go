package hierarchy_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"catalog-service/internal/apperror"
	"catalog-service/internal/dbtest"
	"catalog-service/internal/hierarchy"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	ctx  context.Context
	repo *repository.CatalogRepository
	mgr  *hierarchy.Manager
}

func newFixture(t *testing.T, opts ...hierarchy.Option) *fixture {
	repo := repository.NewCatalogRepository(dbtest.Open(t))
	return &fixture{
		ctx:  context.Background(),
		repo: repo,
		mgr:  hierarchy.NewManager(repo, zaptest.NewLogger(t), opts...),
	}
}

func (f *fixture) category(t *testing.T, name string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Active: true}
	require.NoError(t, f.mgr.CreateCategory(f.ctx, c))
	require.NotZero(t, c.ID)
	return c
}

func (f *fixture) product(t *testing.T, name string) *model.Product {
	t.Helper()
	p := &model.Product{Name: name}
	require.NoError(t, f.repo.SaveProduct(f.ctx, p))
	sku := &model.Sku{ProductID: p.ID, Name: name, RetailPrice: decimal.NewFromInt(10)}
	require.NoError(t, f.repo.SaveSku(f.ctx, sku))
	p.DefaultSkuID = &sku.ID
	require.NoError(t, f.repo.SaveProduct(f.ctx, p))
	return p
}

func (f *fixture) link(t *testing.T, parent, child *model.Category) {
	t.Helper()
	require.NoError(t, f.mgr.AddChildCategory(f.ctx, parent.ID, child.ID))
}

func ids(categories []*model.Category) []int64 {
	out := make([]int64, len(categories))
	for i, c := range categories {
		out[i] = c.ID
	}
	return out
}

func conflictReason(t *testing.T, err error) string {
	t.Helper()
	var conflict *apperror.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	return conflict.Reason
}

func TestAddChildCategoryTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")

	require.NoError(t, f.mgr.AddChildCategory(f.ctx, a.ID, b.ID))
	err := f.mgr.AddChildCategory(f.ctx, a.ID, b.ID)
	assert.Equal(t, apperror.ReasonDuplicate, conflictReason(t, err))

	children, err := f.mgr.ListSubcategories(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids(children))
}

func TestAddChildCategoryToItselfConflicts(t *testing.T) {
	f := newFixture(t)
	a := f.category(t, "A")

	err := f.mgr.AddChildCategory(f.ctx, a.ID, a.ID)
	assert.Equal(t, apperror.ReasonSelfReference, conflictReason(t, err))

	// the self check comes before any lookup
	err = f.mgr.AddChildCategory(f.ctx, 999, 999)
	assert.True(t, apperror.IsConflict(err))
}

func TestAddChildCategoryRequiresVisibleCategories(t *testing.T) {
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")

	err := f.mgr.AddChildCategory(f.ctx, a.ID, 999)
	var notFound *apperror.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, model.KindCategory, notFound.Kind)
	assert.Equal(t, int64(999), notFound.ID)

	require.NoError(t, f.mgr.DeleteCategory(f.ctx, b.ID))
	assert.True(t, apperror.IsNotFound(f.mgr.AddChildCategory(f.ctx, a.ID, b.ID)))
	assert.True(t, apperror.IsNotFound(f.mgr.AddChildCategory(f.ctx, b.ID, a.ID)))
}

func TestAddChildCategoryRejectsCycle(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.category(t, "A"), f.category(t, "B"), f.category(t, "C")
	f.link(t, a, b)
	f.link(t, b, c)

	assert.Equal(t, apperror.ReasonCycle, conflictReason(t, f.mgr.AddChildCategory(f.ctx, c.ID, a.ID)))
	assert.Equal(t, apperror.ReasonCycle, conflictReason(t, f.mgr.AddChildCategory(f.ctx, b.ID, a.ID)))

	// a second path to the same node is not a cycle
	require.NoError(t, f.mgr.AddChildCategory(f.ctx, a.ID, c.ID))
}

// concurrently runs fn n times in parallel and returns the errors by call index
func concurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

// outcomes counts successes and conflict reasons
func outcomes(t *testing.T, errs []error) (int, map[string]int) {
	t.Helper()
	successes, reasons := 0, map[string]int{}
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		reasons[conflictReason(t, err)]++
	}
	return successes, reasons
}

func TestConcurrentAddChildCategoryInsertsOnce(t *testing.T) {
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")

	errs := concurrently(8, func(int) error {
		return f.mgr.AddChildCategory(f.ctx, a.ID, b.ID)
	})

	successes, reasons := outcomes(t, errs)
	assert.Equal(t, 1, successes)
	assert.Equal(t, map[string]int{apperror.ReasonDuplicate: 7}, reasons)

	children, err := f.mgr.ListSubcategories(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids(children))
}

func TestConcurrentOppositeEdgesNeverFormCycle(t *testing.T) {
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")

	errs := concurrently(8, func(i int) error {
		if i%2 == 0 {
			return f.mgr.AddChildCategory(f.ctx, a.ID, b.ID)
		}
		return f.mgr.AddChildCategory(f.ctx, b.ID, a.ID)
	})

	successes, reasons := outcomes(t, errs)
	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, reasons[apperror.ReasonDuplicate]+reasons[apperror.ReasonCycle])
	assert.Equal(t, 4, reasons[apperror.ReasonCycle], "every call for the opposite direction closes a loop")

	underA, err := f.mgr.ListSubcategories(f.ctx, a.ID)
	require.NoError(t, err)
	underB, err := f.mgr.ListSubcategories(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, append(underA, underB...), 1)
}

func TestConcurrentAddProductToCategoryInsertsOnce(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "C")
	p := f.product(t, "P")

	errs := concurrently(8, func(int) error {
		return f.mgr.AddProductToCategory(f.ctx, c.ID, p.ID)
	})

	successes, reasons := outcomes(t, errs)
	assert.Equal(t, 1, successes)
	assert.Equal(t, map[string]int{apperror.ReasonDuplicate: 7}, reasons)

	count, err := f.mgr.CountProductsInCategory(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRemoveChildCategoryIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")
	f.link(t, a, b)

	require.NoError(t, f.mgr.RemoveChildCategory(f.ctx, a.ID, b.ID))
	assert.True(t, apperror.IsNotFound(f.mgr.RemoveChildCategory(f.ctx, a.ID, b.ID)))

	children, err := f.mgr.ListSubcategories(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	// the edge can be created again after removal
	require.NoError(t, f.mgr.AddChildCategory(f.ctx, a.ID, b.ID))
}

func TestAddAndRemoveProduct(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "C")
	p := f.product(t, "P")

	before, err := f.mgr.CountProductsInCategory(f.ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, f.mgr.AddProductToCategory(f.ctx, c.ID, p.ID))
	after, err := f.mgr.CountProductsInCategory(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	err = f.mgr.AddProductToCategory(f.ctx, c.ID, p.ID)
	assert.Equal(t, apperror.ReasonDuplicate, conflictReason(t, err))

	require.NoError(t, f.mgr.RemoveProductFromCategory(f.ctx, c.ID, p.ID))
	assert.True(t, apperror.IsNotFound(f.mgr.RemoveProductFromCategory(f.ctx, c.ID, p.ID)))

	count, err := f.mgr.CountProductsInCategory(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before, count)
}

func TestAddProductRequiresVisibleProduct(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "C")
	p := f.product(t, "P")
	require.NoError(t, f.repo.RemoveProduct(f.ctx, p))

	err := f.mgr.AddProductToCategory(f.ctx, c.ID, p.ID)
	var notFound *apperror.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, model.KindProduct, notFound.Kind)

	assert.True(t, apperror.IsNotFound(f.mgr.AddProductToCategory(f.ctx, c.ID, 12345)))
	assert.True(t, apperror.IsNotFound(f.mgr.AddProductToCategory(f.ctx, 12345, p.ID)))
}

func TestListProductsKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "C")
	p1, p2, p3 := f.product(t, "P1"), f.product(t, "P2"), f.product(t, "P3")

	for _, p := range []*model.Product{p3, p1, p2} {
		require.NoError(t, f.mgr.AddProductToCategory(f.ctx, c.ID, p.ID))
	}

	products, err := f.mgr.ListProductsInCategory(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []int64{p3.ID, p1.ID, p2.ID}, []int64{products[0].ID, products[1].ID, products[2].ID})
}

func TestDeleteCategoryLeavesDanglingEdge(t *testing.T) {
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")
	f.link(t, a, b)

	require.NoError(t, f.mgr.DeleteCategory(f.ctx, b.ID))

	_, err := f.mgr.GetCategory(f.ctx, b.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(f.mgr.DeleteCategory(f.ctx, b.ID)))

	raw, err := f.repo.ChildXrefs(f.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, b.ID, raw[0].SubCategoryID)

	stored, err := f.repo.FindCategoryByID(f.ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsArchived())

	children, err := f.mgr.ListSubcategories(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestDeletedProductLeavesCategoryListing(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "C")
	p := f.product(t, "P")

	require.NoError(t, f.mgr.AddProductToCategory(f.ctx, c.ID, p.ID))
	count, err := f.mgr.CountProductsInCategory(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, f.repo.RemoveProduct(f.ctx, p))

	count, err = f.mgr.CountProductsInCategory(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// the cross-reference itself is kept
	xrefs, err := f.repo.ProductXrefsForCategory(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, xrefs, 1)

	// and an archived member cannot be removed through the category
	assert.True(t, apperror.IsNotFound(f.mgr.RemoveProductFromCategory(f.ctx, c.ID, p.ID)))
}

func TestProductInThreeCategories(t *testing.T) {
	f := newFixture(t)
	categories := []*model.Category{f.category(t, "C1"), f.category(t, "C2"), f.category(t, "C3")}
	p := f.product(t, "P")

	for i, c := range categories {
		require.NoError(t, f.mgr.AddProductToCategory(f.ctx, c.ID, p.ID))
		count, err := f.mgr.CountCategoriesForProduct(f.ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, count)
	}

	require.NoError(t, f.mgr.RemoveProductFromCategory(f.ctx, categories[0].ID, p.ID))

	count, err := f.mgr.CountProductsInCategory(f.ctx, categories[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	for _, c := range categories[1:] {
		count, err := f.mgr.CountProductsInCategory(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}

	listed, err := f.mgr.ListCategoriesForProduct(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{categories[1].ID, categories[2].ID}, ids(listed))
}

func TestCategoriesAtDepth(t *testing.T) {
	f := newFixture(t)
	r1, r2 := f.category(t, "R1"), f.category(t, "R2")
	a, b, c, d := f.category(t, "A"), f.category(t, "B"), f.category(t, "C"), f.category(t, "D")
	f.link(t, r1, a)
	f.link(t, r1, b)
	f.link(t, r2, c)
	f.link(t, a, d)
	f.link(t, b, d)

	roots, err := f.mgr.RootCategories(f.ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{r1.ID, r2.ID}, ids(roots))

	tests := []struct {
		name  string
		roots []*model.Category
		level int
		want  []int64
	}{
		{"level zero returns roots", []*model.Category{a}, 0, []int64{a.ID}},
		{"negative level", []*model.Category{a}, -1, []int64{}},
		{"no roots", nil, 2, []int64{}},
		{"first level", roots, 1, []int64{a.ID, b.ID, c.ID}},
		{"shared child appears per path", roots, 2, []int64{d.ID, d.ID}},
		{"below leaves", roots, 3, []int64{}},
		{"single root", []*model.Category{r2}, 1, []int64{c.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.mgr.CategoriesAtDepth(f.ctx, tt.roots, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	fromRoots, err := f.mgr.CategoriesAtDepthFromRoots(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, ids(fromRoots))
}

func TestCategoriesAtDepthSkipsArchived(t *testing.T) {
	f := newFixture(t)
	r, a, b, c := f.category(t, "R"), f.category(t, "A"), f.category(t, "B"), f.category(t, "C")
	f.link(t, r, a)
	f.link(t, r, b)
	f.link(t, a, c)

	require.NoError(t, f.mgr.DeleteCategory(f.ctx, a.ID))

	level1, err := f.mgr.CategoriesAtDepth(f.ctx, []*model.Category{r}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids(level1))

	level2, err := f.mgr.CategoriesAtDepth(f.ctx, []*model.Category{r}, 2)
	require.NoError(t, err)
	assert.Empty(t, level2)
}

func TestCategoriesAtDepthLimit(t *testing.T) {
	f := newFixture(t, hierarchy.WithMaxDepth(3))
	a := f.category(t, "A")

	_, err := f.mgr.CategoriesAtDepth(f.ctx, []*model.Category{a}, 4)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.mgr.CategoriesAtDepth(f.ctx, []*model.Category{a}, 3)
	assert.NoError(t, err)
}

func TestRootCategoriesIgnoreArchivedParents(t *testing.T) {
	f := newFixture(t)
	p, c := f.category(t, "P"), f.category(t, "C")
	f.link(t, p, c)

	roots, err := f.mgr.RootCategories(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, ids(roots))

	require.NoError(t, f.mgr.DeleteCategory(f.ctx, p.ID))
	roots, err = f.mgr.RootCategories(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID}, ids(roots))

	parents, err := f.mgr.ListParentCategories(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestCreateCategoryValidation(t *testing.T) {
	f := newFixture(t)

	err := f.mgr.CreateCategory(f.ctx, &model.Category{Name: "  "})
	var invalid *apperror.ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "name", invalid.Field)

	err = f.mgr.CreateCategory(f.ctx, &model.Category{Name: "Shoes", InventoryType: "SOMETIMES"})
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "inventory_type", invalid.Field)

	c := f.category(t, "Shoes")
	assert.Equal(t, model.AlwaysAvailable, c.InventoryType)
}

func TestUpdateCategory(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Shoes")

	updated, err := f.mgr.UpdateCategory(f.ctx, c.ID, func(c *model.Category) error {
		c.Name = "Boots"
		c.InventoryType = model.CheckQuantity
		c.Attributes = []model.CategoryAttribute{{Name: "season", Value: "winter"}}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)

	stored, err := f.mgr.GetCategory(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boots", stored.Name)
	assert.Equal(t, model.CheckQuantity, stored.InventoryType)
	assert.Equal(t, map[string]string{"season": "winter"}, stored.AttributeMap())

	_, err = f.mgr.UpdateCategory(f.ctx, c.ID, func(c *model.Category) error {
		c.Name = ""
		return nil
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.mgr.UpdateCategory(f.ctx, 999, func(*model.Category) error { return nil })
	assert.True(t, apperror.IsNotFound(err))
}

func TestFindCategoryByName(t *testing.T) {
	f := newFixture(t)
	first := f.category(t, "Shoes")
	second := f.category(t, "Shoes")

	found, err := f.mgr.FindCategoryByName(f.ctx, "Shoes")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	require.NoError(t, f.mgr.DeleteCategory(f.ctx, first.ID))
	found, err = f.mgr.FindCategoryByName(f.ctx, "Shoes")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)

	_, err = f.mgr.FindCategoryByName(f.ctx, "Hats")
	assert.True(t, apperror.IsNotFound(err))
}
