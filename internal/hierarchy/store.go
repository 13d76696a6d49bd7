package hierarchy

import (
	"context"

	"catalog-service/internal/model"
)

// Store is the persistence capability the Manager works against.
// Lookups by id return an apperror.NotFoundError when the row is absent;
// archived rows are returned and left to the caller to filter.
// Cross-reference listings are ordered by insertion.
type Store interface {
	// Transaction runs fn in one storage transaction. Store calls made with
	// the context passed to fn join that transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	// LockHierarchy serializes edge inserts with every other caller until
	// the surrounding transaction ends
	LockHierarchy(ctx context.Context) error

	FindCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	// LockCategoryByID loads the category and holds a row lock on it until
	// the surrounding transaction ends
	LockCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	FindCategoriesByIDs(ctx context.Context, ids []int64) (map[int64]*model.Category, error)
	FindAllCategories(ctx context.Context) ([]*model.Category, error)
	FindCategoriesByName(ctx context.Context, name string) ([]*model.Category, error)
	SaveCategory(ctx context.Context, category *model.Category) error
	RemoveCategory(ctx context.Context, category *model.Category) error

	ChildXrefs(ctx context.Context, parentIDs ...int64) ([]model.CategoryXref, error)
	ParentXrefs(ctx context.Context, childIDs ...int64) ([]model.CategoryXref, error)
	AllCategoryXrefs(ctx context.Context) ([]model.CategoryXref, error)
	CreateCategoryXref(ctx context.Context, xref *model.CategoryXref) error
	DeleteCategoryXref(ctx context.Context, xref *model.CategoryXref) error

	FindProductByID(ctx context.Context, id int64) (*model.Product, error)
	FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error)
	ProductXrefsForCategory(ctx context.Context, categoryID int64) ([]model.CategoryProductXref, error)
	ProductXrefsForProduct(ctx context.Context, productID int64) ([]model.CategoryProductXref, error)
	CreateProductXref(ctx context.Context, xref *model.CategoryProductXref) error
	DeleteProductXref(ctx context.Context, xref *model.CategoryProductXref) error
}
