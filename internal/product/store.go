package product

import (
	"context"

	"catalog-service/internal/model"
)

// Store is the persistence capability the Service works against. It follows
// the same conventions as hierarchy.Store and is implemented by the same
// repository.
type Store interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	FindProductByID(ctx context.Context, id int64) (*model.Product, error)
	LockProductByID(ctx context.Context, id int64) (*model.Product, error)
	FindAllProducts(ctx context.Context) ([]*model.Product, error)
	SaveProduct(ctx context.Context, product *model.Product) error
	RemoveProduct(ctx context.Context, product *model.Product) error
	SaveProductAttribute(ctx context.Context, productID int64, name, value string) error
	DeleteProductAttribute(ctx context.Context, productID int64, name string) error

	FindSkuByID(ctx context.Context, id int64) (*model.Sku, error)
	SkusForProduct(ctx context.Context, productID int64) ([]*model.Sku, error)
	SaveSku(ctx context.Context, sku *model.Sku) error
	DeleteSku(ctx context.Context, sku *model.Sku) error
}

// CategoryLinker attaches new products to categories
type CategoryLinker interface {
	FindCategoryByName(ctx context.Context, name string) (*model.Category, error)
	AddProductToCategory(ctx context.Context, categoryID, productID int64) error
}
