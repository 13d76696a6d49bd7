package handler

import (
	"catalog-service/internal/dto"
	"catalog-service/internal/hierarchy"
	"catalog-service/internal/product"
	"catalog-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// BasePath prefixes every catalog route and every link in representations
const BasePath = "/v1"

// Guard returns the middleware enforcing permission on a route
type Guard func(permission string) echo.MiddlewareFunc

// Handlers bundles the catalog handlers
type Handlers struct {
	Categories *CategoryHandler
	Products   *ProductHandler
	Skus       *SkuHandler
	Health     *HealthHandler
}

// New wires the handlers around the hierarchy manager and the product
// service. pageLimit applies to listings requested without a limit.
func New(categories *hierarchy.Manager, products *product.Service, db *gorm.DB, pageLimit int) *Handlers {
	conv := dto.NewConverter(BasePath, categories, products)
	return &Handlers{
		Categories: NewCategoryHandler(categories, conv, pageLimit),
		Products:   NewProductHandler(products, categories, conv, pageLimit),
		Skus:       NewSkuHandler(products, conv),
		Health:     NewHealthHandler(db),
	}
}

// Register mounts the routes on e. Reads are public, writes go through guard.
func (h *Handlers) Register(e *echo.Echo, guard Guard) {
	e.Validator = NewValidator()
	e.GET("/health", h.Health.Check)

	api := e.Group(BasePath)
	categoryWrite := guard(jwtutil.PermissionAllCategory)
	productWrite := guard(jwtutil.PermissionAllProduct)

	categories := api.Group("/categories")
	categories.GET("", h.Categories.List)
	categories.GET("/count", h.Categories.Count)
	categories.POST("", h.Categories.Create, categoryWrite)
	categories.GET("/:id", h.Categories.Get)
	categories.PUT("/:id", h.Categories.Update, categoryWrite)
	categories.DELETE("/:id", h.Categories.Delete, categoryWrite)
	categories.GET("/:id/subcategories", h.Categories.ListSubcategories)
	categories.POST("/:id/subcategories", h.Categories.AddSubcategory, categoryWrite)
	categories.DELETE("/:id/subcategories", h.Categories.RemoveSubcategory, categoryWrite)
	categories.GET("/:id/parentcategories", h.Categories.ListParents)
	categories.GET("/:id/products", h.Categories.ListProducts)
	categories.GET("/:id/products/count", h.Categories.CountProducts)
	categories.POST("/:id/products", h.Categories.AddProduct, categoryWrite)
	categories.DELETE("/:id/products", h.Categories.RemoveProduct, categoryWrite)

	products := api.Group("/products")
	products.GET("", h.Products.List)
	products.GET("/count", h.Products.Count)
	products.POST("", h.Products.Create, productWrite)
	products.GET("/:id", h.Products.Get)
	products.PUT("/:id", h.Products.Update, productWrite)
	products.DELETE("/:id", h.Products.Delete, productWrite)
	products.GET("/:id/categories", h.Products.ListCategories)
	products.GET("/:id/categories/count", h.Products.CountCategories)
	products.GET("/:id/attributes", h.Products.Attributes)
	products.PUT("/:id/attributes", h.Products.PutAttribute, productWrite)
	products.DELETE("/:id/attributes/:name", h.Products.DeleteAttribute, productWrite)

	skus := products.Group("/:id/skus")
	skus.GET("", h.Skus.List)
	skus.POST("", h.Skus.Add, productWrite)
	skus.GET("/count", h.Skus.Count)
	skus.GET("/default", h.Skus.GetDefault)
	skus.PUT("/default", h.Skus.UpdateDefault, productWrite)
	skus.GET("/:skuId", h.Skus.Get)
	skus.PUT("/:skuId", h.Skus.Update, productWrite)
	skus.DELETE("/:skuId", h.Skus.Delete, productWrite)
	skus.GET("/:skuId/quantity", h.Skus.GetQuantity)
	skus.PUT("/:skuId/quantity", h.Skus.UpdateQuantity, productWrite)
	skus.GET("/:skuId/availability", h.Skus.GetAvailability)
	skus.PUT("/:skuId/availability", h.Skus.UpdateAvailability, productWrite)
}
