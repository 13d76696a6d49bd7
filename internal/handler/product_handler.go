package handler

import (
	"net/http"

	"catalog-service/internal/dto"
	"catalog-service/internal/hierarchy"
	"catalog-service/internal/model"
	"catalog-service/internal/product"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
)

// ProductHandler serves /products and the product attributes
type ProductHandler struct {
	products   *product.Service
	categories *hierarchy.Manager
	conv       *dto.Converter
	pageLimit  int
}

// NewProductHandler creates a ProductHandler
func NewProductHandler(products *product.Service, categories *hierarchy.Manager, conv *dto.Converter, pageLimit int) *ProductHandler {
	return &ProductHandler{products: products, categories: categories, conv: conv, pageLimit: pageLimit}
}

// List handles GET /products
func (h *ProductHandler) List(c echo.Context) error {
	p, err := pageParams(c, h.pageLimit)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	products, err := h.products.ListProducts(ctx)
	if err != nil {
		return fail(c, err)
	}
	reps, err := h.conv.Products(ctx, paginate(products, p))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reps)
}

// Count handles GET /products/count
func (h *ProductHandler) Count(c echo.Context) error {
	count, err := h.products.CountProducts(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, count)
}

// Create handles POST /products
func (h *ProductHandler) Create(c echo.Context) error {
	var req dto.Product
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	created, err := h.products.CreateProduct(c.Request().Context(), dto.NewProduct(&req))
	if err != nil {
		return fail(c, err)
	}

	return h.respond(c, http.StatusCreated, created)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := h.products.GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	prometheus.RecordProductView(id)
	return h.respond(c, http.StatusOK, p)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.Product
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	updated, err := h.products.UpdateProduct(c.Request().Context(), id, func(p *model.Product) error {
		dto.ApplyProductUpdate(p, &req)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, http.StatusOK, updated)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.products.DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCategories handles GET /products/:id/categories
func (h *ProductHandler) ListCategories(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	categories, err := h.categories.ListCategoriesForProduct(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	reps, err := h.conv.Categories(ctx, categories)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reps)
}

// CountCategories handles GET /products/:id/categories/count
func (h *ProductHandler) CountCategories(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	count, err := h.categories.CountCategoriesForProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, count)
}

// Attributes handles GET /products/:id/attributes
func (h *ProductHandler) Attributes(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	attrs, err := h.products.Attributes(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, attrs)
}

// PutAttribute handles PUT /products/:id/attributes
func (h *ProductHandler) PutAttribute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.Attribute
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.products.PutAttribute(c.Request().Context(), id, req.Name, req.Value); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAttribute handles DELETE /products/:id/attributes/:name
func (h *ProductHandler) DeleteAttribute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.products.DeleteAttribute(c.Request().Context(), id, c.Param("name")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) respond(c echo.Context, status int, p *model.Product) error {
	embed, err := queryBool(c, "embed")
	if err != nil {
		return fail(c, err)
	}
	rep, err := h.conv.Product(c.Request().Context(), p, embed)
	if err != nil {
		return fail(c, err)
	}
	if status == http.StatusCreated {
		c.Response().Header().Set(echo.HeaderLocation, h.conv.ProductHref(p.ID))
	}
	return c.JSON(status, rep)
}
