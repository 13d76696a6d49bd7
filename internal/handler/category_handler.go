package handler

import (
	"net/http"

	"catalog-service/internal/dto"
	"catalog-service/internal/hierarchy"
	"catalog-service/internal/model"

	"github.com/labstack/echo/v4"
)

// CategoryHandler serves /categories
type CategoryHandler struct {
	categories *hierarchy.Manager
	conv       *dto.Converter
	pageLimit  int
}

// NewCategoryHandler creates a CategoryHandler
func NewCategoryHandler(categories *hierarchy.Manager, conv *dto.Converter, pageLimit int) *CategoryHandler {
	return &CategoryHandler{categories: categories, conv: conv, pageLimit: pageLimit}
}

// selection resolves the flat and depth query parameters
func (h *CategoryHandler) selection(c echo.Context) ([]*model.Category, error) {
	ctx := c.Request().Context()

	flat, err := queryBool(c, "flat")
	if err != nil {
		return nil, err
	}
	var categories []*model.Category
	if flat {
		categories, err = h.categories.AllCategories(ctx)
	} else {
		categories, err = h.categories.RootCategories(ctx)
	}
	if err != nil {
		return nil, err
	}

	if c.QueryParam("depth") == "" {
		return categories, nil
	}
	depth, err := queryInt(c, "depth", 0)
	if err != nil {
		return nil, err
	}
	return h.categories.CategoriesAtDepth(ctx, categories, depth)
}

// List handles GET /categories
func (h *CategoryHandler) List(c echo.Context) error {
	p, err := pageParams(c, h.pageLimit)
	if err != nil {
		return fail(c, err)
	}
	categories, err := h.selection(c)
	if err != nil {
		return fail(c, err)
	}

	reps, err := h.conv.Categories(c.Request().Context(), paginate(categories, p))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reps)
}

// Count handles GET /categories/count
func (h *CategoryHandler) Count(c echo.Context) error {
	categories, err := h.selection(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, len(categories))
}

// Create handles POST /categories
func (h *CategoryHandler) Create(c echo.Context) error {
	var req dto.Category
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	category := dto.CategoryEntity(&req)
	if err := h.categories.CreateCategory(c.Request().Context(), category); err != nil {
		return fail(c, err)
	}

	return h.respond(c, http.StatusCreated, category)
}

// Get handles GET /categories/:id
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	category, err := h.categories.GetCategory(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, http.StatusOK, category)
}

// Update handles PUT /categories/:id
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.Category
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	category, err := h.categories.UpdateCategory(c.Request().Context(), id, func(category *model.Category) error {
		dto.ApplyCategoryUpdate(category, &req)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, http.StatusOK, category)
}

// Delete handles DELETE /categories/:id
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.categories.DeleteCategory(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSubcategories handles GET /categories/:id/subcategories
func (h *CategoryHandler) ListSubcategories(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := pageParams(c, h.pageLimit)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	subcategories, err := h.categories.ListSubcategories(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	reps, err := h.conv.Categories(ctx, paginate(subcategories, p))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reps)
}

// AddSubcategory handles POST /categories/:id/subcategories?href=
func (h *CategoryHandler) AddSubcategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	childID, err := hrefID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.categories.AddChildCategory(c.Request().Context(), id, childID); err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, h.conv.CategoryHref(childID))
	return c.NoContent(http.StatusCreated)
}

// RemoveSubcategory handles DELETE /categories/:id/subcategories?href=
func (h *CategoryHandler) RemoveSubcategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	childID, err := hrefID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.categories.RemoveChildCategory(c.Request().Context(), id, childID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListParents handles GET /categories/:id/parentcategories
func (h *CategoryHandler) ListParents(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	parents, err := h.categories.ListParentCategories(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	reps, err := h.conv.Categories(ctx, parents)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reps)
}

// ListProducts handles GET /categories/:id/products
func (h *CategoryHandler) ListProducts(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := pageParams(c, h.pageLimit)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	products, err := h.categories.ListProductsInCategory(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	reps, err := h.conv.Products(ctx, paginate(products, p))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reps)
}

// CountProducts handles GET /categories/:id/products/count
func (h *CategoryHandler) CountProducts(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	count, err := h.categories.CountProductsInCategory(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, count)
}

// AddProduct handles POST /categories/:id/products?href=
func (h *CategoryHandler) AddProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	productID, err := hrefID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.categories.AddProductToCategory(c.Request().Context(), id, productID); err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, h.conv.ProductHref(productID))
	return c.NoContent(http.StatusCreated)
}

// RemoveProduct handles DELETE /categories/:id/products?href=
func (h *CategoryHandler) RemoveProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	productID, err := hrefID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.categories.RemoveProductFromCategory(c.Request().Context(), id, productID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// respond renders category, embedding related resources when ?embed=true
func (h *CategoryHandler) respond(c echo.Context, status int, category *model.Category) error {
	embed, err := queryBool(c, "embed")
	if err != nil {
		return fail(c, err)
	}
	rep, err := h.conv.Category(c.Request().Context(), category, embed)
	if err != nil {
		return fail(c, err)
	}
	if status == http.StatusCreated {
		c.Response().Header().Set(echo.HeaderLocation, h.conv.CategoryHref(category.ID))
	}
	return c.JSON(status, rep)
}
