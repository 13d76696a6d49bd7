package handler

import (
	"net/http"

	"catalog-service/internal/dto"
	"catalog-service/internal/model"
	"catalog-service/internal/product"

	"github.com/labstack/echo/v4"
)

// SkuHandler serves /products/:id/skus
type SkuHandler struct {
	products *product.Service
	conv     *dto.Converter
}

// NewSkuHandler creates a SkuHandler
func NewSkuHandler(products *product.Service, conv *dto.Converter) *SkuHandler {
	return &SkuHandler{products: products, conv: conv}
}

func skuPath(c echo.Context) (productID, skuID int64, err error) {
	if productID, err = pathID(c, "id"); err != nil {
		return 0, 0, err
	}
	if skuID, err = pathID(c, "skuId"); err != nil {
		return 0, 0, err
	}
	return productID, skuID, nil
}

// List handles GET /products/:id/skus
func (h *SkuHandler) List(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	skus, err := h.products.ListSkus(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.conv.Skus(skus))
}

// Count handles GET /products/:id/skus/count
func (h *SkuHandler) Count(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	count, err := h.products.CountSkus(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, count)
}

// Add handles POST /products/:id/skus
func (h *SkuHandler) Add(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.Sku
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	sku, err := h.products.AddSku(c.Request().Context(), id, dto.SkuEntity(&req))
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, h.conv.SkuHref(id, sku.ID))
	return c.JSON(http.StatusCreated, h.conv.Sku(sku))
}

// Get handles GET /products/:id/skus/:skuId
func (h *SkuHandler) Get(c echo.Context) error {
	productID, skuID, err := skuPath(c)
	if err != nil {
		return fail(c, err)
	}
	sku, err := h.products.GetSku(c.Request().Context(), productID, skuID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.conv.Sku(sku))
}

// Update handles PUT /products/:id/skus/:skuId
func (h *SkuHandler) Update(c echo.Context) error {
	productID, skuID, err := skuPath(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.Sku
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	sku, err := h.products.UpdateSku(c.Request().Context(), productID, skuID, func(sku *model.Sku) error {
		dto.ApplySkuUpdate(sku, &req)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.conv.Sku(sku))
}

// Delete handles DELETE /products/:id/skus/:skuId
func (h *SkuHandler) Delete(c echo.Context) error {
	productID, skuID, err := skuPath(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.products.DeleteSku(c.Request().Context(), productID, skuID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetDefault handles GET /products/:id/skus/default
func (h *SkuHandler) GetDefault(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	sku, err := h.products.GetDefaultSku(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.conv.Sku(sku))
}

// UpdateDefault handles PUT /products/:id/skus/default
func (h *SkuHandler) UpdateDefault(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.Sku
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	sku, err := h.products.UpdateDefaultSku(c.Request().Context(), id, func(sku *model.Sku) error {
		dto.ApplySkuUpdate(sku, &req)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.conv.Sku(sku))
}

// GetQuantity handles GET /products/:id/skus/:skuId/quantity
func (h *SkuHandler) GetQuantity(c echo.Context) error {
	productID, skuID, err := skuPath(c)
	if err != nil {
		return fail(c, err)
	}
	quantity, err := h.products.GetSkuQuantity(c.Request().Context(), productID, skuID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.Quantity{Quantity: quantity})
}

// UpdateQuantity handles PUT /products/:id/skus/:skuId/quantity
func (h *SkuHandler) UpdateQuantity(c echo.Context) error {
	productID, skuID, err := skuPath(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.Quantity
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.products.UpdateSkuQuantity(c.Request().Context(), productID, skuID, req.Quantity); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetAvailability handles GET /products/:id/skus/:skuId/availability
func (h *SkuHandler) GetAvailability(c echo.Context) error {
	productID, skuID, err := skuPath(c)
	if err != nil {
		return fail(c, err)
	}
	availability, err := h.products.GetSkuAvailability(c.Request().Context(), productID, skuID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.Availability{Availability: string(availability)})
}

// UpdateAvailability handles PUT /products/:id/skus/:skuId/availability
func (h *SkuHandler) UpdateAvailability(c echo.Context) error {
	productID, skuID, err := skuPath(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.Availability
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.products.UpdateSkuAvailability(c.Request().Context(), productID, skuID, req.Availability); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
