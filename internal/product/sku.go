package product

import (
	"context"
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

// ListSkus returns the default sku of a visible product followed by its
// additional skus in creation order
func (s *Service) ListSkus(ctx context.Context, productID int64) ([]*model.Sku, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	skus, err := s.store.SkusForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	skus = catalog.FilterVisible(skus)

	ordered := make([]*model.Sku, 0, len(skus))
	for _, sku := range skus {
		if isDefault(product, sku.ID) {
			ordered = append(ordered, sku)
		}
	}
	for _, sku := range skus {
		if !isDefault(product, sku.ID) {
			ordered = append(ordered, sku)
		}
	}
	return ordered, nil
}

// CountSkus counts what ListSkus returns
func (s *Service) CountSkus(ctx context.Context, productID int64) (int, error) {
	skus, err := s.ListSkus(ctx, productID)
	if err != nil {
		return 0, err
	}
	return len(skus), nil
}

// GetSku returns skuID when it belongs to a visible product
func (s *Service) GetSku(ctx context.Context, productID, skuID int64) (*model.Sku, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.skuOf(ctx, productID, skuID)
}

// GetDefaultSku returns the default sku of a visible product
func (s *Service) GetDefaultSku(ctx context.Context, productID int64) (*model.Sku, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.DefaultSkuID == nil {
		return nil, apperror.NotFound(model.KindSku, 0)
	}
	return s.skuOf(ctx, productID, *product.DefaultSkuID)
}

// AddSku stores an additional sku for a visible product. When the product
// has options, the sku must pick an allowed value for each of them.
func (s *Service) AddSku(ctx context.Context, productID int64, sku *model.Sku) (*model.Sku, error) {
	if sku.ActiveStartDate.IsZero() {
		return nil, s.finish(ctx, "add_sku", apperror.Invalid("active_start_date", "required"), zap.Int64("product_id", productID))
	}

	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		product, err := s.lockVisibleProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.prepareSku(product, sku); err != nil {
			return err
		}
		return s.store.SaveSku(ctx, sku)
	})
	if err != nil {
		return nil, s.finish(ctx, "add_sku", err, zap.Int64("product_id", productID))
	}
	prometheus.UpdateSkuInventory(productID, sku.ID, sku.QuantityAvailable)
	return sku, s.finish(ctx, "add_sku", nil, zap.Int64("product_id", productID), zap.Int64("sku_id", sku.ID))
}

// UpdateSku applies update to a sku of a visible product
func (s *Service) UpdateSku(ctx context.Context, productID, skuID int64, update func(*model.Sku) error) (*model.Sku, error) {
	sku, err := s.updateSku(ctx, productID, func(*model.Product) (int64, error) { return skuID, nil }, update)
	return sku, s.finish(ctx, "update_sku", err, zap.Int64("product_id", productID), zap.Int64("sku_id", skuID))
}

// UpdateDefaultSku applies update to the default sku of a visible product
func (s *Service) UpdateDefaultSku(ctx context.Context, productID int64, update func(*model.Sku) error) (*model.Sku, error) {
	sku, err := s.updateSku(ctx, productID, func(product *model.Product) (int64, error) {
		if product.DefaultSkuID == nil {
			return 0, apperror.NotFound(model.KindSku, 0)
		}
		return *product.DefaultSkuID, nil
	}, update)
	return sku, s.finish(ctx, "update_default_sku", err, zap.Int64("product_id", productID))
}

func (s *Service) updateSku(ctx context.Context, productID int64, pick func(*model.Product) (int64, error), update func(*model.Sku) error) (*model.Sku, error) {
	var updated *model.Sku
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		product, err := s.lockVisibleProduct(ctx, productID)
		if err != nil {
			return err
		}
		skuID, err := pick(product)
		if err != nil {
			return err
		}
		sku, err := s.skuOf(ctx, productID, skuID)
		if err != nil {
			return err
		}
		if err := update(sku); err != nil {
			return err
		}
		sku.ID = skuID
		sku.ProductID = productID
		if err := validateSku(sku); err != nil {
			return err
		}
		updated = sku
		return s.store.SaveSku(ctx, sku)
	})
	if err != nil {
		return nil, err
	}
	prometheus.UpdateSkuInventory(productID, updated.ID, updated.QuantityAvailable)
	return updated, nil
}

// DeleteSku removes an additional sku. The default sku can only be replaced
// through UpdateDefaultSku.
func (s *Service) DeleteSku(ctx context.Context, productID, skuID int64) error {
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		product, err := s.lockVisibleProduct(ctx, productID)
		if err != nil {
			return err
		}
		if isDefault(product, skuID) {
			return apperror.Conflict(model.KindSku, productID, skuID, apperror.ReasonDefaultSku)
		}
		sku, err := s.skuOf(ctx, productID, skuID)
		if err != nil {
			return err
		}
		return s.store.DeleteSku(ctx, sku)
	})
	return s.finish(ctx, "delete_sku", err, zap.Int64("product_id", productID), zap.Int64("sku_id", skuID))
}

// GetSkuQuantity returns the quantity available of a sku
func (s *Service) GetSkuQuantity(ctx context.Context, productID, skuID int64) (int, error) {
	sku, err := s.GetSku(ctx, productID, skuID)
	if err != nil {
		return 0, err
	}
	return sku.QuantityAvailable, nil
}

// UpdateSkuQuantity sets the quantity available of a sku
func (s *Service) UpdateSkuQuantity(ctx context.Context, productID, skuID int64, quantity int) error {
	if quantity < 0 {
		return s.finish(ctx, "update_quantity", apperror.Invalid("quantity", "must not be negative"))
	}
	_, err := s.updateSku(ctx, productID, func(*model.Product) (int64, error) { return skuID, nil }, func(sku *model.Sku) error {
		sku.QuantityAvailable = quantity
		return nil
	})
	return s.finish(ctx, "update_quantity", err, zap.Int64("product_id", productID), zap.Int64("sku_id", skuID), zap.Int("quantity", quantity))
}

// GetSkuAvailability returns the inventory type of a sku
func (s *Service) GetSkuAvailability(ctx context.Context, productID, skuID int64) (model.InventoryType, error) {
	sku, err := s.GetSku(ctx, productID, skuID)
	if err != nil {
		return "", err
	}
	return sku.InventoryType, nil
}

// UpdateSkuAvailability sets the inventory type of a sku
func (s *Service) UpdateSkuAvailability(ctx context.Context, productID, skuID int64, availability string) error {
	inventoryType, ok := model.ParseInventoryType(strings.TrimSpace(availability))
	if !ok {
		return s.finish(ctx, "update_availability", apperror.Invalid("availability", "unknown value "+availability))
	}
	_, err := s.updateSku(ctx, productID, func(*model.Product) (int64, error) { return skuID, nil }, func(sku *model.Sku) error {
		sku.InventoryType = inventoryType
		return nil
	})
	return s.finish(ctx, "update_availability", err, zap.Int64("product_id", productID), zap.Int64("sku_id", skuID))
}

// skuOf loads skuID and checks it belongs to productID
func (s *Service) skuOf(ctx context.Context, productID, skuID int64) (*model.Sku, error) {
	sku, err := s.store.FindSkuByID(ctx, skuID)
	if err != nil {
		return nil, err
	}
	if sku.ProductID != productID || !catalog.IsVisible(sku) {
		return nil, apperror.NotFound(model.KindSku, skuID)
	}
	return sku, nil
}

// prepareSku validates an additional sku of product and binds it to it
func (s *Service) prepareSku(product *model.Product, sku *model.Sku) error {
	if sku.ActiveStartDate.IsZero() {
		sku.ActiveStartDate = s.now()
	}
	if err := validateSku(sku); err != nil {
		return err
	}
	if err := validateOptionValues(product, sku.OptionValues); err != nil {
		return err
	}
	sku.ID = 0
	sku.ProductID = product.ID
	sku.Archived = false
	return nil
}

func isDefault(product *model.Product, skuID int64) bool {
	return product.DefaultSkuID != nil && *product.DefaultSkuID == skuID
}

func validateSku(sku *model.Sku) error {
	sku.Name = strings.TrimSpace(sku.Name)
	if sku.Name == "" {
		return apperror.Invalid("name", "required")
	}
	if sku.QuantityAvailable < 0 {
		return apperror.Invalid("quantity_available", "must not be negative")
	}
	if err := validatePrices(sku.RetailPrice, sku.SalePrice); err != nil {
		return err
	}

	sku.Currency = strings.ToUpper(strings.TrimSpace(sku.Currency))
	if sku.Currency == "" {
		sku.Currency = defaultCurrency
	}
	if len(sku.Currency) != 3 {
		return apperror.Invalid("currency", "must be a 3 letter code")
	}

	if sku.InventoryType == "" {
		sku.InventoryType = model.AlwaysAvailable
	} else if _, ok := model.ParseInventoryType(string(sku.InventoryType)); !ok {
		return apperror.Invalid("availability", "unknown value "+string(sku.InventoryType))
	}

	if sku.ActiveEndDate != nil && sku.ActiveEndDate.Before(sku.ActiveStartDate) {
		return apperror.Invalid("active_end_date", "must not precede active_start_date")
	}
	return nil
}

// validatePrices requires a positive retail price and, when a sale price is
// set, 0 <= sale <= retail
func validatePrices(retail decimal.Decimal, sale decimal.NullDecimal) error {
	if !retail.IsPositive() {
		return apperror.Invalid("retail_price", "must be greater than zero")
	}
	if !sale.Valid {
		return nil
	}
	if sale.Decimal.IsNegative() {
		return apperror.Invalid("sale_price", "must not be negative")
	}
	if sale.Decimal.GreaterThan(retail) {
		return apperror.Invalid("sale_price", "must not exceed retail_price")
	}
	return nil
}

func validateOptionValues(product *model.Product, values []model.SkuOptionValue) error {
	if len(product.Options) == 0 {
		if len(values) > 0 {
			return apperror.Invalid("option_values", "product has no options")
		}
		return nil
	}

	given := make(map[string]string, len(values))
	for _, v := range values {
		given[v.OptionName] = v.Value
	}
	if len(given) != len(product.Options) || len(given) != len(values) {
		return apperror.Invalid("option_values", "one value per product option required")
	}
	for i := range product.Options {
		option := &product.Options[i]
		value, ok := given[option.Name]
		if !ok {
			return apperror.Invalid("option_values", "missing value for option "+option.Name)
		}
		if !option.Allows(value) {
			return apperror.Invalid("option_values", "value "+value+" not allowed for option "+option.Name)
		}
	}
	return nil
}
