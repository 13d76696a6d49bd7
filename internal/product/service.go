// Package product manages products, their skus, attributes and options.
package product

import (
	"context"
	"strings"
	"time"

	"catalog-service/internal/apperror"
	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"go.uber.org/zap"
)

// Service implements the product operations
type Service struct {
	store      Store
	categories CategoryLinker
	log        *zap.Logger
	now        func() time.Time
}

// NewService creates a Service. categories may be nil, in which case a
// category name given at creation is ignored.
func NewService(store Store, categories CategoryLinker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:      store,
		categories: categories,
		log:        log.Named("product"),
		now:        time.Now,
	}
}

// NewProduct is the input of CreateProduct
type NewProduct struct {
	Product    *model.Product
	DefaultSku *model.Sku
	// Skus are additional skus. Invalid ones are skipped.
	Skus []*model.Sku
	// CategoryName links the product to the first visible category with
	// that name. Unknown names are ignored.
	CategoryName string
}

// ListProducts returns every visible product
func (s *Service) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := s.store.FindAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterVisible(products), nil
}

// CountProducts counts what ListProducts returns
func (s *Service) CountProducts(ctx context.Context) (int, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// GetProduct returns a visible product
func (s *Service) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !catalog.IsVisible(product) {
		return nil, apperror.NotFound(model.KindProduct, id)
	}
	return product, nil
}

// CreateProduct stores a product together with its default sku
func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (*model.Product, error) {
	product, defaultSku := in.Product, in.DefaultSku
	if product == nil {
		return nil, s.finish(ctx, "create", apperror.Invalid("product", "required"))
	}
	if err := validateProduct(product); err != nil {
		return nil, s.finish(ctx, "create", err)
	}
	if defaultSku == nil {
		return nil, s.finish(ctx, "create", apperror.Invalid("default_sku", "required"))
	}
	if strings.TrimSpace(defaultSku.Name) == "" {
		defaultSku.Name = product.Name
	}
	if defaultSku.ActiveStartDate.IsZero() {
		defaultSku.ActiveStartDate = s.now()
	}
	if err := validateSku(defaultSku); err != nil {
		return nil, s.finish(ctx, "create", err)
	}

	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		product.ID = 0
		product.Archived = false
		product.DefaultSkuID = nil
		if err := s.store.SaveProduct(ctx, product); err != nil {
			return err
		}

		defaultSku.ID = 0
		defaultSku.ProductID = product.ID
		defaultSku.OptionValues = nil
		if err := s.store.SaveSku(ctx, defaultSku); err != nil {
			return err
		}
		product.DefaultSkuID = &defaultSku.ID
		if err := s.store.SaveProduct(ctx, product); err != nil {
			return err
		}

		for _, sku := range in.Skus {
			if err := s.prepareSku(product, sku); err != nil {
				s.logger(ctx).Warn("Skipping invalid sku", zap.Int64("product_id", product.ID), zap.Error(err))
				continue
			}
			if err := s.store.SaveSku(ctx, sku); err != nil {
				return err
			}
		}

		return s.linkCategory(ctx, product.ID, in.CategoryName)
	})
	if err != nil {
		return nil, s.finish(ctx, "create", err)
	}
	return product, s.finish(ctx, "create", nil, zap.Int64("product_id", product.ID))
}

func (s *Service) linkCategory(ctx context.Context, productID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || s.categories == nil {
		return nil
	}
	category, err := s.categories.FindCategoryByName(ctx, name)
	if apperror.IsNotFound(err) {
		s.logger(ctx).Info("Category not found, product left unlinked", zap.String("category_name", name))
		return nil
	}
	if err != nil {
		return err
	}
	return s.categories.AddProductToCategory(ctx, category.ID, productID)
}

// UpdateProduct applies update to a visible product and stores the result.
// The default sku reference cannot be changed this way.
func (s *Service) UpdateProduct(ctx context.Context, id int64, update func(*model.Product) error) (*model.Product, error) {
	var updated *model.Product
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		product, err := s.lockVisibleProduct(ctx, id)
		if err != nil {
			return err
		}
		defaultSkuID := product.DefaultSkuID
		if err := update(product); err != nil {
			return err
		}
		if err := validateProduct(product); err != nil {
			return err
		}
		product.ID = id
		product.DefaultSkuID = defaultSkuID
		updated = product
		return s.store.SaveProduct(ctx, product)
	})
	return updated, s.finish(ctx, "update", err, zap.Int64("product_id", id))
}

// DeleteProduct archives a visible product. Its category memberships stay
// in place and are filtered out on read.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		product, err := s.lockVisibleProduct(ctx, id)
		if err != nil {
			return err
		}
		return s.store.RemoveProduct(ctx, product)
	})
	return s.finish(ctx, "delete", err, zap.Int64("product_id", id))
}

// Attributes returns the attributes of a visible product
func (s *Service) Attributes(ctx context.Context, id int64) (map[string]string, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return product.AttributeMap(), nil
}

// PutAttribute sets the attribute called name
func (s *Service) PutAttribute(ctx context.Context, id int64, name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.finish(ctx, "put_attribute", apperror.Invalid("name", "required"))
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return s.finish(ctx, "put_attribute", err, zap.Int64("product_id", id))
	}
	err := s.store.SaveProductAttribute(ctx, id, name, value)
	return s.finish(ctx, "put_attribute", err, zap.Int64("product_id", id), zap.String("attribute", name))
}

// DeleteAttribute removes the attribute called name
func (s *Service) DeleteAttribute(ctx context.Context, id int64, name string) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return s.finish(ctx, "delete_attribute", err, zap.Int64("product_id", id))
	}
	err := s.store.DeleteProductAttribute(ctx, id, name)
	return s.finish(ctx, "delete_attribute", err, zap.Int64("product_id", id), zap.String("attribute", name))
}

func (s *Service) lockVisibleProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.store.LockProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !catalog.IsVisible(product) {
		return nil, apperror.NotFound(model.KindProduct, id)
	}
	return product, nil
}

// logger returns the request logger carried by ctx, or the service's own
func (s *Service) logger(ctx context.Context) *zap.Logger {
	if log, ok := logger.Lookup(ctx); ok {
		return log.Named("product")
	}
	return s.log
}

// finish logs the outcome of a mutation and records it in the metrics
func (s *Service) finish(ctx context.Context, op string, err error, fields ...zap.Field) error {
	log := s.logger(ctx)
	if err == nil {
		prometheus.RecordProductOperation(op)
		log.Info("Product "+op, fields...)
		return nil
	}

	fields = append(fields, zap.Error(err))
	if apperror.KindOf(err) == apperror.KindInternal {
		log.Error("Product "+op+" failed", fields...)
	} else {
		log.Warn("Product "+op+" rejected", fields...)
	}
	return err
}

func validateProduct(product *model.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return apperror.Invalid("name", "required")
	}
	if product.ActiveEndDate != nil && !product.ActiveStartDate.IsZero() && product.ActiveEndDate.Before(product.ActiveStartDate) {
		return apperror.Invalid("active_end_date", "must not precede active_start_date")
	}
	for _, option := range product.Options {
		if strings.TrimSpace(option.Name) == "" {
			return apperror.Invalid("options.name", "required")
		}
	}
	return nil
}
