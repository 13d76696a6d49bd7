package repository

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func preloadProduct(db *gorm.DB) *gorm.DB {
	return db.Preload("Attributes").Preload("Options.AllowedValues")
}

func (r *CatalogRepository) FindProductByID(ctx context.Context, id int64) (*model.Product, error) {
	defer prometheus.TrackDBOperation("select_product")(time.Now())

	var product model.Product
	if err := preloadProduct(r.conn(ctx)).First(&product, id).Error; err != nil {
		return nil, translate(err, model.KindProduct, id)
	}
	return &product, nil
}

func (r *CatalogRepository) LockProductByID(ctx context.Context, id int64) (*model.Product, error) {
	defer prometheus.TrackDBOperation("lock_product")(time.Now())

	var product model.Product
	if err := preloadProduct(forUpdate(r.conn(ctx))).First(&product, id).Error; err != nil {
		return nil, translate(err, model.KindProduct, id)
	}
	return &product, nil
}

func (r *CatalogRepository) FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error) {
	found := make(map[int64]*model.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	defer prometheus.TrackDBOperation("select_products")(time.Now())

	for _, chunk := range chunked(ids) {
		var products []*model.Product
		if err := preloadProduct(r.conn(ctx)).Where("id IN ?", chunk).Find(&products).Error; err != nil {
			return nil, fmt.Errorf("find products: %w", err)
		}
		for _, p := range products {
			found[p.ID] = p
		}
	}
	return found, nil
}

func (r *CatalogRepository) FindAllProducts(ctx context.Context) ([]*model.Product, error) {
	defer prometheus.TrackDBOperation("select_products")(time.Now())

	var products []*model.Product
	if err := preloadProduct(r.conn(ctx)).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("find all products: %w", err)
	}
	return products, nil
}

// SaveProduct inserts a new product or overwrites an existing one,
// replacing its attributes and options
func (r *CatalogRepository) SaveProduct(ctx context.Context, product *model.Product) error {
	defer prometheus.TrackDBOperation("save_product")(time.Now())

	return r.Transaction(ctx, func(ctx context.Context) error {
		db := r.conn(ctx)
		if product.ID == 0 {
			return translate(db.Create(product).Error, model.KindProduct, 0)
		}

		if err := db.Omit(clause.Associations).Save(product).Error; err != nil {
			return translate(err, model.KindProduct, product.ID)
		}
		if err := r.replaceProductAttributes(db, product); err != nil {
			return err
		}
		return r.replaceProductOptions(db, product)
	})
}

func (r *CatalogRepository) replaceProductAttributes(db *gorm.DB, product *model.Product) error {
	if err := db.Where("product_id = ?", product.ID).Delete(&model.ProductAttribute{}).Error; err != nil {
		return fmt.Errorf("replace product %d attributes: %w", product.ID, err)
	}
	if len(product.Attributes) == 0 {
		return nil
	}
	for i := range product.Attributes {
		product.Attributes[i].ID = 0
		product.Attributes[i].ProductID = product.ID
	}
	return translate(db.Create(&product.Attributes).Error, model.KindAttribute, product.ID)
}

func (r *CatalogRepository) replaceProductOptions(db *gorm.DB, product *model.Product) error {
	optionIDs := db.Model(&model.ProductOption{}).Select("id").Where("product_id = ?", product.ID)
	if err := db.Where("product_option_id IN (?)", optionIDs).Delete(&model.ProductOptionValue{}).Error; err != nil {
		return fmt.Errorf("replace product %d option values: %w", product.ID, err)
	}
	if err := db.Where("product_id = ?", product.ID).Delete(&model.ProductOption{}).Error; err != nil {
		return fmt.Errorf("replace product %d options: %w", product.ID, err)
	}
	if len(product.Options) == 0 {
		return nil
	}
	for i := range product.Options {
		product.Options[i].ID = 0
		product.Options[i].ProductID = product.ID
		for j := range product.Options[i].AllowedValues {
			product.Options[i].AllowedValues[j].ID = 0
			product.Options[i].AllowedValues[j].ProductOptionID = 0
		}
	}
	if err := db.Create(&product.Options).Error; err != nil {
		return fmt.Errorf("create product %d options: %w", product.ID, err)
	}
	return nil
}

// RemoveProduct applies the product removal policy. Category memberships
// are not touched.
func (r *CatalogRepository) RemoveProduct(ctx context.Context, product *model.Product) error {
	defer prometheus.TrackDBOperation("remove_product")(time.Now())

	err := remove(r.conn(ctx), model.KindProduct, product, product.Archive)
	return translate(err, model.KindProduct, product.ID)
}

// SaveProductAttribute inserts or overwrites the attribute called name
func (r *CatalogRepository) SaveProductAttribute(ctx context.Context, productID int64, name, value string) error {
	defer prometheus.TrackDBOperation("upsert_product_attribute")(time.Now())

	attribute := model.ProductAttribute{ProductID: productID, Name: name, Value: value}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&attribute).Error
	if err != nil {
		return fmt.Errorf("save product %d attribute %q: %w", productID, name, err)
	}
	return nil
}

// DeleteProductAttribute removes the attribute called name
func (r *CatalogRepository) DeleteProductAttribute(ctx context.Context, productID int64, name string) error {
	defer prometheus.TrackDBOperation("delete_product_attribute")(time.Now())

	result := r.conn(ctx).Where("product_id = ? AND name = ?", productID, name).Delete(&model.ProductAttribute{})
	if result.Error != nil {
		return fmt.Errorf("delete product %d attribute %q: %w", productID, name, result.Error)
	}
	if result.RowsAffected == 0 {
		return &apperror.NotFoundError{Kind: model.KindAttribute, Name: name}
	}
	return nil
}
