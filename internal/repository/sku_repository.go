package repository

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"gorm.io/gorm/clause"
)

func (r *CatalogRepository) FindSkuByID(ctx context.Context, id int64) (*model.Sku, error) {
	defer prometheus.TrackDBOperation("select_sku")(time.Now())

	var sku model.Sku
	if err := r.conn(ctx).Preload("OptionValues").First(&sku, id).Error; err != nil {
		return nil, translate(err, model.KindSku, id)
	}
	return &sku, nil
}

// SkusForProduct returns every sku pointing at productID, oldest first
func (r *CatalogRepository) SkusForProduct(ctx context.Context, productID int64) ([]*model.Sku, error) {
	defer prometheus.TrackDBOperation("select_skus")(time.Now())

	var skus []*model.Sku
	err := r.conn(ctx).Preload("OptionValues").Where("product_id = ?", productID).Order("id").Find(&skus).Error
	if err != nil {
		return nil, fmt.Errorf("find skus of product %d: %w", productID, err)
	}
	return skus, nil
}

// SaveSku inserts a new sku or overwrites an existing one, replacing its
// option values
func (r *CatalogRepository) SaveSku(ctx context.Context, sku *model.Sku) error {
	defer prometheus.TrackDBOperation("save_sku")(time.Now())

	return r.Transaction(ctx, func(ctx context.Context) error {
		db := r.conn(ctx)
		if sku.ID == 0 {
			return translate(db.Create(sku).Error, model.KindSku, 0)
		}

		if err := db.Omit(clause.Associations).Save(sku).Error; err != nil {
			return translate(err, model.KindSku, sku.ID)
		}
		if err := db.Where("sku_id = ?", sku.ID).Delete(&model.SkuOptionValue{}).Error; err != nil {
			return fmt.Errorf("replace sku %d option values: %w", sku.ID, err)
		}
		if len(sku.OptionValues) == 0 {
			return nil
		}
		for i := range sku.OptionValues {
			sku.OptionValues[i].ID = 0
			sku.OptionValues[i].SkuID = sku.ID
		}
		return translate(db.Create(&sku.OptionValues).Error, model.KindSku, sku.ID)
	})
}

// DeleteSku applies the sku removal policy
func (r *CatalogRepository) DeleteSku(ctx context.Context, sku *model.Sku) error {
	defer prometheus.TrackDBOperation("delete_sku")(time.Now())

	return r.Transaction(ctx, func(ctx context.Context) error {
		db := r.conn(ctx)
		if err := db.Where("sku_id = ?", sku.ID).Delete(&model.SkuOptionValue{}).Error; err != nil {
			return fmt.Errorf("delete sku %d option values: %w", sku.ID, err)
		}
		return translate(remove(db, model.KindSku, sku, sku.Archive), model.KindSku, sku.ID)
	})
}
