package repository

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *CatalogRepository) FindCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	defer prometheus.TrackDBOperation("select_category")(time.Now())

	var category model.Category
	err := r.conn(ctx).Preload("Attributes").First(&category, id).Error
	if err != nil {
		return nil, translate(err, model.KindCategory, id)
	}
	return &category, nil
}

func (r *CatalogRepository) LockCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	defer prometheus.TrackDBOperation("lock_category")(time.Now())

	var category model.Category
	err := forUpdate(r.conn(ctx)).Preload("Attributes").First(&category, id).Error
	if err != nil {
		return nil, translate(err, model.KindCategory, id)
	}
	return &category, nil
}

func (r *CatalogRepository) FindCategoriesByIDs(ctx context.Context, ids []int64) (map[int64]*model.Category, error) {
	found := make(map[int64]*model.Category, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	defer prometheus.TrackDBOperation("select_categories")(time.Now())

	for _, chunk := range chunked(ids) {
		var categories []*model.Category
		if err := r.conn(ctx).Preload("Attributes").Where("id IN ?", chunk).Find(&categories).Error; err != nil {
			return nil, fmt.Errorf("find categories: %w", err)
		}
		for _, c := range categories {
			found[c.ID] = c
		}
	}
	return found, nil
}

func (r *CatalogRepository) FindAllCategories(ctx context.Context) ([]*model.Category, error) {
	defer prometheus.TrackDBOperation("select_categories")(time.Now())

	var categories []*model.Category
	if err := r.conn(ctx).Preload("Attributes").Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("find all categories: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepository) FindCategoriesByName(ctx context.Context, name string) ([]*model.Category, error) {
	defer prometheus.TrackDBOperation("select_categories")(time.Now())

	var categories []*model.Category
	if err := r.conn(ctx).Preload("Attributes").Where("name = ?", name).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("find categories by name: %w", err)
	}
	return categories, nil
}

// SaveCategory inserts a new category or overwrites an existing one,
// replacing its attributes
func (r *CatalogRepository) SaveCategory(ctx context.Context, category *model.Category) error {
	defer prometheus.TrackDBOperation("save_category")(time.Now())

	return r.Transaction(ctx, func(ctx context.Context) error {
		db := r.conn(ctx)
		if category.ID == 0 {
			return translate(db.Create(category).Error, model.KindCategory, 0)
		}

		if err := db.Omit(clause.Associations).Save(category).Error; err != nil {
			return translate(err, model.KindCategory, category.ID)
		}
		if err := db.Where("category_id = ?", category.ID).Delete(&model.CategoryAttribute{}).Error; err != nil {
			return fmt.Errorf("replace category %d attributes: %w", category.ID, err)
		}
		if len(category.Attributes) == 0 {
			return nil
		}
		for i := range category.Attributes {
			category.Attributes[i].ID = 0
			category.Attributes[i].CategoryID = category.ID
		}
		return translate(db.Create(&category.Attributes).Error, model.KindAttribute, category.ID)
	})
}

// RemoveCategory applies the category removal policy
func (r *CatalogRepository) RemoveCategory(ctx context.Context, category *model.Category) error {
	defer prometheus.TrackDBOperation("remove_category")(time.Now())

	err := remove(r.conn(ctx), model.KindCategory, category, category.Archive)
	return translate(err, model.KindCategory, category.ID)
}

func (r *CatalogRepository) ChildXrefs(ctx context.Context, parentIDs ...int64) ([]model.CategoryXref, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	defer prometheus.TrackDBOperation("select_category_xrefs")(time.Now())

	return r.categoryXrefsIn(ctx, "category_id", parentIDs)
}

func (r *CatalogRepository) ParentXrefs(ctx context.Context, childIDs ...int64) ([]model.CategoryXref, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}
	defer prometheus.TrackDBOperation("select_category_xrefs")(time.Now())

	return r.categoryXrefsIn(ctx, "sub_category_id", childIDs)
}

// AllCategoryXrefs returns every category edge in insertion order
func (r *CatalogRepository) AllCategoryXrefs(ctx context.Context) ([]model.CategoryXref, error) {
	defer prometheus.TrackDBOperation("select_category_xrefs")(time.Now())

	var xrefs []model.CategoryXref
	if err := r.conn(ctx).Order("id").Find(&xrefs).Error; err != nil {
		return nil, fmt.Errorf("find category xrefs: %w", err)
	}
	return xrefs, nil
}

// categoryXrefsIn loads the edges whose column is one of ids, ordered by id
func (r *CatalogRepository) categoryXrefsIn(ctx context.Context, column string, ids []int64) ([]model.CategoryXref, error) {
	var xrefs []model.CategoryXref
	for _, chunk := range chunked(ids) {
		var part []model.CategoryXref
		if err := r.conn(ctx).Where(column+" IN ?", chunk).Order("id").Find(&part).Error; err != nil {
			return nil, fmt.Errorf("find category xrefs by %s: %w", column, err)
		}
		xrefs = append(xrefs, part...)
	}
	if len(ids) > inChunkSize {
		slices.SortFunc(xrefs, func(a, b model.CategoryXref) int { return cmp.Compare(a.ID, b.ID) })
	}
	return xrefs, nil
}

func (r *CatalogRepository) CreateCategoryXref(ctx context.Context, xref *model.CategoryXref) error {
	defer prometheus.TrackDBOperation("insert_category_xref")(time.Now())

	err := r.conn(ctx).Create(xref).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(model.KindCategoryXref, xref.CategoryID, xref.SubCategoryID, apperror.ReasonDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create category xref %d -> %d: %w", xref.CategoryID, xref.SubCategoryID, err)
	}
	return nil
}

func (r *CatalogRepository) DeleteCategoryXref(ctx context.Context, xref *model.CategoryXref) error {
	defer prometheus.TrackDBOperation("delete_category_xref")(time.Now())

	result := r.conn(ctx).Delete(&model.CategoryXref{}, xref.ID)
	if result.Error != nil {
		return fmt.Errorf("delete category xref %d: %w", xref.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(model.KindCategoryXref, xref.SubCategoryID)
	}
	return nil
}

func (r *CatalogRepository) ProductXrefsForCategory(ctx context.Context, categoryID int64) ([]model.CategoryProductXref, error) {
	defer prometheus.TrackDBOperation("select_product_xrefs")(time.Now())

	var xrefs []model.CategoryProductXref
	if err := r.conn(ctx).Where("category_id = ?", categoryID).Order("id").Find(&xrefs).Error; err != nil {
		return nil, fmt.Errorf("find product xrefs of category %d: %w", categoryID, err)
	}
	return xrefs, nil
}

func (r *CatalogRepository) ProductXrefsForProduct(ctx context.Context, productID int64) ([]model.CategoryProductXref, error) {
	defer prometheus.TrackDBOperation("select_product_xrefs")(time.Now())

	var xrefs []model.CategoryProductXref
	if err := r.conn(ctx).Where("product_id = ?", productID).Order("id").Find(&xrefs).Error; err != nil {
		return nil, fmt.Errorf("find category xrefs of product %d: %w", productID, err)
	}
	return xrefs, nil
}

func (r *CatalogRepository) CreateProductXref(ctx context.Context, xref *model.CategoryProductXref) error {
	defer prometheus.TrackDBOperation("insert_product_xref")(time.Now())

	err := r.conn(ctx).Create(xref).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(model.KindCategoryProductXref, xref.CategoryID, xref.ProductID, apperror.ReasonDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create product xref %d -> %d: %w", xref.CategoryID, xref.ProductID, err)
	}
	return nil
}

func (r *CatalogRepository) DeleteProductXref(ctx context.Context, xref *model.CategoryProductXref) error {
	defer prometheus.TrackDBOperation("delete_product_xref")(time.Now())

	result := r.conn(ctx).Delete(&model.CategoryProductXref{}, xref.ID)
	if result.Error != nil {
		return fmt.Errorf("delete product xref %d: %w", xref.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(model.KindProduct, xref.ProductID)
	}
	return nil
}
