package hierarchy

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/catalog"
	"catalog-service/internal/model"

	"go.uber.org/zap"
)

// AddChildCategory links childID under parentID.
// Self links, duplicate links and links closing a cycle are rejected with a
// ConflictError; missing or archived categories with a NotFoundError.
func (m *Manager) AddChildCategory(ctx context.Context, parentID, childID int64) error {
	fields := []zap.Field{zap.Int64("category_id", parentID), zap.Int64("sub_category_id", childID)}

	if parentID == childID {
		return m.finish(ctx, "add_child", apperror.Conflict(model.KindCategoryXref, parentID, childID, apperror.ReasonSelfReference), fields...)
	}

	err := m.store.Transaction(ctx, func(ctx context.Context) error {
		// Edge inserts run one at a time so two of them cannot close a loop together
		if err := m.store.LockHierarchy(ctx); err != nil {
			return err
		}
		if _, err := m.lockVisibleCategory(ctx, parentID); err != nil {
			return err
		}
		if _, err := m.visibleCategory(ctx, childID); err != nil {
			return err
		}

		xrefs, err := m.store.ChildXrefs(ctx, parentID)
		if err != nil {
			return err
		}
		for _, x := range xrefs {
			if x.SubCategoryID == childID {
				return apperror.Conflict(model.KindCategoryXref, parentID, childID, apperror.ReasonDuplicate)
			}
		}

		cycle, err := m.reaches(ctx, childID, parentID)
		if err != nil {
			return err
		}
		if cycle {
			return apperror.Conflict(model.KindCategoryXref, parentID, childID, apperror.ReasonCycle)
		}

		return m.store.CreateCategoryXref(ctx, &model.CategoryXref{CategoryID: parentID, SubCategoryID: childID})
	})
	return m.finish(ctx, "add_child", err, fields...)
}

// RemoveChildCategory deletes the edge parentID -> childID.
// A second call for the same pair fails with a NotFoundError.
func (m *Manager) RemoveChildCategory(ctx context.Context, parentID, childID int64) error {
	err := m.store.Transaction(ctx, func(ctx context.Context) error {
		if _, err := m.lockVisibleCategory(ctx, parentID); err != nil {
			return err
		}

		xrefs, err := m.store.ChildXrefs(ctx, parentID)
		if err != nil {
			return err
		}
		for i := range xrefs {
			if xrefs[i].SubCategoryID == childID {
				return m.store.DeleteCategoryXref(ctx, &xrefs[i])
			}
		}
		return apperror.NotFound(model.KindCategoryXref, childID)
	})
	return m.finish(ctx, "remove_child", err, zap.Int64("category_id", parentID), zap.Int64("sub_category_id", childID))
}

// ListSubcategories returns the visible children of a visible category in
// link order
func (m *Manager) ListSubcategories(ctx context.Context, id int64) ([]*model.Category, error) {
	if _, err := m.visibleCategory(ctx, id); err != nil {
		return nil, err
	}
	xrefs, err := m.store.ChildXrefs(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(xrefs))
	for i, x := range xrefs {
		ids[i] = x.SubCategoryID
	}
	return m.resolveCategories(ctx, ids)
}

// ListParentCategories returns the visible parents of a visible category
func (m *Manager) ListParentCategories(ctx context.Context, id int64) ([]*model.Category, error) {
	if _, err := m.visibleCategory(ctx, id); err != nil {
		return nil, err
	}
	xrefs, err := m.store.ParentXrefs(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(xrefs))
	for i, x := range xrefs {
		ids[i] = x.CategoryID
	}
	return m.resolveCategories(ctx, ids)
}

// AddProductToCategory creates the membership of productID in categoryID
func (m *Manager) AddProductToCategory(ctx context.Context, categoryID, productID int64) error {
	err := m.store.Transaction(ctx, func(ctx context.Context) error {
		if _, err := m.lockVisibleCategory(ctx, categoryID); err != nil {
			return err
		}
		if _, err := m.visibleProduct(ctx, productID); err != nil {
			return err
		}

		xrefs, err := m.store.ProductXrefsForCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		for _, x := range xrefs {
			if x.ProductID == productID {
				return apperror.Conflict(model.KindCategoryProductXref, categoryID, productID, apperror.ReasonDuplicate)
			}
		}

		return m.store.CreateProductXref(ctx, &model.CategoryProductXref{CategoryID: categoryID, ProductID: productID})
	})
	return m.finish(ctx, "add_product", err, zap.Int64("category_id", categoryID), zap.Int64("product_id", productID))
}

// RemoveProductFromCategory deletes the membership of a visible product in
// categoryID. The product itself is untouched.
func (m *Manager) RemoveProductFromCategory(ctx context.Context, categoryID, productID int64) error {
	err := m.store.Transaction(ctx, func(ctx context.Context) error {
		if _, err := m.lockVisibleCategory(ctx, categoryID); err != nil {
			return err
		}

		xrefs, err := m.store.ProductXrefsForCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		for i := range xrefs {
			if xrefs[i].ProductID != productID {
				continue
			}
			product, err := m.store.FindProductByID(ctx, productID)
			if err != nil {
				return err
			}
			if !catalog.IsVisible(product) {
				break
			}
			return m.store.DeleteProductXref(ctx, &xrefs[i])
		}
		return apperror.NotFound(model.KindProduct, productID)
	})
	return m.finish(ctx, "remove_product", err, zap.Int64("category_id", categoryID), zap.Int64("product_id", productID))
}

// ListProductsInCategory returns the visible products of a visible category
// in the order they were added
func (m *Manager) ListProductsInCategory(ctx context.Context, categoryID int64) ([]*model.Product, error) {
	if _, err := m.visibleCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	xrefs, err := m.store.ProductXrefsForCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(xrefs))
	for i, x := range xrefs {
		ids[i] = x.ProductID
	}
	found, err := m.store.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	products := make([]*model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok && catalog.IsVisible(p) {
			products = append(products, p)
		}
	}
	return products, nil
}

// CountProductsInCategory counts what ListProductsInCategory returns
func (m *Manager) CountProductsInCategory(ctx context.Context, categoryID int64) (int, error) {
	products, err := m.ListProductsInCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// ListCategoriesForProduct returns the visible categories a visible product
// belongs to, in the order the memberships were created
func (m *Manager) ListCategoriesForProduct(ctx context.Context, productID int64) ([]*model.Category, error) {
	if _, err := m.visibleProduct(ctx, productID); err != nil {
		return nil, err
	}
	xrefs, err := m.store.ProductXrefsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(xrefs))
	for i, x := range xrefs {
		ids[i] = x.CategoryID
	}
	return m.resolveCategories(ctx, ids)
}

// CountCategoriesForProduct counts what ListCategoriesForProduct returns
func (m *Manager) CountCategoriesForProduct(ctx context.Context, productID int64) (int, error) {
	categories, err := m.ListCategoriesForProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return len(categories), nil
}

// resolveCategories loads ids in order and drops missing or archived ones
func (m *Manager) resolveCategories(ctx context.Context, ids []int64) ([]*model.Category, error) {
	if len(ids) == 0 {
		return []*model.Category{}, nil
	}
	found, err := m.store.FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	categories := make([]*model.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := found[id]; ok && catalog.IsVisible(c) {
			categories = append(categories, c)
		}
	}
	return categories, nil
}
