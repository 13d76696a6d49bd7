package hierarchy

import (
	"context"
	"strconv"

	"catalog-service/internal/apperror"
	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
)

// CategoriesAtDepth walks level steps down the child edges starting from
// roots and returns the categories reached by the last step.
//
// Only the current and the next frontier are kept. A category reachable
// through several parents appears once per path. Archived categories are
// neither returned nor expanded. A negative level or no roots yield an empty
// result and level 0 yields roots as given.
func (m *Manager) CategoriesAtDepth(ctx context.Context, roots []*model.Category, level int) ([]*model.Category, error) {
	if m.maxDepth > 0 && level > m.maxDepth {
		return nil, apperror.Invalid("depth", "must not exceed "+strconv.Itoa(m.maxDepth))
	}
	if level < 0 || len(roots) == 0 {
		return []*model.Category{}, nil
	}
	if level == 0 {
		return roots, nil
	}

	current := roots
	for depth := 0; depth < level; depth++ {
		ids := make([]int64, 0, len(current))
		for _, c := range current {
			if catalog.IsVisible(c) {
				ids = append(ids, c.ID)
			}
		}
		if len(ids) == 0 {
			return []*model.Category{}, nil
		}

		xrefs, err := m.store.ChildXrefs(ctx, ids...)
		if err != nil {
			return nil, err
		}
		children := make(map[int64][]int64, len(ids))
		childIDs := make([]int64, 0, len(xrefs))
		for _, x := range xrefs {
			children[x.CategoryID] = append(children[x.CategoryID], x.SubCategoryID)
			childIDs = append(childIDs, x.SubCategoryID)
		}

		found, err := m.store.FindCategoriesByIDs(ctx, childIDs)
		if err != nil {
			return nil, err
		}

		next := make([]*model.Category, 0, len(childIDs))
		for _, c := range current {
			if !catalog.IsVisible(c) {
				continue
			}
			for _, id := range children[c.ID] {
				if child, ok := found[id]; ok && catalog.IsVisible(child) {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	return current, nil
}

// CategoriesAtDepthFromRoots runs CategoriesAtDepth from the current roots
func (m *Manager) CategoriesAtDepthFromRoots(ctx context.Context, level int) ([]*model.Category, error) {
	roots, err := m.RootCategories(ctx)
	if err != nil {
		return nil, err
	}
	return m.CategoriesAtDepth(ctx, roots, level)
}

// reaches reports whether target is from or one of the descendants of from.
// Edges through archived categories are followed.
func (m *Manager) reaches(ctx context.Context, from, target int64) (bool, error) {
	if from == target {
		return true, nil
	}

	visited := map[int64]bool{from: true}
	frontier := []int64{from}
	for len(frontier) > 0 {
		xrefs, err := m.store.ChildXrefs(ctx, frontier...)
		if err != nil {
			return false, err
		}
		var next []int64
		for _, x := range xrefs {
			if x.SubCategoryID == target {
				return true, nil
			}
			if !visited[x.SubCategoryID] {
				visited[x.SubCategoryID] = true
				next = append(next, x.SubCategoryID)
			}
		}
		frontier = next
	}
	return false, nil
}
