// Package dto converts catalog entities to and from their API
// representations. Representations carry HAL style `_links` built from the
// routes served under the configured base path.
package dto

import (
	"context"
	"strconv"

	"catalog-service/internal/model"
)

// Link is a single hypermedia reference
type Link struct {
	Href string `json:"href"`
}

// Links maps a relation name to its link
type Links map[string]Link

// HierarchyReader is what the converters need to embed related categories
// and products. *hierarchy.Manager satisfies it.
type HierarchyReader interface {
	ListSubcategories(ctx context.Context, id int64) ([]*model.Category, error)
	ListProductsInCategory(ctx context.Context, categoryID int64) ([]*model.Product, error)
	ListCategoriesForProduct(ctx context.Context, productID int64) ([]*model.Category, error)
}

// SkuReader lists the skus of a product. *product.Service satisfies it.
type SkuReader interface {
	ListSkus(ctx context.Context, productID int64) ([]*model.Sku, error)
}

// Converter builds representations. The readers are only used when embedded
// resources are requested.
type Converter struct {
	basePath  string
	hierarchy HierarchyReader
	skus      SkuReader
}

// NewConverter creates a Converter whose links start with basePath, e.g. "/v1"
func NewConverter(basePath string, hierarchy HierarchyReader, skus SkuReader) *Converter {
	return &Converter{basePath: basePath, hierarchy: hierarchy, skus: skus}
}

// CategoryHref returns the canonical reference of a category
func (cv *Converter) CategoryHref(id int64) string {
	return cv.basePath + "/categories/" + strconv.FormatInt(id, 10)
}

// ProductHref returns the canonical reference of a product
func (cv *Converter) ProductHref(id int64) string {
	return cv.basePath + "/products/" + strconv.FormatInt(id, 10)
}

// SkuHref returns the canonical reference of a sku
func (cv *Converter) SkuHref(productID, skuID int64) string {
	return cv.ProductHref(productID) + "/skus/" + strconv.FormatInt(skuID, 10)
}

func (cv *Converter) categoryLinks(id int64) Links {
	self := cv.CategoryHref(id)
	return Links{
		"self":             {Href: self},
		"subcategories":    {Href: self + "/subcategories"},
		"parentcategories": {Href: self + "/parentcategories"},
		"products":         {Href: self + "/products"},
	}
}

func (cv *Converter) productLinks(p *model.Product) Links {
	self := cv.ProductHref(p.ID)
	links := Links{
		"self":       {Href: self},
		"skus":       {Href: self + "/skus"},
		"categories": {Href: self + "/categories"},
		"attributes": {Href: self + "/attributes"},
	}
	if p.DefaultSkuID != nil {
		links["default-sku"] = Link{Href: self + "/skus/default"}
	}
	return links
}

func (cv *Converter) skuLinks(s *model.Sku) Links {
	self := cv.SkuHref(s.ProductID, s.ID)
	return Links{
		"self":         {Href: self},
		"product":      {Href: cv.ProductHref(s.ProductID)},
		"quantity":     {Href: self + "/quantity"},
		"availability": {Href: self + "/availability"},
	}
}
