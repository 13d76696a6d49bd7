package dto

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"catalog-service/internal/model"
)

// Category is the API representation of a category
type Category struct {
	ID                   int64             `json:"id,omitempty"`
	Name                 string            `json:"name" validate:"required"`
	Description          string            `json:"description,omitempty"`
	LongDescription      string            `json:"long_description,omitempty"`
	ProductsAvailability string            `json:"products_availability,omitempty"`
	URL                  string            `json:"url,omitempty"`
	Active               *bool             `json:"active,omitempty"`
	ActiveStartDate      *time.Time        `json:"active_start_date,omitempty"`
	ActiveEndDate        *time.Time        `json:"active_end_date,omitempty"`
	Attributes           map[string]string `json:"attributes,omitempty"`
	Links                Links             `json:"_links,omitempty"`
	Embedded             *CategoryEmbedded `json:"_embedded,omitempty"`
}

// CategoryEmbedded holds the resources embedded in a category
type CategoryEmbedded struct {
	Subcategories []*Category `json:"subcategories"`
	Products      []*Product  `json:"products"`
}

// Category builds the representation of c. With embed set the visible
// subcategories and products of c are included one level deep.
func (cv *Converter) Category(ctx context.Context, c *model.Category, embed bool) (*Category, error) {
	rep := &Category{
		ID:                   c.ID,
		Name:                 c.Name,
		Description:          c.Description,
		LongDescription:      c.LongDescription,
		ProductsAvailability: string(c.InventoryType),
		URL:                  c.URL,
		Active:               &c.Active,
		ActiveEndDate:        c.ActiveEndDate,
		Attributes:           c.AttributeMap(),
		Links:                cv.categoryLinks(c.ID),
	}
	if !c.ActiveStartDate.IsZero() {
		start := c.ActiveStartDate
		rep.ActiveStartDate = &start
	}
	if !embed || cv.hierarchy == nil {
		return rep, nil
	}

	subcategories, err := cv.hierarchy.ListSubcategories(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	products, err := cv.hierarchy.ListProductsInCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	rep.Embedded = &CategoryEmbedded{
		Subcategories: make([]*Category, 0, len(subcategories)),
		Products:      make([]*Product, 0, len(products)),
	}
	for _, sub := range subcategories {
		subRep, err := cv.Category(ctx, sub, false)
		if err != nil {
			return nil, err
		}
		rep.Embedded.Subcategories = append(rep.Embedded.Subcategories, subRep)
	}
	for _, p := range products {
		productRep, err := cv.Product(ctx, p, false)
		if err != nil {
			return nil, err
		}
		rep.Embedded.Products = append(rep.Embedded.Products, productRep)
	}
	return rep, nil
}

// Categories converts a list without embedded resources
func (cv *Converter) Categories(ctx context.Context, categories []*model.Category) ([]*Category, error) {
	reps := make([]*Category, 0, len(categories))
	for _, c := range categories {
		rep, err := cv.Category(ctx, c, false)
		if err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, nil
}

// CategoryEntity builds a new category from its representation
func CategoryEntity(rep *Category) *model.Category {
	c := &model.Category{Active: true}
	ApplyCategoryUpdate(c, rep)
	return c
}

// ApplyCategoryUpdate copies the writable fields of rep onto c. Identity and
// archive state are left alone.
func ApplyCategoryUpdate(c *model.Category, rep *Category) *model.Category {
	c.Name = rep.Name
	c.Description = rep.Description
	c.LongDescription = rep.LongDescription
	c.InventoryType = model.InventoryType(strings.TrimSpace(rep.ProductsAvailability))
	c.URL = rep.URL
	if rep.Active != nil {
		c.Active = *rep.Active
	}
	if rep.ActiveStartDate != nil {
		c.ActiveStartDate = *rep.ActiveStartDate
	}
	c.ActiveEndDate = rep.ActiveEndDate

	c.Attributes = make([]model.CategoryAttribute, 0, len(rep.Attributes))
	for _, name := range slices.Sorted(maps.Keys(rep.Attributes)) {
		c.Attributes = append(c.Attributes, model.CategoryAttribute{CategoryID: c.ID, Name: name, Value: rep.Attributes[name]})
	}
	return c
}
