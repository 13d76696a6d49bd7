package dto

import (
	"context"
	"maps"
	"slices"
	"time"

	"catalog-service/internal/model"
	"catalog-service/internal/product"
)

// Product is the API representation of a product
type Product struct {
	ID              int64             `json:"id,omitempty"`
	Name            string            `json:"name" validate:"required"`
	Description     string            `json:"description,omitempty"`
	LongDescription string            `json:"long_description,omitempty"`
	Manufacturer    string            `json:"manufacturer,omitempty"`
	Model           string            `json:"model,omitempty"`
	URL             string            `json:"url,omitempty"`
	ActiveStartDate *time.Time        `json:"active_start_date,omitempty"`
	ActiveEndDate   *time.Time        `json:"active_end_date,omitempty"`
	CategoryName    string            `json:"category_name,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	Options         []ProductOption   `json:"options,omitempty" validate:"dive"`
	DefaultSku      *Sku              `json:"default_sku,omitempty"`
	Skus            []*Sku            `json:"skus,omitempty" validate:"dive"`
	Links           Links             `json:"_links,omitempty"`
	Embedded        *ProductEmbedded  `json:"_embedded,omitempty"`
}

// ProductOption is the API representation of a product option
type ProductOption struct {
	Name          string   `json:"name" validate:"required"`
	Required      bool     `json:"required"`
	AllowedValues []string `json:"allowed_values,omitempty"`
}

// ProductEmbedded holds the resources embedded in a product
type ProductEmbedded struct {
	Categories []*Category `json:"categories"`
	Skus       []*Sku      `json:"skus"`
}

// Product builds the representation of p. With embed set the visible
// categories and skus of p are included.
func (cv *Converter) Product(ctx context.Context, p *model.Product, embed bool) (*Product, error) {
	rep := &Product{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Manufacturer:    p.Manufacturer,
		Model:           p.Model,
		URL:             p.URL,
		ActiveEndDate:   p.ActiveEndDate,
		Attributes:      p.AttributeMap(),
		Links:           cv.productLinks(p),
	}
	if !p.ActiveStartDate.IsZero() {
		start := p.ActiveStartDate
		rep.ActiveStartDate = &start
	}
	for _, option := range p.Options {
		values := make([]string, 0, len(option.AllowedValues))
		for _, v := range option.AllowedValues {
			values = append(values, v.Value)
		}
		rep.Options = append(rep.Options, ProductOption{Name: option.Name, Required: option.Required, AllowedValues: values})
	}
	if !embed {
		return rep, nil
	}

	rep.Embedded = &ProductEmbedded{Categories: []*Category{}, Skus: []*Sku{}}
	if cv.hierarchy != nil {
		categories, err := cv.hierarchy.ListCategoriesForProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if rep.Embedded.Categories, err = cv.Categories(ctx, categories); err != nil {
			return nil, err
		}
	}
	if cv.skus != nil {
		skus, err := cv.skus.ListSkus(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		rep.Embedded.Skus = cv.Skus(skus)
		for _, sku := range rep.Embedded.Skus {
			if p.DefaultSkuID != nil && sku.ID == *p.DefaultSkuID {
				rep.DefaultSku = sku
			}
		}
	}
	return rep, nil
}

// Products converts a list without embedded resources
func (cv *Converter) Products(ctx context.Context, products []*model.Product) ([]*Product, error) {
	reps := make([]*Product, 0, len(products))
	for _, p := range products {
		rep, err := cv.Product(ctx, p, false)
		if err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, nil
}

// NewProduct builds the input of product creation from rep
func NewProduct(rep *Product) product.NewProduct {
	in := product.NewProduct{
		Product:      ApplyProductUpdate(&model.Product{}, rep),
		CategoryName: rep.CategoryName,
	}
	if rep.DefaultSku != nil {
		in.DefaultSku = SkuEntity(rep.DefaultSku)
	}
	for _, sku := range rep.Skus {
		in.Skus = append(in.Skus, SkuEntity(sku))
	}
	return in
}

// ApplyProductUpdate copies the writable fields of rep onto p. Skus are
// managed through their own resources and are ignored here.
func ApplyProductUpdate(p *model.Product, rep *Product) *model.Product {
	p.Name = rep.Name
	p.Description = rep.Description
	p.LongDescription = rep.LongDescription
	p.Manufacturer = rep.Manufacturer
	p.Model = rep.Model
	p.URL = rep.URL
	if rep.ActiveStartDate != nil {
		p.ActiveStartDate = *rep.ActiveStartDate
	}
	p.ActiveEndDate = rep.ActiveEndDate

	p.Attributes = make([]model.ProductAttribute, 0, len(rep.Attributes))
	for _, name := range slices.Sorted(maps.Keys(rep.Attributes)) {
		p.Attributes = append(p.Attributes, model.ProductAttribute{ProductID: p.ID, Name: name, Value: rep.Attributes[name]})
	}

	p.Options = make([]model.ProductOption, 0, len(rep.Options))
	for _, option := range rep.Options {
		values := make([]model.ProductOptionValue, 0, len(option.AllowedValues))
		for _, v := range option.AllowedValues {
			values = append(values, model.ProductOptionValue{Value: v})
		}
		p.Options = append(p.Options, model.ProductOption{Name: option.Name, Required: option.Required, AllowedValues: values})
	}
	return p
}

// Attribute is the body of the product attribute resource
type Attribute struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}
