package dto

import (
	"maps"
	"slices"
	"strings"
	"time"

	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
)

// Sku is the API representation of a sku. Options maps an option name to
// the chosen value.
type Sku struct {
	ID                int64             `json:"id,omitempty"`
	Name              string            `json:"name,omitempty"`
	Description       string            `json:"description,omitempty"`
	RetailPrice       decimal.Decimal   `json:"retail_price"`
	SalePrice         *decimal.Decimal  `json:"sale_price,omitempty"`
	CurrencyCode      string            `json:"currency_code,omitempty" validate:"omitempty,len=3"`
	QuantityAvailable int               `json:"quantity_available" validate:"gte=0"`
	Availability      string            `json:"availability,omitempty" validate:"omitempty,oneof=ALWAYS_AVAILABLE UNAVAILABLE CHECK_QUANTITY"`
	TaxCode           string            `json:"tax_code,omitempty"`
	ActiveStartDate   *time.Time        `json:"active_start_date,omitempty"`
	ActiveEndDate     *time.Time        `json:"active_end_date,omitempty"`
	Options           map[string]string `json:"options,omitempty"`
	Links             Links             `json:"_links,omitempty"`
}

// Quantity is the body of the sku quantity resource
type Quantity struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// Availability is the body of the sku availability resource
type Availability struct {
	Availability string `json:"availability" validate:"required"`
}

// Sku builds the representation of s
func (cv *Converter) Sku(s *model.Sku) *Sku {
	rep := &Sku{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		RetailPrice:       s.RetailPrice,
		CurrencyCode:      s.Currency,
		QuantityAvailable: s.QuantityAvailable,
		Availability:      string(s.InventoryType),
		TaxCode:           s.TaxCode,
		ActiveEndDate:     s.ActiveEndDate,
		Links:             cv.skuLinks(s),
	}
	if s.SalePrice.Valid {
		sale := s.SalePrice.Decimal
		rep.SalePrice = &sale
	}
	if !s.ActiveStartDate.IsZero() {
		start := s.ActiveStartDate
		rep.ActiveStartDate = &start
	}
	if len(s.OptionValues) > 0 {
		rep.Options = make(map[string]string, len(s.OptionValues))
		for _, v := range s.OptionValues {
			rep.Options[v.OptionName] = v.Value
		}
	}
	return rep
}

// Skus converts a list of skus
func (cv *Converter) Skus(skus []*model.Sku) []*Sku {
	reps := make([]*Sku, 0, len(skus))
	for _, s := range skus {
		reps = append(reps, cv.Sku(s))
	}
	return reps
}

// SkuEntity builds a new sku from its representation
func SkuEntity(rep *Sku) *model.Sku {
	return ApplySkuUpdate(&model.Sku{}, rep)
}

// ApplySkuUpdate copies the writable fields of rep onto s
func ApplySkuUpdate(s *model.Sku, rep *Sku) *model.Sku {
	s.Name = rep.Name
	s.Description = rep.Description
	s.RetailPrice = rep.RetailPrice
	s.SalePrice = decimal.NullDecimal{}
	if rep.SalePrice != nil {
		s.SalePrice = decimal.NewNullDecimal(*rep.SalePrice)
	}
	s.Currency = rep.CurrencyCode
	s.QuantityAvailable = rep.QuantityAvailable
	s.InventoryType = model.InventoryType(strings.TrimSpace(rep.Availability))
	s.TaxCode = rep.TaxCode
	if rep.ActiveStartDate != nil {
		s.ActiveStartDate = *rep.ActiveStartDate
	}
	s.ActiveEndDate = rep.ActiveEndDate

	s.OptionValues = make([]model.SkuOptionValue, 0, len(rep.Options))
	for _, name := range slices.Sorted(maps.Keys(rep.Options)) {
		s.OptionValues = append(s.OptionValues, model.SkuOptionValue{SkuID: s.ID, OptionName: name, Value: rep.Options[name]})
	}
	return s
}
