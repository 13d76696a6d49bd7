package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the product master data. The default SKU is referenced
// by id; every other SKU of the product points back through Sku.ProductID.
type Product struct {
	ID              int64              `json:"id" gorm:"primarykey"`
	Name            string             `json:"name" gorm:"type:varchar(255);not null;index"`
	Description     string             `json:"description" gorm:"type:text"`
	LongDescription string             `json:"long_description" gorm:"type:text"`
	Manufacturer    string             `json:"manufacturer" gorm:"type:varchar(255)"`
	Model           string             `json:"model" gorm:"type:varchar(255)"`
	URL             string             `json:"url" gorm:"type:varchar(255)"`
	ActiveStartDate time.Time          `json:"active_start_date"`
	ActiveEndDate   *time.Time         `json:"active_end_date,omitempty"`
	DefaultSkuID    *int64             `json:"default_sku_id,omitempty" gorm:"index"`
	Status          `gorm:"embedded"`
	Attributes      []ProductAttribute `json:"attributes,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Options         []ProductOption    `json:"options,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// AttributeMap returns the attributes keyed by name
func (p *Product) AttributeMap() map[string]string {
	attrs := make(map[string]string, len(p.Attributes))
	for _, a := range p.Attributes {
		attrs[a.Name] = a.Value
	}
	return attrs
}

// ProductAttribute is a name/value pair attached to a product
type ProductAttribute struct {
	ID        int64  `json:"-" gorm:"primarykey"`
	ProductID int64  `json:"-" gorm:"not null;uniqueIndex:idx_product_attribute_name"`
	Name      string `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_product_attribute_name"`
	Value     string `json:"value" gorm:"type:text"`
}

// ProductOption is a customer-selectable dimension of a product, e.g. size
type ProductOption struct {
	ID            int64                `json:"id" gorm:"primarykey"`
	ProductID     int64                `json:"-" gorm:"not null;index"`
	Name          string               `json:"name" gorm:"type:varchar(255);not null"`
	Required      bool                 `json:"required"`
	AllowedValues []ProductOptionValue `json:"allowed_values,omitempty" gorm:"foreignKey:ProductOptionID;constraint:OnDelete:CASCADE"`
}

// Allows reports whether value is one of the option's allowed values
func (o *ProductOption) Allows(value string) bool {
	for _, v := range o.AllowedValues {
		if v.Value == value {
			return true
		}
	}
	return false
}

// ProductOptionValue is one allowed value of a product option
type ProductOptionValue struct {
	ID              int64  `json:"-" gorm:"primarykey"`
	ProductOptionID int64  `json:"-" gorm:"not null;index"`
	Value           string `json:"value" gorm:"type:varchar(255);not null"`
}

// Sku is a sellable variant of a product
type Sku struct {
	ID                int64               `json:"id" gorm:"primarykey"`
	ProductID         int64               `json:"product_id" gorm:"not null;index"`
	Name              string              `json:"name" gorm:"type:varchar(255);not null"`
	Description       string              `json:"description" gorm:"type:text"`
	RetailPrice       decimal.Decimal     `json:"retail_price" gorm:"type:decimal(19,5);not null"`
	SalePrice         decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(19,5)"`
	Currency          string              `json:"currency" gorm:"type:varchar(3);not null;default:USD"`
	QuantityAvailable int                 `json:"quantity_available" gorm:"not null;default:0"`
	InventoryType     InventoryType       `json:"inventory_type" gorm:"type:varchar(32);not null;default:ALWAYS_AVAILABLE"`
	TaxCode           string              `json:"tax_code" gorm:"type:varchar(64)"`
	ActiveStartDate   time.Time           `json:"active_start_date"`
	ActiveEndDate     *time.Time          `json:"active_end_date,omitempty"`
	Status            `gorm:"embedded"`
	OptionValues      []SkuOptionValue    `json:"option_values,omitempty" gorm:"foreignKey:SkuID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// SkuOptionValue binds a SKU to one value of a product option
type SkuOptionValue struct {
	ID         int64  `json:"-" gorm:"primarykey"`
	SkuID      int64  `json:"-" gorm:"not null;index"`
	OptionName string `json:"option_name" gorm:"type:varchar(255);not null"`
	Value      string `json:"value" gorm:"type:varchar(255);not null"`
}

// All returns every model managed by the catalog schema, in migration order
func All() []interface{} {
	return []interface{}{
		&Category{},
		&CategoryAttribute{},
		&CategoryXref{},
		&Product{},
		&ProductAttribute{},
		&ProductOption{},
		&ProductOptionValue{},
		&Sku{},
		&SkuOptionValue{},
		&CategoryProductXref{},
	}
}
