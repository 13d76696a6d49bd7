package model

import (
	"time"
)

// Category is a catalog grouping node. Parent/child links and product
// membership live in their own cross-reference tables keyed by id.
type Category struct {
	ID              int64               `json:"id" gorm:"primarykey"`
	Name            string              `json:"name" gorm:"type:varchar(255);not null;index"`
	Description     string              `json:"description" gorm:"type:text"`
	LongDescription string              `json:"long_description" gorm:"type:text"`
	InventoryType   InventoryType       `json:"inventory_type" gorm:"type:varchar(32);not null;default:ALWAYS_AVAILABLE"`
	URL             string              `json:"url" gorm:"type:varchar(255)"`
	Active          bool                `json:"active" gorm:"not null"`
	ActiveStartDate time.Time           `json:"active_start_date"`
	ActiveEndDate   *time.Time          `json:"active_end_date,omitempty"`
	Status          `gorm:"embedded"`
	Attributes      []CategoryAttribute `json:"attributes,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// AttributeMap returns the attributes keyed by name
func (c *Category) AttributeMap() map[string]string {
	attrs := make(map[string]string, len(c.Attributes))
	for _, a := range c.Attributes {
		attrs[a.Name] = a.Value
	}
	return attrs
}

// CategoryAttribute is a name/value pair attached to a category
type CategoryAttribute struct {
	ID         int64  `json:"-" gorm:"primarykey"`
	CategoryID int64  `json:"-" gorm:"not null;uniqueIndex:idx_category_attribute_name"`
	Name       string `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_category_attribute_name"`
	Value      string `json:"value" gorm:"type:text"`
}

// CategoryXref is one parent -> child edge between two categories
type CategoryXref struct {
	ID            int64     `json:"id" gorm:"primarykey"`
	CategoryID    int64     `json:"category_id" gorm:"not null;uniqueIndex:idx_category_xref_pair"`
	SubCategoryID int64     `json:"sub_category_id" gorm:"not null;uniqueIndex:idx_category_xref_pair;index"`
	CreatedAt     time.Time `json:"created_at"`
}

// CategoryProductXref is one category membership of a product
type CategoryProductXref struct {
	ID         int64     `json:"id" gorm:"primarykey"`
	CategoryID int64     `json:"category_id" gorm:"not null;uniqueIndex:idx_category_product_pair"`
	ProductID  int64     `json:"product_id" gorm:"not null;uniqueIndex:idx_category_product_pair;index"`
	CreatedAt  time.Time `json:"created_at"`
}
