package model

import "fmt"

// Status is the soft-delete marker shared by archivable catalog records
type Status struct {
	Archived bool `json:"archived" gorm:"not null;default:false;index"`
}

// IsArchived reports whether the record has been soft-deleted
func (s Status) IsArchived() bool {
	return s.Archived
}

// Archive marks the record as soft-deleted
func (s *Status) Archive() {
	s.Archived = true
}

// Archivable is implemented by every record carrying a Status
type Archivable interface {
	IsArchived() bool
}

// Kind names a catalog record type in errors, logs and metrics
type Kind string

const (
	KindCategory            Kind = "category"
	KindProduct             Kind = "product"
	KindSku                 Kind = "sku"
	KindCategoryXref        Kind = "category_xref"
	KindCategoryProductXref Kind = "category_product_xref"
	KindAttribute           Kind = "attribute"
)

// RemovalPolicy describes how a delete request is applied to a record kind
type RemovalPolicy int

const (
	// RemoveArchive sets the archived flag and keeps the row
	RemoveArchive RemovalPolicy = iota
	// RemoveHardDelete deletes the row
	RemoveHardDelete
)

// removalPolicies keeps entities archived while their cross-references are
// physically deleted. References pointing at archived entities stay in place
// and are filtered out when read.
var removalPolicies = map[Kind]RemovalPolicy{
	KindCategory:            RemoveArchive,
	KindProduct:             RemoveArchive,
	KindSku:                 RemoveHardDelete,
	KindCategoryXref:        RemoveHardDelete,
	KindCategoryProductXref: RemoveHardDelete,
	KindAttribute:           RemoveHardDelete,
}

// PolicyFor returns the removal policy of the given kind
func PolicyFor(kind Kind) RemovalPolicy {
	policy, ok := removalPolicies[kind]
	if !ok {
		panic(fmt.Sprintf("model: no removal policy for kind %q", kind))
	}
	return policy
}

// InventoryType describes how availability of the products is decided
type InventoryType string

const (
	AlwaysAvailable InventoryType = "ALWAYS_AVAILABLE"
	Unavailable     InventoryType = "UNAVAILABLE"
	CheckQuantity   InventoryType = "CHECK_QUANTITY"
)

// ParseInventoryType returns the inventory type named by s
func ParseInventoryType(s string) (InventoryType, bool) {
	switch InventoryType(s) {
	case AlwaysAvailable, Unavailable, CheckQuantity:
		return InventoryType(s), true
	}
	return "", false
}
