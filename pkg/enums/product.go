package enums

import (
	"fmt"
	"strings"
)

// ProductCategory groups marketplace listings.
type ProductCategory string

const (
	ProductCategoryCoconut    ProductCategory = "coconut"
	ProductCategoryCopra      ProductCategory = "copra"
	ProductCategoryCoir       ProductCategory = "coir"
	ProductCategorySeedlings  ProductCategory = "seedlings"
	ProductCategoryByProducts ProductCategory = "by_products"
	ProductCategoryOther      ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryCoconut,
	ProductCategoryCopra,
	ProductCategoryCoir,
	ProductCategorySeedlings,
	ProductCategoryByProducts,
	ProductCategoryOther,
}

func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	candidate := ProductCategory(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductUnit is the selling unit of a listing.
type ProductUnit string

const (
	ProductUnitPiece ProductUnit = "piece"
	ProductUnitKilo  ProductUnit = "kg"
	ProductUnitSack  ProductUnit = "sack"
)

func (u ProductUnit) IsValid() bool {
	return u == ProductUnitPiece || u == ProductUnitKilo || u == ProductUnitSack
}

// ParseProductUnit converts raw input into ProductUnit; empty means piece.
func ParseProductUnit(value string) (ProductUnit, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ProductUnitPiece, nil
	}
	candidate := ProductUnit(trimmed)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
