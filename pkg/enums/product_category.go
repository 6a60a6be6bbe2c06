package enums

import "fmt"

// ProductCategory is the intake classification for donated goods.
type ProductCategory string

const (
	ProductCategoryFood      ProductCategory = "food"
	ProductCategoryHygiene   ProductCategory = "hygiene"
	ProductCategoryCleaning  ProductCategory = "cleaning"
	ProductCategoryClothing  ProductCategory = "clothing"
	ProductCategoryStationer ProductCategory = "stationery"
	ProductCategoryOther     ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryFood,
	ProductCategoryHygiene,
	ProductCategoryCleaning,
	ProductCategoryClothing,
	ProductCategoryStationer,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
