package types

import "fmt"

// Category is the closed set of finding categories
type Category string

const (
	CategoryBug          Category = "bug"
	CategorySecurity     Category = "security"
	CategoryOptimization Category = "optimization"
)

// Categories is the fixed order in which categories are scanned and reported
var Categories = []Category{CategoryBug, CategorySecurity, CategoryOptimization}

// ParseCategory validates a category name
func ParseCategory(value string) (Category, error) {
	for _, c := range Categories {
		if string(c) == value {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category: %s", value)
}
