// Package category lists the distinct categories used by catalog products,
// whatever their stock.
package category

// Category is one distinct product category and how many products use it.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}

const (
	DefaultLimit = 100
	MaxLimit     = 500
)
