package domain

import "time"

// Sentinel values used while product details are still unknown
const (
	UnknownTitle    = "Unknown Product"
	UnknownPlatform = "Unknown"
	UnknownStock    = "unknown"
)

// Category is a coarse product category
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFashion     Category = "fashion"
	CategoryGrocery     Category = "grocery"
	CategoryHome        Category = "home"
	CategoryBooks       Category = "books"
	CategoryOther       Category = "other"
)

// Product detail field names, used as provenance keys
const (
	FieldTitle     = "title"
	FieldPrice     = "price"
	FieldBrand     = "brand"
	FieldPlatform  = "platform"
	FieldProductID = "productId"
	FieldCategory  = "category"
)

// FieldSource records which extraction strategy produced a field and how confident it was
type FieldSource struct {
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
}

// ProductDetails represents product information extracted from an offer
type ProductDetails struct {
	Title           string                 `json:"title"`
	Price           float64                `json:"price"` // 0 = unknown
	OriginalPrice   *float64               `json:"originalPrice,omitempty"`
	DiscountPercent *float64               `json:"discountPercent,omitempty"`
	Brand           string                 `json:"brand,omitempty"`
	Category        Category               `json:"category,omitempty"`
	Platform        string                 `json:"platform"`
	ProductID       string                 `json:"productId,omitempty"`
	ImageURL        string                 `json:"imageUrl,omitempty"`
	ValidUntil      *time.Time             `json:"validUntil,omitempty"`
	StockStatus     string                 `json:"stockStatus"`
	Provenance      map[string]FieldSource `json:"provenance,omitempty"`
}

// NewProductDetails returns details populated with sentinel values
func NewProductDetails(platform string) ProductDetails {
	if platform == "" {
		platform = UnknownPlatform
	}
	return ProductDetails{
		Title:       UnknownTitle,
		Platform:    platform,
		StockStatus: UnknownStock,
	}
}

// HasTitle reports whether a real title has been extracted
func (p ProductDetails) HasTitle() bool {
	return p.Title != "" && p.Title != UnknownTitle
}
